package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openCommand builds the platform command that hands target to the default application.
func openCommand(target string) (*exec.Cmd, error) {
	rt := getRuntime()
	switch rt {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenPath opens a saved file (or URL) with the system's default application.
//
// Supports macOS, Linux, and Windows platforms.
func OpenPath(target string) error {
	cmd, err := openCommand(target)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}

	return nil
}
