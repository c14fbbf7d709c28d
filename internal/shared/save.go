package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxCollisions bounds the " (n)" suffix search before giving up.
const maxCollisions = 1000

// DiskSaver writes downloaded payloads into a directory, the terminal counterpart of a browser's download folder.
type DiskSaver struct {
	dir string
}

// NewDiskSaver creates a [DiskSaver] rooted at dir. A leading "~" expands to the user's home directory.
func NewDiskSaver(dir string) *DiskSaver {
	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return &DiskSaver{dir: dir}
}

// Dir returns the directory files are saved into.
func (s *DiskSaver) Dir() string {
	return s.dir
}

// Save writes data under filename and returns the final path.
//
// The payload goes to a temp file in the target directory which is closed and renamed before Save returns,
// so no handle outlives the call and a partially written file is never visible under the final name.
// An existing file with the same name is kept; the new file gets a " (n)" suffix instead.
func (s *DiskSaver) Save(data []byte, filename string) (string, error) {
	name := SafeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: empty filename", ErrSaveFailed)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".propdesk-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	target, err := s.reserve(name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	committed = true

	return target, nil
}

// reserve creates an empty placeholder at the first free path for name in the save directory.
// O_EXCL makes the claim atomic, so only the placeholder's owner replaces it.
func (s *DiskSaver) reserve(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(s.dir, name)
	for i := 1; i <= maxCollisions; i++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			f.Close()
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
		candidate = filepath.Join(s.dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
	return "", fmt.Errorf("%w: too many files named %s", ErrSaveFailed, name)
}

// SafeFilename reduces a server or user supplied name to a bare file name.
func SafeFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = filepath.Base(name)
	switch name {
	case ".", "/", "..":
		return ""
	}
	return name
}
