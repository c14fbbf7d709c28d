package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/propdesk/internal/shared"
)

// SelectedFile is the user's chosen spreadsheet: a name and an opaque payload.
type SelectedFile struct {
	Name string
	Data []byte
}

// CheckFile reports whether name carries the required extension, compared case-insensitively.
func CheckFile(name, ext string) error {
	if len(name) < len(ext) || !strings.EqualFold(name[len(name)-len(ext):], ext) {
		return &ValidationError{Message: fmt.Sprintf("Please upload an Excel (%s) file.", ext)}
	}
	return nil
}

// NormalizeDroppedPath cleans a path pasted or dropped into a terminal.
//
// Terminals quote paths containing spaces or backslash-escape them; both forms are undone.
func NormalizeDroppedPath(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 {
		if (p[0] == '\'' && p[len(p)-1] == '\'') || (p[0] == '"' && p[len(p)-1] == '"') {
			return p[1 : len(p)-1]
		}
	}
	p = strings.TrimPrefix(p, "file://")
	return strings.NewReplacer(`\ `, " ", `\(`, "(", `\)`, ")", `\'`, "'", `\&`, "&").Replace(p)
}

// LoadFile normalizes a dropped path, validates its extension, and reads it.
//
// An empty path yields ok == false and no error: nothing was dropped.
func LoadFile(raw, ext string) (file SelectedFile, ok bool, err error) {
	path := NormalizeDroppedPath(raw)
	if path == "" {
		return SelectedFile{}, false, nil
	}

	name := filepath.Base(path)
	if err := CheckFile(name, ext); err != nil {
		return SelectedFile{}, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SelectedFile{}, false, &ValidationError{Message: fmt.Sprintf("Could not read %s.", name)}
	}
	return SelectedFile{Name: name, Data: data}, true, nil
}

// ResolveFilename picks the name a processed upload is saved under.
//
// The server's suggestion wins; otherwise the original name gets a "processed_" prefix.
func ResolveFilename(suggested, original string) string {
	if name := shared.SafeFilename(suggested); name != "" {
		return name
	}
	return "processed_" + shared.SafeFilename(original)
}

// NormalizeArchiveName forces name to a bare file name with a .zip extension.
func NormalizeArchiveName(name string) string {
	name = shared.SafeFilename(name)
	if name == "" {
		return DefaultArchiveName
	}
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".zip"
}
