package services

import (
	"mime"
	"regexp"
	"strings"
)

// filenamePattern matches the loose filename="value" form some servers send unquoted or unterminated.
var filenamePattern = regexp.MustCompile(`filename="?([^";]+)"?`)

// DispositionFilename extracts the suggested filename from a Content-Disposition header value.
//
// RFC 6266 values (including filename*) are parsed with [mime.ParseMediaType]; anything it rejects falls back to a plain pattern match.
func DispositionFilename(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return name
		}
	}

	if m := filenamePattern.FindStringSubmatch(header); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
