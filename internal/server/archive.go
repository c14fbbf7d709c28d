package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type manifest struct {
	Project   string    `json:"project"`
	SourceURL string    `json:"source_url"`
	ScrapedAt time.Time `json:"scraped_at"`
	Images    []string  `json:"images"`
}

// buildArchive assembles the placeholder archive returned for a project.
func buildArchive(name, source string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	m := manifest{Project: name, SourceURL: source, ScrapedAt: now.UTC(), Images: []string{}}
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{name + "/project.json", body},
		{name + "/README.txt", []byte(fmt.Sprintf("Archive of %s generated by the propdesk stub backend.\n", source))},
	}
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Deflate, Modified: now})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", f.name, err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
