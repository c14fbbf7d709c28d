package server

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/propdesk/internal/services"
	"github.com/desertthunder/propdesk/internal/shared"
)

func newTestBackend(t *testing.T) *services.Backend {
	t.Helper()

	cfg := shared.DefaultConfig()
	cfg.Stub.DelayMS = 0
	srv := New(Opts{Stub: cfg.Stub, Routes: cfg.Server, Upload: cfg.Upload, Logger: shared.NewLogger(&strings.Builder{})})
	srv.clock = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return services.NewBackend(services.NewAPIService(ts.URL, ts.Client()), cfg.Server, cfg.Upload)
}

func TestServer(t *testing.T) {
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		resp, err := newTestBackend(t).Health(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.OK() {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("upload echoes the sheet with a processed name", func(t *testing.T) {
		resp, err := newTestBackend(t).ProcessSheet(ctx, "Listing.xlsx", []byte("sheet-bytes"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.OK() {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
		}
		if resp.Filename() != "processed_Listing.xlsx" {
			t.Errorf("expected processed_Listing.xlsx, got %q", resp.Filename())
		}
		if string(resp.Body) != "sheet-bytes" {
			t.Errorf("unexpected body %q", resp.Body)
		}
	})

	t.Run("upload rejects other extensions", func(t *testing.T) {
		resp, err := newTestBackend(t).ProcessSheet(ctx, "notes.csv", []byte("a,b"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
		body, _ := resp.JSONData.(map[string]any)
		if body["detail"] != "Only .xlsx files are supported" {
			t.Errorf("unexpected error body %s", resp.Body)
		}
	})

	t.Run("project returns a zip archive", func(t *testing.T) {
		resp, err := newTestBackend(t).ArchiveProject(ctx, "https://example.com/listings/sunset-villas")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.OK() {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
		}
		if resp.Filename() != "sunset-villas.zip" {
			t.Errorf("expected sunset-villas.zip, got %q", resp.Filename())
		}

		zr, err := zip.NewReader(bytes.NewReader(resp.Body), int64(len(resp.Body)))
		if err != nil {
			t.Fatalf("response is not a zip: %v", err)
		}
		names := map[string]bool{}
		for _, f := range zr.File {
			names[f.Name] = true
		}
		if !names["sunset-villas/project.json"] || !names["sunset-villas/README.txt"] {
			t.Errorf("unexpected archive entries %v", names)
		}
	})

	t.Run("project rejects invalid urls", func(t *testing.T) {
		for _, raw := range []string{"notaurl", "ftp://example.com/x", "https://", "", "https://bad", "https://bad./x", "http://.com"} {
			resp, err := newTestBackend(t).ArchiveProject(ctx, raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%q: expected 400, got %d", raw, resp.StatusCode)
			}
			if resp.ErrorMessage() != "invalid url" {
				t.Errorf("%q: expected invalid url, got %q", raw, resp.ErrorMessage())
			}
		}
	})
}

func TestListingURL(t *testing.T) {
	for _, raw := range []string{"https://example.com/p/1", "http://127.0.0.1:8000/listing", "https://sub.example.co.uk", "http://[::1]:9000/x"} {
		if _, ok := listingURL(raw); !ok {
			t.Errorf("expected %q to be accepted", raw)
		}
	}
	for _, raw := range []string{"https://bad", "https://localhost/x", "https://bad..com"} {
		if _, ok := listingURL(raw); ok {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"https://example.com/listings/sunset-villas", "sunset-villas"},
		{"https://example.com/listings/sunset-villas/", "sunset-villas"},
		{"https://example.com", "example_com"},
		{"https://example.com/p/a b.html", "a_b_html"},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		if err != nil {
			t.Fatalf("bad test url %q: %v", tt.raw, err)
		}
		if got := projectName(u); got != tt.want {
			t.Errorf("projectName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestBuildArchive(t *testing.T) {
	data, err := buildArchive("demo", "https://example.com/demo", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("invalid archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("expected 2 entries, got %d", len(zr.File))
	}
}
