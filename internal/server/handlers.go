package server

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type projectRequest struct {
	URL string `json:"url"`
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func attachment(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, name)
}

// HandleHealth returns server health status.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleUpload accepts a multipart spreadsheet and returns it as the processed result.
func (s *Server) HandleUpload(c echo.Context) error {
	fh, err := c.FormFile(s.field)
	if err != nil {
		return c.JSON(http.StatusBadRequest, detail(fmt.Sprintf("missing %q form field", s.field)))
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), strings.ToLower(s.ext)) {
		return c.JSON(http.StatusBadRequest, detail(fmt.Sprintf("Only %s files are supported", s.ext)))
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, detail("Failed to process file"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, detail("Failed to process file"))
	}

	s.logger.Debug("processed spreadsheet", "file", fh.Filename, "bytes", len(data))
	c.Response().Header().Set(echo.HeaderContentDisposition, attachment("processed_"+fh.Filename))
	return c.Blob(http.StatusOK, xlsxMIME, data)
}

// HandleProject validates a listing URL, simulates scraping, and returns a zip archive.
func (s *Server) HandleProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	}

	target, ok := listingURL(req.URL)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid url"})
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}

	name := projectName(target)
	data, err := buildArchive(name, target.String(), s.clock())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, detail(err.Error()))
	}

	s.logger.Debug("archived project", "url", target, "bytes", len(data))
	c.Response().Header().Set(echo.HeaderContentDisposition, attachment(name+".zip"))
	return c.Blob(http.StatusOK, "application/zip", data)
}

// listingURL accepts absolute http(s) URLs whose host is an IP address or a dotted domain name.
func listingURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return u, true
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 || slices.Contains(labels, "") {
		return nil, false
	}
	return u, true
}

// projectName derives a file-system friendly name from the last path segment, falling back to the host.
func projectName(u *url.URL) string {
	name := u.Host
	if segs := strings.Split(strings.Trim(u.Path, "/"), "/"); segs[len(segs)-1] != "" {
		name = segs[len(segs)-1]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
