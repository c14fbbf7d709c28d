// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter forwards the first n writes to w and fails every write after that.
type LimitedWriter struct {
	n int
	w io.Writer
}

func NewLimitedWriter(n int, w io.Writer) *LimitedWriter {
	return &LimitedWriter{n: n, w: w}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return 0, errors.New("write limit reached")
	}
	l.n--
	return l.w.Write(p)
}

// SavedFile is one call recorded by [MemorySaver].
type SavedFile struct {
	Data     []byte
	Filename string
}

// MemorySaver is a test double for workflow.Saver that records saves instead of touching disk.
type MemorySaver struct {
	mu    sync.Mutex
	saves []SavedFile
	Err   error
}

func (m *MemorySaver) Save(data []byte, filename string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.saves = append(m.saves, SavedFile{Data: append([]byte(nil), data...), Filename: filename})
	return "/mem/" + filename, nil
}

// Saves returns a copy of the recorded saves.
func (m *MemorySaver) Saves() []SavedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SavedFile(nil), m.saves...)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
