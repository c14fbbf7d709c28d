package workflow

import (
	"context"
	"net/http"
	"sync"

	"github.com/desertthunder/propdesk/internal/services"
)

// fakeBackend implements [SheetProcessor] and [ProjectArchiver].
//
// When gate is non-nil every call blocks until it is closed or the context ends.
type fakeBackend struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	resp  *services.APIResponse
	err   error
	panic bool

	started chan struct{}
}

func newFakeBackend(resp *services.APIResponse, err error) *fakeBackend {
	return &fakeBackend{resp: resp, err: err, started: make(chan struct{}, 8)}
}

func (f *fakeBackend) call(ctx context.Context) (*services.APIResponse, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	f.started <- struct{}{}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.panic {
		panic("backend exploded")
	}
	return f.resp, f.err
}

func (f *fakeBackend) ProcessSheet(ctx context.Context, filename string, data []byte) (*services.APIResponse, error) {
	return f.call(ctx)
}

func (f *fakeBackend) ArchiveProject(ctx context.Context, url string) (*services.APIResponse, error) {
	return f.call(ctx)
}

func (f *fakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okResponse(body string, disposition string) *services.APIResponse {
	h := http.Header{}
	if disposition != "" {
		h.Set("Content-Disposition", disposition)
	}
	return &services.APIResponse{StatusCode: http.StatusOK, Headers: h, Body: []byte(body)}
}

func errorResponse(status int, body string, data any) *services.APIResponse {
	return &services.APIResponse{
		StatusCode: status,
		Headers:    http.Header{},
		Body:       []byte(body),
		IsJSON:     data != nil,
		JSONData:   data,
	}
}

// recorder collects published snapshots.
type recorder[T any] struct {
	mu     sync.Mutex
	events []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v)
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.events...)
}

// saverFunc adapts a function to [Saver].
type saverFunc func(data []byte, filename string) (string, error)

func (f saverFunc) Save(data []byte, filename string) (string, error) { return f(data, filename) }
