package workflow

import (
	"sync"

	"github.com/desertthunder/propdesk/internal/shared"
)

// State is the lifecycle position of a workflow.
type State int

const (
	Idle State = iota
	Busy
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Settled reports whether s is a terminal state of an attempt.
func (s State) Settled() bool {
	return s == Succeeded || s == Failed
}

// Saver persists a downloaded payload under filename and returns where it went.
//
// Implemented by [shared.DiskSaver].
type Saver interface {
	Save(data []byte, filename string) (string, error)
}

var _ Saver = (*shared.DiskSaver)(nil)

// Artifact describes a saved result.
type Artifact struct {
	Filename string // Name the file was saved under
	Path     string // Location reported by the Saver
	Size     int    // Payload size in bytes
}

// broadcaster fans snapshots out to subscribers.
//
// Listeners run on the publishing goroutine, outside any controller lock.
type broadcaster[T any] struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func(T)
}

func (b *broadcaster[T]) subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[int]func(T))
	}
	id := b.next
	b.next++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	fns := make([]func(T), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
