package workflow

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/propdesk/internal/shared"
	tu "github.com/desertthunder/propdesk/internal/testing"
)

func TestUploadController(t *testing.T) {
	ctx := context.Background()
	sheet := SelectedFile{Name: "report.xlsx", Data: []byte("PK\x03\x04")}

	newController := func(backend *fakeBackend, saver *tu.MemorySaver) *UploadController {
		return NewUploadController(UploadOpts{Backend: backend, Saver: saver})
	}

	t.Run("starts idle with input visible", func(t *testing.T) {
		c := newController(newFakeBackend(nil, nil), &tu.MemorySaver{})
		snap := c.Snapshot()

		if snap.State != Idle {
			t.Errorf("expected Idle, got %v", snap.State)
		}
		if !snap.InputVisible() || snap.BusyVisible() || snap.StatusVisible() || snap.ResetVisible() {
			t.Errorf("unexpected visibility for idle snapshot: %+v", snap)
		}
		if c.Extension() != ".xlsx" {
			t.Errorf("expected default extension .xlsx, got %s", c.Extension())
		}
	})

	t.Run("rejects wrong extension without request or transition", func(t *testing.T) {
		backend := newFakeBackend(okResponse("x", ""), nil)
		saver := &tu.MemorySaver{}
		c := newController(backend, saver)

		var events recorder[UploadSnapshot]
		c.Subscribe(events.record)

		err := c.Submit(ctx, SelectedFile{Name: "notes.csv", Data: []byte("a,b")})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if got := AlertText(err); got != "Please upload an Excel (.xlsx) file." {
			t.Errorf("unexpected alert text %q", got)
		}
		if backend.Calls() != 0 {
			t.Errorf("expected no request, got %d", backend.Calls())
		}
		if len(events.all()) != 0 {
			t.Errorf("expected no events, got %d", len(events.all()))
		}
		if c.Snapshot().State != Idle {
			t.Errorf("expected Idle, got %v", c.Snapshot().State)
		}
	})

	t.Run("saves under the server supplied name", func(t *testing.T) {
		backend := newFakeBackend(okResponse("result", `attachment; filename="report_out.xlsx"`), nil)
		saver := &tu.MemorySaver{}
		c := newController(backend, saver)

		var events recorder[UploadSnapshot]
		c.Subscribe(events.record)

		if err := c.Submit(ctx, sheet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saves := saver.Saves()
		if len(saves) != 1 {
			t.Fatalf("expected 1 save, got %d", len(saves))
		}
		if saves[0].Filename != "report_out.xlsx" {
			t.Errorf("expected report_out.xlsx, got %s", saves[0].Filename)
		}
		if string(saves[0].Data) != "result" {
			t.Errorf("expected body to be saved verbatim, got %q", saves[0].Data)
		}

		snap := c.Snapshot()
		if snap.State != Succeeded {
			t.Errorf("expected Succeeded, got %v", snap.State)
		}
		if snap.Status != StatusUploadDone {
			t.Errorf("expected %q, got %q", StatusUploadDone, snap.Status)
		}
		if snap.ResetLabel != LabelProcessAnother {
			t.Errorf("expected %q, got %q", LabelProcessAnother, snap.ResetLabel)
		}
		if !snap.ResetVisible() || snap.DownloadVisible() || snap.InputVisible() {
			t.Errorf("unexpected visibility for succeeded snapshot: %+v", snap)
		}
		if snap.Artifact == nil || snap.Artifact.Path != "/mem/report_out.xlsx" {
			t.Errorf("unexpected artifact %+v", snap.Artifact)
		}

		got := events.all()
		if len(got) != 2 {
			t.Fatalf("expected busy and settled events, got %d", len(got))
		}
		if got[0].State != Busy || got[0].Status != "Processing report.xlsx..." {
			t.Errorf("unexpected busy event %+v", got[0])
		}
		if got[0].InputVisible() || got[0].ResetVisible() || !got[0].BusyVisible() {
			t.Errorf("unexpected visibility for busy event %+v", got[0])
		}
	})

	t.Run("falls back to processed prefix", func(t *testing.T) {
		saver := &tu.MemorySaver{}
		c := newController(newFakeBackend(okResponse("result", ""), nil), saver)

		if err := c.Submit(ctx, sheet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saves := saver.Saves(); len(saves) != 1 || saves[0].Filename != "processed_report.xlsx" {
			t.Errorf("expected processed_report.xlsx, got %+v", saves)
		}
	})

	t.Run("strips directories from the suggested name", func(t *testing.T) {
		saver := &tu.MemorySaver{}
		c := newController(newFakeBackend(okResponse("result", `attachment; filename="../../etc/out.xlsx"`), nil), saver)

		if err := c.Submit(ctx, sheet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saves := saver.Saves(); len(saves) != 1 || saves[0].Filename != "out.xlsx" {
			t.Errorf("expected out.xlsx, got %+v", saves)
		}
	})

	t.Run("server error settles failed without saving", func(t *testing.T) {
		saver := &tu.MemorySaver{}
		c := newController(newFakeBackend(errorResponse(http.StatusInternalServerError, "boom", nil), nil), saver)

		err := c.Submit(ctx, sheet)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if len(saver.Saves()) != 0 {
			t.Errorf("expected no saves, got %d", len(saver.Saves()))
		}

		snap := c.Snapshot()
		if snap.State != Failed || snap.Status != StatusUploadFailed || snap.ResetLabel != LabelTryAgain {
			t.Errorf("unexpected failed snapshot %+v", snap)
		}
		if snap.File != "report.xlsx" {
			t.Errorf("expected file name to be kept, got %q", snap.File)
		}
	})

	t.Run("transport fault settles failed", func(t *testing.T) {
		c := newController(newFakeBackend(nil, errors.New("connection refused")), &tu.MemorySaver{})

		if err := c.Submit(ctx, sheet); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if c.Snapshot().State != Failed {
			t.Errorf("expected Failed, got %v", c.Snapshot().State)
		}
	})

	t.Run("save fault settles failed", func(t *testing.T) {
		saver := &tu.MemorySaver{Err: errors.New("disk full")}
		c := newController(newFakeBackend(okResponse("result", ""), nil), saver)

		if err := c.Submit(ctx, sheet); !errors.Is(err, shared.ErrSaveFailed) {
			t.Errorf("expected ErrSaveFailed, got %v", err)
		}
		if c.Snapshot().State != Failed {
			t.Errorf("expected Failed, got %v", c.Snapshot().State)
		}
	})

	t.Run("ignores submission while busy", func(t *testing.T) {
		backend := newFakeBackend(okResponse("result", ""), nil)
		backend.gate = make(chan struct{})
		saver := &tu.MemorySaver{}
		c := newController(backend, saver)

		done := make(chan error, 1)
		go func() { done <- c.Submit(ctx, sheet) }()
		<-backend.started

		if err := c.Submit(ctx, SelectedFile{Name: "other.xlsx"}); !errors.Is(err, shared.ErrBusy) {
			t.Errorf("expected ErrBusy, got %v", err)
		}
		if snap := c.Snapshot(); snap.State != Busy || snap.File != "report.xlsx" {
			t.Errorf("expected busy snapshot for first file, got %+v", snap)
		}

		c.Reset()
		if c.Snapshot().State != Busy {
			t.Error("reset must not interrupt a busy attempt")
		}

		close(backend.gate)
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("submit did not settle")
		}

		if backend.Calls() != 1 {
			t.Errorf("expected exactly one request, got %d", backend.Calls())
		}
		if len(saver.Saves()) != 1 {
			t.Errorf("expected exactly one save, got %d", len(saver.Saves()))
		}
	})

	t.Run("reset returns to idle and is idempotent", func(t *testing.T) {
		c := newController(newFakeBackend(okResponse("result", ""), nil), &tu.MemorySaver{})

		var events recorder[UploadSnapshot]
		c.Subscribe(events.record)

		c.Reset()
		if len(events.all()) != 0 {
			t.Error("reset while idle must not publish")
		}

		if err := c.Submit(ctx, sheet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c.Reset()
		c.Reset()

		snap := c.Snapshot()
		if snap.State != Idle || snap.Status != "" || snap.Artifact != nil || snap.File != "" {
			t.Errorf("expected cleared idle snapshot, got %+v", snap)
		}
		if _, ok := c.Selected(); ok {
			t.Error("expected selection to be cleared")
		}
		if n := len(events.all()); n != 3 {
			t.Errorf("expected busy, settled, and one reset event, got %d", n)
		}
	})

	t.Run("allows a new attempt after failure", func(t *testing.T) {
		backend := newFakeBackend(nil, errors.New("offline"))
		c := newController(backend, &tu.MemorySaver{})

		_ = c.Submit(ctx, sheet)
		first := c.Snapshot().Attempt

		backend.err = nil
		backend.resp = okResponse("result", "")
		if err := c.Submit(ctx, sheet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		snap := c.Snapshot()
		if snap.State != Succeeded {
			t.Errorf("expected Succeeded, got %v", snap.State)
		}
		if snap.Attempt == first {
			t.Error("expected a fresh attempt id")
		}
	})

	t.Run("empty drop is ignored", func(t *testing.T) {
		backend := newFakeBackend(okResponse("result", ""), nil)
		c := newController(backend, &tu.MemorySaver{})

		if err := c.SubmitDropped(ctx, nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
		if backend.Calls() != 0 || c.Snapshot().State != Idle {
			t.Error("empty drop must not start an attempt")
		}
	})

	t.Run("drop submits the first file", func(t *testing.T) {
		saver := &tu.MemorySaver{}
		c := newController(newFakeBackend(okResponse("result", ""), nil), saver)

		files := []SelectedFile{sheet, {Name: "second.xlsx"}}
		if err := c.SubmitDropped(ctx, files); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saves := saver.Saves(); len(saves) != 1 || saves[0].Filename != "processed_report.xlsx" {
			t.Errorf("expected first file to be processed, got %+v", saves)
		}
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		c := newController(newFakeBackend(okResponse("result", ""), nil), &tu.MemorySaver{})

		var events recorder[UploadSnapshot]
		unsubscribe := c.Subscribe(events.record)
		unsubscribe()

		if err := c.Submit(ctx, sheet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events.all()) != 0 {
			t.Errorf("expected no events, got %d", len(events.all()))
		}
	})
}
