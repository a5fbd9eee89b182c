package editor

import (
	"context"

	"github.com/dshills/keystorm/internal/buffer"
	"github.com/dshills/keystorm/internal/renderer/backend"
)

// RunOnce executes one iteration of the main loop: drain the signal
// queue, drain the work queue, poll every open buffer's attached
// input file descriptor, block for the next backend event, dispatch
// it, then repaint.
func (e *Editor) RunOnce() error {
	e.signals.Drain()
	e.work.Drain()

	for _, b := range e.openBuffers() {
		if b.HasInputFd() {
			_ = b.PollInput()
		}
	}

	ev := e.be.PollEvent()
	if err := e.Dispatch(ev); err != nil {
		return err
	}
	e.Render()
	return nil
}

func (e *Editor) openBuffers() []*buffer.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*buffer.Buffer, 0, len(e.names))
	for b := range e.names {
		out = append(out, b)
	}
	return out
}

// Run drives RunOnce until the editor is told to quit or ctx is
// cancelled. Cancellation posts a synthetic event so a blocked
// PollEvent wakes rather than leaving the loop stuck on terminal
// input forever.
func (e *Editor) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.Quit()
			e.be.PostEvent(backend.Event{Type: backend.EventNone})
		case <-done:
		}
	}()

	for !e.ShouldQuit() {
		if err := e.RunOnce(); err != nil {
			return err
		}
	}
	return ctx.Err()
}
