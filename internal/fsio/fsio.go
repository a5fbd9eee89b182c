// Package fsio implements non-blocking file-descriptor reading for the
// buffer's optional input fd (§4.6): a growing byte accumulator, doubling
// from a 64 KB floor, fed by repeated non-blocking reads. Each chunk is
// scanned for '\n' and completed lines are emitted immediately; the
// trailing incomplete segment stays in the accumulator for the next
// read. EAGAIN is a no-op; a zero-length read is EOF, closing the fd,
// shrinking the accumulator, and invoking the EOF handler.
//
// Grounded on internal/integration/task.OutputProcessor's
// read-then-line-callback shape and internal/integration/process.Process's
// io.ReadCloser-based pipe handling, but reading a raw non-blocking fd
// with golang.org/x/sys/unix instead of a blocking bufio.Scanner —
// the teacher never needed non-blocking reads because its Process
// output is always drained on its own goroutine; this spec's buffer
// fd is polled cooperatively from the main loop instead.
package fsio

import (
	"bytes"
	"errors"

	"golang.org/x/sys/unix"
)

const minAccumulator = 64 * 1024

// Reader accumulates bytes read from a non-blocking file descriptor
// and emits complete lines as they appear.
type Reader struct {
	fd      int
	buf     []byte
	closed  bool
	onLine  func(line string)
	onEOF   func()
	onError func(error)
}

// New wraps fd, putting it in non-blocking mode. onLine is called once
// per completed line (the trailing '\n' stripped) in the order it was
// read; onEOF fires once, when the peer closes the fd; onError fires
// on any read error other than EAGAIN/EWOULDBLOCK or EOF.
func New(fd int, onLine func(line string), onEOF func(), onError func(error)) (*Reader, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	return &Reader{fd: fd, onLine: onLine, onEOF: onEOF, onError: onError}, nil
}

// Closed reports whether the fd has already hit EOF or an error.
func (r *Reader) Closed() bool { return r.closed }

// Pending returns the accumulator's unterminated trailing segment —
// bytes read but not yet followed by a '\n'. The slice is owned by
// the Reader; copy it before mutating.
func (r *Reader) Pending() []byte { return r.buf }

// Poll performs one non-blocking read attempt. It never blocks: an
// EAGAIN/EWOULDBLOCK result means there is nothing to read right now,
// which is not an error from the caller's point of view. Call Poll
// again on the next iteration of the main loop (typically driven by a
// readiness notification from the terminal/event backend, not a busy
// loop).
func (r *Reader) Poll() error {
	if r.closed {
		return nil
	}
	chunk := make([]byte, r.readSize())
	n, err := unix.Read(r.fd, chunk)
	switch {
	case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK):
		return nil
	case err != nil:
		r.fail(err)
		return err
	case n == 0:
		r.hitEOF()
		return nil
	default:
		r.buf = append(r.buf, chunk[:n]...)
		r.emitLines()
		return nil
	}
}

// readSize grows geometrically off the accumulator's current length,
// starting from a 64 KB floor, so a fd producing large bursts is
// drained in fewer Poll calls.
func (r *Reader) readSize() int {
	size := minAccumulator
	if grown := len(r.buf) * 2; grown > size {
		size = grown
	}
	return size
}

// emitLines pulls every complete '\n'-terminated line out of the
// accumulator, leaving only the trailing partial segment behind.
func (r *Reader) emitLines() {
	for {
		idx := bytes.IndexByte(r.buf, '\n')
		if idx < 0 {
			return
		}
		line := string(r.buf[:idx])
		r.buf = r.buf[idx+1:]
		if r.onLine != nil {
			r.onLine(line)
		}
	}
}

func (r *Reader) hitEOF() {
	r.closeFD()
	// Shrink the accumulator back down; anything still pending here is
	// an unterminated final line with no '\n' ever coming.
	if cap(r.buf) > minAccumulator {
		shrunk := make([]byte, len(r.buf))
		copy(shrunk, r.buf)
		r.buf = shrunk
	}
	if r.onEOF != nil {
		r.onEOF()
	}
}

func (r *Reader) fail(err error) {
	r.closeFD()
	if r.onError != nil {
		r.onError(err)
	}
}

func (r *Reader) closeFD() {
	if r.closed {
		return
	}
	r.closed = true
	_ = unix.Close(r.fd)
}
