// Package buffer implements the Buffer type (§3): contents, named
// cursor sets, undo/redo, modal state, an optional input fd, a
// variable bag, and a filter predicate, all coupled so that a single
// edit mutates contents and cursors atomically and pushes its inverse
// onto the undo stack.
//
// Grounded on internal/engine/buffer.Buffer for the Option-functions
// constructor and the mutex-guarded read/write split, adapted from a
// flat byte-offset rope wrapper to the line-tree/cursor-set/history
// stack this spec's data model requires.
package buffer

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/fsio"
	"github.com/dshills/keystorm/internal/history"
	"github.com/dshills/keystorm/internal/text/content"
	"github.com/dshills/keystorm/internal/transform"
)

// ActiveCursors is the distinguished cursor-set name every buffer
// carries (§3).
const ActiveCursors = "active"

// PasteBuffer is the distinguished cursor-set name used to track the
// most recently yanked/deleted region (§4.5).
const PasteBuffer = "paste_buffer"

// ErrEmptyBufferNeedsCursor guards the invariant "cursors[active] is
// non-empty iff contents is non-empty".
var ErrEmptyBufferNeedsCursor = errors.New("buffer: active cursor set must stay non-empty while contents exist")

// Option configures a Buffer at construction, matching the teacher's
// functional-options constructor shape.
type Option func(*Buffer)

// WithHistoryLimit bounds the undo stack's retained record count.
func WithHistoryLimit(n int) Option {
	return func(b *Buffer) { b.history = history.New(n) }
}

// WithVariables installs a pre-populated variable bag, e.g. one seeded
// from editor-wide defaults before per-buffer overrides apply.
func WithVariables(v *Variables) Option {
	return func(b *Buffer) { b.vars = v }
}

// Buffer couples a persistent line tree with the cursors, history, and
// modal state that make edits to it well-defined (§3).
type Buffer struct {
	mu sync.RWMutex

	contents content.Contents
	cursors  map[string]cursor.Set

	history *history.History
	mode    *transform.Engine

	lastSearch *regexp.Regexp

	reader       *fsio.Reader
	childPID     int
	fdIsTerminal bool

	vars *Variables

	filterExpr    string
	filterVersion int

	adjustCallbacks []func(cursor.Transformation)

	warning string
}

// New creates an empty Buffer: one empty line, one active cursor at
// (0,0), an empty undo/redo history, and a fresh variable bag.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		contents: content.Empty,
		cursors:  map[string]cursor.Set{ActiveCursors: cursor.Single(cursor.Position{})},
		history:  history.New(1000),
		mode:     transform.NewEngine(),
		vars:     NewVariables(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a Buffer whose contents is text split on '\n'.
func NewFromString(text string, opts ...Option) *Buffer {
	b := New(opts...)
	b.contents = content.FromString(text)
	return b
}

// Contents returns the buffer's current contents. Contents is an
// immutable persistent value; sharing it with a background reader
// (predictor, search) is always safe.
func (b *Buffer) Contents() content.Contents {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contents
}

// Cursors returns the named cursor set, or false if no set of that
// name exists.
func (b *Buffer) Cursors(name string) (cursor.Set, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cs, ok := b.cursors[name]
	return cs, ok
}

// ActiveCursorSet is a convenience accessor for the "active" set,
// which always exists while the buffer is non-empty.
func (b *Buffer) ActiveCursorSet() cursor.Set {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursors[ActiveCursors]
}

// SetActiveCursors replaces the active cursor set. An empty set is
// rejected while contents is non-empty, enforcing §3's invariant.
func (b *Buffer) SetActiveCursors(cs cursor.Set) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cs.Len() == 0 && b.contents.LineCount() > 0 {
		return ErrEmptyBufferNeedsCursor
	}
	b.cursors[ActiveCursors] = cs
	return nil
}

// PushCursorSet installs a named, non-active cursor set (e.g. the
// paste buffer or a caller-defined mark set).
func (b *Buffer) PushCursorSet(name string, cs cursor.Set) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursors[name] = cs
}

// PopCursorSet removes a named cursor set, returning it and whether it
// existed. The active set cannot be popped.
func (b *Buffer) PopCursorSet(name string) (cursor.Set, bool) {
	if name == ActiveCursors {
		return cursor.Set{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cs, ok := b.cursors[name]
	if ok {
		delete(b.cursors, name)
	}
	return cs, ok
}

// EraseCursorSet clears a named cursor set to empty without removing
// its entry.
func (b *Buffer) EraseCursorSet(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == ActiveCursors {
		return
	}
	b.cursors[name] = cursor.Set{}
}

// AdjustCallback subscribes fn to run after every buffer mutation,
// once per mutation, in subscription order — the §4.5 ordering
// guarantee that two mutations M1 then M2 are observed by subscribers
// strictly M1-before-M2 falls out of running callbacks synchronously
// inside the same mutex-held call that performs the mutation.
func (b *Buffer) AdjustCallback(fn func(cursor.Transformation)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adjustCallbacks = append(b.adjustCallbacks, fn)
}

// Mode returns the buffer's modal state machine (§4.2), which
// subsumes the "modifiers: direction, repetitions, structure,
// strength, insertion-mode" fields of §3 — those are transient
// arguments threaded through transform.Engine's pending closures
// rather than duplicated as separate Buffer fields.
func (b *Buffer) Mode() *transform.Engine { return b.mode }

// LastSearch returns the compiled last-search query, or nil if none
// has been set.
func (b *Buffer) LastSearch() *regexp.Regexp {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastSearch
}

// SetLastSearch compiles and stores query as the last-search query.
func (b *Buffer) SetLastSearch(query string) error {
	re, err := regexp.Compile(query)
	if err != nil {
		return fmt.Errorf("buffer: invalid search query %q: %w", query, err)
	}
	b.mu.Lock()
	b.lastSearch = re
	b.mu.Unlock()
	return nil
}

// Variables returns the buffer's variable bag.
func (b *Buffer) Variables() *Variables { return b.vars }

// FilterPredicate returns the current per-line filter expression and
// its version counter, which the widget layer bumps its cached filter
// view against.
func (b *Buffer) FilterPredicate() (string, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filterExpr, b.filterVersion
}

// SetFilterPredicate installs a new per-line filter expression,
// incrementing filter_version so cached filter views invalidate.
func (b *Buffer) SetFilterPredicate(expr string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filterExpr = expr
	b.filterVersion++
}

// Warning returns the most recent non-fatal I/O warning set on this
// buffer (§4.6 "other errors are fatal to the buffer, not the
// editor"), or "" if none.
func (b *Buffer) Warning() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.warning
}

// AttachReader wires a non-blocking fd reader to the buffer as its
// input_fd (§3, §4.6). onLine is intentionally not exposed to the
// caller: the buffer itself decides how a completed line becomes
// content (the editor's main loop calls PollInput, and each completed
// line is appended by onInputLine).
func (b *Buffer) AttachReader(fd int, childPID int, isTerminal bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := fsio.New(fd, b.onInputLine, b.onInputEOF, b.onInputError)
	if err != nil {
		return err
	}
	b.reader = r
	b.childPID = childPID
	b.fdIsTerminal = isTerminal
	return nil
}

// PollInput drains one non-blocking read from the attached fd, a
// no-op if none is attached.
func (b *Buffer) PollInput() error {
	b.mu.RLock()
	r := b.reader
	b.mu.RUnlock()
	if r == nil {
		return nil
	}
	return r.Poll()
}

// HasInputFd reports whether an input fd is currently attached.
func (b *Buffer) HasInputFd() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.reader != nil
}

func (b *Buffer) onInputLine(line string) {
	b.mu.Lock()
	n := b.contents.LineCount()
	b.mu.Unlock()
	// Appending fd output is a plain insert at end-of-buffer; it goes
	// through Edit so history/cursor bookkeeping stays uniform.
	_ = b.Edit(cursor.Range{
		Start: cursor.Position{Line: n - 1, Column: b.Contents().At(n - 1).Len()},
		End:   cursor.Position{Line: n - 1, Column: b.Contents().At(n - 1).Len()},
	}, "\n"+line, "")
}

func (b *Buffer) onInputEOF() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reader = nil
	if b.vars.Bool("reload_after_exit", b.vars.Bool("default_reload_after_exit", false)) {
		// The caller (Editor) owns process/fd lifecycle; the buffer
		// only records that a reload was requested by clearing the
		// warning so the editor's own reload path isn't shadowed by a
		// stale one.
		b.warning = ""
	}
}

func (b *Buffer) onInputError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reader = nil
	b.warning = fmt.Sprintf("input fd error: %v", err)
}
