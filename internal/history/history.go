// Package history implements undo/redo as a stack of inverse
// Transformations, grounded on internal/engine/history's
// Operation/Command pair but restructured so undo is literally
// "compute and apply the inverse record" (§8 P2) rather than a
// Command interface with separate Execute/Undo methods — the buffer
// applies edits itself; this package only remembers how to reverse
// them.
package history

import (
	"errors"

	"github.com/dshills/keystorm/internal/cursor"
)

// ErrNothingToUndo and ErrNothingToRedo report an empty stack.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
)

// Entry is one atomic content edit: the range it replaced, the text
// that was there before and after, and the cursor sets on either side
// so undo restores selections exactly, not just content.
type Entry struct {
	Range         cursor.Range
	OldText       string
	NewText       string
	CursorsBefore cursor.Set
	CursorsAfter  cursor.Set
}

// NewEntry builds an Entry from the edited range and its before/after text.
func NewEntry(r cursor.Range, oldText, newText string) Entry {
	return Entry{Range: r, OldText: oldText, NewText: newText}
}

// WithCursors attaches before/after cursor state and returns e for chaining.
func (e Entry) WithCursors(before, after cursor.Set) Entry {
	e.CursorsBefore = before
	e.CursorsAfter = after
	return e
}

// Invert returns the entry that undoes e: the replaced range becomes
// the range NewText now occupies, and old/new text swap.
func (e Entry) Invert() Entry {
	newEnd := advance(e.Range.Start, e.NewText)
	return Entry{
		Range:         cursor.Range{Start: e.Range.Start, End: newEnd},
		OldText:       e.NewText,
		NewText:       e.OldText,
		CursorsBefore: e.CursorsAfter,
		CursorsAfter:  e.CursorsBefore,
	}
}

// advance walks a position forward across inserted text, wrapping
// lines on '\n', to compute the end of a replacement without needing
// the buffer content itself.
func advance(start cursor.Position, text string) cursor.Position {
	p := start
	col := p.Column
	for _, r := range text {
		if r == '\n' {
			p.Line++
			col = 0
		} else {
			col++
		}
	}
	p.Column = col
	return p
}

// Record is one undo step: a single edit, or several grouped together
// (§4.2 Composite) so they undo/redo atomically.
type Record struct {
	Entries     []Entry
	Description string
}

// Single wraps one Entry as a Record.
func Single(e Entry, description string) Record {
	return Record{Entries: []Entry{e}, Description: description}
}

// Invert returns the Record that undoes r: each entry inverted, in
// reverse application order, matching the Composite inverse law
// (undoing A-then-B undoes B first, then A).
func (r Record) Invert() Record {
	inv := make([]Entry, len(r.Entries))
	for i, e := range r.Entries {
		inv[len(r.Entries)-1-i] = e.Invert()
	}
	return Record{Entries: inv, Description: r.Description}
}

// History is a capped undo stack with a redo stack cleared on every
// new record, plus a grouping mode for building multi-entry Records.
type History struct {
	undo []Record
	redo []Record
	cap  int

	grouping bool
	groupBuf []Entry
	groupDsc string
}

// New returns a History capping the undo stack at maxEntries records
// (<=0 means 1000, matching the teacher's default).
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &History{cap: maxEntries}
}

// Record pushes a single-entry record, or — while a group is open —
// appends to it instead of pushing.
func (h *History) Record(e Entry, description string) {
	if h.grouping {
		h.groupBuf = append(h.groupBuf, e)
		return
	}
	h.push(Single(e, description))
}

// BeginGroup opens a group; subsequent Record calls accumulate instead
// of pushing until EndGroup.
func (h *History) BeginGroup(description string) {
	h.grouping = true
	h.groupDsc = description
	h.groupBuf = h.groupBuf[:0]
}

// EndGroup closes the open group and pushes its entries as one Record.
// A group with no entries pushes nothing.
func (h *History) EndGroup() {
	h.grouping = false
	if len(h.groupBuf) == 0 {
		return
	}
	h.push(Record{Entries: append([]Entry{}, h.groupBuf...), Description: h.groupDsc})
	h.groupBuf = nil
}

func (h *History) push(r Record) {
	h.undo = append(h.undo, r)
	h.redo = nil
	if len(h.undo) > h.cap {
		excess := len(h.undo) - h.cap
		h.undo = h.undo[excess:]
	}
}

// CanUndo reports whether Undo has a record to pop.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has a record to pop.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Undo pops the most recent record and returns its inverse for the
// caller to apply to the buffer, moving the original record to the
// redo stack.
func (h *History) Undo() (Record, error) {
	if len(h.undo) == 0 {
		return Record{}, ErrNothingToUndo
	}
	r := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, r)
	return r.Invert(), nil
}

// Redo pops the most recently undone record and returns it (not
// inverted — redo re-applies the original edit) for the caller to
// apply, moving it back to the undo stack.
func (h *History) Redo() (Record, error) {
	if len(h.redo) == 0 {
		return Record{}, ErrNothingToRedo
	}
	r := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, r)
	return r, nil
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
