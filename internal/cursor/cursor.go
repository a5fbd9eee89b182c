// Package cursor implements buffer positions, selections, and the
// CursorTransformation algebra that keeps them valid across edits,
// grounded on internal/engine/cursor's Cursor/Selection/CursorSet types
// but addressed by (line, column) instead of a flat byte offset, to
// match the line-tree content model.
package cursor

import "sort"

// Position identifies a character slot in the buffer: line index and
// column within that line.
type Position struct {
	Line   int
	Column int
}

// Less reports document order.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Range is a half-open [Start, End) span in document order.
type Range struct {
	Start Position
	End   Position
}

// Normalized returns r with Start <= End.
func (r Range) Normalized() Range {
	if r.End.Less(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Selection is an anchor/head pair; a zero-width selection is a plain
// cursor. Head is the end that moves under further motion.
type Selection struct {
	Anchor Position
	Head   Position
}

// IsCursor reports whether the selection has no extent.
func (s Selection) IsCursor() bool { return s.Anchor == s.Head }

// Range returns the normalized range the selection covers.
func (s Selection) Range() Range {
	return Range{Start: s.Anchor, End: s.Head}.Normalized()
}

// Set is an ordered, deduplicated collection of selections — the
// buffer's named cursor sets (primary edit point plus any multi-cursor
// selections).
type Set struct {
	selections []Selection
}

// NewSet builds a Set from selections, sorting and deduplicating them.
func NewSet(selections ...Selection) Set {
	cs := Set{selections: append([]Selection{}, selections...)}
	cs.normalize()
	return cs
}

// Single builds a Set with one cursor at p.
func Single(p Position) Set {
	return NewSet(Selection{Anchor: p, Head: p})
}

func (cs *Set) normalize() {
	sort.Slice(cs.selections, func(i, j int) bool {
		return cs.selections[i].Range().Start.Less(cs.selections[j].Range().Start)
	})
	out := cs.selections[:0]
	for i, s := range cs.selections {
		if i > 0 && s == cs.selections[i-1] {
			continue
		}
		out = append(out, s)
	}
	cs.selections = out
}

// Selections returns the set's selections in document order.
func (cs Set) Selections() []Selection { return append([]Selection{}, cs.selections...) }

// Len returns the number of selections in the set.
func (cs Set) Len() int { return len(cs.selections) }

// Primary returns the first (topmost) selection, or the zero Selection
// if the set is empty.
func (cs Set) Primary() Selection {
	if len(cs.selections) == 0 {
		return Selection{}
	}
	return cs.selections[0]
}

// Apply runs a Transformation across every selection in the set,
// returning the transformed set (§8 property P1: applying a composite
// equals folding the individual adjustments over every position).
func (cs Set) Apply(t Transformation) Set {
	next := make([]Selection, len(cs.selections))
	for i, s := range cs.selections {
		next[i] = Selection{Anchor: t.Apply(s.Anchor), Head: t.Apply(s.Head)}
	}
	return NewSet(next...)
}
