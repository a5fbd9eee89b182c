// Package line implements the buffer's atomic content unit: an
// immutable Line combining a lazystring.String with a sparse
// column-keyed style transition map, grounded on the same
// build-new-value-on-edit discipline as internal/engine/rope.Rope in
// the teacher, but at line rather than whole-document granularity.
package line

import (
	"sort"

	"github.com/dshills/keystorm/internal/text/lazystring"
	"github.com/dshills/keystorm/internal/text/style"
)

// Environment is the opaque per-line scripting context handle (§3
// "environment: handle to a per-line scripting context"). The core
// treats it as an opaque value; internal/script gives it meaning.
type Environment interface {
	// IsZero reports whether this handle carries no environment.
	IsZero() bool
}

// NoEnvironment is the zero Environment value.
var NoEnvironment Environment = noEnv{}

type noEnv struct{}

func (noEnv) IsZero() bool { return true }

// Line is one logical buffer line: content plus per-column style
// transitions. Immutable after construction; every edit method returns
// a new Line, and the modifiers map is always re-keyed by the edit so
// no stale transition ever outlives the edit that invalidated it.
type Line struct {
	contents    lazystring.String
	modifiers   transitions // sorted by column, no two adjacent equal styles
	eolModifier style.Set
	env         Environment
}

// transitions is a sorted slice of (column, style) pairs. A slice
// beats a map here: line modifier counts are small and callers always
// want the transitions in column order for §3.2's "read the last
// transition <= C" lookup and for re-keying after edits.
type transitions []transition

type transition struct {
	Column int
	Style  style.Set
}

// Empty is a zero-length line with no styling.
var Empty = Line{env: NoEnvironment}

// New constructs a Line from content with no modifiers.
func New(content lazystring.String) Line {
	return Line{contents: content, env: NoEnvironment}
}

// NewString constructs a Line from a plain Go string.
func NewString(s string) Line {
	return New(lazystring.FromString(s))
}

// Contents returns the line's character content.
func (l Line) Contents() lazystring.String { return l.contents }

// Len returns the number of characters in the line.
func (l Line) Len() int { return l.contents.Len() }

// Text materializes the line's content as a Go string.
func (l Line) Text() string { return l.contents.String() }

// Environment returns the line's scripting environment handle.
func (l Line) Environment() Environment {
	if l.env == nil {
		return NoEnvironment
	}
	return l.env
}

// WithEnvironment returns a copy of l bound to env.
func (l Line) WithEnvironment(env Environment) Line {
	l.env = env
	return l
}

// EndOfLineModifier returns the style used for padding past the last
// character (§3 "end_of_line_modifiers").
func (l Line) EndOfLineModifier() style.Set { return l.eolModifier }

// WithEndOfLineModifier returns a copy of l with the padding style set.
func (l Line) WithEndOfLineModifier(s style.Set) Line {
	l.eolModifier = s
	return l
}

// StyleAt returns the effective style at column c: the last transition
// at or before c, or the end-of-line modifier if c is past the last
// character (§3 invariant: "a lookup at column C reads the last
// transition <= C").
func (l Line) StyleAt(c int) style.Set {
	if c >= l.Len() {
		return l.eolModifier
	}
	idx := sort.Search(len(l.modifiers), func(i int) bool { return l.modifiers[i].Column > c })
	if idx == 0 {
		return style.Plain
	}
	return l.modifiers[idx-1].Style
}

// SetModifier installs a style transition starting at column c,
// re-sorting and de-duplicating adjacent identical transitions so the
// invariant "no key carries a RESET-like marker" holds by construction
// (a transition to the same style as its predecessor is simply dropped).
func (l Line) SetModifier(c int, s style.Set) Line {
	next := make(transitions, 0, len(l.modifiers)+1)
	inserted := false
	for _, t := range l.modifiers {
		switch {
		case t.Column < c:
			next = append(next, t)
		case t.Column == c:
			// Replaced by the new transition below.
		default:
			if !inserted {
				next = appendTransition(next, transition{Column: c, Style: s})
				inserted = true
			}
			next = append(next, t)
		}
	}
	if !inserted {
		next = appendTransition(next, transition{Column: c, Style: s})
	}
	l.modifiers = next
	return l
}

// appendTransition appends t, skipping it if it repeats the style of
// the immediately preceding transition (or the plain default at the
// start of the line).
func appendTransition(ts transitions, t transition) transitions {
	if len(ts) > 0 && ts[len(ts)-1].Style.Equals(t.Style) {
		return ts
	}
	if len(ts) == 0 && t.Style.Equals(style.Plain) {
		return ts
	}
	return append(ts, t)
}

// rekey shifts every transition column by delta, dropping any that
// fall below zero or reindexing insertions/deletions at pos.
func (l Line) rekeyInsert(pos, count int) transitions {
	next := make(transitions, 0, len(l.modifiers))
	for _, t := range l.modifiers {
		if t.Column >= pos {
			t.Column += count
		}
		next = append(next, t)
	}
	return next
}

func (l Line) rekeyDelete(pos, count int) transitions {
	next := make(transitions, 0, len(l.modifiers))
	for _, t := range l.modifiers {
		switch {
		case t.Column < pos:
			next = append(next, t)
		case t.Column >= pos+count:
			t.Column -= count
			next = append(next, t)
		default:
			// Transition fell inside the deleted range: collapses onto pos.
			t.Column = pos
			next = appendTransition(next, t)
		}
	}
	return next
}

// AppendChar returns a new Line with r appended.
func (l Line) AppendChar(r rune) Line {
	l.contents = l.contents.Append(lazystring.FromRunes([]rune{r}))
	return l
}

// InsertBlank returns a new Line with n blank (space) characters
// inserted at column c.
func (l Line) InsertBlank(c, n int) Line {
	return l.insert(c, lazystring.Repeat(' ', n))
}

// SetCharacter returns a new Line with the character at column c
// replaced (or appended, when c equals the line length).
func (l Line) SetCharacter(c int, r rune, s style.Set) Line {
	if c == l.Len() {
		nl := l.AppendChar(r)
		if !s.IsPlain() {
			nl = nl.SetModifier(c, s)
		}
		return nl
	}
	prefix := l.contents.Substring(0, c)
	suffix := l.contents.Substring(c+1, l.Len()-c-1)
	nl := l
	nl.contents = prefix.Append(lazystring.FromRunes([]rune{r})).Append(suffix)
	if !s.IsPlain() {
		nl = nl.SetModifier(c, s)
	}
	return nl
}

// insert splices text into the line at column c, rekeying modifiers.
func (l Line) insert(c int, text lazystring.String) Line {
	prefix := l.contents.Substring(0, c)
	suffix := l.contents.Substring(c, l.Len()-c)
	nl := l
	nl.contents = prefix.Append(text).Append(suffix)
	nl.modifiers = l.rekeyInsert(c, text.Len())
	return nl
}

// InsertText splices text into the line at column c, rekeying
// modifiers past c forward by text's length.
func (l Line) InsertText(c int, text lazystring.String) Line {
	return l.insert(c, text)
}

// AppendText returns a new line with text appended at the end,
// preserving any styling carried by suffix's caller via SetModifier
// after the call (modifiers do not travel with plain lazystring.String
// values).
func (l Line) AppendText(text lazystring.String) Line {
	return l.insert(l.Len(), text)
}

// DeleteRange returns a new Line with [start, start+count) removed.
func (l Line) DeleteRange(start, count int) Line {
	if count <= 0 {
		return l
	}
	prefix := l.contents.Substring(0, start)
	tailStart := start + count
	suffix := l.contents.Substring(tailStart, l.Len()-tailStart)
	nl := l
	nl.contents = prefix.Append(suffix)
	nl.modifiers = l.rekeyDelete(start, count)
	return nl
}

// SplitAt splits the line at column c into a (prefix, suffix) pair.
// Modifiers are partitioned by column; the suffix's transitions are
// rekeyed to start at zero.
func (l Line) SplitAt(c int) (prefix, suffix Line) {
	prefix = Line{contents: l.contents.Substring(0, c), eolModifier: style.Plain, env: l.env}
	suffix = Line{contents: l.contents.Substring(c, l.Len()-c), eolModifier: l.eolModifier, env: l.env}

	for _, t := range l.modifiers {
		if t.Column < c {
			prefix.modifiers = appendTransition(prefix.modifiers, t)
		} else {
			suffix.modifiers = appendTransition(suffix.modifiers, transition{Column: t.Column - c, Style: t.Style})
		}
	}
	if c > 0 {
		prefix.eolModifier = prefix.StyleAt(c - 1)
	}
	return prefix, suffix
}

// Join concatenates other onto the end of l (the counterpart of
// SplitAt / BufferContents.fold_next_line), rekeying other's
// transitions by l's length.
func (l Line) Join(other Line) Line {
	nl := l
	nl.contents = l.contents.Append(other.contents)
	nl.eolModifier = other.eolModifier
	base := l.Len()
	next := make(transitions, 0, len(l.modifiers)+len(other.modifiers))
	next = append(next, l.modifiers...)
	for _, t := range other.modifiers {
		next = appendTransition(next, transition{Column: t.Column + base, Style: t.Style})
	}
	nl.modifiers = next
	return nl
}
