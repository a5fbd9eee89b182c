// Package lazystring implements an immutable, column-addressable
// character sequence that supports O(1) length, O(1) substring, and
// O(1) append by sharing storage between variants instead of copying.
//
// This generalizes the teacher's rope leaf/chunk sharing
// (internal/engine/rope.Chunk, internal/engine/rope.Node.split/concat)
// down to a single-line, single-value abstraction: a String is one of a
// closed set of representations (flat, padding, substring view,
// concatenation) rather than a full B-tree, since a line's content is
// small enough that no further balancing is needed — the balancing
// happens one level up, in text/content's line tree.
package lazystring

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// part is the closed set of representations a String can hold. It is
// unexported so no other package can add a fifth variant.
type part interface {
	length() int
	at(i int) rune
	slice(start, length int) part
	writeTo(sb *strings.Builder)
}

// String is an immutable, column-addressable character sequence.
// The zero value is the empty string.
type String struct {
	p part // nil means empty
}

// Empty is the canonical empty String.
var Empty = String{}

// FromString builds a flat String from Go string content.
func FromString(s string) String {
	if s == "" {
		return Empty
	}
	return String{p: flatPart(runesOf(s))}
}

// FromRunes builds a flat String from a rune slice, taking ownership.
// Callers must not mutate runes after this call.
func FromRunes(runes []rune) String {
	if len(runes) == 0 {
		return Empty
	}
	return String{p: flatPart(runes)}
}

// Repeat builds a padding String of n copies of r without allocating
// n runes up front — used for end-of-line padding past the last
// character.
func Repeat(r rune, n int) String {
	if n <= 0 {
		return Empty
	}
	return String{p: paddingPart{r: r, n: n}}
}

func runesOf(s string) []rune {
	// Normalize to NFC so column addressing is stable regardless of the
	// input's combining-mark decomposition; grapheme-cluster width is a
	// terminal-layer concern (internal/terminal), not this package's.
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return []rune(s)
}

// Len returns the number of characters (runes), O(1).
func (s String) Len() int {
	if s.p == nil {
		return 0
	}
	return s.p.length()
}

// IsEmpty reports whether the string has zero length.
func (s String) IsEmpty() bool { return s.Len() == 0 }

// At returns the rune at column i. Panics if i is out of range, mirroring
// the teacher's convention of bounds-checked slice access at the caller.
func (s String) At(i int) rune {
	if i < 0 || i >= s.Len() {
		panic("lazystring: index out of range")
	}
	return s.p.at(i)
}

// Substring returns the O(1) view [start, start+length).
func (s String) Substring(start, length int) String {
	if length <= 0 || s.p == nil {
		return Empty
	}
	if start < 0 || start+length > s.Len() {
		panic("lazystring: substring out of range")
	}
	if start == 0 && length == s.Len() {
		return s
	}
	return String{p: s.p.slice(start, length)}
}

// Append returns the O(1) concatenation of s and other.
func (s String) Append(other String) String {
	if s.p == nil {
		return other
	}
	if other.p == nil {
		return s
	}
	return String{p: concatPart{left: s.p, right: other.p, len: s.p.length() + other.p.length()}}
}

// String materializes the full character sequence. Use sparingly on
// large concatenation chains; prefer WriteTo for streaming output.
func (s String) String() string {
	if s.p == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(s.Len())
	s.p.writeTo(&sb)
	return sb.String()
}

// WriteTo streams the content into a strings.Builder without an
// intermediate allocation for the joined result.
func (s String) WriteTo(sb *strings.Builder) {
	if s.p != nil {
		s.p.writeTo(sb)
	}
}

// Equals reports whether two Strings contain the same characters,
// independent of their internal representation.
func (s String) Equals(o String) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.At(i) != o.At(i) {
			return false
		}
	}
	return true
}

// RuneWidth is the fixed display width policy (§1 Non-goals): every
// rune occupies exactly one cell, except the tab stop which the caller
// expands before constructing a String. Combining marks and wide CJK
// glyphs are not double-width here; that grapheme-aware layout belongs
// to the terminal collaborator.
func RuneWidth(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	return 1
}

// --- flatPart: a plain rune array ---

type flatPart []rune

func (f flatPart) length() int   { return len(f) }
func (f flatPart) at(i int) rune { return f[i] }
func (f flatPart) slice(start, length int) part {
	return sliceView{base: f, start: start, len: length}
}
func (f flatPart) writeTo(sb *strings.Builder) {
	for _, r := range f {
		sb.WriteRune(r)
	}
}

// --- paddingPart: n repetitions of a single rune, O(1) regardless of n ---

type paddingPart struct {
	r rune
	n int
}

func (p paddingPart) length() int   { return p.n }
func (p paddingPart) at(i int) rune { return p.r }
func (p paddingPart) slice(start, length int) part {
	return paddingPart{r: p.r, n: length}
}
func (p paddingPart) writeTo(sb *strings.Builder) {
	for i := 0; i < p.n; i++ {
		sb.WriteRune(p.r)
	}
}

// --- sliceView: an O(1) window onto a flat backing array ---

type sliceView struct {
	base  flatPart
	start int
	len   int
}

func (s sliceView) length() int   { return s.len }
func (s sliceView) at(i int) rune { return s.base[s.start+i] }
func (s sliceView) slice(start, length int) part {
	return sliceView{base: s.base, start: s.start + start, len: length}
}
func (s sliceView) writeTo(sb *strings.Builder) {
	for i := 0; i < s.len; i++ {
		sb.WriteRune(s.base[s.start+i])
	}
}

// --- concatPart: an O(1) join of two parts sharing their storage ---

type concatPart struct {
	left, right part
	len         int
}

func (c concatPart) length() int { return c.len }
func (c concatPart) at(i int) rune {
	ll := c.left.length()
	if i < ll {
		return c.left.at(i)
	}
	return c.right.at(i - ll)
}
func (c concatPart) slice(start, length int) part {
	ll := c.left.length()
	end := start + length
	switch {
	case end <= ll:
		return c.left.slice(start, length)
	case start >= ll:
		return c.right.slice(start-ll, length)
	default:
		leftLen := ll - start
		return concatPart{
			left:  c.left.slice(start, leftLen),
			right: c.right.slice(0, length-leftLen),
			len:   length,
		}
	}
}
func (c concatPart) writeTo(sb *strings.Builder) {
	c.left.writeTo(sb)
	c.right.writeTo(sb)
}
