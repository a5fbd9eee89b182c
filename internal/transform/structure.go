package transform

import (
	"regexp"

	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/text/line"
)

// Structure is the closed set of addressable text units a
// Transformation can operate on. It is a plain enum rather than an
// interface sum type because, unlike Transformation, every member is
// a leaf value with no payload of its own — closure is enforced by
// keeping the const block the only place new members can be added.
type Structure int

const (
	Char Structure = iota
	Word
	Line
	Page
	Search
	Mark
	Cursor
	Tree
	Buffer
	Symbol
	Paragraph
)

func (s Structure) String() string {
	switch s {
	case Char:
		return "char"
	case Word:
		return "word"
	case Line:
		return "line"
	case Page:
		return "page"
	case Search:
		return "search"
	case Mark:
		return "mark"
	case Cursor:
		return "cursor"
	case Tree:
		return "tree"
	case Buffer:
		return "buffer"
	case Symbol:
		return "symbol"
	case Paragraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Direction is a linear motion direction.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Source is the read-only view over buffer content that structural
// motions need. buffer.Buffer satisfies it; tests use a bare
// content.Contents.
type Source interface {
	LineCount() int
	At(i int) line.Line
}

var wordBoundary = regexp.MustCompile(`\w+|[^\w\s]+`)

// FindPartialRange locates the extent of one Structure unit starting
// at pos, moving count repetitions in dir. It returns ok=false for
// structures that need collaborator state this package doesn't carry
// (Search needs the buffer's last-search query, Mark needs the mark
// table, Cursor needs the active cursor.Set, Tree needs a parsetree.Tree,
// Symbol needs a language-aware index) — those are resolved by the
// buffer/predictor/parsetree collaborators, which call back into this
// function only for the structures it does own.
func FindPartialRange(s Structure, src Source, pos cursor.Position, dir Direction, count int) (cursor.Range, bool) {
	if count <= 0 {
		count = 1
	}
	switch s {
	case Char:
		return findChar(src, pos, dir, count)
	case Word:
		return findWord(src, pos, dir, count)
	case Line:
		return findLine(src, pos, dir, count)
	case Paragraph:
		return findParagraph(src, pos, dir, count)
	case Buffer:
		return findBuffer(src, pos, dir)
	case Page, Search, Mark, Cursor, Tree, Symbol:
		return cursor.Range{}, false
	default:
		return cursor.Range{}, false
	}
}

func clampLine(src Source, l int) int {
	if l < 0 {
		return 0
	}
	if n := src.LineCount(); l >= n {
		return n - 1
	}
	return l
}

func findChar(src Source, pos cursor.Position, dir Direction, count int) (cursor.Range, bool) {
	end := pos
	for i := 0; i < count; i++ {
		l := src.At(clampLine(src, end.Line))
		if dir == Forward {
			if end.Column < l.Len() {
				end.Column++
			} else if end.Line+1 < src.LineCount() {
				end.Line++
				end.Column = 0
			}
		} else {
			if end.Column > 0 {
				end.Column--
			} else if end.Line > 0 {
				end.Line--
				end.Column = src.At(end.Line).Len()
			}
		}
	}
	return orderedRange(pos, end, dir), true
}

func findWord(src Source, pos cursor.Position, dir Direction, count int) (cursor.Range, bool) {
	end := pos
	for i := 0; i < count; i++ {
		next, ok := nextWordBoundary(src, end, dir)
		if !ok {
			break
		}
		end = next
	}
	return orderedRange(pos, end, dir), true
}

func nextWordBoundary(src Source, pos cursor.Position, dir Direction) (cursor.Position, bool) {
	l := src.At(clampLine(src, pos.Line))
	text := l.Text()
	matches := wordBoundary.FindAllStringIndex(text, -1)
	runeIdx := func(byteIdx int) int { return len([]rune(text[:byteIdx])) }

	if dir == Forward {
		for _, m := range matches {
			start := runeIdx(m[0])
			if start > pos.Column {
				return cursor.Position{Line: pos.Line, Column: start}, true
			}
		}
		if pos.Line+1 < src.LineCount() {
			return cursor.Position{Line: pos.Line + 1, Column: 0}, true
		}
		return pos, false
	}
	for i := len(matches) - 1; i >= 0; i-- {
		start := runeIdx(matches[i][0])
		if start < pos.Column {
			return cursor.Position{Line: pos.Line, Column: start}, true
		}
	}
	if pos.Line > 0 {
		prev := src.At(pos.Line - 1)
		return cursor.Position{Line: pos.Line - 1, Column: prev.Len()}, true
	}
	return pos, false
}

func findLine(src Source, pos cursor.Position, dir Direction, count int) (cursor.Range, bool) {
	target := pos.Line
	if dir == Forward {
		target += count
	} else {
		target -= count
	}
	target = clampLine(src, target)
	start := cursor.Position{Line: pos.Line, Column: 0}
	end := cursor.Position{Line: target, Column: src.At(target).Len()}
	return orderedRange(start, end, dir), true
}

func findParagraph(src Source, pos cursor.Position, dir Direction, count int) (cursor.Range, bool) {
	ln := pos.Line
	for i := 0; i < count; i++ {
		ln = nextParagraphBoundary(src, ln, dir)
	}
	end := cursor.Position{Line: clampLine(src, ln), Column: 0}
	return orderedRange(pos, end, dir), true
}

func nextParagraphBoundary(src Source, from int, dir Direction) int {
	step := 1
	if dir == Backward {
		step = -1
	}
	l := from
	// Skip the current run of non-blank (or blank) lines, then land on
	// the first line of the opposite kind — a paragraph is a maximal
	// run of non-blank lines separated by blank lines.
	startBlank := src.At(clampLine(src, l)).Len() == 0
	for {
		l += step
		if l < 0 || l >= src.LineCount() {
			return clampLine(src, l)
		}
		if (src.At(l).Len() == 0) != startBlank {
			return l
		}
	}
}

func findBuffer(src Source, pos cursor.Position, dir Direction) (cursor.Range, bool) {
	last := src.LineCount() - 1
	if dir == Forward {
		return cursor.Range{Start: pos, End: cursor.Position{Line: last, Column: src.At(last).Len()}}, true
	}
	return cursor.Range{Start: cursor.Position{Line: 0, Column: 0}, End: pos}, true
}

func orderedRange(a, b cursor.Position, dir Direction) cursor.Range {
	if dir == Forward {
		return cursor.Range{Start: a, End: b}
	}
	return cursor.Range{Start: b, End: a}
}
