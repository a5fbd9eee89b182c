package editor

import (
	"unicode"

	"github.com/dshills/keystorm/internal/buffer"
	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/transform"
)

// primaryPos returns the primary cursor's head position, or the zero
// position for an empty buffer.
func primaryPos(b *buffer.Buffer) cursor.Position {
	cs := b.ActiveCursorSet()
	if cs.Len() == 0 {
		return cursor.Position{}
	}
	return cs.Primary().Head
}

func setPrimaryPos(b *buffer.Buffer, pos cursor.Position) error {
	return b.SetActiveCursors(cursor.Single(pos))
}

func lineLen(b *buffer.Buffer, row int) int {
	c := b.Contents()
	if row < 0 || row >= c.LineCount() {
		return 0
	}
	return c.At(row).Len()
}

// moveMotion repositions the primary cursor by the extent
// transform.FindPartialRange finds for (s, dir, count), landing on
// whichever end of the range is away from the starting position.
func (e *Editor) moveMotion(b *buffer.Buffer, s transform.Structure, dir transform.Direction, count int) error {
	pos := primaryPos(b)
	rng, ok := transform.FindPartialRange(s, b.Contents(), pos, dir, count)
	if !ok {
		return nil
	}
	target := rng.End
	if dir == transform.Backward {
		target = rng.Start
	}
	return setPrimaryPos(b, target)
}

// deleteMotion deletes the extent transform.FindPartialRange finds for
// (s, dir, count) starting at the primary cursor.
func (e *Editor) deleteMotion(b *buffer.Buffer, s transform.Structure, dir transform.Direction, count int) error {
	pos := primaryPos(b)
	rng, ok := transform.FindPartialRange(s, b.Contents(), pos, dir, count)
	if !ok {
		return nil
	}
	return b.Edit(rng, "", "delete "+s.String())
}

func (e *Editor) deleteLine(b *buffer.Buffer, keepRegister bool) error {
	pos := primaryPos(b)
	c := b.Contents()
	if pos.Line < 0 || pos.Line >= c.LineCount() {
		return nil
	}
	if keepRegister {
		e.register = c.At(pos.Line).Text() + "\n"
	}
	start := cursor.Position{Line: pos.Line, Column: 0}
	var end cursor.Position
	if pos.Line+1 < c.LineCount() {
		end = cursor.Position{Line: pos.Line + 1, Column: 0}
	} else {
		end = cursor.Position{Line: pos.Line, Column: c.At(pos.Line).Len()}
	}
	return b.Edit(cursor.Range{Start: start, End: end}, "", "delete line")
}

func (e *Editor) yankLine(b *buffer.Buffer) {
	pos := primaryPos(b)
	c := b.Contents()
	if pos.Line < 0 || pos.Line >= c.LineCount() {
		return
	}
	e.register = c.At(pos.Line).Text() + "\n"
}

func (e *Editor) pasteRegister(b *buffer.Buffer) {
	if e.register == "" {
		return
	}
	e.insertAt(b, e.register)
}

func (e *Editor) insertAt(b *buffer.Buffer, text string) {
	pos := primaryPos(b)
	if err := b.Edit(cursor.Range{Start: pos, End: pos}, text, "insert"); err != nil {
		return
	}
	// Buffer.Edit already advances every cursor by the composed
	// cursor.Transformation, so re-reading the primary position picks
	// up the post-insert location without recomputing it by hand.
}

func (e *Editor) moveToLineStart(b *buffer.Buffer, firstNonBlank bool) error {
	pos := primaryPos(b)
	col := 0
	if firstNonBlank {
		text := []rune(lineText(b, pos.Line))
		for col < len(text) && unicode.IsSpace(text[col]) {
			col++
		}
	}
	return setPrimaryPos(b, cursor.Position{Line: pos.Line, Column: col})
}

func (e *Editor) moveToLineEnd(b *buffer.Buffer) error {
	pos := primaryPos(b)
	return setPrimaryPos(b, cursor.Position{Line: pos.Line, Column: lineLen(b, pos.Line)})
}

// moveVertical moves the primary cursor delta lines up or down,
// clamping the column to the target line's length. Vertical motion
// has no Structure of its own in internal/transform (its Structures
// address horizontal or tree-shaped units); it is plain line-index
// arithmetic against the buffer's content, done here rather than
// pushed into transform for a single caller.
func (e *Editor) moveVertical(b *buffer.Buffer, delta int) error {
	pos := primaryPos(b)
	c := b.Contents()
	target := pos.Line + delta
	if target < 0 {
		target = 0
	}
	if n := c.LineCount(); target >= n {
		target = n - 1
	}
	if target < 0 {
		target = 0
	}
	col := pos.Column
	if l := lineLen(b, target); col > l {
		col = l
	}
	return setPrimaryPos(b, cursor.Position{Line: target, Column: col})
}

func (e *Editor) moveToLine(b *buffer.Buffer, n int) error {
	if n <= 0 {
		n = b.Contents().LineCount()
	}
	target := n - 1
	if target < 0 {
		target = 0
	}
	if max := b.Contents().LineCount() - 1; target > max {
		target = max
	}
	return setPrimaryPos(b, cursor.Position{Line: target, Column: 0})
}

func lineText(b *buffer.Buffer, row int) string {
	c := b.Contents()
	if row < 0 || row >= c.LineCount() {
		return ""
	}
	return c.At(row).Text()
}
