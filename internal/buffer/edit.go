package buffer

import (
	"strings"

	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/history"
	"github.com/dshills/keystorm/internal/text/content"
	"github.com/dshills/keystorm/internal/text/line"
)

// Edit replaces the text in r with newText, the single primitive every
// higher-level transform.Transformation ultimately bottoms out in: it
// mutates contents, adjusts every named cursor set by the resulting
// cursor.Transformation, notifies adjust callbacks, and pushes an
// invertible history.Entry — atomically, per §5's "every transformation
// apply completes atomically before the next event is processed".
func (b *Buffer) Edit(r cursor.Range, newText string, description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r = r.Normalized()
	oldText := extractRange(b.contents, r)
	cursorsBefore := b.cursors[ActiveCursors]

	next, xf := applyRawEdit(b.contents, r, newText)
	b.contents = next
	if b.contents.LineCount() == 0 {
		b.contents = content.Empty
	}

	for name, cs := range b.cursors {
		b.cursors[name] = cs.Apply(xf)
	}
	if b.contents.LineCount() > 0 && b.cursors[ActiveCursors].Len() == 0 {
		b.cursors[ActiveCursors] = cursor.Single(cursor.Position{})
	}

	for _, fn := range b.adjustCallbacks {
		fn(xf)
	}

	entry := history.NewEntry(r, oldText, newText).WithCursors(cursorsBefore, b.cursors[ActiveCursors])
	b.history.Record(entry, description)
	return nil
}

// Undo reverts the most recent history record, restoring the cursor
// set that was active before it was recorded.
func (b *Buffer) Undo() error {
	b.mu.Lock()
	rec, err := b.history.Undo()
	b.mu.Unlock()
	if err != nil {
		return err
	}
	return b.replay(rec)
}

// Redo reapplies the most recently undone history record.
func (b *Buffer) Redo() error {
	b.mu.Lock()
	rec, err := b.history.Redo()
	b.mu.Unlock()
	if err != nil {
		return err
	}
	return b.replay(rec)
}

// replay applies every entry in rec directly, bypassing Edit's own
// history push (undo/redo must not themselves generate new undo
// records) while still routing cursor adjustment through the same
// applyRawEdit/callback path as a normal edit.
func (b *Buffer) replay(rec history.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range rec.Entries {
		next, xf := applyRawEdit(b.contents, e.Range, e.NewText)
		b.contents = next
		if b.contents.LineCount() == 0 {
			b.contents = content.Empty
		}
		for name, cs := range b.cursors {
			b.cursors[name] = cs.Apply(xf)
		}
		for _, fn := range b.adjustCallbacks {
			fn(xf)
		}
	}
	if len(rec.Entries) > 0 {
		last := rec.Entries[len(rec.Entries)-1]
		if last.CursorsAfter.Len() > 0 {
			b.cursors[ActiveCursors] = last.CursorsAfter
		}
	}
	return nil
}

// extractRange returns the text covered by r, joined with '\n' across
// line boundaries.
func extractRange(c content.Contents, r cursor.Range) string {
	if r.Start == r.End {
		return ""
	}
	if r.Start.Line == r.End.Line {
		return sliceLine(c, r.Start.Line, r.Start.Column, r.End.Column)
	}
	var sb strings.Builder
	sb.WriteString(sliceLine(c, r.Start.Line, r.Start.Column, c.At(r.Start.Line).Len()))
	for l := r.Start.Line + 1; l < r.End.Line; l++ {
		sb.WriteByte('\n')
		sb.WriteString(c.At(l).Text())
	}
	sb.WriteByte('\n')
	sb.WriteString(sliceLine(c, r.End.Line, 0, r.End.Column))
	return sb.String()
}

func sliceLine(c content.Contents, row, start, end int) string {
	if row < 0 || row >= c.LineCount() {
		return ""
	}
	l := c.At(row)
	if start < 0 {
		start = 0
	}
	if end > l.Len() {
		end = l.Len()
	}
	if start >= end {
		return ""
	}
	runes := []rune(l.Text())
	return string(runes[start:end])
}

// applyRawEdit deletes r's current contents (if non-empty) and then
// inserts newText (if non-empty) at r.Start, composing the individual
// content.Contents transformations produced along the way. It never
// touches history or cursor sets directly — callers (Edit, replay)
// own that.
func applyRawEdit(c content.Contents, r cursor.Range, newText string) (content.Contents, cursor.Transformation) {
	var steps []cursor.Transformation

	if r.Start != r.End {
		c, steps = deleteRange(c, r, steps)
	}
	if newText != "" {
		c, steps = insertText(c, r.Start, newText, steps)
	}
	return c, cursor.Compose(steps...)
}

func deleteRange(c content.Contents, r cursor.Range, steps []cursor.Transformation) (content.Contents, []cursor.Transformation) {
	if r.Start.Line == r.End.Line {
		next, xf := c.DeleteChars(r.Start.Line, r.Start.Column, r.End.Column-r.Start.Column)
		return next, append(steps, xf)
	}

	startLen := c.At(r.Start.Line).Len()
	c, xf1 := c.DeleteChars(r.Start.Line, r.Start.Column, startLen-r.Start.Column)
	steps = append(steps, xf1)

	if r.End.Line > r.Start.Line+1 {
		var xf2 cursor.Transformation
		c, xf2 = c.EraseLines(r.Start.Line+1, r.End.Line)
		steps = append(steps, xf2)
	}
	// After the erase above, the former End.Line now sits at
	// Start.Line+1 (or is unchanged if End.Line == Start.Line+1).
	c, xf3 := c.DeleteChars(r.Start.Line+1, 0, r.End.Column)
	steps = append(steps, xf3)

	c, xf4 := c.FoldNextLine(r.Start.Line)
	steps = append(steps, xf4)
	return c, steps
}

func insertText(c content.Contents, at cursor.Position, text string, steps []cursor.Transformation) (content.Contents, []cursor.Transformation) {
	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		next, xf := c.InsertChars(at.Line, at.Column, parts[0])
		return next, append(steps, xf)
	}

	c, xfSplit := c.SplitLine(at.Line, at.Column)
	steps = append(steps, xfSplit)

	c, xfFirst := c.InsertChars(at.Line, at.Column, parts[0])
	steps = append(steps, xfFirst)

	middle := parts[1 : len(parts)-1]
	tailRow := at.Line + 1
	if len(middle) > 0 {
		lines := make([]line.Line, len(middle))
		for i, p := range middle {
			lines[i] = line.NewString(p)
		}
		var xfMiddle cursor.Transformation
		c, xfMiddle = c.InsertLines(at.Line+1, lines)
		steps = append(steps, xfMiddle)
		tailRow += len(middle)
	}

	last := parts[len(parts)-1]
	if last != "" {
		var xfLast cursor.Transformation
		c, xfLast = c.InsertChars(tailRow, 0, last)
		steps = append(steps, xfLast)
	}
	return c, steps
}
