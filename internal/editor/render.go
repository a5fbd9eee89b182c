package editor

import (
	"github.com/dshills/keystorm/internal/buffer"
	"github.com/dshills/keystorm/internal/renderer/core"
	"github.com/dshills/keystorm/internal/widget"
)

// Render paints the current widget tree into the backend: every
// leaf's viewport is laid out for geometry only by widget.Layout, then
// repainted here cell-by-cell through the layout/highlight substrate
// so styling survives — bypassing widget.OutputProducer.Produce's
// plain-string output, which exists for callers that don't need
// styling.
func (e *Editor) Render() {
	e.mu.Lock()
	root := e.root
	e.mu.Unlock()

	if root.IsZero() {
		return
	}

	w, h := e.be.Size()
	statusRow := h - 1
	areas := widget.Layout(root, widget.Rect{Width: w, Height: statusRow})

	for _, la := range areas {
		e.renderLeaf(la)
	}

	e.renderStatusLine(w, statusRow)
	e.positionCursor(root)
	e.be.Show()
}

func (e *Editor) renderLeaf(la widget.LeafArea) {
	b := la.Leaf.Buffer
	if b == nil {
		return
	}
	c := b.Contents()
	for row := 0; row < la.Area.Height; row++ {
		bufLine := row
		screenY := la.Area.Y + row
		if bufLine >= c.LineCount() {
			e.clearRow(la.Area.X, screenY, la.Area.Width)
			continue
		}
		text := c.At(bufLine).Text()
		lay := e.layout.Layout(text, uint32(bufLine))
		spans := e.current.HighlightsForLine(uint32(bufLine))
		e.layout.ApplyStyles(lay, spans)

		cells := lay.CellsForRow(0)
		for col := 0; col < la.Area.Width; col++ {
			x := la.Area.X + col
			if col < len(cells) {
				e.be.SetCell(x, screenY, cells[col])
			} else {
				e.be.SetCell(x, screenY, core.EmptyCell())
			}
		}
	}
}

func (e *Editor) clearRow(x, y, width int) {
	for col := 0; col < width; col++ {
		e.be.SetCell(x+col, y, core.EmptyCell())
	}
}

func (e *Editor) renderStatusLine(w, row int) {
	text := e.StatusLine()
	r := []rune(text)
	style := core.DefaultStyle().Reverse()
	for col := 0; col < w; col++ {
		cell := core.NewStyledCell(' ', style)
		if col < len(r) {
			cell = core.NewStyledCell(r[col], style)
		}
		e.be.SetCell(col, row, cell)
	}
}

func (e *Editor) positionCursor(root widget.Node) {
	leaf, ok := root.ActiveLeaf()
	if !ok || leaf.Buffer == nil {
		return
	}
	areas := widget.Layout(root, widget.Rect{Width: 1 << 20, Height: 1 << 20})
	for _, la := range areas {
		if la.Leaf.Buffer != leaf.Buffer {
			continue
		}
		pos := primaryPos(la.Leaf.Buffer)
		e.be.ShowCursor(la.Area.X+pos.Column, la.Area.Y+pos.Line)
		return
	}
}

// InvalidateHighlights drops cached tokenization for a buffer's
// changed range (§4.7 step 5: "invalidate displays" after a
// buffer.Edit). Nothing in this package calls it; highlight state for
// the range is dropped only when a caller invokes it.
func (e *Editor) InvalidateHighlights(b *buffer.Buffer, fromLine, toLine int) {
	_ = b
	e.current.InvalidateLines(uint32(fromLine), uint32(toLine))
}
