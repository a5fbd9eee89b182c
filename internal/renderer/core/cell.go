package core

// Cell is one addressable column of the terminal grid: a rune, the
// number of columns it occupies, and the style painted under it. Wide
// runes (CJK, emoji) occupy a leading Cell with Width 2 followed by a
// ContinuationCell that the backend must not paint over independently.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell is a blank, unstyled, single-width cell — the grid's rest state.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// ContinuationCell marks the trailing column of a wide rune. Backends
// skip rendering it directly; it exists so buffer indexing stays
// one-cell-per-column.
func ContinuationCell() Cell {
	return Cell{Rune: 0, Width: 0, Style: DefaultStyle()}
}

// NewCell builds an unstyled cell for r, sized by its display width.
func NewCell(r rune) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: DefaultStyle()}
}

// NewStyledCell builds a cell for r with the given style.
func NewStyledCell(r rune, s Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: s}
}

// Equals reports value equality.
func (c Cell) Equals(o Cell) bool {
	return c.Rune == o.Rune && c.Width == o.Width && c.Style.Equals(o.Style)
}

// IsContinuation reports whether c is the trailing column of a wide rune.
func (c Cell) IsContinuation() bool { return c.Width == 0 }
