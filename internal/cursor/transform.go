package cursor

// Transformation is a closed sum type describing how buffer positions
// must be adjusted after a content edit — the CursorTransformation of
// the data model. It generalizes TransformOffset/TransformSelection
// from internal/engine/cursor/transform.go from flat byte offsets to
// (line, column) positions, and adds line-granularity variants
// (split/fold/erase/shift/permute) the line-tree model needs that a
// flat rope never did.
type Transformation struct {
	adj adjustment
}

// adjustment is unexported so Transformation stays a closed set: only
// this file may add a variant.
type adjustment interface {
	apply(Position) Position
}

// Apply adjusts a single position across the transformation.
func (t Transformation) Apply(p Position) Position {
	if t.adj == nil {
		return p
	}
	return t.adj.apply(p)
}

// Identity is the no-op transformation.
func Identity() Transformation { return Transformation{} }

// Compose folds a list of transformations left to right, matching P1:
// apply(Compose(m1..mn), p) == mn(...m1(p)).
func Compose(ts ...Transformation) Transformation {
	filtered := ts[:0]
	for _, t := range ts {
		if t.adj != nil {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return Identity()
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return Transformation{adj: composeAdj{steps: append([]Transformation{}, filtered...)}}
}

type composeAdj struct{ steps []Transformation }

func (c composeAdj) apply(p Position) Position {
	for _, s := range c.steps {
		p = s.Apply(p)
	}
	return p
}

// ShiftColumns adjusts positions on the given row: those at or past
// col move by delta columns. Used for single-line insert/delete.
func ShiftColumns(row, col, delta int) Transformation {
	return Transformation{adj: shiftColumnsAdj{row: row, col: col, delta: delta}}
}

type shiftColumnsAdj struct{ row, col, delta int }

func (s shiftColumnsAdj) apply(p Position) Position {
	if p.Line != s.row || p.Column < s.col {
		return p
	}
	p.Column += s.delta
	if p.Column < s.col {
		p.Column = s.col
	}
	return p
}

// SplitLine adjusts positions after a line split at (row, col):
// columns >= col on row move to row+1 re-based at col; every line
// after row shifts down by one.
func SplitLine(row, col int) Transformation {
	return Transformation{adj: splitLineAdj{row: row, col: col}}
}

type splitLineAdj struct{ row, col int }

func (s splitLineAdj) apply(p Position) Position {
	switch {
	case p.Line == s.row && p.Column >= s.col:
		return Position{Line: s.row + 1, Column: p.Column - s.col}
	case p.Line > s.row:
		return Position{Line: p.Line + 1, Column: p.Column}
	default:
		return p
	}
}

// FoldLine adjusts positions after row+1 is joined onto row at
// joinCol: positions on row+1 rebase onto row past joinCol; every
// later line shifts up by one. The inverse of SplitLine(row, joinCol).
func FoldLine(row, joinCol int) Transformation {
	return Transformation{adj: foldLineAdj{row: row, joinCol: joinCol}}
}

type foldLineAdj struct{ row, joinCol int }

func (f foldLineAdj) apply(p Position) Position {
	switch {
	case p.Line == f.row+1:
		return Position{Line: f.row, Column: p.Column + f.joinCol}
	case p.Line > f.row+1:
		return Position{Line: p.Line - 1, Column: p.Column}
	default:
		return p
	}
}

// EraseLines adjusts positions after [start, start+count) lines are
// removed: positions inside the range collapse to (start, 0);
// positions after shift up by count.
func EraseLines(start, count int) Transformation {
	return Transformation{adj: eraseLinesAdj{start: start, count: count}}
}

type eraseLinesAdj struct{ start, count int }

func (e eraseLinesAdj) apply(p Position) Position {
	switch {
	case p.Line < e.start:
		return p
	case p.Line < e.start+e.count:
		return Position{Line: e.start, Column: 0}
	default:
		return Position{Line: p.Line - e.count, Column: p.Column}
	}
}

// ShiftLines adjusts positions after count lines are inserted at pos:
// positions at or after pos shift down by count.
func ShiftLines(pos, count int) Transformation {
	return Transformation{adj: shiftLinesAdj{pos: pos, count: count}}
}

type shiftLinesAdj struct{ pos, count int }

func (s shiftLinesAdj) apply(p Position) Position {
	if p.Line < s.pos {
		return p
	}
	return Position{Line: p.Line + s.count, Column: p.Column}
}

// Permute adjusts positions after lines [start, start+len(perm)) are
// reordered such that new index i holds the line that was at old
// (relative) index perm[i]. A cursor resident on an old line tracks
// that line's content to its new index.
func Permute(start int, perm []int) Transformation {
	inverse := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		inverse[oldIdx] = newIdx
	}
	return Transformation{adj: permuteAdj{start: start, inverse: inverse}}
}

type permuteAdj struct {
	start   int
	inverse []int
}

func (pm permuteAdj) apply(p Position) Position {
	rel := p.Line - pm.start
	if rel < 0 || rel >= len(pm.inverse) {
		return p
	}
	return Position{Line: pm.start + pm.inverse[rel], Column: p.Column}
}
