// Package content implements BufferContents: a persistent B+ tree of
// buffer lines. It generalizes internal/engine/rope.Node's leaf/internal
// split-and-rebalance discipline from byte chunks up to whole Line
// values — same MinChildren/MaxChildren constants, same recursive
// split/concat/rebalance shape, different leaf payload.
package content

import (
	"sort"
	"strings"

	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/text/lazystring"
	"github.com/dshills/keystorm/internal/text/line"
)

// Tree structure constants, carried over unchanged from the rope's
// balancing discipline.
const (
	MinChildren    = 4
	MaxChildren    = 8
	MaxLinesPerLeaf = 4
)

// node is a persistent B+ tree node. Leaves (height == 0) hold lines
// directly; internal nodes hold child pointers plus per-child line
// counts for O(log n) line-index seeks.
type node struct {
	height uint8

	// leaf fields
	lines []line.Line

	// internal fields
	children []*node
	counts   []int // counts[i] = children[i].lineCount()
}

func newLeaf(lines []line.Line) *node {
	return &node{height: 0, lines: lines}
}

func newInternal(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	counts := make([]int, len(children))
	for i, c := range children {
		counts[i] = c.lineCount()
	}
	return &node{height: children[0].height + 1, children: children, counts: counts}
}

func (n *node) isLeaf() bool { return n.height == 0 }

func (n *node) lineCount() int {
	if n.isLeaf() {
		return len(n.lines)
	}
	total := 0
	for _, c := range n.counts {
		total += c
	}
	return total
}

func (n *node) at(i int) line.Line {
	if n.isLeaf() {
		return n.lines[i]
	}
	for ci, c := range n.children {
		if i < n.counts[ci] {
			return c.at(i)
		}
		i -= n.counts[ci]
	}
	panic("content: index out of range")
}

// replace returns a new tree with the line at i replaced.
func (n *node) replace(i int, l line.Line) *node {
	if n.isLeaf() {
		next := make([]line.Line, len(n.lines))
		copy(next, n.lines)
		next[i] = l
		return newLeaf(next)
	}
	children := make([]*node, len(n.children))
	copy(children, n.children)
	for ci, c := range n.children {
		if i < n.counts[ci] {
			children[ci] = c.replace(i, l)
			return newInternal(children)
		}
		i -= n.counts[ci]
	}
	panic("content: index out of range")
}

// splitAt splits the tree into [0,i) and [i,n).
func (n *node) splitAt(i int) (*node, *node) {
	if i <= 0 {
		return newLeaf(nil), n
	}
	if i >= n.lineCount() {
		return n, newLeaf(nil)
	}
	if n.isLeaf() {
		left := append([]line.Line{}, n.lines[:i]...)
		right := append([]line.Line{}, n.lines[i:]...)
		return newLeaf(left), newLeaf(right)
	}
	for ci, c := range n.children {
		if i < n.counts[ci] {
			cl, cr := c.splitAt(i)
			leftChildren := append(append([]*node{}, n.children[:ci]...), cl)
			rightChildren := append([]*node{cr}, n.children[ci+1:]...)
			return concatBalance(leftChildren), concatBalance(rightChildren)
		}
		if i == n.counts[ci] {
			leftChildren := append([]*node{}, n.children[:ci+1]...)
			rightChildren := append([]*node{}, n.children[ci+1:]...)
			return concatBalance(leftChildren), concatBalance(rightChildren)
		}
		i -= n.counts[ci]
	}
	panic("content: splitAt out of range")
}

// concatBalance builds a balanced internal node (or a single passthrough
// node) from a slice of children, splitting oversized runs the way
// rope.Node.concat rebalances after a split.
func concatBalance(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	if len(children) == 1 {
		return children[0]
	}
	// Flatten leaves that are too small into concatenated pairs, and
	// chunk internal runs into groups of at most MaxChildren.
	var groups []*node
	for len(children) > MaxChildren {
		groups = append(groups, newInternal(children[:MaxChildren]))
		children = children[MaxChildren:]
	}
	groups = append(groups, newInternal(children))
	if len(groups) == 1 {
		return groups[0]
	}
	return concatBalance(groups)
}

// concat joins two trees, rebalancing leaves smaller than MinChildren
// worth of lines into merged leaves.
func concat(a, b *node) *node {
	if a.lineCount() == 0 {
		return b
	}
	if b.lineCount() == 0 {
		return a
	}
	if a.isLeaf() && b.isLeaf() && len(a.lines)+len(b.lines) <= MaxLinesPerLeaf*2 {
		merged := append(append([]line.Line{}, a.lines...), b.lines...)
		return splitLeafLines(merged)
	}
	return concatBalance([]*node{a, b})
}

// splitLeafLines packs lines into one or more leaves of at most
// MaxLinesPerLeaf, wrapped in an internal node when more than one leaf
// results.
func splitLeafLines(lines []line.Line) *node {
	if len(lines) <= MaxLinesPerLeaf {
		return newLeaf(lines)
	}
	var leaves []*node
	for len(lines) > 0 {
		n := MaxLinesPerLeaf
		if n > len(lines) {
			n = len(lines)
		}
		leaves = append(leaves, newLeaf(lines[:n]))
		lines = lines[n:]
	}
	return concatBalance(leaves)
}

func (n *node) collect(out *[]line.Line) {
	if n.isLeaf() {
		*out = append(*out, n.lines...)
		return
	}
	for _, c := range n.children {
		c.collect(out)
	}
}

// Contents is the persistent line tree: BufferContents from the data
// model. All mutators return a new Contents and a CursorTransformation
// describing the position adjustment the edit implies, leaving the
// receiver untouched.
type Contents struct {
	root *node
}

// Empty is a Contents holding a single empty line, matching the
// invariant that a buffer always has at least one line.
var Empty = Contents{root: newLeaf([]line.Line{line.Empty})}

// FromLines builds Contents from an ordered slice of lines. An empty
// slice becomes a single empty line.
func FromLines(lines []line.Line) Contents {
	if len(lines) == 0 {
		return Empty
	}
	return Contents{root: splitLeafLines(append([]line.Line{}, lines...))}
}

// FromString splits s on '\n' into lines.
func FromString(s string) Contents {
	parts := strings.Split(s, "\n")
	lines := make([]line.Line, len(parts))
	for i, p := range parts {
		lines[i] = line.NewString(p)
	}
	return FromLines(lines)
}

// LineCount returns the number of lines.
func (c Contents) LineCount() int {
	if c.root == nil {
		return 1
	}
	return c.root.lineCount()
}

// At returns the line at index i.
func (c Contents) At(i int) line.Line {
	if c.root == nil {
		return line.Empty
	}
	return c.root.at(i)
}

// String materializes the full buffer text, lines joined by '\n'.
func (c Contents) String() string {
	var lines []line.Line
	if c.root != nil {
		c.root.collect(&lines)
	}
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.Text())
	}
	return sb.String()
}

// SetChar replaces the character at (row, col), preserving the style
// already in effect there. A single-character replace never shifts any
// position, so no CursorTransformation is returned.
func (c Contents) SetChar(row, col int, r rune) Contents {
	l := c.At(row)
	l = l.SetCharacter(col, r, l.StyleAt(col))
	return Contents{root: c.root.replace(row, l)}
}

// InsertChars inserts text into line row at column col, returning the
// updated contents and the CursorTransformation that shifts every
// position at or after (row, col) forward by len(text) columns.
func (c Contents) InsertChars(row, col int, text string) (Contents, cursor.Transformation) {
	newLine := c.At(row).InsertText(col, lazystring.FromString(text))
	next := Contents{root: c.root.replace(row, newLine)}
	shift := cursor.ShiftColumns(row, col, len([]rune(text)))
	return next, shift
}

// DeleteChars deletes count characters starting at (row, col).
func (c Contents) DeleteChars(row, col, count int) (Contents, cursor.Transformation) {
	l := c.At(row).DeleteRange(col, count)
	next := Contents{root: c.root.replace(row, l)}
	shift := cursor.ShiftColumns(row, col+count, -count)
	return next, shift
}

// SplitLine splits the line at (row, col) into two lines, pushing
// every subsequent line down by one and remapping positions on the
// split row's tail onto the new row. Mutates through replace/splitAt
// the same way InsertLines does, rather than collecting the whole
// tree into a flat slice and rebuilding it from scratch.
func (c Contents) SplitLine(row, col int) (Contents, cursor.Transformation) {
	before, after := c.At(row).SplitAt(col)
	withBefore := c.root.replace(row, before)
	left, right := withBefore.splitAt(row + 1)
	merged := concat(concat(left, newLeaf([]line.Line{after})), right)
	xf := cursor.SplitLine(row, col)
	return Contents{root: merged}, xf
}

// FoldNextLine merges the line after row into row, the inverse of
// SplitLine, remapping positions on the folded line by row's length.
// Mutates through replace/splitAt the same way EraseLines does.
func (c Contents) FoldNextLine(row int) (Contents, cursor.Transformation) {
	if row+1 >= c.LineCount() {
		return c, cursor.Identity()
	}
	joined := c.At(row).Join(c.At(row + 1))
	joinCol := c.At(row).Len()
	withJoined := c.root.replace(row, joined)
	left, rest := withJoined.splitAt(row + 1)
	_, right := rest.splitAt(1)
	merged := concat(left, right)
	xf := cursor.FoldLine(row, joinCol)
	return Contents{root: merged}, xf
}

// EraseLines removes the half-open line range [start, end).
func (c Contents) EraseLines(start, end int) (Contents, cursor.Transformation) {
	if end <= start {
		return c, cursor.Identity()
	}
	left, rest := c.root.splitAt(start)
	_, right := rest.splitAt(end - start)
	merged := concat(left, right)
	if merged.lineCount() == 0 {
		merged = newLeaf([]line.Line{line.Empty})
	}
	xf := cursor.EraseLines(start, end-start)
	return Contents{root: merged}, xf
}

// InsertLines inserts lines at index pos, shifting everything at or
// after pos down by len(lines).
func (c Contents) InsertLines(pos int, lines []line.Line) (Contents, cursor.Transformation) {
	left, right := c.root.splitAt(pos)
	middle := splitLeafLines(append([]line.Line{}, lines...))
	merged := concat(concat(left, middle), right)
	xf := cursor.ShiftLines(pos, len(lines))
	return Contents{root: merged}, xf
}

// Sort reorders lines in [start, end) by comparator cmp, returning the
// permutation as a CursorTransformation so cursors resident in the
// range track their line's content.
func (c Contents) Sort(start, end int, cmp func(a, b line.Line) bool) (Contents, cursor.Transformation) {
	if end <= start+1 {
		return c, cursor.Identity()
	}
	var all []line.Line
	c.root.collect(&all)
	segment := append([]line.Line{}, all[start:end]...)
	perm := make([]int, len(segment))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool { return cmp(segment[perm[i]], segment[perm[j]]) })
	sorted := make([]line.Line, len(segment))
	for i, p := range perm {
		sorted[i] = segment[p]
	}
	next := make([]line.Line, 0, len(all))
	next = append(next, all[:start]...)
	next = append(next, sorted...)
	next = append(next, all[end:]...)
	xf := cursor.Permute(start, perm)
	return Contents{root: splitLeafLines(next)}, xf
}
