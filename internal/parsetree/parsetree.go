// Package parsetree implements the incremental, line-keyed syntax
// tree cache: a TreeParser plugin emits a stream of Push/Pop/
// SetFirstChildStyle actions per line, memoized the same way
// internal/renderer/highlight.Provider memoizes per-line tokens, and
// folded into a Node tree carrying the depth-based styling and
// content-addressed hashes the data model names (§3, §4.4).
package parsetree

import (
	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/text/style"
)

// State is the opaque parser state carried across a line boundary,
// the parse-tree analog of highlight.LexerState.
type State interface {
	// Equal reports whether two states are interchangeable for cache
	// validation purposes.
	Equal(State) bool
}

// ZeroState is the parser's state before any line has been parsed.
var ZeroState State = zeroState{}

type zeroState struct{}

func (zeroState) Equal(o State) bool { _, ok := o.(zeroState); return ok }

// ActionKind is the closed set of structural events a TreeParser can
// emit for one line.
type ActionKind int

const (
	// Push opens a new child node under the current top of stack.
	Push ActionKind = iota
	// Pop closes the current top-of-stack node.
	Pop
	// SetFirstChildStyle marks the most recently pushed still-open
	// child with a style, driving the parse-tree's depth coloring
	// without the parser needing to know about the palette itself.
	SetFirstChildStyle
)

// Action is one structural event within a line's parse.
type Action struct {
	Kind  ActionKind
	Name  string    // node label, meaningful for Push
	Style style.Set // meaningful for SetFirstChildStyle
}

// TreeParser is the pluggable language collaborator: given a line and
// the state left by the previous line, it returns the structural
// actions for this line and the state to carry into the next one.
type TreeParser interface {
	ParseLine(text string, prevState State) ([]Action, State)
}

// Node is one syntax-tree node: a line-and-column range, its children,
// any style modifiers driven by SetFirstChildStyle, its nesting depth,
// and the content-addressed hashes used to detect subtree reuse across
// edits.
type Node struct {
	Range        cursor.Range
	Children     []*Node
	Modifiers    style.Set
	Depth        int
	ChildrenHash uint64
	NodeHash     uint64
}

// cachedLine holds one line's memoized parse: its exact text (for
// cache validation), the parser state it started from, the actions it
// produced, and the state it left for the next line.
type cachedLine struct {
	text      string
	startState State
	actions   []Action
	endState  State
}

// Cache is the line-keyed incremental parse cache. It never re-parses
// a line whose text and starting state are unchanged, and invalidation
// only needs to touch the edited line onward — exactly the discipline
// of highlight.Provider's lineCache/stateCache pair, generalized from
// tokens to structural actions.
type Cache struct {
	parser TreeParser
	lines  map[int]*cachedLine
}

// NewCache returns a Cache driven by parser.
func NewCache(parser TreeParser) *Cache {
	return &Cache{parser: parser, lines: make(map[int]*cachedLine)}
}

// SetParser swaps the active TreeParser and drops every cached line,
// mirroring Provider.SetHighlighter.
func (c *Cache) SetParser(p TreeParser) {
	c.parser = p
	c.lines = make(map[int]*cachedLine)
}

// InvalidateFrom drops every cached line at or after lineIdx: an edit
// on a line can change the state it hands to every line after it.
func (c *Cache) InvalidateFrom(lineIdx int) {
	for l := range c.lines {
		if l >= lineIdx {
			delete(c.lines, l)
		}
	}
}

// InvalidateAll drops the entire cache.
func (c *Cache) InvalidateAll() {
	c.lines = make(map[int]*cachedLine)
}

// actionsForLine returns the memoized (or freshly computed) actions
// and end state for line lineIdx with content text, given the state
// its predecessor line ended in.
func (c *Cache) actionsForLine(lineIdx int, text string, startState State) ([]Action, State) {
	if cached, ok := c.lines[lineIdx]; ok && cached.text == text && cached.startState.Equal(startState) {
		return cached.actions, cached.endState
	}
	actions, endState := c.parser.ParseLine(text, startState)
	c.lines[lineIdx] = &cachedLine{text: text, startState: startState, actions: actions, endState: endState}
	return actions, endState
}

// LineSource is the minimal buffer view Build needs.
type LineSource interface {
	LineCount() int
	LineText(i int) string
}

// Build parses every line via the cache and folds the resulting
// action stream into a Node tree rooted at an implicit whole-buffer
// node. Re-building after a single-line edit only re-parses lines
// whose cache entry was invalidated; unaffected lines return their
// memoized actions in O(1).
func (c *Cache) Build(src LineSource) *Node {
	root := &Node{Depth: 0}
	stack := []*Node{root}
	state := ZeroState

	for i := 0; i < src.LineCount(); i++ {
		text := src.LineText(i)
		actions, next := c.actionsForLine(i, text, state)
		state = next

		for _, a := range actions {
			switch a.Kind {
			case Push:
				top := stack[len(stack)-1]
				child := &Node{
					Range: cursor.Range{Start: cursor.Position{Line: i}},
					Depth: top.Depth + 1,
				}
				top.Children = append(top.Children, child)
				stack = append(stack, child)
			case Pop:
				if len(stack) <= 1 {
					continue
				}
				closing := stack[len(stack)-1]
				closing.Range.End = cursor.Position{Line: i, Column: len(text)}
				stack = stack[:len(stack)-1]
			case SetFirstChildStyle:
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					if len(top.Children) > 0 {
						top.Children[0].Modifiers = a.Style
					}
				}
			}
		}
	}
	// Any nodes left open at end of input close at the last line.
	last := src.LineCount() - 1
	for len(stack) > 1 {
		n := stack[len(stack)-1]
		if last >= 0 {
			n.Range.End = cursor.Position{Line: last, Column: len(src.LineText(last))}
		}
		stack = stack[:len(stack)-1]
	}
	root.Range.End = cursor.Position{Line: last, Column: maxColOf(src, last)}
	computeHashes(root)
	return root
}

func maxColOf(src LineSource, line int) int {
	if line < 0 {
		return 0
	}
	return len(src.LineText(line))
}

// computeHashes fills ChildrenHash/NodeHash bottom-up using the
// children_hash = XOR(position_hash_mix(child_hash)) rule.
func computeHashes(n *Node) uint64 {
	var acc uint64
	for i, child := range n.Children {
		childHash := computeHashes(child)
		acc ^= style.HashMix(childHash, i)
	}
	n.ChildrenHash = acc
	n.NodeHash = style.HashMix(acc, n.Depth)
	return n.NodeHash
}

// Simplify collapses chains of single-child nodes into their child,
// the way a caller collapses "grouping" wrapper nodes it doesn't care
// about when walking the tree for structural motions.
func Simplify(n *Node) *Node {
	for len(n.Children) == 1 && n.Modifiers.IsPlain() {
		n = n.Children[0]
	}
	simplified := *n
	simplified.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		simplified.Children[i] = Simplify(c)
	}
	return &simplified
}

// Path locates an ancestor chain from root down to a node containing
// pos, root first.
func Path(root *Node, pos cursor.Position) []*Node {
	path := []*Node{root}
	current := root
	for {
		found := false
		for _, child := range current.Children {
			if !pos.Less(child.Range.Start) && pos.Less(child.Range.End) {
				path = append(path, child)
				current = child
				found = true
				break
			}
		}
		if !found {
			return path
		}
	}
}

// ZoomOut returns the parent of the deepest node in path, or path[0]
// (the root) if path has no parent to zoom out to — the Structure::Tree
// "select enclosing node" motion.
func ZoomOut(path []*Node) *Node {
	if len(path) <= 1 {
		return path[0]
	}
	return path[len(path)-2]
}
