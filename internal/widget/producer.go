package widget

// Rect is a terminal-cell rectangle: (X, Y) top-left, in cells.
type Rect struct {
	X, Y, Width, Height int
}

// Options configures how a tree's output producer renders (§3
// "create_output_producer(options)").
type Options struct {
	Width, Height   int
	ShowLineNumbers bool
}

// LeafArea pairs a Leaf with the screen area it was assigned by
// Layout.
type LeafArea struct {
	Leaf Leaf
	Area Rect
}

// Layout distributes area across the tree's leaves: an HSplit divides
// area.Height evenly across its children (any remainder rows go to
// the last child so total height is preserved exactly), a VSplit does
// the same across area.Width.
func Layout(n Node, area Rect) []LeafArea {
	switch p := n.part.(type) {
	case Leaf:
		return []LeafArea{{Leaf: p, Area: area}}
	case HSplit:
		return layoutBands(p.Children, area, true)
	case VSplit:
		return layoutBands(p.Children, area, false)
	default:
		return nil
	}
}

func layoutBands(children []Node, area Rect, horizontal bool) []LeafArea {
	if len(children) == 0 {
		return nil
	}
	total := area.Height
	if !horizontal {
		total = area.Width
	}
	base := total / len(children)
	remainder := total - base*len(children)

	var out []LeafArea
	offset := 0
	for i, c := range children {
		size := base
		if i == len(children)-1 {
			size += remainder
		}
		var band Rect
		if horizontal {
			band = Rect{X: area.X, Y: area.Y + offset, Width: area.Width, Height: size}
		} else {
			band = Rect{X: area.X + offset, Y: area.Y, Width: size, Height: area.Height}
		}
		out = append(out, Layout(c, band)...)
		offset += size
	}
	return out
}

// RenderedLeaf is one leaf's rendered viewport: plain text lines
// clipped to its assigned area, top-of-buffer anchored. A fuller
// renderer (scroll position, syntax styling) composes on top of this;
// this producer only owns geometry and line selection.
type RenderedLeaf struct {
	Area  Rect
	Lines []string
}

// OutputProducer renders every leaf of a widget tree against a fixed
// viewport, the closed-tag-type replacement for the OutputProducer
// virtual base class named in §9.
type OutputProducer struct {
	root Node
	opts Options
}

// CreateOutputProducer returns a producer bound to n and opts (§3).
func CreateOutputProducer(n Node, opts Options) OutputProducer {
	return OutputProducer{root: n, opts: opts}
}

// Produce renders every leaf's viewport.
func (p OutputProducer) Produce() []RenderedLeaf {
	areas := Layout(p.root, Rect{Width: p.opts.Width, Height: p.opts.Height})
	out := make([]RenderedLeaf, len(areas))
	for i, la := range areas {
		out[i] = RenderedLeaf{Area: la.Area, Lines: renderLeaf(la.Leaf, la.Area, p.opts)}
	}
	return out
}

func renderLeaf(l Leaf, area Rect, opts Options) []string {
	if l.Buffer == nil || area.Height <= 0 {
		return nil
	}
	contents := l.Buffer.Contents()
	n := contents.LineCount()
	if area.Height < n {
		n = area.Height
	}
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		text := contents.At(i).Text()
		if opts.ShowLineNumbers {
			text = lineNumberPrefix(i+1) + text
		}
		lines[i] = clipWidth(text, area.Width)
	}
	return lines
}

func lineNumberPrefix(n int) string {
	digits := [...]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}
	if n <= 0 {
		return "0 "
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return string(buf) + " "
}

func clipWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
