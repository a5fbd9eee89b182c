package parsetree

import (
	"strings"
	"testing"

	"github.com/dshills/keystorm/internal/text/style"
)

// braceParser treats '{' as Push and '}' as Pop, one action per
// matching character, with no persisted state across lines.
type braceParser struct{ parses int }

func (b *braceParser) ParseLine(text string, prev State) ([]Action, State) {
	b.parses++
	var actions []Action
	for _, r := range text {
		switch r {
		case '{':
			actions = append(actions, Action{Kind: Push, Name: "block"})
		case '}':
			actions = append(actions, Action{Kind: Pop})
		}
	}
	return actions, ZeroState
}

type lines []string

func (l lines) LineCount() int         { return len(l) }
func (l lines) LineText(i int) string  { return l[i] }

func TestBuildNestsPushPop(t *testing.T) {
	p := &braceParser{}
	c := NewCache(p)
	src := lines(strings.Split("a {\nb {\nc }\nd }", "\n"))
	root := c.Build(src)
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}
	outer := root.Children[0]
	if outer.Depth != 1 {
		t.Errorf("outer.Depth = %d, want 1", outer.Depth)
	}
	if len(outer.Children) != 1 {
		t.Fatalf("outer children = %d, want 1", len(outer.Children))
	}
	inner := outer.Children[0]
	if inner.Depth != 2 {
		t.Errorf("inner.Depth = %d, want 2", inner.Depth)
	}
}

func TestBuildIsMemoizedAcrossUnrelatedRebuilds(t *testing.T) {
	p := &braceParser{}
	c := NewCache(p)
	src := lines(strings.Split("{\n}", "\n"))
	c.Build(src)
	firstParses := p.parses
	c.Build(src)
	if p.parses != firstParses {
		t.Errorf("second Build re-parsed %d lines, want 0 (fully cached)", p.parses-firstParses)
	}
}

func TestInvalidateFromForcesReparseOfLaterLines(t *testing.T) {
	p := &braceParser{}
	c := NewCache(p)
	src := lines(strings.Split("{\n}", "\n"))
	c.Build(src)
	c.InvalidateFrom(1)
	before := p.parses
	c.Build(src)
	if p.parses != before+1 {
		t.Errorf("expected exactly line 1 to re-parse, got %d new parses", p.parses-before)
	}
}

func TestSetFirstChildStyleTagsMostRecentChild(t *testing.T) {
	p := &stylingParser{}
	c := NewCache(p)
	src := lines([]string{"x"})
	root := c.Build(src)
	if len(root.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(root.Children))
	}
	if root.Children[0].Modifiers.IsPlain() {
		t.Error("expected the pushed child to carry the SetFirstChildStyle style")
	}
}

type stylingParser struct{}

func (stylingParser) ParseLine(text string, prev State) ([]Action, State) {
	return []Action{
		{Kind: Push, Name: "leaf"},
		{Kind: SetFirstChildStyle, Style: style.Plain.WithForeground(style.Red)},
	}, ZeroState
}

func TestZoomOutReturnsParent(t *testing.T) {
	p := &braceParser{}
	c := NewCache(p)
	src := lines(strings.Split("{\n{\n}\n}", "\n"))
	root := c.Build(src)
	path := Path(root, root.Children[0].Children[0].Range.Start)
	if len(path) < 2 {
		t.Fatalf("expected a non-trivial path, got %d nodes", len(path))
	}
	parent := ZoomOut(path)
	if parent != path[len(path)-2] {
		t.Error("ZoomOut should return the second-to-last path element")
	}
}
