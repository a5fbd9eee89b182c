package widget

import (
	"testing"

	"github.com/dshills/keystorm/internal/buffer"
)

func leaves(n int) []Node {
	out := make([]Node, n)
	for i := range out {
		out[i] = NewLeaf(buffer.NewFromString("x"))
	}
	return out
}

func TestActiveLeafFollowsActiveIndex(t *testing.T) {
	children := leaves(3)
	root := NewHSplit(children, 1)
	got, ok := root.ActiveLeaf()
	if !ok {
		t.Fatal("expected an active leaf")
	}
	want, _ := children[1].AsLeaf()
	if got.Buffer != want.Buffer {
		t.Error("ActiveLeaf did not follow the HSplit's Active index")
	}
}

func TestCountLeavesCountsNestedTree(t *testing.T) {
	inner := NewHSplit(leaves(2), 0)
	root := NewVSplit([]Node{inner, NewLeaf(buffer.NewFromString("z"))}, 0)
	if got := CountLeaves(root); got != 3 {
		t.Errorf("CountLeaves = %d, want 3", got)
	}
}

func TestAdvanceWrapsAcrossFlatSplit(t *testing.T) {
	root := NewHSplit(leaves(3), 0)
	advanced := Advance(root, 1)
	split, _ := advanced.AsHSplit()
	if split.Active != 1 {
		t.Errorf("Active = %d, want 1", split.Active)
	}
	advanced = Advance(advanced, 2)
	split, _ = advanced.AsHSplit()
	if split.Active != 0 {
		t.Errorf("Active after wrap = %d, want 0", split.Active)
	}
}

func TestAdvanceCrossesIntoNestedSplit(t *testing.T) {
	l1, l2, l3 := NewLeaf(buffer.NewFromString("1")), NewLeaf(buffer.NewFromString("2")), NewLeaf(buffer.NewFromString("3"))
	inner := NewHSplit([]Node{l1, l2}, 0)
	root := NewVSplit([]Node{inner, l3}, 0)

	advanced := Advance(root, 2)
	active, ok := advanced.ActiveLeaf()
	if !ok {
		t.Fatal("expected an active leaf")
	}
	want, _ := l3.AsLeaf()
	if active.Buffer != want.Buffer {
		t.Error("expected Advance(2) to land on the third leaf")
	}
}

func TestMinLinesSumsHSplitAndMaxesVSplit(t *testing.T) {
	h := NewHSplit(leaves(2), 0)
	if got := MinLines(h); got != 2 {
		t.Errorf("MinLines(HSplit of 2 leaves) = %d, want 2", got)
	}
	v := NewVSplit(leaves(2), 0)
	if got := MinLines(v); got != 1 {
		t.Errorf("MinLines(VSplit of 2 leaves) = %d, want 1", got)
	}
}

func TestLayoutDividesHeightAcrossHSplitGivingRemainderToLast(t *testing.T) {
	root := NewHSplit(leaves(3), 0)
	areas := Layout(root, Rect{Width: 20, Height: 10})
	if len(areas) != 3 {
		t.Fatalf("len(areas) = %d, want 3", len(areas))
	}
	wantHeights := []int{3, 3, 4}
	wantY := []int{0, 3, 6}
	for i, a := range areas {
		if a.Area.Height != wantHeights[i] || a.Area.Y != wantY[i] {
			t.Errorf("areas[%d] = %+v, want height %d y %d", i, a.Area, wantHeights[i], wantY[i])
		}
		if a.Area.Width != 20 {
			t.Errorf("areas[%d].Width = %d, want 20", i, a.Area.Width)
		}
	}
}

func TestProduceRendersEachLeafsBufferText(t *testing.T) {
	root := NewHSplit([]Node{
		NewLeaf(buffer.NewFromString("a\nb")),
		NewLeaf(buffer.NewFromString("c")),
	}, 0)
	p := CreateOutputProducer(root, Options{Width: 10, Height: 4})
	rendered := p.Produce()
	if len(rendered) != 2 {
		t.Fatalf("len(rendered) = %d, want 2", len(rendered))
	}
	if got := rendered[0].Lines; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("rendered[0].Lines = %v, want [a b]", got)
	}
	if got := rendered[1].Lines; len(got) != 1 || got[0] != "c" {
		t.Errorf("rendered[1].Lines = %v, want [c]", got)
	}
}

func TestProduceClipsLinesToWidth(t *testing.T) {
	root := NewLeaf(buffer.NewFromString("hello world"))
	p := CreateOutputProducer(root, Options{Width: 5, Height: 1})
	rendered := p.Produce()
	if len(rendered) != 1 || rendered[0].Lines[0] != "hello" {
		t.Errorf("rendered = %v, want clipped to 'hello'", rendered)
	}
}
