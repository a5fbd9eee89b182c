package style

import (
	"hash/fnv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DepthPalette produces the deterministic depth-to-style mapping the
// parse-tree cache uses to color nested constructs (§4.4 Styling): a
// rotating hue cycle with a perceptually even lightness ramp, plus bold
// applied every boldEvery nestings. Colors are generated in Lab space
// with go-colorful so adjacent depths stay visually distinct even for
// long rotations, rather than wrapping a raw HSV hue that can produce
// muddy neighbors at the seams.
type DepthPalette struct {
	base      colorful.Color
	spread    float64
	steps     int
	boldEvery int
}

// NewDepthPalette builds a palette rotating through steps distinct hues
// around base, applying bold every boldEvery levels of nesting.
// boldEvery <= 0 disables the bold rotation.
func NewDepthPalette(base Color, steps, boldEvery int) DepthPalette {
	if steps <= 0 {
		steps = 8
	}
	r, g, b := base.R, base.G, base.B
	bc, ok := colorful.MakeColor(rgbColor{r, g, b})
	if !ok {
		bc = colorful.Hsv(200, 0.55, 0.85)
	}
	return DepthPalette{base: bc, spread: 360.0 / float64(steps), steps: steps, boldEvery: boldEvery}
}

// rgbColor adapts our Color into image/color.Color for go-colorful.
type rgbColor struct{ r, g, b uint8 }

func (c rgbColor) RGBA() (r, g, b, a uint32) {
	r = uint32(c.r) * 0x101
	g = uint32(c.g) * 0x101
	b = uint32(c.b) * 0x101
	a = 0xffff
	return
}

// StyleForDepth returns the deterministic style for a nesting depth.
func (p DepthPalette) StyleForDepth(depth int) Set {
	if depth < 0 {
		depth = 0
	}
	h, s, v := p.base.Hsv()
	h += p.spread * float64(depth%p.steps)
	for h >= 360 {
		h -= 360
	}
	// Lightness ramps gently with depth so deep nesting isn't uniform.
	v -= 0.03 * float64((depth/p.steps)%4)
	if v < 0.35 {
		v = 0.35
	}
	c := colorful.Hsv(h, s, v)
	r, g, b := c.RGB255()
	set := Set{Foreground: RGB(r, g, b), Background: Default}
	if p.boldEvery > 0 && depth > 0 && depth%p.boldEvery == 0 {
		set = set.With(AttrBold)
	}
	return set
}

// HashMix folds a child's node hash and its position into the parent's
// running XOR accumulator, matching the invariant
// children_hash = XOR(position_hash_mix(child_hash)).
func HashMix(childHash uint64, position int) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(childHash >> (8 * i))
	}
	p := uint64(position)
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(p >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
