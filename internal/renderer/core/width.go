package core

import "github.com/rivo/uniseg"

// RuneWidth returns the number of terminal columns r occupies: 0 for
// combining/zero-width marks, 1 for most runes, 2 for wide CJK and
// emoji. Grapheme-cluster segmentation (multi-rune emoji, ZWJ
// sequences) happens above this layer, in the line-layout package —
// RuneWidth only classifies a single rune in isolation.
func RuneWidth(r rune) int {
	return uniseg.StringWidth(string(r))
}
