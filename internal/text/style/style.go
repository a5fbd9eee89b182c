// Package style defines the visual attributes attached to buffer text:
// colors, text attributes, and the additive StyleSet the data model
// uses for per-column line modifiers and parse-tree node decoration.
package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a true-color or indexed terminal color.
type Color struct {
	R, G, B uint8
	Indexed bool
	Default bool
}

// Default is the terminal's inherited/transparent color.
var Default = Color{Default: true}

// Common colors used by built-in themes and tests.
var (
	Black   = Color{R: 0, G: 0, B: 0}
	White   = Color{R: 255, G: 255, B: 255}
	Red     = Color{R: 255, G: 0, B: 0}
	Green   = Color{R: 0, G: 255, B: 0}
	Blue    = Color{R: 0, G: 0, B: 255}
	Yellow  = Color{R: 255, G: 255, B: 0}
	Cyan    = Color{R: 0, G: 255, B: 255}
	Magenta = Color{R: 255, G: 0, B: 255}
	Gray    = Color{R: 128, G: 128, B: 128}
)

// RGB creates a true color from components.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Indexed256 creates an indexed palette color (0-255).
func Indexed256(index uint8) Color { return Color{R: index, Indexed: true} }

// FromHex parses "#RGB" or "#RRGGBB" (leading # optional).
func FromHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	expand := func(c byte) string { return string(c) + string(c) }

	var rs, gs, bs string
	switch len(hex) {
	case 3:
		rs, gs, bs = expand(hex[0]), expand(hex[1]), expand(hex[2])
	case 6:
		rs, gs, bs = hex[0:2], hex[2:4], hex[4:6]
	default:
		return Color{}, fmt.Errorf("style: invalid hex color length %q", hex)
	}

	r, err := strconv.ParseUint(rs, 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("style: invalid hex color %q: %w", hex, err)
	}
	g, err := strconv.ParseUint(gs, 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("style: invalid hex color %q: %w", hex, err)
	}
	b, err := strconv.ParseUint(bs, 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("style: invalid hex color %q: %w", hex, err)
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// IsDefault reports whether c is the transparent/default color.
func (c Color) IsDefault() bool { return c.Default }

// Equals reports whether two colors are the same value.
func (c Color) Equals(o Color) bool {
	if c.Default != o.Default {
		return false
	}
	if c.Default {
		return true
	}
	if c.Indexed != o.Indexed {
		return false
	}
	if c.Indexed {
		return c.R == o.R
	}
	return c.R == o.R && c.G == o.G && c.B == o.B
}

// Hex returns the "#RRGGBB" form, or "" for indexed/default colors.
func (c Color) Hex() string {
	if c.Indexed || c.Default {
		return ""
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	if c.Default {
		return "default"
	}
	if c.Indexed {
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return c.Hex()
}

// Attribute is a bitset of text decorations.
type Attribute uint16

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
	AttrStrikethrough
)

// Has reports whether a contains attr.
func (a Attribute) Has(attr Attribute) bool { return a&attr != 0 }

// Set represents a style as an additive set of properties: a foreground,
// a background, and a bag of attributes. There is no "reset" member —
// combining two sets can only add properties, matching the Line
// modifiers invariant that no transition carries a reset marker.
type Set struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// Plain is the empty style: everything inherited from the terminal default.
var Plain = Set{Foreground: Default, Background: Default}

// WithForeground returns a copy of s with the foreground replaced.
func (s Set) WithForeground(c Color) Set { s.Foreground = c; return s }

// WithBackground returns a copy of s with the background replaced.
func (s Set) WithBackground(c Color) Set { s.Background = c; return s }

// With returns a copy of s with the given attributes added.
func (s Set) With(attrs Attribute) Set { s.Attributes |= attrs; return s }

// Merge returns the union of s and other: other's non-default colors win,
// attributes are OR'd together. This is the only combination rule the
// data model needs — sets never subtract from one another.
func (s Set) Merge(other Set) Set {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attributes |= other.Attributes
	return result
}

// IsPlain reports whether s carries no visible styling.
func (s Set) IsPlain() bool {
	return s.Foreground.IsDefault() && s.Background.IsDefault() && s.Attributes == AttrNone
}

// Equals reports value equality.
func (s Set) Equals(o Set) bool {
	return s.Foreground.Equals(o.Foreground) && s.Background.Equals(o.Background) && s.Attributes == o.Attributes
}

// Span is a styled half-open column range within a line.
type Span struct {
	StartCol uint32
	EndCol   uint32
	Style    Set
}

// Len returns the span width in columns.
func (s Span) Len() uint32 { return s.EndCol - s.StartCol }

// Contains reports whether col falls within the span.
func (s Span) Contains(col uint32) bool { return col >= s.StartCol && col < s.EndCol }
