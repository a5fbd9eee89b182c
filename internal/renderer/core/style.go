package core

// Attr is a bitset of screen-cell text decorations. It mirrors
// internal/text/style's Attribute but additionally carries AttrBlink,
// which is a terminal escape-sequence concern with no place in the
// buffer-level styling model.
type Attr uint16

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrikethrough
)

// Has reports whether a contains attr.
func (a Attr) Has(attr Attr) bool { return a&attr != 0 }

// Style is the foreground, background, and attribute bag applied to a
// single screen cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attr
}

// DefaultStyle is the empty style: everything inherited from the terminal.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle builds a style with the given foreground and an inherited background.
func NewStyle(fg Color) Style {
	return Style{Foreground: fg, Background: ColorDefault}
}

// WithForeground returns a copy of s with the foreground replaced.
func (s Style) WithForeground(c Color) Style { s.Foreground = c; return s }

// WithBackground returns a copy of s with the background replaced.
func (s Style) WithBackground(c Color) Style { s.Background = c; return s }

// WithAttrs returns a copy of s with the given attributes added.
func (s Style) WithAttrs(attrs Attr) Style { s.Attributes |= attrs; return s }

// Bold returns a copy of s with AttrBold added.
func (s Style) Bold() Style { s.Attributes |= AttrBold; return s }

// Dim returns a copy of s with AttrDim added.
func (s Style) Dim() Style { s.Attributes |= AttrDim; return s }

// Italic returns a copy of s with AttrItalic added.
func (s Style) Italic() Style { s.Attributes |= AttrItalic; return s }

// Underline returns a copy of s with AttrUnderline added.
func (s Style) Underline() Style { s.Attributes |= AttrUnderline; return s }

// Blink returns a copy of s with AttrBlink added.
func (s Style) Blink() Style { s.Attributes |= AttrBlink; return s }

// Reverse returns a copy of s with AttrReverse added.
func (s Style) Reverse() Style { s.Attributes |= AttrReverse; return s }

// Strikethrough returns a copy of s with AttrStrikethrough added.
func (s Style) Strikethrough() Style { s.Attributes |= AttrStrikethrough; return s }

// Equals reports value equality.
func (s Style) Equals(o Style) bool {
	return s.Foreground.Equals(o.Foreground) && s.Background.Equals(o.Background) && s.Attributes == o.Attributes
}

// Merge overlays other onto s: other's non-default colors win, attributes
// are OR'd together, and a plain overlay leaves s untouched.
func (s Style) Merge(other Style) Style {
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
