package core

// StyleSpan is a styled half-open column range within a single screen row.
type StyleSpan struct {
	StartCol uint32
	EndCol   uint32
	Style    Style
}

// Len returns the span width in columns.
func (s StyleSpan) Len() uint32 { return s.EndCol - s.StartCol }

// Contains reports whether col falls within the span.
func (s StyleSpan) Contains(col uint32) bool { return col >= s.StartCol && col < s.EndCol }
