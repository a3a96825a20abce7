package vent

const (
	MinPageSize = 10
	MaxPageSize = 30
)

// Layout describes the fixed chrome around the history area and how much
// space one message takes, in whatever unit the viewport height uses.
type Layout struct {
	Header int
	Input  int
	Row    int
}

var (
	// PixelLayout is the browser estimate: ~100px per message.
	PixelLayout = Layout{Header: 200, Input: 120, Row: 100}
	// TerminalLayout counts rows: a timestamp line plus a message line.
	TerminalLayout = Layout{Header: 3, Input: 2, Row: 2}
)

// PageSize is how many messages fill the viewport, clamped to
// [MinPageSize, MaxPageSize].
func PageSize(l Layout, height int) int {
	if l.Row <= 0 {
		return MinPageSize
	}
	available := height - l.Header - l.Input
	n := 0
	if available > 0 {
		n = (available + l.Row - 1) / l.Row
	}
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
