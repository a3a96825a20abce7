package terminal

import (
	"os"

	"golang.org/x/term"

	"github.com/AnshRaj112/serenify-vent/internal/vent"
)

// getSize is a test seam for term.GetSize.
var getSize = term.GetSize

// Height returns the number of rows of the terminal on stdout, or 0 when
// stdout is not a terminal.
func Height() int {
	_, h, err := getSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return h
}

// PageSizer returns a page size function for the controller. A fixed
// height wins over the live terminal size.
func PageSizer(fixedHeight int) func() int {
	return func() int {
		h := fixedHeight
		if h <= 0 {
			h = Height()
		}
		return vent.PageSize(vent.TerminalLayout, h)
	}
}
