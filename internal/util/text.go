package util

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// StripANSI removes ANSI escape sequences (CSI, OSC and the rest) from a
// string.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Width returns the display width of s, ignoring escape sequences and
// counting wide characters as two columns.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// PadRight pads unstyled text s with spaces to the given display width.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Truncate shortens s to at most n display columns, ending in "…" when
// anything was cut. Escape sequences are kept intact.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if Width(s) <= n {
		return s
	}
	return truncate.StringWithTail(s, uint(n), "…")
}
