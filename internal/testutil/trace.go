package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/sbstats/internal/display"
)

// FormatWrites renders a write log one write per line, for golden files:
//
//	<viewer> <objective> "<entry>" = <value>
func FormatWrites(writes []display.Write) []byte {
	var b strings.Builder
	for _, w := range writes {
		fmt.Fprintf(&b, "%s %s %q = %d\n", w.Viewer, w.Objective, w.Entry, w.Value)
	}
	return []byte(b.String())
}

// FormatSnapshot renders a viewer's sidebar, title first, one line per row.
func FormatSnapshot(s display.Snapshot) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %q\n", s.Objective, s.Title)
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "%4d  %q\n", l.Value, l.Text)
	}
	return []byte(b.String())
}
