package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sbstats/internal/display"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Viewer   string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Viewer)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final state and
// returns one message per failure.
func EvaluateAssertions(h *Harness, result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(h, result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(h *Harness, result *Result, a Assertion) error {
	if a.Type == AssertWrites {
		if got := result.WritesFor(a.Viewer); got != a.Count {
			return &AssertionError{Type: a.Type, Viewer: a.Viewer,
				Expected: fmt.Sprintf("%d writes", a.Count),
				Actual:   fmt.Sprintf("%d writes", got)}
		}
		return nil
	}

	p, ok := h.viewers[a.Viewer]
	if !ok {
		return &AssertionError{Type: a.Type, Viewer: a.Viewer, Expected: "a joined viewer", Actual: "never joined"}
	}

	switch a.Type {
	case AssertFlavor:
		if got := h.mgr.Flavor(p.ID()).String(); got != a.Flavor {
			return &AssertionError{Type: a.Type, Viewer: a.Viewer, Expected: a.Flavor, Actual: got}
		}
	case AssertBoard:
		return assertBoard(h.host.Render(p), a)
	case AssertSkipped:
		got := h.mgr.Skipped(p.ID())
		want := slices.Clone(a.Keys)
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return &AssertionError{Type: a.Type, Viewer: a.Viewer,
				Expected: fmt.Sprintf("%v", want),
				Actual:   fmt.Sprintf("%v", got)}
		}
	}
	return nil
}

func assertBoard(snap display.Snapshot, a Assertion) error {
	if a.Title != "" && snap.Title != a.Title {
		return &AssertionError{Type: a.Type, Viewer: a.Viewer,
			Expected: fmt.Sprintf("title %q", a.Title),
			Actual:   fmt.Sprintf("title %q", snap.Title)}
	}

	got := make([]Line, len(snap.Lines))
	for i, l := range snap.Lines {
		got[i] = Line{Text: l.Text, Value: l.Value}
	}
	if !slices.Equal(got, a.Lines) {
		return &AssertionError{Type: a.Type, Viewer: a.Viewer,
			Expected: formatLines(a.Lines),
			Actual:   formatLines(got)}
	}
	return nil
}

func formatLines(lines []Line) string {
	if len(lines) == 0 {
		return "no rows"
	}
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%q=%d", l.Text, l.Value)
	}
	return strings.Join(parts, ", ")
}
