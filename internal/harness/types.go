package harness

import (
	"fmt"
	"io"
	"strings"
)

// WriteEvent is one score write that reached a player.
type WriteEvent struct {
	Viewer    string `json:"viewer"` // player name
	Objective string `json:"objective"`
	Entry     string `json:"entry"`
	Value     int    `json:"value"`
}

// TraceEvent is one executed step and the writes it caused.
type TraceEvent struct {
	Step   int          `json:"step"`
	Action string       `json:"action"`
	Viewer string       `json:"viewer,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Writes []WriteEvent `json:"writes,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}, Errors: []string{}}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// WritesFor counts the writes that reached viewer over the whole run.
func (r *Result) WritesFor(viewer string) int {
	n := 0
	for _, ev := range r.Trace {
		for _, w := range ev.Writes {
			if w.Viewer == viewer {
				n++
			}
		}
	}
	return n
}

// FormatTrace writes the trace in the line format used by golden files:
// a header per step followed by its writes.
func FormatTrace(w io.Writer, trace []TraceEvent) error {
	for _, ev := range trace {
		header := []string{fmt.Sprintf("# %d %s", ev.Step, ev.Action)}
		if ev.Viewer != "" {
			header = append(header, ev.Viewer)
		}
		if ev.Detail != "" {
			header = append(header, ev.Detail)
		}
		if _, err := fmt.Fprintln(w, strings.Join(header, " ")); err != nil {
			return err
		}
		for _, wr := range ev.Writes {
			if _, err := fmt.Fprintf(w, "%s %s %q = %d\n", wr.Viewer, wr.Objective, wr.Entry, wr.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
