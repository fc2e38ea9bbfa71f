package engine

import (
	"errors"
	"iter"
	"log/slog"

	"github.com/roach88/sbstats/internal/config"
	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/variables"
)

// SkipSet holds the variable keys that only change on events. Partial
// polls leave them out.
type SkipSet map[string]struct{}

func (s SkipSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Sample is one resolved row.
type Sample struct {
	Title string
	Value int
}

// Poller resolves configured rows for a viewer.
//
// Rows are shared by every viewer. A row whose variable is unknown is
// removed from the shared set and reported once, no matter how many
// viewers hit it.
type Poller struct {
	rows     *config.RowSet
	resolver variables.Resolver
	logger   *slog.Logger
}

// NewPoller creates a poller over rows.
func NewPoller(rows *config.RowSet, resolver variables.Resolver, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{rows: rows, resolver: resolver, logger: logger}
}

// Poll yields the viewer's rows in configured order. Resolution happens
// while the sequence is consumed; each returned sequence is meant to be
// ranged over once.
//
// A complete poll clears skip first and resolves every row. Rows that
// report ErrEventPending are added to skip and not yielded.
func (p *Poller) Poll(v display.Viewer, skip SkipSet, complete bool) iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		if complete {
			clear(skip)
		}

		for _, row := range p.rows.Snapshot() {
			if !complete && skip.Has(row.Variable) {
				continue
			}

			value, err := p.resolver.Resolve(v, row.Variable)
			switch {
			case err == nil:
			case errors.Is(err, variables.ErrEventPending):
				skip[row.Variable] = struct{}{}
				continue
			case errors.Is(err, variables.ErrUnknownVariable):
				if p.rows.Remove(row.Title) {
					p.logger.Info("unknown variable, row removed",
						"code", CodeUnknownVariable,
						"variable", row.Variable,
						"title", row.Title,
					)
				}
				continue
			default:
				p.logger.Warn("resolve variable",
					"variable", row.Variable,
					"viewer", v.Name(),
					"error", err,
				)
				continue
			}

			if !yield(Sample{Title: row.Title, Value: value}) {
				return
			}
		}
	}
}
