package engine

import (
	goversion "github.com/hashicorp/go-version"

	"github.com/roach88/sbstats/internal/display"
)

// namedScoresSince is the first host version that keys scores by plain
// string entries.
var namedScoresSince = goversion.Must(goversion.NewVersion("1.7.8"))

// WriteStrategy hands out the host score for an entry.
type WriteStrategy interface {
	Score(obj display.Objective, entry string) display.Score
	Name() string
}

// ModernWrite keys scores by entry string.
type ModernWrite struct{}

func (ModernWrite) Score(obj display.Objective, entry string) display.Score {
	return obj.Score(entry)
}

func (ModernWrite) Name() string { return "modern" }

// LegacyWrite keys scores by an offline entry handle. Objectives that do not
// support handles fall back to plain entries.
type LegacyWrite struct{}

func (LegacyWrite) Score(obj display.Objective, entry string) display.Score {
	if lo, ok := obj.(display.LegacyObjective); ok {
		return lo.ScoreFor(display.OfflineEntry{Name: entry})
	}
	return obj.Score(entry)
}

func (LegacyWrite) Name() string { return "legacy" }

// DetectStrategy picks the write strategy once for a host. Unparseable
// versions, versions before 1.7.8 and hosts without named scores are legacy.
// Pre-release suffixes such as "-R0.1-SNAPSHOT" are ignored.
func DetectStrategy(version string, caps display.Capabilities) WriteStrategy {
	if !caps.NamedScores {
		return LegacyWrite{}
	}
	v, err := goversion.NewVersion(version)
	if err != nil || v.Core().LessThan(namedScoresSince) {
		return LegacyWrite{}
	}
	return ModernWrite{}
}
