package variables

import (
	"fmt"

	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/store"
)

// Keys served by the built-in providers.
const (
	KeyOnline     = "online"
	KeyKills      = "kills"
	KeyDeaths     = "deaths"
	KeyKDR        = "kdr"
	KeyKillstreak = "killstreak"
	KeyMobKills   = "mob"
)

// StatKeys are the keys served by StatsProvider.
var StatKeys = []string{KeyKills, KeyDeaths, KeyKDR, KeyKillstreak, KeyMobKills}

// OnlineCounter reports how many viewers are connected.
type OnlineCounter interface {
	OnlineCount() int
}

// OnlineProvider serves KeyOnline.
func OnlineProvider(c OnlineCounter) Provider {
	return ProviderFunc(func(display.Viewer, string) (int, error) {
		return c.OnlineCount(), nil
	})
}

// StatsSource exposes the cached stats of connected players.
type StatsSource interface {
	Cached(id string) (store.Stats, bool)
}

// StatsProvider serves the pvp keys from cached player stats. A viewer whose
// stats are not loaded yet reports ErrEventPending; the row then waits for
// a full refresh or a pushed update.
type StatsProvider struct {
	source StatsSource
}

// NewStatsProvider creates a provider over src.
func NewStatsProvider(src StatsSource) *StatsProvider {
	return &StatsProvider{source: src}
}

func (p *StatsProvider) Score(v display.Viewer, key string) (int, error) {
	st, ok := p.source.Cached(v.ID())
	if !ok {
		return 0, ErrEventPending
	}
	switch key {
	case KeyKills:
		return st.Kills, nil
	case KeyDeaths:
		return st.Deaths, nil
	case KeyKDR:
		return st.KDR(), nil
	case KeyKillstreak:
		return st.Killstreak, nil
	case KeyMobKills:
		return st.MobKills, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, key)
	}
}

// RegisterDefaults wires the built-in providers into r. stats may be nil
// when no stats database is configured, in which case the pvp keys stay
// unknown.
func RegisterDefaults(r *Registry, online OnlineCounter, stats StatsSource) {
	r.Register(OnlineProvider(online), KeyOnline)
	if stats != nil {
		r.Register(NewStatsProvider(stats), StatKeys...)
	}
}
