package store

import (
	"context"
	"fmt"
	"time"
)

// SaveStats writes the full stats row for a player, replacing what was
// stored before.
func (s *Store) SaveStats(ctx context.Context, st Stats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_stats (id, name, kills, deaths, mob_kills, killstreak, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kills = excluded.kills,
			deaths = excluded.deaths,
			mob_kills = excluded.mob_kills,
			killstreak = excluded.killstreak,
			updated_at = excluded.updated_at
	`, st.ID, st.Name, st.Kills, st.Deaths, st.MobKills, st.Killstreak, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save stats %s: %w", st.ID, err)
	}
	return nil
}

// AddStats adds delta's counters to the stored row, creating it if needed,
// and returns the stored result. Killstreak is replaced, not added, when
// delta carries a non-zero value.
func (s *Store) AddStats(ctx context.Context, delta Stats) (Stats, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_stats (id, name, kills, deaths, mob_kills, killstreak, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kills = kills + excluded.kills,
			deaths = deaths + excluded.deaths,
			mob_kills = mob_kills + excluded.mob_kills,
			killstreak = CASE WHEN excluded.killstreak != 0 THEN excluded.killstreak ELSE killstreak END,
			updated_at = excluded.updated_at
	`, delta.ID, delta.Name, delta.Kills, delta.Deaths, delta.MobKills, delta.Killstreak, time.Now().Unix())
	if err != nil {
		return Stats{}, fmt.Errorf("add stats %s: %w", delta.ID, err)
	}
	return s.LoadStats(ctx, delta.ID)
}
