package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Stats are the pvp counters of one player.
type Stats struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Kills      int    `json:"kills" yaml:"kills"`
	Deaths     int    `json:"deaths" yaml:"deaths"`
	MobKills   int    `json:"mob_kills" yaml:"mob_kills"`
	Killstreak int    `json:"killstreak" yaml:"killstreak"`
}

// KDR is kills per death, rounded down. Players without deaths report
// their kills.
func (s Stats) KDR() int {
	if s.Deaths == 0 {
		return s.Kills
	}
	return s.Kills / s.Deaths
}

// Entry is one ranked row of the top list.
type Entry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ErrNotFound is returned when no stats exist for a player.
var ErrNotFound = errors.New("stats not found")

// LoadStats returns the stats stored for a player id.
// Returns ErrNotFound if the player has no row.
func (s *Store) LoadStats(ctx context.Context, id string) (Stats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, kills, deaths, mob_kills, killstreak
		FROM player_stats
		WHERE id = ?
	`, id)

	var st Stats
	err := row.Scan(&st.ID, &st.Name, &st.Kills, &st.Deaths, &st.MobKills, &st.Killstreak)
	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("load stats %s: %w", id, err)
	}
	return st, nil
}

// Top returns the players with the most kills.
// Ordered by kills DESC, name ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) when there are no players.
func (s *Store) Top(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kills
		FROM player_stats
		ORDER BY kills DESC, name COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Value); err != nil {
			return nil, fmt.Errorf("scan top entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top: %w", err)
	}

	return entries, nil
}
