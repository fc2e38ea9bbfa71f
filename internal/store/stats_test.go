package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStats_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadStats(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveStats_Upserts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedStats(t, s, Stats{ID: "p1", Name: "Steve", Kills: 3, Deaths: 1})
	seedStats(t, s, Stats{ID: "p1", Name: "Steve", Kills: 5, Deaths: 2, Killstreak: 4})

	got, err := s.LoadStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, Stats{ID: "p1", Name: "Steve", Kills: 5, Deaths: 2, Killstreak: 4}, got)
}

func TestAddStats_Accumulates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.AddStats(ctx, Stats{ID: "p1", Name: "Steve", Kills: 1, Killstreak: 1})
	require.NoError(t, err)
	got, err := s.AddStats(ctx, Stats{ID: "p1", Name: "Steve", Kills: 2, MobKills: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, got.Kills)
	assert.Equal(t, 3, got.MobKills)
	assert.Equal(t, 1, got.Killstreak, "zero killstreak delta keeps the stored value")

	got, err = s.AddStats(ctx, Stats{ID: "p1", Name: "Steve", Deaths: 1, Killstreak: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Deaths)
	assert.Equal(t, 7, got.Killstreak)
}

func TestTop_OrderedByKillsThenName(t *testing.T) {
	s := createTestStore(t)
	seedStats(t, s,
		Stats{ID: "a", Name: "Alex", Kills: 4},
		Stats{ID: "b", Name: "Bob", Kills: 9},
		Stats{ID: "c", Name: "Carl", Kills: 4},
		Stats{ID: "d", Name: "Dana", Kills: 1},
	)

	top, err := s.Top(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "Bob", Value: 9},
		{Name: "Alex", Value: 4},
		{Name: "Carl", Value: 4},
	}, top)
}

func TestTop_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	top, err := s.Top(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)
}

func TestStats_KDR(t *testing.T) {
	assert.Equal(t, 5, Stats{Kills: 5}.KDR())
	assert.Equal(t, 2, Stats{Kills: 5, Deaths: 2}.KDR())
	assert.Equal(t, 0, Stats{Kills: 1, Deaths: 3}.KDR())
}

func TestTopCache_RefreshAndCopy(t *testing.T) {
	s := createTestStore(t)
	seedStats(t, s, Stats{ID: "b", Name: "Bob", Kills: 9})

	c := NewTopCache(s, 5)
	assert.Empty(t, c.Entries())

	require.NoError(t, c.Refresh(context.Background()))
	entries := c.Entries()
	require.Len(t, entries, 1)

	entries[0].Name = "mutated"
	assert.Equal(t, "Bob", c.Entries()[0].Name)
}

func TestTopCache_RunStopsWithContext(t *testing.T) {
	s := createTestStore(t)
	seedStats(t, s, Stats{ID: "b", Name: "Bob", Kills: 9})
	c := NewTopCache(s, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Run(ctx, time.Hour)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, c.Entries(), 1, "initial refresh happens before the loop")
}

func TestPlayerCache_LoadRecordForget(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedStats(t, s, Stats{ID: "p1", Name: "Steve", Kills: 2})

	c := NewPlayerCache(s)

	st, err := c.Load(ctx, "p1", "Steve")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Kills)

	fresh, err := c.Load(ctx, "p2", "Alex")
	require.NoError(t, err)
	assert.Equal(t, Stats{ID: "p2", Name: "Alex"}, fresh)

	_, err = c.Record(ctx, Stats{ID: "p1", Name: "Steve", Kills: 1})
	require.NoError(t, err)
	cached, ok := c.Cached("p1")
	require.True(t, ok)
	assert.Equal(t, 3, cached.Kills)

	c.Forget("p1")
	_, ok = c.Cached("p1")
	assert.False(t, ok)
}
