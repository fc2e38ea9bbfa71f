package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
scoreboard:
  title: "&a&lStats"
  update-interval: 2s
  disabled-worlds: [lobby]
  items:
    - title: "&9Kills"
      variable: kills
    - title: "&9Deaths"
      variable: deaths
temp-scoreboard:
  enabled: true
  title: "&eTop Kills"
  color: "&9"
  size: 3
  show-for: 10s
  appear-after: 1m
stats:
  database: stats.db
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "&a&lStats", cfg.Scoreboard.Title)
	assert.Equal(t, 2*time.Second, cfg.Scoreboard.UpdateInterval)
	assert.Equal(t, []Row{
		{Title: "&9Kills", Variable: "kills"},
		{Title: "&9Deaths", Variable: "deaths"},
	}, cfg.Rows.Snapshot())
	assert.True(t, cfg.Temp.Enabled)
	assert.Equal(t, 3, cfg.Temp.Size)
	assert.Equal(t, 10*time.Second, cfg.Temp.ShowFor)
	assert.Equal(t, time.Minute, cfg.Temp.AppearAfter)
	assert.Equal(t, "stats.db", cfg.Stats.Database)
	assert.Equal(t, DefaultRefreshInterval, cfg.Stats.RefreshInterval)
	assert.True(t, cfg.WorldDisabled("lobby"))
	assert.False(t, cfg.WorldDisabled("world"))
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("scoreboard:\n  items: []\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, cfg.Scoreboard.Title)
	assert.Equal(t, DefaultUpdateInterval, cfg.Scoreboard.UpdateInterval)
	assert.False(t, cfg.Temp.Enabled)
	assert.Equal(t, DefaultTempTitle, cfg.Temp.Title)
	assert.Equal(t, DefaultTempColor, cfg.Temp.Color)
	assert.Equal(t, DefaultTempSize, cfg.Temp.Size)
	assert.Equal(t, DefaultShowFor, cfg.Temp.ShowFor)
	assert.Equal(t, DefaultAppearAfter, cfg.Temp.AppearAfter)
	assert.Equal(t, 0, cfg.Rows.Len())
}

func TestParse_RowTitleTooLong(t *testing.T) {
	doc := "scoreboard:\n  items:\n    - title: \"" + strings.Repeat("x", 49) + "\"\n      variable: kills\n"

	_, err := Parse([]byte(doc))
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.NotEmpty(t, verrs)
}

func TestParse_RowTitleAtLimit(t *testing.T) {
	doc := "scoreboard:\n  items:\n    - title: \"" + strings.Repeat("x", 48) + "\"\n      variable: kills\n"

	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Rows.Len())
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"empty variable":   "scoreboard:\n  items:\n    - title: a\n      variable: \"\"\n",
		"title too long":   "scoreboard:\n  title: \"" + strings.Repeat("t", 33) + "\"\n  items: []\n",
		"temp size zero":   "scoreboard:\n  items: []\ntemp-scoreboard:\n  size: 0\n",
		"temp size big":    "scoreboard:\n  items: []\ntemp-scoreboard:\n  size: 16\n",
		"wrong item type":  "scoreboard:\n  items: [1, 2]\n",
		"too many rows":    "scoreboard:\n  items:\n" + strings.Repeat("    - {title: a, variable: b}\n", 16),
		"empty document":   "",
		"enabled not bool": "scoreboard:\n  items: []\ntemp-scoreboard:\n  enabled: sometimes\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			var verrs ValidationErrors
			assert.True(t, errors.As(err, &verrs), "want ValidationErrors, got %v", err)
		})
	}
}

func TestParse_DuplicateTitles(t *testing.T) {
	doc := "scoreboard:\n  items:\n    - {title: Kills, variable: kills}\n    - {title: Kills, variable: deaths}\n"

	_, err := Parse([]byte(doc))
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "scoreboard.items.1.title", verrs[0].Path)
	assert.Contains(t, verrs[0].Message, "duplicate")
}

func TestParse_BadDuration(t *testing.T) {
	doc := "scoreboard:\n  update-interval: soon\n  items: []\n"

	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Rows.Len())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRowSet_RemoveOnce(t *testing.T) {
	rows := NewRowSet([]Row{{"A", "a"}, {"B", "b"}, {"C", "c"}})

	before := rows.Snapshot()
	assert.True(t, rows.Remove("B"))
	assert.False(t, rows.Remove("B"))
	assert.False(t, rows.Remove("missing"))

	assert.Equal(t, []Row{{"A", "a"}, {"C", "c"}}, rows.Snapshot())
	assert.Len(t, before, 3, "earlier snapshots are unaffected")
}

func TestRowSet_ConcurrentRemoveReportsSingleWinner(t *testing.T) {
	rows := NewRowSet([]Row{{"A", "a"}, {"B", "b"}})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rows.Snapshot() {
			}
			if rows.Remove("A") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 1, rows.Len())
}

func TestNewRowSet_Copies(t *testing.T) {
	src := []Row{{"A", "a"}}
	rows := NewRowSet(src)
	src[0].Title = "changed"
	assert.Equal(t, "A", rows.Snapshot()[0].Title)
}
