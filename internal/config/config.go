// Package config loads the scoreboard configuration.
//
// The file is YAML. Before it is decoded the document is checked against an
// embedded CUE schema, which enforces the length limits the label encoder
// relies on: a row title never exceeds 48 units and a board title never
// exceeds 32.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for omitted fields.
const (
	DefaultTitle           = "&a&lStats"
	DefaultUpdateInterval  = time.Second
	DefaultTempTitle       = "&eTop Kills"
	DefaultTempColor       = "&9"
	DefaultTempSize        = 5
	DefaultShowFor         = 7 * time.Second
	DefaultAppearAfter     = 5 * time.Minute
	DefaultRefreshInterval = 30 * time.Second
)

// Config is the full scoreboard configuration.
type Config struct {
	Scoreboard Scoreboard     `yaml:"scoreboard" json:"scoreboard"`
	Temp       TempScoreboard `yaml:"temp-scoreboard" json:"temp_scoreboard"`
	Stats      Stats          `yaml:"stats" json:"stats"`

	// Rows is the shared, removable row list built from Scoreboard.Items.
	Rows *RowSet `yaml:"-" json:"-"`
}

// Scoreboard configures the normal board.
type Scoreboard struct {
	Title          string        `yaml:"title" json:"title"`
	UpdateInterval time.Duration `yaml:"update-interval" json:"update_interval"`
	DisabledWorlds []string      `yaml:"disabled-worlds" json:"disabled_worlds,omitempty"`
	Items          []Row         `yaml:"items" json:"items"`
}

// TempScoreboard configures the top list overlay.
type TempScoreboard struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	Title       string        `yaml:"title" json:"title"`
	Color       string        `yaml:"color" json:"color"`
	Size        int           `yaml:"size" json:"size"`
	ShowFor     time.Duration `yaml:"show-for" json:"show_for"`
	AppearAfter time.Duration `yaml:"appear-after" json:"appear_after"`
}

// Stats configures the stats database.
type Stats struct {
	Database        string        `yaml:"database" json:"database,omitempty"`
	RefreshInterval time.Duration `yaml:"refresh-interval" json:"refresh_interval"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes a YAML document.
// Schema violations are returned as ValidationErrors.
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if errs := Validate(doc); len(errs) > 0 {
		return nil, errs
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := checkRows(cfg.Scoreboard.Items); len(errs) > 0 {
		return nil, errs
	}

	cfg.applyDefaults()
	cfg.Rows = NewRowSet(cfg.Scoreboard.Items)
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scoreboard.Title == "" {
		c.Scoreboard.Title = DefaultTitle
	}
	if c.Scoreboard.UpdateInterval <= 0 {
		c.Scoreboard.UpdateInterval = DefaultUpdateInterval
	}
	if c.Temp.Title == "" {
		c.Temp.Title = DefaultTempTitle
	}
	if c.Temp.Color == "" {
		c.Temp.Color = DefaultTempColor
	}
	if c.Temp.Size == 0 {
		c.Temp.Size = DefaultTempSize
	}
	if c.Temp.ShowFor <= 0 {
		c.Temp.ShowFor = DefaultShowFor
	}
	if c.Temp.AppearAfter <= 0 {
		c.Temp.AppearAfter = DefaultAppearAfter
	}
	if c.Stats.RefreshInterval <= 0 {
		c.Stats.RefreshInterval = DefaultRefreshInterval
	}
}

// WorldDisabled reports whether boards are suppressed in world.
func (c *Config) WorldDisabled(world string) bool {
	for _, w := range c.Scoreboard.DisabledWorlds {
		if w == world {
			return true
		}
	}
	return false
}

// checkRows enforces what the schema cannot express: row titles are unique.
func checkRows(rows []Row) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		if prev, ok := seen[r.Title]; ok {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("scoreboard.items.%d.title", i),
				Message: fmt.Sprintf("duplicate title %q (also at index %d)", r.Title, prev),
			})
			continue
		}
		seen[r.Title] = i
	}
	return errs
}
