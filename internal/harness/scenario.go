package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sbstats/internal/store"
)

// Scenario is one scripted session against the engine.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Config is the scoreboard config document, inline.
	Config string `yaml:"config"`

	Host HostSpec `yaml:"host,omitempty"`

	// Setup rows are stored before the first step and seed the top list.
	Setup []store.Stats `yaml:"setup,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// HostSpec shapes the in-memory host.
type HostSpec struct {
	Version string `yaml:"version,omitempty"`
	Legacy  bool   `yaml:"legacy,omitempty"`
}

// Step is one action in a scenario.
type Step struct {
	Action string `yaml:"action"`
	Viewer string `yaml:"viewer,omitempty"`

	World    string        `yaml:"world,omitempty"`    // join, world
	Lazy     bool          `yaml:"lazy,omitempty"`     // join
	Stats    store.Stats   `yaml:"stats,omitempty"`    // stats
	Title    string        `yaml:"title,omitempty"`    // update
	Value    int           `yaml:"value,omitempty"`    // update
	Complete bool          `yaml:"complete,omitempty"` // refresh
	Duration time.Duration `yaml:"duration,omitempty"` // advance
}

// Assertion checks the state after the last step.
type Assertion struct {
	Type   string   `yaml:"type"`
	Viewer string   `yaml:"viewer"`
	Flavor string   `yaml:"flavor,omitempty"`
	Title  string   `yaml:"title,omitempty"`
	Lines  []Line   `yaml:"lines,omitempty"`
	Count  int      `yaml:"count,omitempty"`
	Keys   []string `yaml:"keys,omitempty"`
}

// Line is one expected sidebar row.
type Line struct {
	Text  string `yaml:"text" json:"text"`
	Value int    `yaml:"value" json:"value"`
}

// Step actions.
const (
	ActionJoin       = "join"
	ActionLeave      = "leave"
	ActionWorld      = "world"
	ActionStats      = "stats"
	ActionSendUpdate = "send_update"
	ActionRefresh    = "refresh"
	ActionUpdate     = "update"
	ActionOverlay    = "overlay"
	ActionUnregister = "unregister"
	ActionAdvance    = "advance"
)

// Assertion types.
const (
	AssertBoard   = "board"
	AssertFlavor  = "flavor"
	AssertWrites  = "writes"
	AssertSkipped = "skipped"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, p := range s.Setup {
		if p.Name == "" {
			return fmt.Errorf("setup[%d]: name is required", i)
		}
	}

	for i, step := range s.Steps {
		switch step.Action {
		case ActionAdvance:
			if step.Duration <= 0 {
				return fmt.Errorf("steps[%d]: advance needs a positive duration", i)
			}
			continue
		case ActionUpdate:
			if step.Title == "" {
				return fmt.Errorf("steps[%d]: update needs a title", i)
			}
		case ActionWorld:
			if step.World == "" {
				return fmt.Errorf("steps[%d]: world needs a world", i)
			}
		case ActionJoin, ActionLeave, ActionStats, ActionSendUpdate,
			ActionRefresh, ActionOverlay, ActionUnregister:
		case "":
			return fmt.Errorf("steps[%d]: action is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.Viewer == "" {
			return fmt.Errorf("steps[%d]: %s needs a viewer", i, step.Action)
		}
	}

	for i, a := range s.Assertions {
		if a.Viewer == "" {
			return fmt.Errorf("assertions[%d]: viewer is required", i)
		}
		switch a.Type {
		case AssertBoard, AssertWrites, AssertSkipped:
		case AssertFlavor:
			if a.Flavor == "" {
				return fmt.Errorf("assertions[%d]: flavor is required", i)
			}
		case "":
			return fmt.Errorf("assertions[%d]: type is required", i)
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
