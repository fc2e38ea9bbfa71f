package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
config: |
  scoreboard:
    items:
      - {title: "&9Kills", variable: kills}
`

func TestLoadScenario(t *testing.T) {
	sc := load(t, "overlay_cycle")

	assert.Equal(t, "overlay_cycle", sc.Name)
	require.Len(t, sc.Setup, 1)
	assert.Equal(t, 9, sc.Setup[0].Kills)
	require.Len(t, sc.Steps, 5)
	assert.Equal(t, 2, sc.Steps[1].Stats.Kills)
	assert.Equal(t, time.Minute, sc.Steps[2].Duration)
	require.Len(t, sc.Assertions, 3)
	assert.Equal(t, []Line{{"§9Kills", 2}, {"§9Mobs", 0}}, sc.Assertions[1].Lines)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no name", minimalConfig + "steps: [{action: join, viewer: a}]\n", "name is required"},
		{"no config", "name: x\nsteps: [{action: join, viewer: a}]\n", "config is required"},
		{"no steps", "name: x\n" + minimalConfig, "steps list is required"},
		{"unknown field", "name: x\nstep: []\n" + minimalConfig, "failed to parse YAML"},
		{"unknown action", "name: x\n" + minimalConfig + "steps: [{action: dance, viewer: a}]\n", `unknown action "dance"`},
		{"missing viewer", "name: x\n" + minimalConfig + "steps: [{action: join}]\n", "join needs a viewer"},
		{"advance without duration", "name: x\n" + minimalConfig + "steps: [{action: advance}]\n", "positive duration"},
		{"update without title", "name: x\n" + minimalConfig + "steps: [{action: update, viewer: a}]\n", "update needs a title"},
		{"setup without name", "name: x\n" + minimalConfig + "setup: [{kills: 1}]\nsteps: [{action: join, viewer: a}]\n", "setup[0]: name is required"},
		{"unknown assertion", "name: x\n" + minimalConfig + "steps: [{action: join, viewer: a}]\nassertions: [{type: vibes, viewer: a}]\n", `unknown assertion type "vibes"`},
		{"flavor without value", "name: x\n" + minimalConfig + "steps: [{action: join, viewer: a}]\nassertions: [{type: flavor, viewer: a}]\n", "flavor is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
