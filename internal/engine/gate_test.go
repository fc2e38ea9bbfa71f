package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		known     bool
		candidate int
		complete  bool
		want      []int
	}{
		{"unchanged complete", 5, true, 5, true, nil},
		{"zero on complete uses sentinel", 5, true, 0, true, []int{Sentinel, 0}},
		{"zero over zero on complete", 0, true, 0, true, []int{Sentinel, 0}},
		{"fresh zero on partial", 0, false, 0, false, []int{0}},
		{"known zero on partial", 0, true, 0, false, nil},
		{"changed on partial", 3, true, 4, false, []int{4}},
		{"fresh nonzero on complete", 0, false, 7, true, []int{7}},
		{"unchanged partial", 9, true, 9, false, nil},
		{"negative", 1, true, -2, false, []int{-2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.current, tt.known, tt.candidate, tt.complete))
		})
	}
}

func TestDecide_SentinelIsNeverZero(t *testing.T) {
	assert.NotZero(t, Sentinel)
}
