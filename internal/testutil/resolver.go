package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/variables"
)

// ScriptedResolver resolves variables from a fixed table and counts calls.
// Keys absent from the table are unknown.
type ScriptedResolver struct {
	mu      sync.Mutex
	values  map[string]int
	pending map[string]bool
	calls   map[string]int
}

func NewScriptedResolver(values map[string]int) *ScriptedResolver {
	r := &ScriptedResolver{
		values:  make(map[string]int),
		pending: make(map[string]bool),
		calls:   make(map[string]int),
	}
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// Set makes key resolve to value.
func (r *ScriptedResolver) Set(key string, value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	delete(r.pending, key)
}

// Pending makes key report ErrEventPending.
func (r *ScriptedResolver) Pending(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[key] = true
}

// Calls returns how often key was resolved.
func (r *ScriptedResolver) Calls(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key]
}

func (r *ScriptedResolver) Resolve(_ display.Viewer, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[key]++
	if r.pending[key] {
		return 0, fmt.Errorf("%s: %w", key, variables.ErrEventPending)
	}
	v, ok := r.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", variables.ErrUnknownVariable, key)
	}
	return v, nil
}
