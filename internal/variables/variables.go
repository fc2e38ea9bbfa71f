// Package variables resolves a row's variable key to a live integer value.
//
// Providers register the keys they serve with a Registry. A key nobody
// serves resolves to ErrUnknownVariable; a provider whose value only changes
// on an explicit event returns ErrEventPending so the poller stops asking
// for it on partial refreshes.
package variables

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/sbstats/internal/display"
)

var (
	// ErrUnknownVariable means no provider serves the key.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrEventPending means the value is pushed by events and has no
	// polled value yet.
	ErrEventPending = errors.New("variable is updated on event")
)

// Resolver maps a variable key to a viewer's current value.
type Resolver interface {
	Resolve(v display.Viewer, key string) (int, error)
}

// Provider serves one or more variable keys.
type Provider interface {
	Score(v display.Viewer, key string) (int, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(v display.Viewer, key string) (int, error)

func (f ProviderFunc) Score(v display.Viewer, key string) (int, error) { return f(v, key) }

// Registry is a Resolver dispatching to providers by key.
//
// Thread-safety: Register and Resolve are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register serves keys with p. A later registration of the same key wins.
func (r *Registry) Register(p Provider, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		r.providers[k] = p
	}
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) Resolve(v display.Viewer, key string) (int, error) {
	r.mu.RLock()
	p, ok := r.providers[key]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, key)
	}
	return p.Score(v, key)
}
