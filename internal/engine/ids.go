package engine

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator stamps events with a correlation id.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids, so dispatcher logs
// sort by enqueue time.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids, for tests.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate panics once every id has been handed out.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// seqClock is a monotonic logical clock for event ordering.
type seqClock struct {
	seq atomic.Int64
}

func (c *seqClock) Next() int64 {
	return c.seq.Add(1)
}

func (c *seqClock) Current() int64 {
	return c.seq.Load()
}
