package numerator

import (
	"context"
	"sync"
	"time"
)

// Generator hands out sequential numbers.
type Generator interface {
	// GetNextNumber returns the next number of the series, e.g. EXP-2026-00001.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber moves the counter so the next number issued is value+1.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// MemoryGenerator keeps counters in process memory. Used with the in-memory store.
type MemoryGenerator struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryGenerator creates an empty generator.
func NewMemoryGenerator() *MemoryGenerator {
	return &MemoryGenerator{counters: make(map[string]int64)}
}

// GetNextNumber implements Generator.
func (g *MemoryGenerator) GetNextNumber(_ context.Context, cfg Config, _ *Options, period time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := cfg.Key(period)
	g.counters[key]++
	return cfg.Format(period, g.counters[key]), nil
}

// SetNextNumber implements Generator.
func (g *MemoryGenerator) SetNextNumber(_ context.Context, cfg Config, period time.Time, value int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[cfg.Key(period)] = value
	return nil
}

var _ Generator = (*MemoryGenerator)(nil)
