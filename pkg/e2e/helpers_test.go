package e2e

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/engine"
	"github.com/qubicDB/emocore/pkg/persistence"
)

// flatPolarity disables the sentiment bonus.
type flatPolarity struct{}

func (flatPolarity) Polarity(string, []string) float64 { return 0 }

// clock is a settable test clock.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	dir    string
	store  *persistence.Store
	engine *engine.Engine
	clock  *clock
}

// openEngine builds an engine over dir. Pass "" for a fresh temp dir.
func openEngine(t *testing.T, dir string, c *clock, flat bool) *fixture {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if c == nil {
		c = newClock()
	}

	store, err := persistence.NewStoreWithDurability(dir, true, persistence.DurabilityConfig{
		FsyncPolicy:   persistence.FsyncPolicyOff,
		FsyncInterval: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	opts := engine.Options{Store: store, Logger: zerolog.Nop(), Clock: c.Now}
	if flat {
		opts.Polarizer = flatPolarity{}
	}
	e, err := engine.New(opts)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return &fixture{dir: dir, store: store, engine: e, clock: c}
}

func (f *fixture) close(t *testing.T) {
	t.Helper()
	if err := f.engine.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func sumScores(r core.AnalysisResult) float64 {
	total := 0.0
	for _, s := range r.Emotions {
		total += s
	}
	return total
}
