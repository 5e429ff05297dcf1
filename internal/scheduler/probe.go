// Package scheduler runs the periodic database health probe reported by
// /health.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthProbe pings the database on a cron schedule and remembers the
// outcome of the last attempt.
type HealthProbe struct {
	cron    *cron.Cron
	db      Pinger
	spec    string
	timeout time.Duration

	mu        sync.RWMutex
	checked   bool
	lastErr   error
	checkedAt time.Time
}

// NewHealthProbe creates a probe that fires every interval.
func NewHealthProbe(db Pinger, interval time.Duration) *HealthProbe {
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &HealthProbe{
		cron:    cron.New(),
		db:      db,
		spec:    fmt.Sprintf("@every %s", interval),
		timeout: timeout,
	}
}

// Start registers the probe and starts the scheduler. One probe runs
// immediately so /health is meaningful before the first tick.
func (p *HealthProbe) Start(ctx context.Context) error {
	if _, err := p.cron.AddFunc(p.spec, func() { p.Check(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	p.cron.Start()
	slog.Info("health probe started", "spec", p.spec)

	p.Check(ctx)
	return nil
}

// Stop shuts the scheduler down and waits for a running probe.
func (p *HealthProbe) Stop() {
	<-p.cron.Stop().Done()
	slog.Info("health probe stopped")
}

// Check pings the database once and records the result.
func (p *HealthProbe) Check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.db.Ping(pingCtx)
	if err != nil {
		slog.Warn("database ping failed", "err", err)
	}

	p.mu.Lock()
	p.checked = true
	p.lastErr = err
	p.checkedAt = time.Now()
	p.mu.Unlock()
}

// Healthy reports the last probe outcome. Before the first probe the
// database is assumed reachable.
func (p *HealthProbe) Healthy() (bool, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch {
	case !p.checked:
		return true, "unchecked"
	case p.lastErr != nil:
		return false, "unreachable: " + p.lastErr.Error()
	}
	return true, "ok"
}
