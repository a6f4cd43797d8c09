package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubicDB/emocore/pkg/core"
)

// Target is the engine surface the daemons drive.
type Target interface {
	FlushTrendIfDirty(ctx context.Context) error
	SweepSessions(maxIdle time.Duration) int
	Retrain(ctx context.Context) (core.RetrainResult, error)
}

// DaemonManager manages all background daemons
type DaemonManager struct {
	target Target
	logger zerolog.Logger

	// Daemon intervals
	persistInterval time.Duration
	sweepInterval   time.Duration
	sessionMaxIdle  time.Duration
	retrainInterval time.Duration
	intervalMu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDaemonManager creates a daemon manager with intervals taken from cfg.
func NewDaemonManager(target Target, cfg *core.Config, logger zerolog.Logger) *DaemonManager {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &DaemonManager{
		target:          target,
		logger:          logger.With().Str("component", "daemon").Logger(),
		persistInterval: cfg.Daemons.PersistInterval,
		sweepInterval:   cfg.Session.SweepInterval,
		sessionMaxIdle:  cfg.Session.MaxIdle,
		retrainInterval: cfg.Retrain.Interval,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start starts all daemon workers. The retrain daemon only runs when a
// retrain interval is configured.
func (dm *DaemonManager) Start() {
	dm.wg.Add(2)
	go dm.persistDaemon()
	go dm.sweepDaemon()

	if dm.getRetrainInterval() > 0 {
		dm.wg.Add(1)
		go dm.retrainDaemon()
	}

	dm.logger.Info().Msg("daemon manager started")
}

// Stop stops all daemons gracefully
func (dm *DaemonManager) Stop() {
	dm.cancel()
	dm.wg.Wait()
	dm.logger.Info().Msg("daemon manager stopped")
}

// persistDaemon periodically flushes the trend snapshot
func (dm *DaemonManager) persistDaemon() {
	defer dm.wg.Done()

	for dm.waitInterval(dm.getPersistInterval()) {
		if err := dm.target.FlushTrendIfDirty(dm.ctx); err != nil && !errors.Is(err, context.Canceled) {
			dm.logger.Warn().Err(err).Msg("persist daemon: trend flush failed")
		}
	}

	// Final flush on shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dm.target.FlushTrendIfDirty(ctx); err != nil {
		dm.logger.Warn().Err(err).Msg("persist daemon: final trend flush failed")
	}
}

// sweepDaemon drops idle conversation sessions
func (dm *DaemonManager) sweepDaemon() {
	defer dm.wg.Done()

	for dm.waitInterval(dm.getSweepInterval()) {
		if n := dm.target.SweepSessions(dm.getSessionMaxIdle()); n > 0 {
			dm.logger.Debug().Int("sessions", n).Msg("swept idle sessions")
		}
	}
}

// retrainDaemon relearns the lexicon on a schedule
func (dm *DaemonManager) retrainDaemon() {
	defer dm.wg.Done()

	for dm.waitInterval(dm.getRetrainInterval()) {
		res, err := dm.target.Retrain(dm.ctx)
		switch {
		case errors.Is(err, core.ErrRetrainInProgress), errors.Is(err, context.Canceled):
		case err != nil:
			dm.logger.Warn().Err(err).Msg("scheduled retrain failed")
		default:
			dm.logger.Debug().Str("status", res.Status).Int("samples", res.SamplesUsed).Msg("scheduled retrain finished")
		}
	}
}

func (dm *DaemonManager) waitInterval(interval time.Duration) bool {
	if interval <= 0 {
		interval = time.Minute
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-dm.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (dm *DaemonManager) getPersistInterval() time.Duration {
	dm.intervalMu.RLock()
	defer dm.intervalMu.RUnlock()
	return dm.persistInterval
}

func (dm *DaemonManager) getSweepInterval() time.Duration {
	dm.intervalMu.RLock()
	defer dm.intervalMu.RUnlock()
	return dm.sweepInterval
}

func (dm *DaemonManager) getSessionMaxIdle() time.Duration {
	dm.intervalMu.RLock()
	defer dm.intervalMu.RUnlock()
	return dm.sessionMaxIdle
}

func (dm *DaemonManager) getRetrainInterval() time.Duration {
	dm.intervalMu.RLock()
	defer dm.intervalMu.RUnlock()
	return dm.retrainInterval
}

// SetIntervals configures daemon intervals. A retrain interval set after
// Start only takes effect if the retrain daemon was already running.
func (dm *DaemonManager) SetIntervals(persist, sweep, maxIdle, retrain time.Duration) {
	dm.intervalMu.Lock()
	defer dm.intervalMu.Unlock()
	dm.persistInterval = persist
	dm.sweepInterval = sweep
	dm.sessionMaxIdle = maxIdle
	dm.retrainInterval = retrain
}

// Stats returns daemon statistics
func (dm *DaemonManager) Stats() map[string]any {
	dm.intervalMu.RLock()
	defer dm.intervalMu.RUnlock()
	return map[string]any{
		"persist_interval": dm.persistInterval.String(),
		"sweep_interval":   dm.sweepInterval.String(),
		"session_max_idle": dm.sessionMaxIdle.String(),
		"retrain_interval": dm.retrainInterval.String(),
	}
}
