// Package engine wires the emotion pipeline together: lexicon scoring,
// conversational context, temporal modulation, trend tracking and online
// retraining.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubicDB/emocore/pkg/concurrency"
	"github.com/qubicDB/emocore/pkg/conversation"
	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/lexicon"
	"github.com/qubicDB/emocore/pkg/metrics"
	"github.com/qubicDB/emocore/pkg/persistence"
	"github.com/qubicDB/emocore/pkg/retrain"
	"github.com/qubicDB/emocore/pkg/scorer"
	"github.com/qubicDB/emocore/pkg/sentiment"
	"github.com/qubicDB/emocore/pkg/synonym"
	"github.com/qubicDB/emocore/pkg/textnorm"
	"github.com/qubicDB/emocore/pkg/trend"
)

// Remote is an optional classifier consulted before the lexicon pipeline.
// Any error falls back to local scoring.
type Remote interface {
	Classify(ctx context.Context, text string, history []string) (core.AnalysisResult, error)
}

// Options configures New.
type Options struct {
	// Config supplies pipeline constants. Nil uses core.DefaultConfig().
	Config *core.Config

	// Store persists the lexicon, the trend store and the interaction log.
	// Nil keeps everything in memory.
	Store *persistence.Store

	Remote  Remote
	Metrics *metrics.Manager
	Logger  zerolog.Logger

	// Polarizer overrides the sentiment analyzer used by the scorer.
	Polarizer sentiment.Polarizer

	// Clock overrides time.Now, mostly for tests.
	Clock func() time.Time
}

// Engine is safe for concurrent use. Classification reads an immutable
// lexicon snapshot; retraining publishes a new one atomically.
type Engine struct {
	cfg     core.Config
	logger  zerolog.Logger
	metrics *metrics.Manager
	now     func() time.Time

	lexicon  *lexicon.Store
	scorer   *scorer.Scorer
	trend    *trend.Store
	sessions *conversation.Store
	trainer  *retrain.Trainer
	remote   Remote

	store   *persistence.Store
	worker  *concurrency.PersistWorker
	journal *memoryLog
	flushMu sync.Mutex
}

// New builds an engine and restores any persisted state.
func New(opts Options) (*Engine, error) {
	cfg := core.DefaultConfig()
	if opts.Config != nil {
		c := *opts.Config
		cfg = &c
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOpManager()
	}

	scoreOpts := scorer.DefaultOptions()
	scoreOpts.PhraseMultiplier = cfg.Engine.PhraseMultiplier
	if opts.Polarizer != nil {
		scoreOpts.Polarizer = opts.Polarizer
	}

	e := &Engine{
		cfg:      *cfg,
		logger:   opts.Logger.With().Str("component", "engine").Logger(),
		metrics:  opts.Metrics,
		now:      opts.Clock,
		lexicon:  lexicon.NewStore(synonym.New()),
		scorer:   scorer.New(scoreOpts),
		trend:    trend.NewStore(cfg.Engine.RetentionDays),
		sessions: conversation.NewStore(cfg.Engine.MemorySize),
		remote:   opts.Remote,
		store:    opts.Store,
	}
	e.sessions.SetClock(e.now)

	var source retrain.Source
	var persister retrain.Persister
	if e.store != nil {
		e.restore()
		e.worker = concurrency.NewPersistWorker(e.store, concurrency.DefaultQueueSize, opts.Logger)
		e.worker.SetErrorHook(func(op concurrency.OpType, err error) {
			e.metrics.RecordPersistFailure(op.String())
		})
		source = e.store
		persister = workerPersister{e.worker}
	} else {
		e.journal = &memoryLog{}
		source = e.journal
	}

	e.trainer = retrain.New(cfg.Retrain, source, e.lexicon, persister, opts.Logger)
	e.trainer.SetClock(e.now)

	e.metrics.SetTrendDays(e.trend.Len())
	return e, nil
}

// restore loads the lexicon and trend snapshots. Missing or corrupt
// snapshots leave the defaults in place.
func (e *Engine) restore() {
	e.lexicon.Restore(e.store, e.logger)

	doc, err := e.store.LoadTrend()
	switch {
	case errors.Is(err, core.ErrSnapshotNotFound):
		e.logger.Info().Msg("no trend snapshot found, starting empty")
	case err != nil:
		e.logger.Warn().Err(err).Msg("trend snapshot unreadable, starting empty")
	default:
		e.trend.Restore(doc)
		e.logger.Info().Int("days", e.trend.Len()).Msg("trend snapshot restored")
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() core.Config { return e.cfg }

// Lexicon returns the published lexicon snapshot.
func (e *Engine) Lexicon() *lexicon.Snapshot { return e.lexicon.Current() }

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// Classify scores text against the current lexicon, blending in up to
// ContextMessages prior messages from history and modulating by the
// recent trend. It never fails: blank input yields the neutral fallback.
func (e *Engine) Classify(ctx context.Context, text string, history []string) core.AnalysisResult {
	start := time.Now()
	res := e.classify(ctx, text, history)
	e.metrics.RecordClassification(res.Metadata.Source, string(res.PrimaryEmotion), time.Since(start))
	return res
}

func (e *Engine) classify(ctx context.Context, text string, history []string) core.AnalysisResult {
	prior := recentHistory(history, e.cfg.Engine.ContextMessages)
	if strings.TrimSpace(text) == "" {
		return core.NeutralResult(len(prior))
	}
	text = core.TruncateText(text)

	if e.remote != nil {
		res, err := e.remote.Classify(ctx, text, prior)
		if err == nil {
			return res
		}
		reason := fallbackReason(err)
		e.metrics.RecordExternalFallback(reason)
		e.logger.Debug().Err(err).Str("reason", reason).Msg("external classifier failed, using lexicon")
	}

	snap := e.lexicon.Current()
	current := e.scorer.Score(snap, text).Raw

	if len(prior) > 0 {
		joined := core.TruncateText(strings.Join(prior, " "))
		contextVec := e.scorer.Score(snap, joined).Raw.Normalized()
		current = Blend(current, contextVec, e.cfg.Engine.ContextWeight)
	}

	multipliers := e.trend.Multipliers(e.now(), e.cfg.Engine.TodayWeight, e.cfg.Engine.YesterdayWeight)
	modulated, strength := Modulate(current, multipliers)
	return Normalize(modulated, len(prior), strength)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, core.ErrExternalRateLimit):
		return "rate_limited"
	case errors.Is(err, core.ErrExternalDown):
		return "unavailable"
	case errors.Is(err, core.ErrExternalBadReply):
		return "bad_reply"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// ClassifySession classifies text with the session's recent messages as
// context, then remembers text for the next turn.
func (e *Engine) ClassifySession(ctx context.Context, sessionID, text string) core.AnalysisResult {
	history := e.sessions.Recent(sessionID, e.cfg.Engine.ContextMessages)
	res := e.Classify(ctx, text, history)
	if normalized := textnorm.Normalize(text); normalized != "" {
		e.sessions.Append(sessionID, normalized)
	}
	e.metrics.SetActiveSessions(e.sessions.Len())
	return res
}

// EndSession drops a session's conversation memory.
func (e *Engine) EndSession(sessionID string) bool {
	ok := e.sessions.End(sessionID)
	e.metrics.SetActiveSessions(e.sessions.Len())
	return ok
}

// SweepSessions drops sessions idle for longer than maxIdle.
func (e *Engine) SweepSessions(maxIdle time.Duration) int {
	n := e.sessions.SweepIdle(maxIdle)
	e.metrics.SetActiveSessions(e.sessions.Len())
	return n
}

// ---------------------------------------------------------------------------
// Interaction logging
// ---------------------------------------------------------------------------

// LogInteraction records a labeled interaction in the trend store and the
// interaction log. Logging is best-effort: persistence failures are
// counted and logged but the interaction still counts toward the trend.
func (e *Engine) LogInteraction(ctx context.Context, req core.InteractionRequest) core.LogAck {
	emotion, err := core.ParseEmotion(string(req.Emotion))
	if err != nil {
		e.metrics.RecordInteraction(false)
		return core.LogAck{Accepted: false, Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		e.metrics.RecordInteraction(false)
		return core.LogAck{Accepted: false, Reason: err.Error()}
	}

	intensity := clampUnit(req.Intensity)
	source := req.Source
	if source == "" {
		source = core.SourceRuleBased
	}
	now := e.now()

	entry := core.TrendEntry{Time: now, Source: source}
	if top := core.VectorFromMap(req.Distribution).Top(trend.TopEmotions); len(top) > 0 {
		entry.Emotions = top
	} else {
		entry.Emotions = []core.EmotionScore{{Emotion: emotion, Score: intensity}}
	}
	day := e.trend.Append(entry)
	e.metrics.SetTrendDays(e.trend.Len())

	record := core.InteractionRecord{
		ID:        core.NewInteractionID(),
		SessionID: req.SessionID,
		Text:      req.Text,
		Emotion:   emotion,
		Intensity: intensity,
		Source:    source,
		Timestamp: now.UTC(),
	}

	// Rows without text teach the trainer nothing, so only the trend sees them.
	persist := true
	switch err := core.ValidateText(record.Text); {
	case errors.Is(err, core.ErrEmptyText):
		persist = false
	case errors.Is(err, core.ErrTextTooLarge):
		e.logger.Debug().Err(err).Str("id", record.ID).Msg("interaction text truncated")
		record.Text = core.TruncateText(record.Text)
	}
	if persist {
		if err := e.appendRecord(record); err != nil {
			e.metrics.RecordPersistFailure(concurrency.OpAppendInteraction.String())
			e.logger.Warn().Err(err).Str("id", record.ID).Msg("interaction not journaled")
		}
	}

	e.metrics.RecordInteraction(true)
	return core.LogAck{ID: record.ID, Accepted: true, Day: day}
}

// LogAnalysis logs a classification result as an interaction, keeping its
// full distribution for the trend store.
func (e *Engine) LogAnalysis(ctx context.Context, sessionID, text string, r core.AnalysisResult) core.LogAck {
	return e.LogInteraction(ctx, core.InteractionRequest{
		SessionID:    sessionID,
		Text:         text,
		Emotion:      r.PrimaryEmotion,
		Intensity:    r.Intensity,
		Source:       r.Metadata.Source,
		Distribution: r.Emotions,
	})
}

func (e *Engine) appendRecord(record core.InteractionRecord) error {
	if e.worker == nil {
		return e.journal.AppendInteraction(record)
	}
	return e.worker.SubmitAsync(&concurrency.Operation{
		Type:    concurrency.OpAppendInteraction,
		Payload: record,
	})
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// ---------------------------------------------------------------------------
// Trend, retraining and persistence
// ---------------------------------------------------------------------------

// GetTrend reports on the trend store over window.
func (e *Engine) GetTrend(window core.TrendWindow) core.TrendReport {
	return e.trend.Report(window, e.now())
}

// Retrain relearns the lexicon from the interaction log. Queued journal
// appends are written first so the run sees every logged interaction.
func (e *Engine) Retrain(ctx context.Context) (core.RetrainResult, error) {
	start := time.Now()
	if e.worker != nil {
		if err := e.FlushTrend(ctx); err != nil {
			e.logger.Warn().Err(err).Msg("pre-retrain flush failed")
		}
	}

	res, err := e.trainer.Run(ctx)
	e.metrics.RecordRetrain(res.Status, time.Since(start))
	return res, err
}

// FlushTrend writes the trend snapshot through the persistence worker.
// Every operation queued before it completes first. Without a store it is
// a no-op.
func (e *Engine) FlushTrend(ctx context.Context) error {
	if e.worker == nil {
		return nil
	}
	// Snapshots must reach the worker in the order they were taken.
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	wasDirty := e.trend.Dirty()
	e.trend.MarkClean()
	err := e.worker.Submit(ctx, &concurrency.Operation{
		Type:    concurrency.OpFlushTrend,
		Payload: e.trend.Snapshot(),
	})
	if err != nil {
		if wasDirty {
			e.trend.MarkDirty()
		}
		return fmt.Errorf("flush trend: %w", err)
	}
	return nil
}

// FlushTrendIfDirty flushes only when entries were appended since the last
// successful flush.
func (e *Engine) FlushTrendIfDirty(ctx context.Context) error {
	if !e.trend.Dirty() {
		return nil
	}
	return e.FlushTrend(ctx)
}

// Close flushes the trend store and stops the persistence worker.
func (e *Engine) Close(ctx context.Context) error {
	if e.worker == nil {
		return nil
	}
	err := e.FlushTrendIfDirty(ctx)
	e.worker.Stop()
	return err
}

// Stats returns engine statistics.
func (e *Engine) Stats() map[string]any {
	snap := e.lexicon.Current()
	keywords, phrases := 0, 0
	for _, em := range core.Emotions {
		keywords += snap.KeywordCount(em)
		phrases += snap.PhraseCount(em)
	}

	stats := map[string]any{
		"lexicon_version":  snap.Version(),
		"lexicon_keywords": keywords,
		"lexicon_phrases":  phrases,
		"trend":            e.trend.Stats(),
		"sessions":         e.sessions.Stats(),
	}
	if e.worker != nil {
		stats["worker"] = e.worker.Stats()
		stats["store"] = e.store.Stats()
	} else {
		stats["interactions"] = e.journal.Len()
	}
	return stats
}
