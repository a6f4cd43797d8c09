// Package concurrency runs persistence writes on a single background
// goroutine so request paths never block on disk.
package concurrency

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubicDB/emocore/pkg/core"
)

// Operation types for the worker
type OpType int

const (
	OpAppendInteraction OpType = iota // Append one interaction record
	OpFlushTrend                      // Write a trend snapshot
	OpSaveLexicon                     // Write a lexicon snapshot
	OpShutdown                        // Shutdown worker
)

func (t OpType) String() string {
	switch t {
	case OpAppendInteraction:
		return "append_interaction"
	case OpFlushTrend:
		return "flush_trend"
	case OpSaveLexicon:
		return "save_lexicon"
	case OpShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("op_%d", int(t))
	}
}

// DefaultQueueSize buffers bursts of interaction appends.
const DefaultQueueSize = 1000

// Operation represents a queued operation
type Operation struct {
	Type    OpType
	Payload any
	Error   chan error
}

// Backend is the durable store the worker writes to.
type Backend interface {
	AppendInteraction(record core.InteractionRecord) error
	SaveTrend(doc core.TrendDocument) error
	SaveLexicon(doc *core.LexiconDocument) error
}

// ErrorHook observes failed operations.
type ErrorHook func(op OpType, err error)

// PersistWorker drains persistence operations in submission order.
type PersistWorker struct {
	backend Backend
	logger  zerolog.Logger
	onError ErrorHook

	ops chan *Operation

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped atomic.Bool

	opsProcessed atomic.Uint64
	opsFailed    atomic.Uint64
	opsDropped   atomic.Uint64

	mu     sync.RWMutex
	lastOp time.Time
}

// NewPersistWorker starts a worker writing to backend.
func NewPersistWorker(backend Backend, queueSize int, logger zerolog.Logger) *PersistWorker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &PersistWorker{
		backend: backend,
		logger:  logger.With().Str("component", "persist_worker").Logger(),
		ops:     make(chan *Operation, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		lastOp:  time.Now(),
	}

	w.wg.Add(1)
	go w.run()

	return w
}

// SetErrorHook installs a callback for failed operations. Call before
// submitting work.
func (w *PersistWorker) SetErrorHook(hook ErrorHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = hook
}

// run is the main worker loop
func (w *PersistWorker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.drainOps()
			return

		case op := <-w.ops:
			if op.Type == OpShutdown {
				w.cancel()
				continue
			}
			w.processOp(op)
		}
	}
}

// processOp handles a single operation
func (w *PersistWorker) processOp(op *Operation) {
	var err error

	switch op.Type {
	case OpAppendInteraction:
		record, ok := op.Payload.(core.InteractionRecord)
		if !ok {
			err = fmt.Errorf("%s: unexpected payload %T", op.Type, op.Payload)
			break
		}
		err = w.backend.AppendInteraction(record)

	case OpFlushTrend:
		doc, ok := op.Payload.(core.TrendDocument)
		if !ok {
			err = fmt.Errorf("%s: unexpected payload %T", op.Type, op.Payload)
			break
		}
		err = w.backend.SaveTrend(doc)

	case OpSaveLexicon:
		doc, ok := op.Payload.(*core.LexiconDocument)
		if !ok {
			err = fmt.Errorf("%s: unexpected payload %T", op.Type, op.Payload)
			break
		}
		err = w.backend.SaveLexicon(doc)

	default:
		err = fmt.Errorf("unknown operation %s", op.Type)
	}

	w.mu.Lock()
	w.lastOp = time.Now()
	hook := w.onError
	w.mu.Unlock()
	w.opsProcessed.Add(1)

	if err != nil {
		w.opsFailed.Add(1)
		w.logger.Warn().Err(err).Str("op", op.Type.String()).Msg("persistence operation failed")
		if hook != nil {
			hook(op.Type, err)
		}
	}

	if op.Error != nil {
		op.Error <- err
	}
}

// drainOps processes remaining operations before shutdown
func (w *PersistWorker) drainOps() {
	for {
		select {
		case op := <-w.ops:
			if op.Type == OpShutdown {
				continue
			}
			w.processOp(op)
		default:
			return
		}
	}
}

// Submit queues an operation and waits for it to complete.
func (w *PersistWorker) Submit(ctx context.Context, op *Operation) error {
	if w.stopped.Load() {
		return core.ErrWorkerStopped
	}
	op.Error = make(chan error, 1)

	select {
	case w.ops <- op:
	case <-w.ctx.Done():
		return core.ErrWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-op.Error:
		return err
	case <-w.ctx.Done():
		w.wg.Wait()
		select {
		case err := <-op.Error:
			return err
		default:
			return core.ErrWorkerStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync queues an operation without waiting. A full queue drops the
// operation.
func (w *PersistWorker) SubmitAsync(op *Operation) error {
	if w.stopped.Load() {
		return core.ErrWorkerStopped
	}
	select {
	case w.ops <- op:
		return nil
	default:
		w.opsDropped.Add(1)
		w.logger.Warn().Str("op", op.Type.String()).Msg("persistence queue full, dropping operation")
		return core.ErrWorkerQueueFull
	}
}

// Stop drains queued operations and stops the worker.
func (w *PersistWorker) Stop() {
	w.stopped.Store(true)
	w.cancel()
	w.wg.Wait()
}

// Stats returns worker stats
func (w *PersistWorker) Stats() map[string]any {
	w.mu.RLock()
	lastOp := w.lastOp
	w.mu.RUnlock()

	return map[string]any{
		"ops_processed":  w.opsProcessed.Load(),
		"ops_failed":     w.opsFailed.Load(),
		"ops_dropped":    w.opsDropped.Load(),
		"last_op":        lastOp,
		"queue_length":   len(w.ops),
		"queue_capacity": cap(w.ops),
	}
}
