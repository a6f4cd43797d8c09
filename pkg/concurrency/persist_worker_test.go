package concurrency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubicDB/emocore/pkg/core"
)

type fakeBackend struct {
	mu       sync.Mutex
	records  []core.InteractionRecord
	trends   int
	lexicons int
	fail     error
	delay    time.Duration
}

func (b *fakeBackend) AppendInteraction(r core.InteractionRecord) error {
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.records = append(b.records, r)
	return nil
}

func (b *fakeBackend) SaveTrend(core.TrendDocument) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.trends++
	return nil
}

func (b *fakeBackend) SaveLexicon(*core.LexiconDocument) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.lexicons++
	return nil
}

func (b *fakeBackend) recordCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

func record(i int) core.InteractionRecord {
	return core.InteractionRecord{ID: fmt.Sprintf("r%d", i), Text: "hello", Emotion: core.Happy}
}

func TestOperationTypes(t *testing.T) {
	ops := []OpType{OpAppendInteraction, OpFlushTrend, OpSaveLexicon, OpShutdown}

	seen := make(map[OpType]bool)
	names := make(map[string]bool)
	for _, op := range ops {
		if seen[op] {
			t.Errorf("Duplicate OpType: %d", op)
		}
		if names[op.String()] {
			t.Errorf("Duplicate OpType name: %s", op)
		}
		seen[op] = true
		names[op.String()] = true
	}
}

func TestPersistWorkerSubmit(t *testing.T) {
	backend := &fakeBackend{}
	w := NewPersistWorker(backend, 0, zerolog.Nop())
	defer w.Stop()

	ctx := context.Background()
	if err := w.Submit(ctx, &Operation{Type: OpAppendInteraction, Payload: record(1)}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := w.Submit(ctx, &Operation{Type: OpFlushTrend, Payload: core.TrendDocument{}}); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if err := w.Submit(ctx, &Operation{Type: OpSaveLexicon, Payload: &core.LexiconDocument{}}); err != nil {
		t.Fatalf("save lexicon failed: %v", err)
	}

	if backend.recordCount() != 1 || backend.trends != 1 || backend.lexicons != 1 {
		t.Errorf("unexpected backend state: %+v", backend)
	}
	if w.Stats()["ops_processed"].(uint64) != 3 {
		t.Errorf("unexpected stats: %v", w.Stats())
	}
}

func TestPersistWorkerBadPayload(t *testing.T) {
	w := NewPersistWorker(&fakeBackend{}, 0, zerolog.Nop())
	defer w.Stop()

	err := w.Submit(context.Background(), &Operation{Type: OpFlushTrend, Payload: "nope"})
	if err == nil {
		t.Fatal("expected payload error")
	}
}

func TestPersistWorkerErrorHook(t *testing.T) {
	boom := errors.New("disk full")
	w := NewPersistWorker(&fakeBackend{fail: boom}, 0, zerolog.Nop())
	defer w.Stop()

	var (
		mu     sync.Mutex
		failed []OpType
	)
	w.SetErrorHook(func(op OpType, err error) {
		mu.Lock()
		defer mu.Unlock()
		if errors.Is(err, boom) {
			failed = append(failed, op)
		}
	})

	if err := w.Submit(context.Background(), &Operation{Type: OpAppendInteraction, Payload: record(1)}); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(failed) != 1 || failed[0] != OpAppendInteraction {
		t.Errorf("hook not called as expected: %v", failed)
	}
	if w.Stats()["ops_failed"].(uint64) != 1 {
		t.Error("failure should be counted")
	}
}

func TestPersistWorkerAsyncPreservesOrder(t *testing.T) {
	backend := &fakeBackend{}
	w := NewPersistWorker(backend, 100, zerolog.Nop())

	for i := 0; i < 50; i++ {
		if err := w.SubmitAsync(&Operation{Type: OpAppendInteraction, Payload: record(i)}); err != nil {
			t.Fatalf("SubmitAsync failed: %v", err)
		}
	}
	w.Stop()

	if backend.recordCount() != 50 {
		t.Fatalf("expected queued ops to drain on stop, got %d", backend.recordCount())
	}
	for i, r := range backend.records {
		if r.ID != fmt.Sprintf("r%d", i) {
			t.Fatalf("record %d out of order: %s", i, r.ID)
		}
	}
}

func TestPersistWorkerQueueFull(t *testing.T) {
	backend := &fakeBackend{delay: 50 * time.Millisecond}
	w := NewPersistWorker(backend, 1, zerolog.Nop())
	defer w.Stop()

	var full bool
	for i := 0; i < 10; i++ {
		if err := w.SubmitAsync(&Operation{Type: OpAppendInteraction, Payload: record(i)}); errors.Is(err, core.ErrWorkerQueueFull) {
			full = true
			break
		}
	}
	if !full {
		t.Fatal("expected the queue to fill up")
	}
	if w.Stats()["ops_dropped"].(uint64) == 0 {
		t.Error("dropped operations should be counted")
	}
}

func TestPersistWorkerStopped(t *testing.T) {
	w := NewPersistWorker(&fakeBackend{}, 0, zerolog.Nop())
	w.Stop()

	if err := w.Submit(context.Background(), &Operation{Type: OpFlushTrend, Payload: core.TrendDocument{}}); !errors.Is(err, core.ErrWorkerStopped) {
		t.Errorf("expected ErrWorkerStopped, got %v", err)
	}
	if err := w.SubmitAsync(&Operation{Type: OpFlushTrend}); !errors.Is(err, core.ErrWorkerStopped) {
		t.Errorf("expected ErrWorkerStopped, got %v", err)
	}
}

func TestPersistWorkerShutdownOp(t *testing.T) {
	backend := &fakeBackend{}
	w := NewPersistWorker(backend, 10, zerolog.Nop())

	w.SubmitAsync(&Operation{Type: OpAppendInteraction, Payload: record(1)})
	w.SubmitAsync(&Operation{Type: OpShutdown})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after shutdown op")
	}
	if backend.recordCount() != 1 {
		t.Error("operation queued before shutdown should be processed")
	}
	w.Stop()
}

func BenchmarkPersistWorkerSubmit(b *testing.B) {
	w := NewPersistWorker(&fakeBackend{}, 0, zerolog.Nop())
	defer w.Stop()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Submit(ctx, &Operation{Type: OpAppendInteraction, Payload: record(i)})
	}
}
