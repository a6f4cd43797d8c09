package engine

import (
	"context"
	"sync"

	"github.com/qubicDB/emocore/pkg/concurrency"
	"github.com/qubicDB/emocore/pkg/core"
)

// memoryLog is the interaction log of an engine without a store.
type memoryLog struct {
	mu      sync.RWMutex
	records []core.InteractionRecord
}

func (l *memoryLog) AppendInteraction(record core.InteractionRecord) error {
	l.mu.Lock()
	l.records = append(l.records, record)
	l.mu.Unlock()
	return nil
}

func (l *memoryLog) ReadInteractions() ([]core.InteractionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.InteractionRecord(nil), l.records...), nil
}

func (l *memoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// workerPersister saves retrained lexicons through the persistence worker
// so every disk write is serialized on one goroutine.
type workerPersister struct {
	w *concurrency.PersistWorker
}

func (p workerPersister) SaveLexicon(doc *core.LexiconDocument) error {
	return p.w.Submit(context.Background(), &concurrency.Operation{
		Type:    concurrency.OpSaveLexicon,
		Payload: doc,
	})
}
