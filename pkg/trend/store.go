// Package trend keeps the per-day history of logged emotions and derives
// temporal multipliers and pattern reports from it.
package trend

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qubicDB/emocore/pkg/core"
)

// DayKeyLayout formats day keys.
const DayKeyLayout = "2006-01-02"

// DefaultRetentionDays bounds the number of retained day keys.
const DefaultRetentionDays = 30

// TopEmotions is how many emotions a trend entry keeps.
const TopEmotions = 3

// DayKey returns the day key for t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

type dayBucket struct {
	mu      sync.Mutex
	entries []core.TrendEntry
}

// Store maps day keys to logged entries. Appends to the same day are
// serialized by that day's lock; creating or pruning days takes the
// store lock.
type Store struct {
	mu        sync.RWMutex
	days      map[string]*dayBucket
	retention int

	dirty   atomic.Bool
	appends atomic.Uint64
}

// NewStore creates a store keeping at most retentionDays day keys.
func NewStore(retentionDays int) *Store {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Store{
		days:      make(map[string]*dayBucket),
		retention: retentionDays,
	}
}

// Append records entry under its day key and returns the key. Entries keep
// at most TopEmotions emotions.
func (s *Store) Append(entry core.TrendEntry) string {
	if len(entry.Emotions) > TopEmotions {
		entry.Emotions = entry.Emotions[:TopEmotions]
	}
	entry.Emotions = append([]core.EmotionScore(nil), entry.Emotions...)
	key := DayKey(entry.Time)

	s.mu.RLock()
	b := s.days[key]
	s.mu.RUnlock()

	if b == nil {
		s.mu.Lock()
		b = s.days[key]
		if b == nil {
			b = &dayBucket{}
			s.days[key] = b
			s.pruneLocked()
		}
		s.mu.Unlock()
	}

	b.mu.Lock()
	b.entries = append(b.entries, entry)
	b.mu.Unlock()

	s.dirty.Store(true)
	s.appends.Add(1)
	return key
}

// pruneLocked drops the oldest day keys beyond retention. Caller holds mu.
func (s *Store) pruneLocked() int {
	if len(s.days) <= s.retention {
		return 0
	}
	keys := make([]string, 0, len(s.days))
	for k := range s.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	drop := len(keys) - s.retention
	for _, k := range keys[:drop] {
		delete(s.days, k)
	}
	return drop
}

// Entries returns a copy of the entries logged under day.
func (s *Store) Entries(day string) []core.TrendEntry {
	s.mu.RLock()
	b := s.days[day]
	s.mu.RUnlock()
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.TrendEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Days returns the retained day keys in ascending order.
func (s *Store) Days() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.days))
	for k := range s.days {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of retained day keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.days)
}

// Snapshot copies the store into a persistable document.
func (s *Store) Snapshot() core.TrendDocument {
	doc := core.TrendDocument{Days: make(map[string][]core.TrendEntry)}
	for _, day := range s.Days() {
		if entries := s.Entries(day); len(entries) > 0 {
			doc.Days[day] = entries
		}
	}
	return doc
}

// Restore replaces the store contents with doc, applying retention.
func (s *Store) Restore(doc core.TrendDocument) {
	days := make(map[string]*dayBucket, len(doc.Days))
	for day, entries := range doc.Days {
		if _, err := time.Parse(DayKeyLayout, day); err != nil || len(entries) == 0 {
			continue
		}
		days[day] = &dayBucket{entries: append([]core.TrendEntry(nil), entries...)}
	}

	s.mu.Lock()
	s.days = days
	s.pruneLocked()
	s.mu.Unlock()
	s.dirty.Store(false)
}

// Dirty reports whether entries were appended since the last MarkClean.
func (s *Store) Dirty() bool { return s.dirty.Load() }

// MarkClean clears the dirty flag ahead of a flush.
func (s *Store) MarkClean() { s.dirty.Store(false) }

// MarkDirty flags the store for the next flush, e.g. after a failed one.
func (s *Store) MarkDirty() { s.dirty.Store(true) }

// Stats returns store statistics.
func (s *Store) Stats() map[string]any {
	return map[string]any{
		"days":           s.Len(),
		"retention_days": s.retention,
		"appends":        s.appends.Load(),
		"dirty":          s.Dirty(),
	}
}
