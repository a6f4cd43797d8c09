package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qubicDB/emocore/pkg/core"
)

const (
	FsyncPolicyAlways   = "always"
	FsyncPolicyInterval = "interval"
	FsyncPolicyOff      = "off"
)

// File names under the data path.
const (
	LexiconFile      = "lexicon.emlx"
	TrendFile        = "trend.emtr"
	InteractionsFile = "interactions.log"

	corruptSuffix = ".corrupt"
)

// DurabilityConfig defines persistence durability controls.
type DurabilityConfig struct {
	FsyncPolicy   string
	FsyncInterval time.Duration
}

// DefaultDurabilityConfig returns the default durability profile.
func DefaultDurabilityConfig() DurabilityConfig {
	return DurabilityConfig{
		FsyncPolicy:   FsyncPolicyInterval,
		FsyncInterval: 1 * time.Second,
	}
}

func (c DurabilityConfig) normalized() DurabilityConfig {
	n := c
	n.FsyncPolicy = strings.ToLower(strings.TrimSpace(n.FsyncPolicy))
	if n.FsyncPolicy != FsyncPolicyAlways && n.FsyncPolicy != FsyncPolicyInterval && n.FsyncPolicy != FsyncPolicyOff {
		n.FsyncPolicy = FsyncPolicyInterval
	}
	if n.FsyncInterval <= 0 {
		n.FsyncInterval = 1 * time.Second
	}
	return n
}

// Store handles file-based persistence of the lexicon snapshot, the trend
// snapshot and the interaction log.
type Store struct {
	basePath string
	codec    *Codec

	durability DurabilityConfig
	journal    *Journal

	// Serializes snapshot writes per file.
	lexiconMu sync.Mutex
	trendMu   sync.Mutex

	// Stats
	totalWrites   atomic.Uint64
	totalReads    atomic.Uint64
	totalAppends  atomic.Uint64
	quarantined   atomic.Uint64
	lastTrendSave atomic.Int64

	syncMu   sync.Mutex
	lastSync time.Time
}

// NewStore creates a new persistence store
func NewStore(basePath string, compress bool) (*Store, error) {
	return NewStoreWithDurability(basePath, compress, DefaultDurabilityConfig())
}

// NewStoreWithDurability creates a new persistence store with durability settings.
func NewStoreWithDurability(basePath string, compress bool, durability DurabilityConfig) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	s := &Store{
		basePath:   basePath,
		codec:      NewCodec(compress),
		durability: durability.normalized(),
	}

	journal, err := OpenJournal(filepath.Join(basePath, InteractionsFile), s.shouldSync, s.syncDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open interaction log: %w", err)
	}
	s.journal = journal
	return s, nil
}

// BasePath returns the data directory.
func (s *Store) BasePath() string { return s.basePath }

// SaveLexicon atomically replaces the lexicon snapshot.
func (s *Store) SaveLexicon(doc *core.LexiconDocument) error {
	if doc == nil {
		return errors.New("nil lexicon document")
	}
	s.lexiconMu.Lock()
	defer s.lexiconMu.Unlock()
	return s.saveSnapshot(LexiconFile, MagicLexicon, doc)
}

// LoadLexicon reads the lexicon snapshot. A missing file returns
// core.ErrSnapshotNotFound; an unreadable one is moved aside and returns
// an error wrapping core.ErrSnapshotCorrupt.
func (s *Store) LoadLexicon() (*core.LexiconDocument, error) {
	s.lexiconMu.Lock()
	defer s.lexiconMu.Unlock()

	var doc core.LexiconDocument
	if err := s.loadSnapshot(LexiconFile, MagicLexicon, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveTrend atomically replaces the trend snapshot.
func (s *Store) SaveTrend(doc core.TrendDocument) error {
	s.trendMu.Lock()
	defer s.trendMu.Unlock()
	if err := s.saveSnapshot(TrendFile, MagicTrend, doc); err != nil {
		return err
	}
	s.lastTrendSave.Store(time.Now().UnixNano())
	return nil
}

// LoadTrend reads the trend snapshot with the same error contract as
// LoadLexicon.
func (s *Store) LoadTrend() (core.TrendDocument, error) {
	s.trendMu.Lock()
	defer s.trendMu.Unlock()

	var doc core.TrendDocument
	if err := s.loadSnapshot(TrendFile, MagicTrend, &doc); err != nil {
		return core.TrendDocument{}, err
	}
	if doc.Days == nil {
		doc.Days = make(map[string][]core.TrendEntry)
	}
	return doc, nil
}

// AppendInteraction appends one record to the interaction log.
func (s *Store) AppendInteraction(record core.InteractionRecord) error {
	if err := s.journal.Append(record); err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	s.totalAppends.Add(1)
	return nil
}

// ReadInteractions returns every intact interaction record.
func (s *Store) ReadInteractions() ([]core.InteractionRecord, error) {
	s.totalReads.Add(1)
	return s.journal.ReadAll()
}

func (s *Store) saveSnapshot(name, magic string, v any) error {
	data, err := s.codec.Encode(magic, v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.writeAtomically(filepath.Join(s.basePath, name), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.totalWrites.Add(1)
	return nil
}

func (s *Store) loadSnapshot(name, magic string, v any) error {
	path := filepath.Join(s.basePath, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", core.ErrSnapshotNotFound, name)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	s.totalReads.Add(1)

	if err := s.codec.Decode(magic, raw, v); err != nil {
		if qErr := s.quarantine(path); qErr != nil {
			return fmt.Errorf("%s: %w (quarantine failed: %v)", name, err, qErr)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// quarantine moves a corrupt file aside so the next save starts clean.
func (s *Store) quarantine(path string) error {
	if err := os.Rename(path, path+corruptSuffix); err != nil {
		return err
	}
	s.quarantined.Add(1)
	return nil
}

func (s *Store) writeAtomically(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	syncNow := s.shouldSync()
	if syncNow {
		if err := f.Sync(); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if syncNow {
		if err := s.syncDir(filepath.Dir(path)); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) shouldSync() bool {
	switch s.durability.FsyncPolicy {
	case FsyncPolicyOff:
		return false
	case FsyncPolicyAlways:
		return true
	default:
		now := time.Now()
		s.syncMu.Lock()
		defer s.syncMu.Unlock()
		if s.lastSync.IsZero() || now.Sub(s.lastSync) >= s.durability.FsyncInterval {
			s.lastSync = now
			return true
		}
		return false
	}
}

func (s *Store) syncDir(path string) error {
	if runtime.GOOS == "windows" {
		// Windows does not support fsync on directories in this mode.
		return nil
	}

	d, err := os.Open(path)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Stats returns persistence statistics
func (s *Store) Stats() map[string]any {
	stats := map[string]any{
		"base_path":           s.basePath,
		"fsync_policy":        s.durability.FsyncPolicy,
		"total_writes":        s.totalWrites.Load(),
		"total_reads":         s.totalReads.Load(),
		"total_appends":       s.totalAppends.Load(),
		"quarantined_files":   s.quarantined.Load(),
		"interaction_records": s.journal.Len(),
		"interaction_bytes":   s.journal.Size(),
	}
	if ts := s.lastTrendSave.Load(); ts > 0 {
		stats["last_trend_save"] = time.Unix(0, ts).UTC()
	}
	return stats
}
