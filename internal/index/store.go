// Package index holds the in-memory conversation search index.
package index

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
	"go.uber.org/zap"
)

// Snapshot is an immutable, fully built set of index entries.
type Snapshot struct {
	entries []*models.IndexEntry
	version uint64
	memory  int
	vocab   []string       // distinct tokens in first-seen order
	freq    map[string]int // token -> number of entries containing it
}

var emptySnapshot = &Snapshot{}

func newSnapshot(entries []*models.IndexEntry, version uint64) *Snapshot {
	s := &Snapshot{entries: entries, version: version, freq: make(map[string]int)}
	if data, err := json.Marshal(entries); err == nil {
		s.memory = len(data)
	}
	for _, e := range entries {
		counted := make(map[string]struct{}, len(e.Tokens))
		for _, tok := range e.Tokens {
			if _, ok := counted[tok]; ok {
				continue
			}
			counted[tok] = struct{}{}
			if s.freq[tok] == 0 {
				s.vocab = append(s.vocab, tok)
			}
			s.freq[tok]++
		}
	}
	return s
}

// Entries returns the entries in build order. Callers must not modify them.
func (s *Snapshot) Entries() []*models.IndexEntry { return s.entries }

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Version returns the build counter this snapshot was published under (0 when empty).
func (s *Snapshot) Version() uint64 { return s.version }

// Terms returns the distinct tokens in first-seen order.
func (s *Snapshot) Terms() []string { return s.vocab }

// Frequency returns the number of entries whose tokens include term.
func (s *Snapshot) Frequency(term string) int { return s.freq[term] }

// Stats returns size, version and approximate memory of the snapshot.
func (s *Snapshot) Stats() models.IndexStats {
	return models.IndexStats{Size: len(s.entries), Version: s.version, Memory: s.memory}
}

// BuildStats describes a completed build.
type BuildStats struct {
	Entries  int           `json:"entries"`
	Version  uint64        `json:"version"`
	Duration time.Duration `json:"duration_ns"`
}

// Store owns the current snapshot. Readers load it without locking; Build and
// Clear publish a replacement atomically, so a reader never sees a partial build.
type Store struct {
	current atomic.Pointer[Snapshot]
	writeMu sync.Mutex
	logger  *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a logger for build and clear events.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(emptySnapshot)
	return s
}

// Snapshot returns the currently published snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// IsEmpty reports whether the current snapshot has no entries.
func (s *Store) IsEmpty() bool {
	return s.Snapshot().Len() == 0
}

// Build discards the current entries and publishes a new snapshot built from
// conversations, incrementing the version.
func (s *Store) Build(conversations []*models.Conversation) BuildStats {
	start := time.Now()
	entries := dedupe(BuildEntries(conversations), s.logger)

	s.writeMu.Lock()
	version := s.current.Load().version + 1
	s.current.Store(newSnapshot(entries, version))
	s.writeMu.Unlock()

	stats := BuildStats{Entries: len(entries), Version: version, Duration: time.Since(start)}
	s.logger.Info("search index built",
		zap.Int("entries", stats.Entries),
		zap.Uint64("version", stats.Version),
		zap.Duration("duration", stats.Duration),
	)
	return stats
}

// Clear publishes the empty snapshot.
func (s *Store) Clear() {
	s.writeMu.Lock()
	s.current.Store(emptySnapshot)
	s.writeMu.Unlock()
	s.logger.Debug("search index cleared")
}

// Stats returns the current snapshot's stats.
func (s *Store) Stats() models.IndexStats {
	return s.Snapshot().Stats()
}

// dedupe keeps the first entry for each id.
func dedupe(entries []*models.IndexEntry, logger *zap.Logger) []*models.IndexEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			logger.Warn("duplicate index entry skipped", zap.String("id", e.ID))
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
