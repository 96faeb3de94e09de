// Package search runs filtered, ranked and highlighted queries over the conversation index.
package search

import (
	"cmp"
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/hyperjump/kaiwa/internal/filter"
	"github.com/hyperjump/kaiwa/internal/index"
	"github.com/hyperjump/kaiwa/internal/keyword"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/ranking"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSuggestions is the suggestion count used when the caller passes none.
const DefaultSuggestions = 5

// DefaultParallelThreshold is the snapshot size from which scans are sharded.
const DefaultParallelThreshold = 4096

// Engine answers searches and suggestions against an index store.
type Engine struct {
	store             *index.Store
	ranker            *ranking.Ranker
	logger            *zap.Logger
	metrics           *Metrics
	parallelThreshold int
	ensureMu          sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the index store. By default the engine owns a fresh store.
func WithStore(s *index.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// WithRanker sets the ranker.
func WithRanker(r *ranking.Ranker) Option {
	return func(e *Engine) {
		if r != nil {
			e.ranker = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithParallelThreshold sets the entry count from which scans run in parallel shards.
// Zero or negative disables parallel scans.
func WithParallelThreshold(n int) Option {
	return func(e *Engine) { e.parallelThreshold = n }
}

// NewEngine creates an engine. Without options it uses a new store, the default
// ranking configuration and a no-op logger.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ranker:            ranking.NewRanker(nil),
		logger:            zap.NewNop(),
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = index.NewStore(index.WithLogger(e.logger))
	}
	return e
}

// EnsureIndex builds the index from conversations when it is empty and reports
// whether it did.
func (e *Engine) EnsureIndex(conversations []*models.Conversation) bool {
	if !e.store.IsEmpty() {
		return false
	}
	e.ensureMu.Lock()
	defer e.ensureMu.Unlock()
	if !e.store.IsEmpty() {
		return false
	}
	e.BuildIndex(conversations)
	return true
}

// BuildIndex replaces the index with one built from conversations.
func (e *Engine) BuildIndex(conversations []*models.Conversation) index.BuildStats {
	stats := e.store.Build(conversations)
	e.metrics.recordIndex(stats.Entries, stats.Version, true)
	return stats
}

// ClearIndex empties the index.
func (e *Engine) ClearIndex() {
	e.store.Clear()
	e.metrics.recordIndex(0, 0, false)
}

// IndexStats returns size, version and approximate memory of the current index.
func (e *Engine) IndexStats() models.IndexStats {
	return e.store.Stats()
}

// hit is a result plus the sort keys that are not part of the result itself.
type hit struct {
	result    *models.SearchResult
	charCount int
}

// Search runs filters and query over the index, building it from conversations
// first if it is empty. conversations also resolve each entry back to its
// conversation and message; entries whose data is missing are skipped. The only
// error is the context's, when it ends mid-scan.
func (e *Engine) Search(ctx context.Context, conversations []*models.Conversation, filters *models.SearchFilters, opts models.SearchOptions) (*models.SearchResponse, error) {
	start := time.Now()
	if filters == nil {
		filters = &models.SearchFilters{}
	}
	if err := opts.Normalize(); err != nil {
		e.logger.Debug("invalid search options, using defaults", zap.Error(err))
		opts = models.SearchOptions{MaxResults: opts.MaxResults, FuzzySearch: opts.FuzzySearch,
			CaseSensitive: opts.CaseSensitive, WholeWord: opts.WholeWord}
		_ = opts.Normalize()
	}

	e.EnsureIndex(conversations)
	snap := e.store.Snapshot()

	tokens := keyword.Tokenize(filters.Query)
	s := &scan{
		convs:       indexConversations(conversations),
		filters:     filters,
		query:       ranking.NewQuery(tokens, opts),
		ranker:      e.ranker,
		highlighter: NewHighlighter(tokens, opts),
	}

	hits, err := e.scanEntries(ctx, snap.Entries(), s)
	if err != nil {
		e.metrics.observeSearch("cancelled", 0, 0)
		return nil, err
	}

	sortHits(hits, opts.SortBy, opts.SortOrder)
	total := len(hits)
	if len(hits) > opts.MaxResults {
		hits = hits[:opts.MaxResults]
	}
	results := make([]*models.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = h.result
	}

	elapsed := time.Since(start)
	resp := &models.SearchResponse{
		Results: results,
		Stats:   ComputeStats(results, total, tokens, elapsed),
	}
	if total == 0 && len(tokens) > 0 && snap.Len() > 0 {
		resp.DidYouMean = keyword.NewSpellChecker(snap).SuggestedQuery(filters.Query)
	}

	e.metrics.observeSearch("ok", elapsed.Seconds(), total)
	e.logger.Debug("search complete",
		zap.Strings("tokens", tokens),
		zap.Int("total", total),
		zap.Int("returned", len(results)),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}

// scanEntries evaluates every entry and returns hits in entry order. Large
// snapshots are split into contiguous shards evaluated concurrently, each writing
// into its own slots, so the order matches a sequential scan.
func (e *Engine) scanEntries(ctx context.Context, entries []*models.IndexEntry, s *scan) ([]hit, error) {
	slots := make([]*hit, len(entries))

	if e.parallelThreshold <= 0 || len(entries) < e.parallelThreshold {
		for i, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			slots[i] = s.evaluate(entry)
		}
		return collect(slots), nil
	}

	workers := runtime.GOMAXPROCS(0)
	shard := (len(entries) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(entries); lo += shard {
		lo := lo
		hi := min(lo+shard, len(entries))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				slots[i] = s.evaluate(entries[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return collect(slots), nil
}

func collect(slots []*hit) []hit {
	hits := make([]hit, 0, len(slots)/4)
	for _, h := range slots {
		if h != nil {
			hits = append(hits, *h)
		}
	}
	return hits
}

// scan holds the per-query state shared by every entry evaluation. It is read-only
// during the scan.
type scan struct {
	convs       map[string]*models.Conversation
	filters     *models.SearchFilters
	query       *ranking.Query
	ranker      *ranking.Ranker
	highlighter *Highlighter
}

// evaluate returns the hit for entry, or nil when the entry is skipped.
func (s *scan) evaluate(entry *models.IndexEntry) *hit {
	conv, ok := s.convs[entry.Metadata.ConversationID]
	if !ok {
		return nil
	}
	if !filter.Matches(entry, s.filters, conv) {
		return nil
	}
	score := s.ranker.Score(entry, s.query)
	if !s.query.IsEmpty() && score == 0 {
		return nil
	}
	subject, ok := resolveSubject(entry, conv)
	if !ok {
		return nil
	}

	return &hit{
		result: &models.SearchResult{
			EntryID:      entry.ID,
			Subject:      subject,
			Conversation: conv,
			Highlights:   s.highlighter.Highlight(entry.Content),
			Score:        score,
			MatchType:    matchType(entry, s.query),
		},
		charCount: entry.CharCount,
	}
}

// resolveSubject finds the message an entry refers to. Version hits get a copy of
// the owning message carrying the version's content and timestamp.
func resolveSubject(entry *models.IndexEntry, conv *models.Conversation) (models.ResultSubject, bool) {
	if entry.Kind == models.FieldTitle {
		return models.ResultSubject{Kind: models.SubjectNone}, true
	}
	msg := conv.FindMessage(entry.Metadata.MessageID)
	if msg == nil {
		return models.ResultSubject{}, false
	}
	if entry.Kind == models.FieldMessage {
		return models.ResultSubject{Kind: models.SubjectMessage, Message: msg, SourceMessageID: msg.ID}, true
	}

	ver := msg.FindVersion(entry.Metadata.VersionID)
	if ver == nil {
		return models.ResultSubject{}, false
	}
	synth := *msg
	synth.ID = msg.ID + "-" + ver.ID
	synth.Content = ver.Content
	synth.Timestamp = ver.Timestamp
	synth.Versions = nil
	return models.ResultSubject{
		Kind:            models.SubjectVersion,
		Message:         &synth,
		SourceMessageID: msg.ID,
		SourceVersionID: ver.ID,
	}, true
}

func matchType(entry *models.IndexEntry, q *ranking.Query) models.MatchType {
	switch {
	case entry.Kind == models.FieldTitle:
		return models.MatchTitle
	case q.IsEmpty():
		return models.MatchMetadata
	default:
		return models.MatchContent
	}
}

// indexConversations maps ids to conversations; the first of duplicate ids wins.
func indexConversations(conversations []*models.Conversation) map[string]*models.Conversation {
	m := make(map[string]*models.Conversation, len(conversations))
	for _, c := range conversations {
		if c == nil {
			continue
		}
		if _, ok := m[c.ID]; !ok {
			m[c.ID] = c
		}
	}
	return m
}

// sortHits orders hits by key and order. Ties keep scan order.
func sortHits(hits []hit, key models.SortKey, order models.SortOrder) {
	var byKey func(a, b *hit) int
	switch key {
	case models.SortByDate:
		byKey = func(a, b *hit) int { return a.result.Timestamp().Compare(b.result.Timestamp()) }
	case models.SortByLength:
		byKey = func(a, b *hit) int { return cmp.Compare(a.charCount, b.charCount) }
	default:
		byKey = func(a, b *hit) int { return cmp.Compare(a.result.Score, b.result.Score) }
	}
	sort.SliceStable(hits, func(i, j int) bool {
		c := byKey(&hits[i], &hits[j])
		if order == models.SortAsc {
			return c < 0
		}
		return c > 0
	})
}

// Suggest returns up to limit indexed tokens starting with prefix, building the
// index from conversations first if it is empty. A negative limit means
// DefaultSuggestions; zero yields no suggestions.
func (e *Engine) Suggest(conversations []*models.Conversation, prefix string, limit int) []string {
	if limit < 0 {
		limit = DefaultSuggestions
	}
	e.EnsureIndex(conversations)
	e.metrics.recordSuggest()
	return e.store.Snapshot().Suggest(prefix, limit)
}

// FuzzySuggest is Suggest with subsequence matching, tolerant of missing letters.
func (e *Engine) FuzzySuggest(conversations []*models.Conversation, text string, limit int) []string {
	if limit < 0 {
		limit = DefaultSuggestions
	}
	e.EnsureIndex(conversations)
	e.metrics.recordSuggest()
	return e.store.Snapshot().FuzzySuggest(text, limit)
}
