// Package ranking scores index entries against a tokenized query.
package ranking

import (
	"time"

	"github.com/hyperjump/kaiwa/internal/keyword"
	"github.com/hyperjump/kaiwa/internal/models"
)

// Query is a tokenized query prepared once and shared by every entry scored against it.
type Query struct {
	// Tokens are the normalized query terms.
	Tokens []string
	// Phrase is Tokens rejoined with single spaces.
	Phrase string
	// Options are the search options the query runs with.
	Options models.SearchOptions
	// wordMatchers holds one case-insensitive whole-word matcher per token,
	// populated only in whole-word mode.
	wordMatchers []*keyword.Matcher
}

// NewQuery prepares tokens for scoring under opts.
func NewQuery(tokens []string, opts models.SearchOptions) *Query {
	q := &Query{
		Tokens:  tokens,
		Phrase:  keyword.JoinTokens(tokens),
		Options: opts,
	}
	if opts.WholeWord {
		q.wordMatchers = make([]*keyword.Matcher, len(tokens))
		for i, tok := range tokens {
			q.wordMatchers[i] = keyword.NewMatcher(tok, false, true)
		}
	}
	return q
}

// IsEmpty reports whether the query has no terms.
func (q *Query) IsEmpty() bool {
	return q == nil || len(q.Tokens) == 0
}

// ScoringContext provides everything needed to score one entry.
type ScoringContext struct {
	// Query is the prepared query.
	Query *Query
	// Entry is the entry being scored.
	Entry *models.IndexEntry
	// Now is the reference time for recency boosts.
	Now time.Time
}

// NewScoringContext creates a ScoringContext for entry.
func NewScoringContext(query *Query, entry *models.IndexEntry) *ScoringContext {
	return &ScoringContext{Query: query, Entry: entry, Now: time.Now()}
}

// Scorer is the interface for additive scoring components.
type Scorer interface {
	// Score calculates the score for an entry given the scoring context.
	Score(ctx *ScoringContext) float64
	// Name returns the name of the scorer for debugging/logging.
	Name() string
}

// Multiplier is the interface for score multipliers.
type Multiplier interface {
	// Multiply applies a multiplier to the base score.
	Multiply(ctx *ScoringContext, baseScore float64) float64
	// Name returns the name of the multiplier for debugging/logging.
	Name() string
}

// ScoreBreakdown provides detailed scoring information for debugging.
type ScoreBreakdown struct {
	FinalScore   float64            `json:"final_score"`
	ContentScore float64            `json:"content_score"`
	Multipliers  map[string]float64 `json:"multipliers"`
}

// NewScoreBreakdown creates a new ScoreBreakdown instance.
func NewScoreBreakdown() *ScoreBreakdown {
	return &ScoreBreakdown{
		Multipliers: make(map[string]float64),
	}
}
