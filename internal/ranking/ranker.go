package ranking

import (
	"github.com/hyperjump/kaiwa/internal/models"
)

// Ranker combines the content scorer and multipliers to score index entries.
type Ranker struct {
	config        *RankingConfig
	contentScorer Scorer
	multipliers   []Multiplier
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:        config,
		contentScorer: NewContentScorer(config),
		multipliers:   DefaultMultipliers(config),
	}
}

// WithMultipliers sets custom multipliers.
func (r *Ranker) WithMultipliers(multipliers []Multiplier) *Ranker {
	r.multipliers = multipliers
	return r
}

// Config returns the ranking configuration in use.
func (r *Ranker) Config() *RankingConfig {
	return r.config
}

// Score returns the relevance of entry for query. An empty query scores every entry
// the same constant; otherwise zero means no match.
func (r *Ranker) Score(entry *models.IndexEntry, query *Query) float64 {
	if query.IsEmpty() {
		return r.config.NoQueryScore
	}
	if entry == nil {
		return 0
	}
	ctx := NewScoringContext(query, entry)
	return ApplyMultipliers(ctx, r.contentScorer.Score(ctx), r.multipliers)
}

// ScoreWithBreakdown returns detailed scoring information.
func (r *Ranker) ScoreWithBreakdown(entry *models.IndexEntry, query *Query) *ScoreBreakdown {
	breakdown := NewScoreBreakdown()
	if query.IsEmpty() {
		breakdown.FinalScore = r.config.NoQueryScore
		return breakdown
	}
	if entry == nil {
		return breakdown
	}

	ctx := NewScoringContext(query, entry)
	breakdown.ContentScore = r.contentScorer.Score(ctx)

	score := breakdown.ContentScore
	for _, m := range r.multipliers {
		prevScore := score
		score = m.Multiply(ctx, score)
		if prevScore != 0 {
			breakdown.Multipliers[m.Name()] = score / prevScore
		} else {
			breakdown.Multipliers[m.Name()] = 1.0
		}
	}
	breakdown.FinalScore = score

	return breakdown
}
