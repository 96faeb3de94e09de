package ranking

import (
	"strings"

	"github.com/hyperjump/kaiwa/internal/keyword"
)

// ContentScorer adds phrase, per-term and fuzzy bonuses for an entry's content.
type ContentScorer struct {
	config *RankingConfig
}

// NewContentScorer creates a new ContentScorer with the given config.
func NewContentScorer(config *RankingConfig) *ContentScorer {
	return &ContentScorer{config: config}
}

// Name returns the scorer name.
func (s *ContentScorer) Name() string {
	return "content"
}

// Score calculates the additive content score. It is zero when nothing matches.
func (s *ContentScorer) Score(ctx *ScoringContext) float64 {
	if ctx.Entry == nil || ctx.Query.IsEmpty() {
		return 0
	}

	score := s.scorePhrase(ctx)
	score += s.scoreTerms(ctx)
	if ctx.Query.Options.FuzzySearch {
		score += s.scoreFuzzy(ctx)
	}
	return score
}

func (s *ContentScorer) scorePhrase(ctx *ScoringContext) float64 {
	if strings.Contains(strings.ToLower(ctx.Entry.Content), ctx.Query.Phrase) {
		return s.config.PhraseMatchBonus
	}
	return 0
}

func (s *ContentScorer) scoreTerms(ctx *ScoringContext) float64 {
	score := 0.0
	for i, tok := range ctx.Query.Tokens {
		if ctx.Query.wordMatchers != nil {
			if ctx.Query.wordMatchers[i].MatchString(ctx.Entry.Content) {
				score += s.config.WholeWordBonus
			}
			continue
		}
		if anyTokenContains(ctx.Entry.Tokens, tok) {
			score += s.config.SubstringBonus
		}
	}
	return score
}

// scoreFuzzy adds a bonus for every (query token, entry token) pair that is similar enough.
func (s *ContentScorer) scoreFuzzy(ctx *ScoringContext) float64 {
	score := 0.0
	for _, qt := range ctx.Query.Tokens {
		for _, et := range ctx.Entry.Tokens {
			if keyword.Similarity(qt, et) >= s.config.FuzzyThreshold {
				score += s.config.FuzzyBonus
			}
		}
	}
	return score
}

func anyTokenContains(tokens []string, term string) bool {
	for _, t := range tokens {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}
