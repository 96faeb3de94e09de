package ranking

import (
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

// FieldWeightMultiplier weights a score by the kind of field the entry was built from.
type FieldWeightMultiplier struct {
	config *RankingConfig
}

// NewFieldWeightMultiplier creates a new FieldWeightMultiplier.
func NewFieldWeightMultiplier(config *RankingConfig) *FieldWeightMultiplier {
	return &FieldWeightMultiplier{config: config}
}

// Name returns the multiplier name.
func (m *FieldWeightMultiplier) Name() string {
	return "field_weight"
}

// Multiply applies the field weight to the base score.
func (m *FieldWeightMultiplier) Multiply(ctx *ScoringContext, baseScore float64) float64 {
	if baseScore == 0 {
		return baseScore
	}
	switch ctx.Entry.Kind {
	case models.FieldTitle:
		return baseScore * m.config.TitleWeight
	case models.FieldVersion:
		return baseScore * m.config.VersionWeight
	default:
		return baseScore * m.config.MessageWeight
	}
}

// BookmarkMultiplier boosts entries of bookmarked messages.
type BookmarkMultiplier struct {
	config *RankingConfig
}

// NewBookmarkMultiplier creates a new BookmarkMultiplier.
func NewBookmarkMultiplier(config *RankingConfig) *BookmarkMultiplier {
	return &BookmarkMultiplier{config: config}
}

// Name returns the multiplier name.
func (m *BookmarkMultiplier) Name() string {
	return "bookmark"
}

// Multiply applies the bookmark boost to the base score.
func (m *BookmarkMultiplier) Multiply(ctx *ScoringContext, baseScore float64) float64 {
	if baseScore == 0 || !ctx.Entry.Metadata.IsBookmarked() {
		return baseScore
	}
	return baseScore * m.config.BookmarkMultiplier
}

// LongContentMultiplier dampens entries whose content is longer than the threshold.
type LongContentMultiplier struct {
	config *RankingConfig
}

// NewLongContentMultiplier creates a new LongContentMultiplier.
func NewLongContentMultiplier(config *RankingConfig) *LongContentMultiplier {
	return &LongContentMultiplier{config: config}
}

// Name returns the multiplier name.
func (m *LongContentMultiplier) Name() string {
	return "long_content"
}

// Multiply applies the long content penalty to the base score.
func (m *LongContentMultiplier) Multiply(ctx *ScoringContext, baseScore float64) float64 {
	if baseScore == 0 || ctx.Entry.CharCount <= m.config.LongContentThreshold {
		return baseScore
	}
	return baseScore * m.config.LongContentMultiplier
}

// RecencyMultiplier applies a boost based on how recently the entry was written.
type RecencyMultiplier struct {
	config *RankingConfig
}

// NewRecencyMultiplier creates a new RecencyMultiplier.
func NewRecencyMultiplier(config *RankingConfig) *RecencyMultiplier {
	return &RecencyMultiplier{config: config}
}

// Name returns the multiplier name.
func (m *RecencyMultiplier) Name() string {
	return "recency"
}

// Multiply applies the recency multiplier to the base score.
func (m *RecencyMultiplier) Multiply(ctx *ScoringContext, baseScore float64) float64 {
	if !m.config.RecencyEnabled || baseScore == 0 {
		return baseScore
	}

	ts := ctx.Entry.Metadata.Timestamp
	if ts.IsZero() {
		return baseScore
	}

	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	return baseScore * m.calculateMultiplier(now.Sub(ts))
}

func (m *RecencyMultiplier) calculateMultiplier(age time.Duration) float64 {
	switch {
	case age < 24*time.Hour:
		return m.config.Recency24hMultiplier
	case age < 7*24*time.Hour:
		return m.config.RecencyWeekMultiplier
	case age < 30*24*time.Hour:
		return m.config.RecencyMonthMultiplier
	default:
		return 1.0
	}
}

// DefaultMultipliers returns the multipliers in the order they are applied.
func DefaultMultipliers(config *RankingConfig) []Multiplier {
	return []Multiplier{
		NewFieldWeightMultiplier(config),
		NewBookmarkMultiplier(config),
		NewLongContentMultiplier(config),
		NewRecencyMultiplier(config),
	}
}

// ApplyMultipliers applies all multipliers in sequence.
func ApplyMultipliers(ctx *ScoringContext, baseScore float64, multipliers []Multiplier) float64 {
	score := baseScore
	for _, m := range multipliers {
		score = m.Multiply(ctx, score)
	}
	return score
}
