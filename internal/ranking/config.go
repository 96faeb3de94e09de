package ranking

// RankingConfig holds the scoring constants. The defaults are heuristic; what matters
// is their relative size (phrase > whole word > substring > fuzzy).
type RankingConfig struct {
	// Score returned for every entry when the query is empty
	NoQueryScore float64 `yaml:"no_query_score"` // default: 1

	// Additive bonuses
	PhraseMatchBonus float64 `yaml:"phrase_match_bonus"` // default: 100
	WholeWordBonus   float64 `yaml:"whole_word_bonus"`   // default: 10
	SubstringBonus   float64 `yaml:"substring_bonus"`    // default: 5
	FuzzyBonus       float64 `yaml:"fuzzy_bonus"`        // default: 2
	FuzzyThreshold   float64 `yaml:"fuzzy_threshold"`    // default: 0.8

	// Field weights
	TitleWeight   float64 `yaml:"title_weight"`   // default: 2.0
	MessageWeight float64 `yaml:"message_weight"` // default: 1.0
	VersionWeight float64 `yaml:"version_weight"` // default: 0.8

	// Bookmark and long content multipliers
	BookmarkMultiplier    float64 `yaml:"bookmark_multiplier"`     // default: 1.2
	LongContentThreshold  int     `yaml:"long_content_threshold"`  // default: 2000 characters
	LongContentMultiplier float64 `yaml:"long_content_multiplier"` // default: 0.9

	// Recency multiplier settings
	RecencyEnabled         bool    `yaml:"recency_enabled"`          // default: false
	Recency24hMultiplier   float64 `yaml:"recency_24h_multiplier"`   // default: 1.2
	RecencyWeekMultiplier  float64 `yaml:"recency_week_multiplier"`  // default: 1.1
	RecencyMonthMultiplier float64 `yaml:"recency_month_multiplier"` // default: 1.05
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		NoQueryScore: 1,

		PhraseMatchBonus: 100,
		WholeWordBonus:   10,
		SubstringBonus:   5,
		FuzzyBonus:       2,
		FuzzyThreshold:   0.8,

		TitleWeight:   2.0,
		MessageWeight: 1.0,
		VersionWeight: 0.8,

		BookmarkMultiplier:    1.2,
		LongContentThreshold:  2000,
		LongContentMultiplier: 0.9,

		RecencyEnabled:         false,
		Recency24hMultiplier:   1.2,
		RecencyWeekMultiplier:  1.1,
		RecencyMonthMultiplier: 1.05,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()

	if c.NoQueryScore == 0 {
		c.NoQueryScore = defaults.NoQueryScore
	}

	if c.PhraseMatchBonus == 0 {
		c.PhraseMatchBonus = defaults.PhraseMatchBonus
	}
	if c.WholeWordBonus == 0 {
		c.WholeWordBonus = defaults.WholeWordBonus
	}
	if c.SubstringBonus == 0 {
		c.SubstringBonus = defaults.SubstringBonus
	}
	if c.FuzzyBonus == 0 {
		c.FuzzyBonus = defaults.FuzzyBonus
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = defaults.FuzzyThreshold
	}

	if c.TitleWeight == 0 {
		c.TitleWeight = defaults.TitleWeight
	}
	if c.MessageWeight == 0 {
		c.MessageWeight = defaults.MessageWeight
	}
	if c.VersionWeight == 0 {
		c.VersionWeight = defaults.VersionWeight
	}

	if c.BookmarkMultiplier == 0 {
		c.BookmarkMultiplier = defaults.BookmarkMultiplier
	}
	if c.LongContentThreshold == 0 {
		c.LongContentThreshold = defaults.LongContentThreshold
	}
	if c.LongContentMultiplier == 0 {
		c.LongContentMultiplier = defaults.LongContentMultiplier
	}

	if c.Recency24hMultiplier == 0 {
		c.Recency24hMultiplier = defaults.Recency24hMultiplier
	}
	if c.RecencyWeekMultiplier == 0 {
		c.RecencyWeekMultiplier = defaults.RecencyWeekMultiplier
	}
	if c.RecencyMonthMultiplier == 0 {
		c.RecencyMonthMultiplier = defaults.RecencyMonthMultiplier
	}
}
