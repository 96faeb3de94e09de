package keyword

import (
	"sort"
	"strings"
)

// Dictionary is a read-only term vocabulary with per-term frequencies.
type Dictionary interface {
	// Terms returns every distinct term.
	Terms() []string
	// Frequency returns how many entries contain term (0 when absent).
	Frequency(term string) int
}

// Suggestion represents a spelling suggestion with its score.
type Suggestion struct {
	Term      string  `json:"term"`      // The suggested term
	Distance  int     `json:"distance"`  // Edit distance from the original term
	Frequency int     `json:"frequency"` // Entry frequency (popularity)
	Score     float64 `json:"score"`     // Combined score for ranking
}

// SpellCheckResult contains the result of spell checking a query.
type SpellCheckResult struct {
	OriginalQuery   string       `json:"original_query"`
	CorrectedQuery  string       `json:"corrected_query"`
	Suggestions     []Suggestion `json:"suggestions"`
	HasCorrections  bool         `json:"has_corrections"`
	MisspelledTerms []string     `json:"misspelled_terms"`
}

// SpellChecker suggests vocabulary terms close to misspelled query terms.
// It is safe for concurrent use as long as the dictionary is.
type SpellChecker struct {
	dictionary     Dictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int
}

// SpellCheckerOption is a functional option for configuring SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency sets the minimum entry frequency for suggestions.
// Terms with lower frequency are ignored (likely rare or noise).
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions to return per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a new SpellChecker over dict.
func NewSpellChecker(dict Dictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Check tokenizes query and returns suggestions for every term not in the dictionary.
func (s *SpellChecker) Check(query string) *SpellCheckResult {
	terms := Tokenize(query)
	result := &SpellCheckResult{
		OriginalQuery:   query,
		Suggestions:     make([]Suggestion, 0),
		MisspelledTerms: make([]string, 0),
	}

	corrected := make([]string, 0, len(terms))
	for _, term := range terms {
		if !s.IsMisspelled(term) {
			corrected = append(corrected, term)
			continue
		}

		suggestions := s.Suggest(term)
		if len(suggestions) == 0 {
			corrected = append(corrected, term)
			continue
		}
		result.HasCorrections = true
		result.MisspelledTerms = append(result.MisspelledTerms, term)
		result.Suggestions = append(result.Suggestions, suggestions...)
		corrected = append(corrected, suggestions[0].Term)
	}

	result.CorrectedQuery = JoinTokens(corrected)
	return result
}

// Suggest returns spelling suggestions for a single term, best first.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	term = strings.ToLower(term)
	termLen := len([]rune(term))
	suggestions := make([]Suggestion, 0)

	for _, candidate := range s.dictionary.Terms() {
		if candidate == term {
			continue
		}

		// Length difference is a lower bound on the edit distance.
		lenDiff := len([]rune(candidate)) - termLen
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > s.maxDistance {
			continue
		}

		distance := LevenshteinDistance(term, candidate)
		if distance > s.maxDistance {
			continue
		}
		freq := s.dictionary.Frequency(candidate)
		if freq < s.minFreq {
			continue
		}

		suggestions = append(suggestions, Suggestion{
			Term:      candidate,
			Distance:  distance,
			Frequency: freq,
			Score:     (1.0 / float64(distance+1)) * float64(freq),
		})
	}

	// Ties keep dictionary order.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}
	return suggestions
}

// IsMisspelled reports whether term is absent from the dictionary.
func (s *SpellChecker) IsMisspelled(term string) bool {
	return s.dictionary.Frequency(strings.ToLower(term)) == 0
}

// SuggestedQuery returns the corrected query, or "" when nothing was corrected.
func (s *SpellChecker) SuggestedQuery(query string) string {
	result := s.Check(query)
	if !result.HasCorrections {
		return ""
	}
	return result.CorrectedQuery
}
