package keyword

import (
	"sort"
	"testing"
)

// mapDictionary is a Dictionary backed by a map, with terms in sorted order.
type mapDictionary map[string]int

func (m mapDictionary) Terms() []string {
	result := make([]string, 0, len(m))
	for term := range m {
		result = append(result, term)
	}
	sort.Strings(result)
	return result
}

func (m mapDictionary) Frequency(term string) int {
	return m[term]
}

func TestSpellChecker_NewSpellChecker(t *testing.T) {
	dict := mapDictionary{"hello": 10}

	sc := NewSpellChecker(dict)
	if sc == nil {
		t.Fatal("NewSpellChecker returned nil")
	}
	if sc.maxDistance != 2 {
		t.Errorf("default maxDistance = %d, want 2", sc.maxDistance)
	}
	if sc.minFreq != 1 {
		t.Errorf("default minFreq = %d, want 1", sc.minFreq)
	}
	if sc.maxSuggestions != 5 {
		t.Errorf("default maxSuggestions = %d, want 5", sc.maxSuggestions)
	}
}

func TestSpellChecker_NewSpellChecker_WithOptions(t *testing.T) {
	dict := mapDictionary{"hello": 10}

	sc := NewSpellChecker(dict,
		WithMaxDistance(3),
		WithMinFrequency(5),
		WithMaxSuggestions(10),
	)

	if sc.maxDistance != 3 {
		t.Errorf("maxDistance = %d, want 3", sc.maxDistance)
	}
	if sc.minFreq != 5 {
		t.Errorf("minFreq = %d, want 5", sc.minFreq)
	}
	if sc.maxSuggestions != 10 {
		t.Errorf("maxSuggestions = %d, want 10", sc.maxSuggestions)
	}
}

func TestSpellChecker_Suggest(t *testing.T) {
	dict := mapDictionary{
		"meeting":  100,
		"schedule": 80,
		"process":  60,
		"machine":  50,
		"learning": 40,
	}
	sc := NewSpellChecker(dict, WithMaxDistance(2))

	tests := []struct {
		name      string
		term      string
		wantFirst string
	}{
		{"meetnig -> meeting", "meetnig", "meeting"},
		{"machne -> machine", "machne", "machine"},
		{"uppercase typo", "LERNING", "learning"},
		{"no match", "xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := sc.Suggest(tt.term)
			if tt.wantFirst == "" {
				if len(suggestions) != 0 {
					t.Errorf("Suggest(%q) = %v, want none", tt.term, suggestions)
				}
				return
			}
			if len(suggestions) == 0 {
				t.Fatalf("Suggest(%q) returned no suggestions", tt.term)
			}
			if suggestions[0].Term != tt.wantFirst {
				t.Errorf("Suggest(%q)[0].Term = %q, want %q", tt.term, suggestions[0].Term, tt.wantFirst)
			}
		})
	}
}

func TestSpellChecker_Check(t *testing.T) {
	dict := mapDictionary{
		"core":     100,
		"hours":    80,
		"remote":   60,
		"machine":  50,
		"learning": 40,
	}
	sc := NewSpellChecker(dict, WithMaxDistance(2))

	tests := []struct {
		name           string
		query          string
		wantCorrected  string
		wantHasCorrect bool
		wantMisspelled int
	}{
		{"valid query", "core hours", "core hours", false, 0},
		{"single typo", "hourz", "hours", true, 1},
		{"multiple typos", "machne lerning", "machine learning", true, 2},
		{"mixed valid and typo", "remote hoers", "remote hours", true, 1},
		{"punctuation is tokenized away", "Core, hours!", "core hours", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sc.Check(tt.query)

			if result.CorrectedQuery != tt.wantCorrected {
				t.Errorf("Check(%q).CorrectedQuery = %q, want %q", tt.query, result.CorrectedQuery, tt.wantCorrected)
			}
			if result.HasCorrections != tt.wantHasCorrect {
				t.Errorf("Check(%q).HasCorrections = %v, want %v", tt.query, result.HasCorrections, tt.wantHasCorrect)
			}
			if len(result.MisspelledTerms) != tt.wantMisspelled {
				t.Errorf("Check(%q).MisspelledTerms has %d items, want %d", tt.query, len(result.MisspelledTerms), tt.wantMisspelled)
			}
		})
	}
}

func TestSpellChecker_IsMisspelled(t *testing.T) {
	sc := NewSpellChecker(mapDictionary{"hello": 10, "world": 20})

	tests := []struct {
		term string
		want bool
	}{
		{"hello", false},
		{"world", false},
		{"helo", true},
		{"HELLO", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := sc.IsMisspelled(tt.term); got != tt.want {
				t.Errorf("IsMisspelled(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestSpellChecker_SuggestedQuery(t *testing.T) {
	sc := NewSpellChecker(mapDictionary{"core": 100, "hours": 80})

	tests := []struct {
		query string
		want  string
	}{
		{"core hours", ""},
		{"cor", "core"},
		{"cor hoursx", "core hours"},
		{"zzzzzzzz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := sc.SuggestedQuery(tt.query); got != tt.want {
				t.Errorf("SuggestedQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestSpellChecker_Suggest_RanksByFrequency(t *testing.T) {
	// "tast" is 1 edit away from each term.
	dict := mapDictionary{
		"test": 100,
		"fast": 10,
		"last": 50,
	}
	sc := NewSpellChecker(dict, WithMaxDistance(1))

	suggestions := sc.Suggest("tast")
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	want := []string{"test", "last", "fast"}
	for i, w := range want {
		if suggestions[i].Term != w {
			t.Errorf("suggestions[%d] = %q, want %q", i, suggestions[i].Term, w)
		}
	}
}

func TestSpellChecker_Suggest_RespectsMaxDistance(t *testing.T) {
	dict := mapDictionary{"documentation": 100}

	if got := NewSpellChecker(dict, WithMaxDistance(1)).Suggest("docamantation"); len(got) != 0 {
		t.Errorf("maxDistance=1 should not match 2-edit term, got %d suggestions", len(got))
	}
	if got := NewSpellChecker(dict, WithMaxDistance(2)).Suggest("docamantation"); len(got) == 0 {
		t.Error("maxDistance=2 should match 2-edit term")
	}
}

func TestSpellChecker_Suggest_RespectsMinFrequency(t *testing.T) {
	sc := NewSpellChecker(mapDictionary{"test": 5, "text": 1}, WithMinFrequency(3))

	for _, s := range sc.Suggest("tost") {
		if s.Frequency < 3 {
			t.Errorf("suggestion %q has frequency %d, below minFreq 3", s.Term, s.Frequency)
		}
	}
}

func TestSpellChecker_Suggest_LimitsResults(t *testing.T) {
	terms := mapDictionary{}
	for i := 0; i < 20; i++ {
		terms["test"+string(rune('a'+i))] = 10
	}
	sc := NewSpellChecker(terms, WithMaxSuggestions(3))

	if got := sc.Suggest("test"); len(got) != 3 {
		t.Errorf("got %d suggestions, want 3", len(got))
	}
}
