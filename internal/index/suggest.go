package index

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Suggest returns up to limit distinct tokens that start with the lower-cased prefix
// and differ from it, in the order they were first indexed.
func (s *Snapshot) Suggest(prefix string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	prefix = strings.ToLower(prefix)
	out := make([]string, 0, limit)
	for _, tok := range s.vocab {
		if tok != prefix && strings.HasPrefix(tok, prefix) {
			out = append(out, tok)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// FuzzySuggest ranks the indexed vocabulary against text with subsequence fuzzy
// matching and returns the best limit tokens other than text itself.
func (s *Snapshot) FuzzySuggest(text string, limit int) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if limit <= 0 || text == "" {
		return []string{}
	}
	out := make([]string, 0, limit)
	for _, m := range fuzzy.Find(text, s.vocab) {
		if m.Str == text {
			continue
		}
		out = append(out, m.Str)
		if len(out) == limit {
			break
		}
	}
	return out
}
