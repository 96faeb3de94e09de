package keyword

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) within a string.
type Span struct {
	Start int
	End   int
}

// Matcher finds literal occurrences of a single term. The term is always escaped,
// so user input containing regexp metacharacters is matched verbatim.
type Matcher struct {
	term      string
	re        *regexp.Regexp
	wholeWord bool
}

// NewMatcher builds a matcher for term. When caseSensitive is false matching ignores
// case; when wholeWord is true a match must not touch a word rune on either side.
func NewMatcher(term string, caseSensitive, wholeWord bool) *Matcher {
	pattern := regexp.QuoteMeta(term)
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	m := &Matcher{term: term, wholeWord: wholeWord}
	// A quoted literal always compiles; on the off chance it does not, fall back
	// to plain substring search.
	if re, err := regexp.Compile(pattern); err == nil {
		m.re = re
	}
	return m
}

// FindAll returns every match of the term in s, ordered by start offset.
// Matches do not overlap each other.
func (m *Matcher) FindAll(s string) []Span {
	if m.term == "" || s == "" {
		return nil
	}
	var spans []Span
	pos := 0
	for pos <= len(s) {
		start, end := m.next(s, pos)
		if start < 0 {
			break
		}
		if m.wholeWord && !isWordBoundary(s, start, end) {
			// Retry one rune further on; a boundary match may start inside this one.
			_, size := utf8.DecodeRuneInString(s[start:])
			pos = start + max(size, 1)
			continue
		}
		spans = append(spans, Span{Start: start, End: end})
		pos = end
	}
	return spans
}

// MatchString reports whether s contains at least one match.
func (m *Matcher) MatchString(s string) bool {
	if m.term == "" || s == "" {
		return false
	}
	if !m.wholeWord {
		start, _ := m.next(s, 0)
		return start >= 0
	}
	return len(m.FindAll(s)) > 0
}

func (m *Matcher) next(s string, pos int) (int, int) {
	if pos > len(s) {
		return -1, -1
	}
	if m.re == nil {
		i := strings.Index(s[pos:], m.term)
		if i < 0 {
			return -1, -1
		}
		return pos + i, pos + i + len(m.term)
	}
	loc := m.re.FindStringIndex(s[pos:])
	if loc == nil || loc[1] == loc[0] {
		return -1, -1
	}
	return pos + loc[0], pos + loc[1]
}

// isWordBoundary reports whether s[start:end] is not adjacent to a word rune.
func isWordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if IsWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if IsWordRune(r) {
			return false
		}
	}
	return true
}
