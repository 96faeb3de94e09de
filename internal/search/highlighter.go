package search

import (
	"sort"

	"github.com/hyperjump/kaiwa/internal/keyword"
	"github.com/hyperjump/kaiwa/internal/models"
)

// Highlighter splits content into plain and highlighted segments for a fixed set of
// query tokens. It is safe for concurrent use.
type Highlighter struct {
	matchers []*keyword.Matcher
}

// NewHighlighter compiles one literal matcher per token, honouring the case and
// whole-word options.
func NewHighlighter(tokens []string, opts models.SearchOptions) *Highlighter {
	h := &Highlighter{matchers: make([]*keyword.Matcher, 0, len(tokens))}
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		h.matchers = append(h.matchers, keyword.NewMatcher(tok, opts.CaseSensitive, opts.WholeWord))
	}
	return h
}

// Highlight returns segments whose texts concatenate back to content. Highlighted
// segments never overlap or touch; overlapping and adjacent matches are merged.
func (h *Highlighter) Highlight(content string) []models.Highlight {
	if content == "" || len(h.matchers) == 0 {
		return []models.Highlight{plain(content, 0, len(content))}
	}

	var spans []keyword.Span
	for _, m := range h.matchers {
		spans = append(spans, m.FindAll(content)...)
	}
	if len(spans) == 0 {
		return []models.Highlight{plain(content, 0, len(content))}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			last.End = max(last.End, s.End)
			continue
		}
		merged = append(merged, s)
	}

	out := make([]models.Highlight, 0, 2*len(merged)+1)
	pos := 0
	for _, s := range merged {
		if s.Start > pos {
			out = append(out, plain(content, pos, s.Start))
		}
		out = append(out, models.Highlight{
			Text:          content[s.Start:s.End],
			IsHighlighted: true,
			Start:         s.Start,
			End:           s.End,
		})
		pos = s.End
	}
	if pos < len(content) {
		out = append(out, plain(content, pos, len(content)))
	}
	return out
}

// Highlight is a convenience wrapper for a one-off highlight.
func Highlight(content string, tokens []string, opts models.SearchOptions) []models.Highlight {
	return NewHighlighter(tokens, opts).Highlight(content)
}

func plain(content string, start, end int) models.Highlight {
	return models.Highlight{Text: content[start:end], Start: start, End: end}
}
