package search

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/kaiwa/internal/models"
)

func join(hs []models.Highlight) string {
	var b strings.Builder
	for _, h := range hs {
		b.WriteString(h.Text)
	}
	return b.String()
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name    string
		content string
		tokens  []string
		opts    models.SearchOptions
		want    []string // highlighted texts in order
	}{
		{"separate terms", "Core hours are 10am", []string{"core", "hours"}, models.SearchOptions{}, []string{"Core", "hours"}},
		{"repeated term", "core, core and more core", []string{"core"}, models.SearchOptions{}, []string{"core", "core", "core"}},
		{"substring inside word", "scores", []string{"core"}, models.SearchOptions{}, []string{"core"}},
		{"whole word rejects substring", "scores and core", []string{"core"}, models.SearchOptions{WholeWord: true}, []string{"core"}},
		{"case sensitive misses capital", "Core core", []string{"core"}, models.SearchOptions{CaseSensitive: true}, []string{"core"}},
		{"overlapping merged", "abcdef", []string{"abcd", "cdef"}, models.SearchOptions{}, []string{"abcdef"}},
		{"touching merged", "abcdef", []string{"abc", "def"}, models.SearchOptions{}, []string{"abcdef"}},
		{"nested merged", "abcdef", []string{"abcdef", "cd"}, models.SearchOptions{}, []string{"abcdef"}},
		{"regex metacharacters literal", "use (a+b)* here", []string{"(a+b)*"}, models.SearchOptions{}, []string{"(a+b)*"}},
		{"backslash literal", `C:\path`, []string{`\`}, models.SearchOptions{}, []string{`\`}},
		{"unicode", "Grüße aus Köln", []string{"köln"}, models.SearchOptions{}, []string{"Köln"}},
		{"no match", "nothing here", []string{"zzz"}, models.SearchOptions{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := Highlight(tt.content, tt.tokens, tt.opts)

			if got := join(hs); got != tt.content {
				t.Fatalf("segments join to %q, want %q", got, tt.content)
			}
			var got []string
			for _, h := range hs {
				if h.IsHighlighted {
					got = append(got, h.Text)
				}
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("highlighted = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHighlight_SegmentsCoverContentInOrder(t *testing.T) {
	inputs := []struct {
		content string
		tokens  []string
	}{
		{"What are the core hours?", []string{"core", "hours", "what"}},
		{"aaaa", []string{"a", "aa"}},
		{"x y x y", []string{"y", "x"}},
		{"héllo wörld", []string{"wö", "llo"}},
	}

	for _, in := range inputs {
		hs := Highlight(in.content, in.tokens, models.SearchOptions{})
		pos := 0
		for i, h := range hs {
			if h.Start != pos {
				t.Fatalf("%q: segment %d starts at %d, want %d", in.content, i, h.Start, pos)
			}
			if h.End <= h.Start {
				t.Fatalf("%q: segment %d is empty", in.content, i)
			}
			if in.content[h.Start:h.End] != h.Text {
				t.Fatalf("%q: segment %d text %q does not match offsets", in.content, i, h.Text)
			}
			if i > 0 && h.IsHighlighted && hs[i-1].IsHighlighted {
				t.Fatalf("%q: adjacent highlighted segments %d and %d", in.content, i-1, i)
			}
			pos = h.End
		}
		if pos != len(in.content) {
			t.Fatalf("%q: segments end at %d, want %d", in.content, pos, len(in.content))
		}
	}
}

func TestHighlight_EmptyInputs(t *testing.T) {
	hs := Highlight("plain text", nil, models.SearchOptions{})
	if len(hs) != 1 || hs[0].IsHighlighted || hs[0].Text != "plain text" {
		t.Errorf("empty query: got %+v, want one plain segment", hs)
	}

	want := []models.Highlight{{Text: "", Start: 0, End: 0}}
	for _, tokens := range [][]string{nil, {"x"}} {
		if hs := Highlight("", tokens, models.SearchOptions{}); !reflect.DeepEqual(hs, want) {
			t.Errorf("empty content with tokens %v: got %+v, want %+v", tokens, hs, want)
		}
	}
}
