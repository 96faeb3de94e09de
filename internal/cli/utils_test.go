package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

func sampleResponse() *models.SearchResponse {
	conv := &models.Conversation{ID: "c1", Title: "Remote Work"}
	msg := &models.Message{
		ID:        "m2",
		Role:      models.RoleAssistant,
		Content:   "Core hours are 10am to 3pm",
		Timestamp: time.Date(2024, 5, 1, 9, 1, 0, 0, time.UTC),
	}
	return &models.SearchResponse{
		Results: []*models.SearchResult{{
			EntryID:      "c1-m2",
			Subject:      models.ResultSubject{Kind: models.SubjectMessage, Message: msg, SourceMessageID: "m2"},
			Conversation: conv,
			Highlights: []models.Highlight{
				{Text: "Core", IsHighlighted: true, Start: 0, End: 4},
				{Text: " hours are 10am to 3pm", Start: 4, End: 26},
			},
			Score:     102.4,
			MatchType: models.MatchContent,
		}},
		Stats: &models.SearchStats{
			TotalResults: 3,
			SearchTime:   12 * time.Millisecond,
			Query:        []string{"core"},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].EntryID != "c1-m2" {
		t.Errorf("decoded results: want one result c1-m2, got %+v", decoded.Results)
	}
	if decoded.Stats == nil || decoded.Stats.TotalResults != 3 {
		t.Errorf("decoded stats: got %+v", decoded.Stats)
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Found 3 results in 12ms (showing 1)",
		"#1 | Score: 102.4000 | Match: content",
		"Conversation: Remote Work (c1)",
		"Message: m2 [assistant] 2024-05-01 09:01",
		"[[Core]] hours are 10am to 3pm",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if strings.Contains(out, "Did you mean") {
		t.Errorf("unexpected suggestion line:\n%s", out)
	}
}

func TestWriteSearchResults_textVersionAndDidYouMean(t *testing.T) {
	response := sampleResponse()
	response.Results[0].Subject.Kind = models.SubjectVersion
	response.DidYouMean = "core hours"

	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Did you mean: core hours") {
		t.Errorf("missing did you mean line:\n%s", out)
	}
	if !strings.Contains(out, "[assistant, earlier version]") {
		t.Errorf("missing version label:\n%s", out)
	}
}

func TestWriteSearchResults_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, &models.SearchResponse{}, SearchOutputFormat("unknown")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Found 0 results") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestWriteSuggestions(t *testing.T) {
	tests := []struct {
		name        string
		suggestions []string
		format      SearchOutputFormat
		want        string
	}{
		{"text", []string{"hours", "home"}, OutputText, "hours\nhome\n"},
		{"json", []string{"hours"}, OutputJSON, "[\n  \"hours\"\n]\n"},
		{"json nil", nil, OutputJSON, "[]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteSuggestions(&buf, tt.suggestions, tt.format); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRenderHighlights(t *testing.T) {
	got := RenderHighlights([]models.Highlight{
		{Text: "The "},
		{Text: "core", IsHighlighted: true},
		{Text: " "},
		{Text: "hours", IsHighlighted: true},
	})
	if want := "The [[core]] [[hours]]"; got != want {
		t.Errorf("RenderHighlights = %q, want %q", got, want)
	}
	if got := RenderHighlights(nil); got != "" {
		t.Errorf("RenderHighlights(nil) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 10, ""},
		{"short", "hi", 10, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"zero max", "abc", 0, "abc"},
		{"multibyte", "会話の検索", 2, "会話..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}
