// Package cli provides output helpers for the kaiwa command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kaiwa/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// snippetRunes caps the rendered length of a highlighted snippet.
const snippetRunes = 200

// WriteSearchResults writes search results to w in the given format.
// Unknown formats are written as text.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	writeSearchResultsText(w, response)
	return nil
}

// WriteSuggestions writes one suggestion per line, or a JSON array.
func WriteSuggestions(w io.Writer, suggestions []string, format SearchOutputFormat) error {
	if format == OutputJSON {
		if suggestions == nil {
			suggestions = []string{}
		}
		return writeJSON(w, suggestions)
	}
	for _, s := range suggestions {
		fmt.Fprintln(w, s)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	var total int
	var elapsedMS int64
	if response.Stats != nil {
		total = response.Stats.TotalResults
		elapsedMS = response.Stats.SearchTime.Milliseconds()
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (showing %d)\n\n", total, elapsedMS, len(response.Results))
	if response.DidYouMean != "" {
		fmt.Fprintf(w, "Did you mean: %s\n\n", response.DidYouMean)
	}
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
}

func writeOneResult(w io.Writer, rank int, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "#%d | Score: %.4f | Match: %s\n", rank, result.Score, result.MatchType)
	if conv := result.Conversation; conv != nil {
		fmt.Fprintf(w, "Conversation: %s (%s)\n", conv.Title, conv.ID)
	}
	if msg := result.Subject.Message; msg != nil {
		label := msg.Role
		if result.Subject.Kind == models.SubjectVersion {
			label += ", earlier version"
		}
		fmt.Fprintf(w, "Message: %s [%s] %s\n", msg.ID, label, msg.Timestamp.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "\n%s\n\n", Truncate(RenderHighlights(result.Highlights), snippetRunes))
}

// RenderHighlights joins highlight segments, wrapping matched ones in [[ ]].
func RenderHighlights(highlights []models.Highlight) string {
	var b strings.Builder
	for _, h := range highlights {
		if h.IsHighlighted {
			b.WriteString("[[")
			b.WriteString(h.Text)
			b.WriteString("]]")
			continue
		}
		b.WriteString(h.Text)
	}
	return b.String()
}

// Truncate shortens s to maxRunes runes and appends "..." if truncated.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}
