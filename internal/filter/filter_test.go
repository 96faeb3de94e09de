package filter

import (
	"testing"
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestMatches(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := &models.Conversation{ID: "c1", Model: "gpt-4", Tags: []string{"work", "hr"}}
	message := &models.IndexEntry{
		ID: "message:c1:m1", Kind: models.FieldMessage, CharCount: 20,
		Metadata: models.EntryMetadata{ConversationID: "c1", MessageID: "m1", Role: models.RoleAssistant,
			Timestamp: ts, Bookmarked: ptr(true), Edited: ptr(false)},
	}
	title := &models.IndexEntry{
		ID: "title:c1", Kind: models.FieldTitle, CharCount: 11,
		Metadata: models.EntryMetadata{ConversationID: "c1", Timestamp: ts},
	}

	tests := []struct {
		name  string
		entry *models.IndexEntry
		f     *models.SearchFilters
		conv  *models.Conversation
		want  bool
	}{
		{"nil filters", message, nil, conv, true},
		{"empty filters", message, &models.SearchFilters{}, conv, true},
		{"query is not a filter", message, &models.SearchFilters{Query: "zzz"}, conv, true},

		{"date inside", message, &models.SearchFilters{DateRange: &models.DateRange{Start: ts.Add(-time.Hour), End: ts.Add(time.Hour)}}, conv, true},
		{"date inclusive bounds", message, &models.SearchFilters{DateRange: &models.DateRange{Start: ts, End: ts}}, conv, true},
		{"date before start", message, &models.SearchFilters{DateRange: &models.DateRange{Start: ts.Add(time.Second)}}, conv, false},
		{"date after end", message, &models.SearchFilters{DateRange: &models.DateRange{End: ts.Add(-time.Second)}}, conv, false},
		{"date open range", message, &models.SearchFilters{DateRange: &models.DateRange{}}, conv, true},

		{"role member", message, &models.SearchFilters{Roles: []string{models.RoleAssistant}}, conv, true},
		{"role not member", message, &models.SearchFilters{Roles: []string{models.RoleUser}}, conv, false},
		{"title fails role filter", title, &models.SearchFilters{Roles: []string{models.RoleUser, models.RoleAssistant}}, conv, false},

		{"bookmarked true", message, &models.SearchFilters{Bookmarked: ptr(true)}, conv, true},
		{"bookmarked false", message, &models.SearchFilters{Bookmarked: ptr(false)}, conv, false},
		{"edited false", message, &models.SearchFilters{Edited: ptr(false)}, conv, true},
		{"edited true", message, &models.SearchFilters{Edited: ptr(true)}, conv, false},
		{"title fails bookmark filter", title, &models.SearchFilters{Bookmarked: ptr(false)}, conv, false},
		{"title fails edited filter", title, &models.SearchFilters{Edited: ptr(false)}, conv, false},

		{"chat allowed", message, &models.SearchFilters{ChatIDs: []string{"c0", "c1"}}, conv, true},
		{"chat not allowed", message, &models.SearchFilters{ChatIDs: []string{"c2"}}, conv, false},

		{"length within", message, &models.SearchFilters{MinLength: ptr(20), MaxLength: ptr(20)}, conv, true},
		{"too short", message, &models.SearchFilters{MinLength: ptr(21)}, conv, false},
		{"too long", message, &models.SearchFilters{MaxLength: ptr(19)}, conv, false},

		{"model member", message, &models.SearchFilters{Models: []string{"gpt-4"}}, conv, true},
		{"model not member", message, &models.SearchFilters{Models: []string{"claude"}}, conv, false},
		{"conversation without model", message, &models.SearchFilters{Models: []string{"gpt-4"}}, &models.Conversation{ID: "c1"}, false},

		{"tags intersect", message, &models.SearchFilters{Tags: []string{"hr", "ops"}}, conv, true},
		{"tags disjoint", message, &models.SearchFilters{Tags: []string{"ops"}}, conv, false},
		{"conversation without tags", message, &models.SearchFilters{Tags: []string{"hr"}}, &models.Conversation{ID: "c1"}, false},

		{"all pass together", message, &models.SearchFilters{
			Roles: []string{models.RoleAssistant}, Bookmarked: ptr(true), ChatIDs: []string{"c1"},
			Models: []string{"gpt-4"}, Tags: []string{"work"}, MinLength: ptr(1),
		}, conv, true},
		{"one failing fails all", message, &models.SearchFilters{
			Roles: []string{models.RoleAssistant}, Bookmarked: ptr(false),
		}, conv, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.entry, tt.f, tt.conv); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
