// Package filter evaluates structured search filters against index entries.
package filter

import (
	"slices"

	"github.com/hyperjump/kaiwa/internal/models"
)

// Matches reports whether entry, owned by conv, passes every filter that is set.
// Unset filters (nil pointers, empty slices) are not evaluated. An entry missing a
// field that an active filter needs fails that filter.
func Matches(entry *models.IndexEntry, f *models.SearchFilters, conv *models.Conversation) bool {
	if entry == nil {
		return false
	}
	if f == nil {
		return true
	}
	meta := &entry.Metadata

	if f.DateRange != nil && !inRange(meta, f.DateRange) {
		return false
	}
	if len(f.Roles) > 0 && (meta.Role == "" || !slices.Contains(f.Roles, meta.Role)) {
		return false
	}
	if f.Bookmarked != nil && !flagEquals(meta.Bookmarked, *f.Bookmarked) {
		return false
	}
	if f.Edited != nil && !flagEquals(meta.Edited, *f.Edited) {
		return false
	}
	if len(f.ChatIDs) > 0 && !slices.Contains(f.ChatIDs, meta.ConversationID) {
		return false
	}
	if f.MinLength != nil && entry.CharCount < *f.MinLength {
		return false
	}
	if f.MaxLength != nil && entry.CharCount > *f.MaxLength {
		return false
	}
	if len(f.Models) > 0 && (conv == nil || conv.Model == "" || !slices.Contains(f.Models, conv.Model)) {
		return false
	}
	if len(f.Tags) > 0 && (conv == nil || !intersects(conv.Tags, f.Tags)) {
		return false
	}
	return true
}

func inRange(meta *models.EntryMetadata, r *models.DateRange) bool {
	if meta.Timestamp.IsZero() {
		return false
	}
	if !r.Start.IsZero() && meta.Timestamp.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && meta.Timestamp.After(r.End) {
		return false
	}
	return true
}

func flagEquals(have *bool, want bool) bool {
	return have != nil && *have == want
}

func intersects(have, want []string) bool {
	for _, t := range have {
		if slices.Contains(want, t) {
			return true
		}
	}
	return false
}
