package models

import (
	"fmt"
	"time"
)

// DefaultMaxResults is used when SearchOptions.MaxResults is unset.
const DefaultMaxResults = 100

// SortKey selects the result ordering.
type SortKey string

const (
	SortByRelevance SortKey = "relevance"
	SortByDate      SortKey = "date"
	SortByLength    SortKey = "length"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DateRange is an inclusive time window. A zero Start or End leaves that side open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SearchFilters restricts which entries are considered. Nil or empty fields are not evaluated.
type SearchFilters struct {
	Query      string     `json:"query,omitempty"`
	DateRange  *DateRange `json:"date_range,omitempty"`
	Models     []string   `json:"models,omitempty"`
	Roles      []string   `json:"roles,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Bookmarked *bool      `json:"bookmarked,omitempty"`
	Edited     *bool      `json:"edited,omitempty"`
	ChatIDs    []string   `json:"chat_ids,omitempty"`
	MinLength  *int       `json:"min_length,omitempty"`
	MaxLength  *int       `json:"max_length,omitempty"`
}

// SearchOptions controls matching, sorting and result count.
type SearchOptions struct {
	MaxResults    int       `json:"max_results,omitempty"`
	FuzzySearch   bool      `json:"fuzzy_search,omitempty"`
	CaseSensitive bool      `json:"case_sensitive,omitempty"`
	WholeWord     bool      `json:"whole_word,omitempty"`
	SortBy        SortKey   `json:"sort_by,omitempty"`
	SortOrder     SortOrder `json:"sort_order,omitempty"`
}

// Normalize applies defaults and rejects unknown sort keys or orders.
func (o *SearchOptions) Normalize() error {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	switch o.SortBy {
	case "":
		o.SortBy = SortByRelevance
	case SortByRelevance, SortByDate, SortByLength:
	default:
		return fmt.Errorf("unknown sort key %q", o.SortBy)
	}
	switch o.SortOrder {
	case "":
		o.SortOrder = SortDesc
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("unknown sort order %q", o.SortOrder)
	}
	return nil
}

// SearchRequest is the wire form of a search call.
type SearchRequest struct {
	Filters SearchFilters `json:"filters"`
	Options SearchOptions `json:"options"`
}
