package models

import "time"

// MatchType describes which field of a conversation produced a hit.
type MatchType string

const (
	MatchTitle    MatchType = "title"
	MatchContent  MatchType = "content"
	MatchMetadata MatchType = "metadata"
)

// SubjectKind tags what a search result refers to.
type SubjectKind string

const (
	// SubjectNone is used for title hits, which have no message.
	SubjectNone SubjectKind = "none"
	// SubjectMessage is a hit on a message's current content.
	SubjectMessage SubjectKind = "message"
	// SubjectVersion is a hit on a prior version of a message.
	SubjectVersion SubjectKind = "version"
)

// ResultSubject is the matched message, if any. For SubjectVersion, Message is a
// copy of the owning message carrying the version's content and timestamp under
// the id "{messageId}-{versionId}", and SourceVersionID names the version.
type ResultSubject struct {
	Kind            SubjectKind `json:"kind"`
	Message         *Message    `json:"message,omitempty"`
	SourceMessageID string      `json:"source_message_id,omitempty"`
	SourceVersionID string      `json:"source_version_id,omitempty"`
}

// Highlight is a contiguous span of the matched content.
// Start and End are byte offsets into the original content.
type Highlight struct {
	Text          string `json:"text"`
	IsHighlighted bool   `json:"is_highlighted"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
}

// SearchResult is a single hit.
type SearchResult struct {
	EntryID      string        `json:"entry_id"`
	Subject      ResultSubject `json:"subject"`
	Conversation *Conversation `json:"conversation"`
	Highlights   []Highlight   `json:"highlights"`
	Score        float64       `json:"score"`
	MatchType    MatchType     `json:"match_type"`
}

// Timestamp returns the time used for date sorting: the subject message time,
// or the conversation's last update for title hits.
func (r *SearchResult) Timestamp() time.Time {
	if r.Subject.Message != nil {
		return r.Subject.Message.Timestamp
	}
	if r.Conversation != nil {
		return r.Conversation.UpdatedAt
	}
	return time.Time{}
}

// SearchStats summarises a query.
type SearchStats struct {
	// TotalResults counts matches before MaxResults truncation.
	TotalResults   int            `json:"total_results"`
	SearchTime     time.Duration  `json:"search_time_ns"`
	Query          []string       `json:"query"`
	ResultsByChat  map[string]int `json:"results_by_chat"`
	ResultsByModel map[string]int `json:"results_by_model"`
	ResultsByRole  map[string]int `json:"results_by_role"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results []*SearchResult `json:"results"`
	Stats   *SearchStats    `json:"stats"`
	// DidYouMean is a spelling-corrected query, set only when nothing matched.
	DidYouMean string `json:"did_you_mean,omitempty"`
}
