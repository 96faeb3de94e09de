package models

import "time"

// FieldKind identifies which part of a conversation an index entry was built from.
type FieldKind string

const (
	// FieldTitle is a conversation title.
	FieldTitle FieldKind = "title"
	// FieldMessage is a message body.
	FieldMessage FieldKind = "message"
	// FieldVersion is a prior version of a message body.
	FieldVersion FieldKind = "version"
)

// EntryMetadata links an index entry back to the conversation data it came from.
type EntryMetadata struct {
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id,omitempty"` // empty for titles
	VersionID      string    `json:"version_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Role           string    `json:"role,omitempty"`
	// Bookmarked and Edited are set only on message entries.
	Bookmarked *bool `json:"bookmarked,omitempty"`
	Edited     *bool `json:"edited,omitempty"`
}

// IsBookmarked reports whether the entry carries a true bookmark flag.
func (m *EntryMetadata) IsBookmarked() bool {
	return m.Bookmarked != nil && *m.Bookmarked
}

// IndexEntry is one indexed unit of text with precomputed tokens.
// Entries are immutable once published in a snapshot.
type IndexEntry struct {
	ID        string        `json:"id"`
	Kind      FieldKind     `json:"kind"`
	Content   string        `json:"content"`
	Tokens    []string      `json:"tokens"`
	Metadata  EntryMetadata `json:"metadata"`
	WordCount int           `json:"word_count"`
	CharCount int           `json:"char_count"`
}

// IndexStats reports the size of the current index snapshot.
type IndexStats struct {
	Size    int    `json:"size"`
	Version uint64 `json:"version"`
	// Memory is the approximate serialized size of the entries in bytes.
	Memory int `json:"memory"`
}
