// Package models defines core data structures for conversations, index entries, and search results.
package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is a chat with its ordered messages and optional metadata.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`
	Model     string     `json:"model,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
}

// Message is a single chat message. Versions holds prior content snapshots
// when the message has been edited.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Role           string     `json:"role"`
	Content        string     `json:"content"`
	Timestamp      time.Time  `json:"timestamp"`
	Edited         bool       `json:"edited,omitempty"`
	Bookmarked     bool       `json:"bookmarked,omitempty"`
	Versions       []*Version `json:"versions,omitempty"`
}

// Version is a prior content snapshot of a message.
type Version struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FindMessage returns the message with the given id, or nil.
func (c *Conversation) FindMessage(id string) *Message {
	if c == nil {
		return nil
	}
	for _, m := range c.Messages {
		if m != nil && m.ID == id {
			return m
		}
	}
	return nil
}

// FindVersion returns the version with the given id, or nil.
func (m *Message) FindVersion(id string) *Version {
	if m == nil {
		return nil
	}
	for _, v := range m.Versions {
		if v != nil && v.ID == id {
			return v
		}
	}
	return nil
}
