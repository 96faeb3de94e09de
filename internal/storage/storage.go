// Package storage persists conversations and supplies them to the search index.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kaiwa/internal/models"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// ConversationSource supplies the full conversation corpus.
type ConversationSource interface {
	ListConversations(ctx context.Context) ([]*models.Conversation, error)
}

// Storage defines conversation persistence operations.
type Storage interface {
	ConversationSource

	// SaveConversation inserts or replaces a conversation with its messages,
	// versions and tags.
	SaveConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error

	// Stats
	CountConversations(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)

	Close() error
}
