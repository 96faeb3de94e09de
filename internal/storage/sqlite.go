package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kaiwa/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at);

	CREATE TABLE IF NOT EXISTS messages (
		conversation_id TEXT NOT NULL,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMP,
		edited INTEGER NOT NULL DEFAULT 0,
		bookmarked INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (conversation_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_position ON messages(conversation_id, position);

	CREATE TABLE IF NOT EXISTS message_versions (
		conversation_id TEXT NOT NULL,
		message_id TEXT NOT NULL,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMP,
		PRIMARY KEY (conversation_id, message_id, id)
	);

	CREATE TABLE IF NOT EXISTS conversation_tags (
		conversation_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (conversation_id, tag)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveConversation replaces any stored conversation with the same id.
func (s *SQLiteStorage) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	if conv == nil || conv.ID == "" {
		return errors.New("conversation id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := deleteConversationTx(ctx, tx, conv.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (id, title, model, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.Title, conv.Model, conv.CreatedAt, conv.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	for i, tag := range conv.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO conversation_tags (conversation_id, tag, position) VALUES (?, ?, ?)`,
			conv.ID, tag, i,
		); err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}

	msgStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (conversation_id, id, position, role, content, timestamp, edited, bookmarked)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer msgStmt.Close()

	verStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO message_versions (conversation_id, message_id, id, position, content, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer verStmt.Close()

	for i, msg := range conv.Messages {
		if msg == nil {
			continue
		}
		if _, err := msgStmt.ExecContext(ctx,
			conv.ID, msg.ID, i, msg.Role, msg.Content, msg.Timestamp, msg.Edited, msg.Bookmarked,
		); err != nil {
			return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
		}
		for j, ver := range msg.Versions {
			if ver == nil {
				continue
			}
			if _, err := verStmt.ExecContext(ctx,
				conv.ID, msg.ID, ver.ID, j, ver.Content, ver.Timestamp,
			); err != nil {
				return fmt.Errorf("failed to insert version %s: %w", ver.ID, err)
			}
		}
	}

	return tx.Commit()
}

// GetConversation returns a conversation by ID, or ErrNotFound.
func (s *SQLiteStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	convs, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return convs[0], nil
}

// ListConversations returns every conversation ordered by creation time.
func (s *SQLiteStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	return s.load(ctx, "")
}

// DeleteConversation removes a conversation and everything it owns.
func (s *SQLiteStorage) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	n, err := deleteConversationTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// deleteConversationTx removes a conversation and its children, returning the
// number of conversation rows deleted.
func deleteConversationTx(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	for _, table := range []string{"message_versions", "messages", "conversation_tags"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE conversation_id = ?`, id); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// load reads conversations with their children. An empty id loads all of them.
func (s *SQLiteStorage) load(ctx context.Context, id string) ([]*models.Conversation, error) {
	where, args := "", []any{}
	if id != "" {
		where, args = " WHERE id = ?", []any{id}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, model, created_at, updated_at FROM conversations`+where+` ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	var convs []*models.Conversation
	byID := make(map[string]*models.Conversation)
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.Model, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		convs = append(convs, &c)
		byID[c.ID] = &c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return convs, nil
	}

	childWhere := strings.Replace(where, "id", "conversation_id", 1)

	if err := s.loadTags(ctx, childWhere, args, byID); err != nil {
		return nil, err
	}
	messages, err := s.loadMessages(ctx, childWhere, args, byID)
	if err != nil {
		return nil, err
	}
	if err := s.loadVersions(ctx, childWhere, args, messages); err != nil {
		return nil, err
	}
	return convs, nil
}

func (s *SQLiteStorage) loadTags(ctx context.Context, where string, args []any, byID map[string]*models.Conversation) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, tag FROM conversation_tags`+where+` ORDER BY conversation_id, position`,
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var convID, tag string
		if err := rows.Scan(&convID, &tag); err != nil {
			return err
		}
		if c, ok := byID[convID]; ok {
			c.Tags = append(c.Tags, tag)
		}
	}
	return rows.Err()
}

// messageKey identifies a message across conversations.
type messageKey struct{ conv, msg string }

func (s *SQLiteStorage) loadMessages(ctx context.Context, where string, args []any, byID map[string]*models.Conversation) (map[messageKey]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, id, role, content, timestamp, edited, bookmarked
		 FROM messages`+where+` ORDER BY conversation_id, position`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make(map[messageKey]*models.Message)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ConversationID, &m.ID, &m.Role, &m.Content, &m.Timestamp, &m.Edited, &m.Bookmarked); err != nil {
			return nil, err
		}
		c, ok := byID[m.ConversationID]
		if !ok {
			continue
		}
		c.Messages = append(c.Messages, &m)
		messages[messageKey{m.ConversationID, m.ID}] = &m
	}
	return messages, rows.Err()
}

func (s *SQLiteStorage) loadVersions(ctx context.Context, where string, args []any, messages map[messageKey]*models.Message) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, message_id, id, content, timestamp
		 FROM message_versions`+where+` ORDER BY conversation_id, message_id, position`,
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var convID, msgID string
		var v models.Version
		if err := rows.Scan(&convID, &msgID, &v.ID, &v.Content, &v.Timestamp); err != nil {
			return err
		}
		if m, ok := messages[messageKey{convID, msgID}]; ok {
			m.Versions = append(m.Versions, &v)
		}
	}
	return rows.Err()
}

// CountConversations returns the total number of conversations.
func (s *SQLiteStorage) CountConversations(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&count)
	return count, err
}

// CountMessages returns the total number of messages.
func (s *SQLiteStorage) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
