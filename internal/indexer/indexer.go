// Package indexer imports conversation exports into storage and keeps the search
// index in step with what is stored.
package indexer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kaiwa/internal/index"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/search"
	"github.com/hyperjump/kaiwa/internal/storage"
	"go.uber.org/zap"
)

// ImportExtensions are the file extensions ImportFile accepts.
var ImportExtensions = []string{".json"}

// Indexer writes imported conversations to storage and rebuilds the engine's index.
type Indexer struct {
	storage storage.Storage
	engine  *search.Engine
	logger  *zap.Logger // optional; when set, logs debug events

	mu    sync.Mutex
	files map[string]fileStamp // last imported state per absolute path
}

type fileStamp struct {
	mtime int64
	size  int64
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file imported, index rebuilt, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer over store and engine.
func NewIndexer(store storage.Storage, engine *search.Engine, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		storage: store,
		engine:  engine,
		files:   make(map[string]fileStamp),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Conversations returns the stored corpus. It satisfies storage.ConversationSource.
func (idx *Indexer) Conversations(ctx context.Context) ([]*models.Conversation, error) {
	convs, err := idx.storage.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// Rebuild rebuilds the search index from storage.
func (idx *Indexer) Rebuild(ctx context.Context) (index.BuildStats, error) {
	convs, err := idx.Conversations(ctx)
	if err != nil {
		return index.BuildStats{}, err
	}
	stats := idx.engine.BuildIndex(convs)
	if idx.logger != nil {
		idx.logger.Debug("indexer rebuilt index", zap.Int("conversations", len(convs)), zap.Int("entries", stats.Entries))
	}
	return stats, nil
}

// ImportConversations normalizes and stores convs, then rebuilds the index.
// Conversations, messages and versions without an id get a fresh UUID.
func (idx *Indexer) ImportConversations(ctx context.Context, convs []*models.Conversation) (int, error) {
	n := 0
	for _, conv := range convs {
		if conv == nil {
			continue
		}
		Normalize(conv, time.Now())
		if err := idx.storage.SaveConversation(ctx, conv); err != nil {
			return n, fmt.Errorf("failed to store conversation %s: %w", conv.ID, err)
		}
		n++
	}
	if _, err := idx.Rebuild(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// ImportJSON decodes a JSON export (an array of conversations or a single
// conversation object) and imports it.
func (idx *Indexer) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	convs, err := DecodeConversations(r)
	if err != nil {
		return 0, err
	}
	return idx.ImportConversations(ctx, convs)
}

// ImportFile imports a JSON export from path. Files already imported with the
// same mtime and size are skipped and report zero conversations.
func (idx *Indexer) ImportFile(ctx context.Context, path string) (int, error) {
	if idx.logger != nil {
		idx.logger.Debug("indexer importing file", zap.String("path", path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	if !extensionAllowed(filepath.Ext(absPath), ImportExtensions) {
		return 0, fmt.Errorf("extension %q not in allowed list", filepath.Ext(absPath))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", absPath)
	}
	stamp := fileStamp{mtime: info.ModTime().UnixNano(), size: info.Size()}
	if idx.unchanged(absPath, stamp) {
		if idx.logger != nil {
			idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		}
		return 0, nil
	}

	f, err := os.Open(absPath)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	n, err := idx.ImportJSON(ctx, f)
	if err != nil {
		return n, fmt.Errorf("import %s: %w", absPath, err)
	}
	idx.mu.Lock()
	idx.files[absPath] = stamp
	idx.mu.Unlock()

	if idx.logger != nil {
		idx.logger.Debug("indexer file imported", zap.String("path", absPath), zap.Int("conversations", n))
	}
	return n, nil
}

func (idx *Indexer) unchanged(absPath string, stamp fileStamp) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, ok := idx.files[absPath]
	return ok && prev == stamp
}

// ImportDirectory imports every JSON file directly inside dir. Returns the number
// of conversations imported and the first error encountered, if any.
func (idx *Indexer) ImportDirectory(ctx context.Context, dir string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !extensionAllowed(filepath.Ext(e.Name()), ImportExtensions) {
			continue
		}
		imported, importErr := idx.ImportFile(ctx, filepath.Join(absDir, e.Name()))
		n += imported
		if importErr != nil {
			return n, importErr
		}
	}
	return n, nil
}

// DeleteConversation removes a conversation from storage and rebuilds the index.
func (idx *Indexer) DeleteConversation(ctx context.Context, id string) error {
	if idx.logger != nil {
		idx.logger.Debug("indexer deleting conversation", zap.String("id", id))
	}
	if err := idx.storage.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	_, err := idx.Rebuild(ctx)
	return err
}

// DecodeConversations reads either a JSON array of conversations or one conversation object.
func DecodeConversations(r io.Reader) ([]*models.Conversation, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty import")
		}
		return nil, err
	}

	dec := json.NewDecoder(br)
	switch first {
	case '[':
		var convs []*models.Conversation
		if err := dec.Decode(&convs); err != nil {
			return nil, fmt.Errorf("failed to decode conversations: %w", err)
		}
		return convs, nil
	case '{':
		var conv models.Conversation
		if err := dec.Decode(&conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		return []*models.Conversation{&conv}, nil
	default:
		return nil, fmt.Errorf("unexpected %q at start of import", first)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !strings.ContainsRune(" \t\r\n", rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

// Normalize fills in ids, back references and timestamps an export may omit, and
// tidies the title and tags. Message and version content is left untouched.
func Normalize(conv *models.Conversation, now time.Time) {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	conv.Title = TidyLabel(conv.Title)

	tags := conv.Tags[:0]
	for _, tag := range conv.Tags {
		if tag = TidyLabel(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	conv.Tags = tags

	var latest time.Time
	msgs := conv.Messages[:0]
	for _, msg := range conv.Messages {
		if msg == nil {
			continue
		}
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		msg.ConversationID = conv.ID
		vers := msg.Versions[:0]
		for _, ver := range msg.Versions {
			if ver == nil {
				continue
			}
			if ver.ID == "" {
				ver.ID = uuid.New().String()
			}
			vers = append(vers, ver)
		}
		msg.Versions = vers
		if msg.Timestamp.After(latest) {
			latest = msg.Timestamp
		}
		msgs = append(msgs, msg)
	}
	conv.Messages = msgs

	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
		if latest.After(conv.UpdatedAt) {
			conv.UpdatedAt = latest
		}
	}
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
