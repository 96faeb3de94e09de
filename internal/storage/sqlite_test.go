package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleConversation(id string, created time.Time) *models.Conversation {
	return &models.Conversation{
		ID:        id,
		Title:     "Remote Work",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
		Model:     "gpt-4",
		Tags:      []string{"work", "policy"},
		Messages: []*models.Message{
			{ID: "m1", ConversationID: id, Role: models.RoleUser, Content: "What are the core hours?", Timestamp: created},
			{ID: "m2", ConversationID: id, Role: models.RoleAssistant, Content: "Core hours are 10am to 3pm",
				Timestamp: created.Add(time.Minute), Bookmarked: true, Edited: true,
				Versions: []*models.Version{
					{ID: "v1", Content: "Core hours are 9am to 5pm", Timestamp: created.Add(30 * time.Second)},
					{ID: "v2", Content: "Core hours are 9am to 4pm", Timestamp: created.Add(45 * time.Second)},
				}},
		},
	}
}

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	want := sampleConversation("c1", t0)
	if err := store.SaveConversation(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetConversation(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != want.Title || got.Model != want.Model {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps: got %v/%v", got.CreatedAt, got.UpdatedAt)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "policy" {
		t.Errorf("tags: got %v", got.Tags)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("messages: got %d", len(got.Messages))
	}
	m2 := got.Messages[1]
	if m2.ID != "m2" || m2.ConversationID != "c1" || !m2.Bookmarked || !m2.Edited || m2.Role != models.RoleAssistant {
		t.Errorf("message: got %+v", m2)
	}
	if !m2.Timestamp.Equal(want.Messages[1].Timestamp) {
		t.Errorf("message timestamp: got %v", m2.Timestamp)
	}
	if got.Messages[0].Bookmarked || got.Messages[0].Edited {
		t.Errorf("m1 flags should be false: %+v", got.Messages[0])
	}
	if len(m2.Versions) != 2 || m2.Versions[0].ID != "v1" || m2.Versions[1].ID != "v2" {
		t.Fatalf("versions: got %+v", m2.Versions)
	}
	if m2.Versions[0].Content != "Core hours are 9am to 5pm" {
		t.Errorf("version content: got %q", m2.Versions[0].Content)
	}
}

func TestSQLiteStorage_SaveReplaces(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	conv := sampleConversation("c1", t0)
	if err := store.SaveConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}
	conv.Title = "Updated"
	conv.Messages = conv.Messages[:1]
	conv.Tags = nil
	if err := store.SaveConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetConversation(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Updated" || len(got.Messages) != 1 || len(got.Tags) != 0 {
		t.Errorf("got %+v", got)
	}
	if n, _ := store.CountMessages(ctx); n != 1 {
		t.Errorf("CountMessages = %d, want 1", n)
	}
}

func TestSQLiteStorage_ListConversations(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for _, c := range []*models.Conversation{
		sampleConversation("late", t0.Add(48*time.Hour)),
		sampleConversation("early", t0),
	} {
		if err := store.SaveConversation(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	convs, err := store.ListConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 || convs[0].ID != "early" || convs[1].ID != "late" {
		t.Fatalf("order: got %v", convs)
	}
	for _, c := range convs {
		if len(c.Messages) != 2 || len(c.Messages[1].Versions) != 2 || len(c.Tags) != 2 {
			t.Errorf("%s children not loaded: %+v", c.ID, c)
		}
		for _, m := range c.Messages {
			if m.ConversationID != c.ID {
				t.Errorf("message %s belongs to %s, found under %s", m.ID, m.ConversationID, c.ID)
			}
		}
	}

	if n, _ := store.CountConversations(ctx); n != 2 {
		t.Errorf("CountConversations = %d, want 2", n)
	}
	if n, _ := store.CountMessages(ctx); n != 4 {
		t.Errorf("CountMessages = %d, want 4", n)
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if _, err := store.GetConversation(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConversation: got %v, want ErrNotFound", err)
	}
	if err := store.DeleteConversation(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteConversation: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_Delete(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SaveConversation(ctx, sampleConversation("c1", t0)); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteConversation(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetConversation(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if n, _ := store.CountMessages(ctx); n != 0 {
		t.Errorf("messages left behind: %d", n)
	}
}

func TestSQLiteStorage_RequiresID(t *testing.T) {
	store := newTestStorage(t)
	if err := store.SaveConversation(context.Background(), &models.Conversation{}); err == nil {
		t.Error("expected error for conversation without id")
	}
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveConversation(ctx, sampleConversation("c1", t0)); err != nil {
		t.Fatal(err)
	}
	convs, err := store.ListConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Errorf("got %d conversations", len(convs))
	}
}

var _ ConversationSource = (*SQLiteStorage)(nil)
var _ Storage = (*SQLiteStorage)(nil)
