package index

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kaiwa/internal/keyword"
	"github.com/hyperjump/kaiwa/internal/models"
)

var idEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

// EntryID returns the deterministic id of an index entry. messageID is empty for
// titles and versionID is empty for everything but versions. Parts are joined with
// ':' after escaping '\' and ':' so distinct triples never share an id.
func EntryID(conversationID, messageID, versionID string) string {
	conv := idEscaper.Replace(conversationID)
	switch {
	case messageID == "":
		return string(models.FieldTitle) + ":" + conv
	case versionID == "":
		return string(models.FieldMessage) + ":" + conv + ":" + idEscaper.Replace(messageID)
	default:
		return string(models.FieldVersion) + ":" + conv + ":" + idEscaper.Replace(messageID) + ":" + idEscaper.Replace(versionID)
	}
}

// NewEntry tokenizes content and returns an entry of the given kind.
func NewEntry(kind models.FieldKind, content string, meta models.EntryMetadata) *models.IndexEntry {
	tokens := keyword.Tokenize(content)
	return &models.IndexEntry{
		ID:        EntryID(meta.ConversationID, meta.MessageID, meta.VersionID),
		Kind:      kind,
		Content:   content,
		Tokens:    tokens,
		Metadata:  meta,
		WordCount: len(tokens),
		CharCount: utf8.RuneCountInString(content),
	}
}

// BuildEntries walks conversations in order and returns one entry per title,
// message and message version. Only message entries carry bookmark and edited
// flags. Nil conversations, messages and versions are skipped.
func BuildEntries(conversations []*models.Conversation) []*models.IndexEntry {
	var entries []*models.IndexEntry
	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		entries = append(entries, NewEntry(models.FieldTitle, conv.Title, models.EntryMetadata{
			ConversationID: conv.ID,
			Timestamp:      conv.UpdatedAt,
		}))
		for _, msg := range conv.Messages {
			if msg == nil {
				continue
			}
			bookmarked, edited := msg.Bookmarked, msg.Edited
			entries = append(entries, NewEntry(models.FieldMessage, msg.Content, models.EntryMetadata{
				ConversationID: conv.ID,
				MessageID:      msg.ID,
				Timestamp:      msg.Timestamp,
				Role:           msg.Role,
				Bookmarked:     &bookmarked,
				Edited:         &edited,
			}))
			for _, ver := range msg.Versions {
				if ver == nil {
					continue
				}
				entries = append(entries, NewEntry(models.FieldVersion, ver.Content, models.EntryMetadata{
					ConversationID: conv.ID,
					MessageID:      msg.ID,
					VersionID:      ver.ID,
					Timestamp:      ver.Timestamp,
					Role:           msg.Role,
				}))
			}
		}
	}
	return entries
}
