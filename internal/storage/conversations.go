// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/util"
)

// =============================================================================
// STORED CONVERSATION TYPE
// =============================================================================

// StoredConversation is a persisted chat.
type StoredConversation struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []model.Message `json:"messages"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	Model        string    `json:"model,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// ErrConversationNotFound is returned when a chat is not on disk.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrInvalidID is returned for ids that cannot name a file.
var ErrInvalidID = errors.New("invalid conversation id")

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore handles conversation persistence.
type ConversationStore struct {
	// BaseDir is the directory holding one JSON file per chat.
	BaseDir string

	// MaxConversations limits stored chats (0 = unlimited).
	MaxConversations int

	// Model is recorded on chats saved through SaveConversation.
	Model string
}

// DefaultDir returns ~/.zen/conversations.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".zen", "conversations"), nil
}

// NewConversationStore creates a store in the default directory.
func NewConversationStore() (*ConversationStore, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewConversationStoreWithDir(dir)
}

// NewConversationStoreWithDir creates a store with a custom directory.
func NewConversationStoreWithDir(baseDir string) (*ConversationStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "create %s", baseDir)
	}
	return &ConversationStore{
		BaseDir:          baseDir,
		MaxConversations: 100,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// SaveConversation stores a chat's messages under its chat id, keeping the
// original creation time when the chat already exists.
func (s *ConversationStore) SaveConversation(chatID string, msgs []model.Message) error {
	conv := &StoredConversation{ID: chatID, Model: s.Model, Messages: msgs}
	if existing, err := s.Load(chatID); err == nil {
		conv.CreatedAt = existing.CreatedAt
		if conv.Model == "" {
			conv.Model = existing.Model
		}
	}
	_, err := s.Save(conv)
	return err
}

// Save persists a conversation and returns its ID.
func (s *ConversationStore) Save(conv *StoredConversation) (string, error) {
	if conv.ID == "" {
		conv.ID = model.NewChatID()
	}
	path, err := s.filePath(conv.ID)
	if err != nil {
		return "", err
	}

	conv.Summary = Summarize(conv.Messages)
	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode conversation")
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return "", errors.Wrapf(err, "write conversation %s", conv.ID)
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}
	return conv.ID, nil
}

// Summarize titles a chat from its first user message, without any appended
// output block.
func Summarize(msgs []model.Message) string {
	for _, msg := range msgs {
		if msg.Role != model.RoleUser {
			continue
		}
		text := promptOnly(msg.Text())
		if text == "" {
			continue
		}
		text = strings.Join(strings.Fields(text), " ")
		return util.TruncateRunes(text, 50)
	}
	return "New conversation"
}

func promptOnly(text string) string {
	if i := strings.Index(text, intent.SteerMarker); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// enforceLimit removes the oldest conversations when over the limit.
func (s *ConversationStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}
	// List is newest first.
	for _, meta := range metas[s.MaxConversations:] {
		if err := s.Delete(meta.ID); err != nil {
			log.Warn().Err(err).Str("chat_id", meta.ID).Msg("prune conversation")
		}
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID.
func (s *ConversationStore) Load(id string) (*StoredConversation, error) {
	path, err := s.filePath(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, errors.Wrapf(err, "read conversation %s", id)
	}

	var conv StoredConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, errors.Wrapf(err, "decode conversation %s", id)
	}
	return &conv, nil
}

// LoadByIndex loads a conversation by its position in List (0 = most recent).
func (s *ConversationStore) LoadByIndex(index int) (*StoredConversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrConversationNotFound
	}
	return s.Load(metas[index].ID)
}

// Resolve finds the conversation whose id starts with prefix. A prefix that
// matches several chats is an error.
func (s *ConversationStore) Resolve(prefix string) (*StoredConversation, error) {
	if conv, err := s.Load(prefix); err == nil {
		return conv, nil
	}
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	var match string
	for _, meta := range metas {
		if strings.HasPrefix(meta.ID, prefix) {
			if match != "" {
				return nil, errors.Errorf("ambiguous conversation id %q", prefix)
			}
			match = meta.ID
		}
	}
	if match == "" {
		return nil, ErrConversationNotFound
	}
	return s.Load(match)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations, most recent first. Unreadable files
// are skipped.
func (s *ConversationStore) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, errors.Wrap(err, "list conversations")
	}

	metas := make([]ConversationMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("skip unreadable conversation")
			continue
		}
		metas = append(metas, conv.Meta())
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds conversations whose summary or preview contains query.
func (s *ConversationStore) Search(query string) ([]ConversationMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	var results []ConversationMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Summary), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// SearchMessages finds conversations where any message contains query.
func (s *ConversationStore) SearchMessages(query string) ([]ConversationMeta, error) {
	all, err := s.List()
	if err != nil || query == "" {
		return all, err
	}
	query = strings.ToLower(query)
	var results []ConversationMeta
	for _, meta := range all {
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Text()), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (s *ConversationStore) Delete(id string) error {
	path, err := s.filePath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return errors.Wrapf(err, "delete conversation %s", id)
	}
	return nil
}

// Clear removes all saved conversations.
func (s *ConversationStore) Clear() error {
	metas, err := s.List()
	if err != nil {
		return err
	}
	for _, meta := range metas {
		if err := s.Delete(meta.ID); err != nil && !errors.Is(err, ErrConversationNotFound) {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// filePath maps an id to its file, rejecting ids that would escape BaseDir.
func (s *ConversationStore) filePath(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return filepath.Join(s.BaseDir, id+".json"), nil
}

// Meta returns the listing metadata of the conversation.
func (c *StoredConversation) Meta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Summary:      c.Summary,
		Model:        c.Model,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MessageCount: len(c.Messages),
		Preview:      c.Preview(),
	}
}

// Preview returns the first user prompt, truncated to 80 characters.
func (c *StoredConversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == model.RoleUser {
			if text := promptOnly(msg.Text()); text != "" {
				return util.TruncateRunes(strings.Join(strings.Fields(text), " "), 80)
			}
		}
	}
	return ""
}

// FormatSessionList renders conversation metadata as a plain-text table.
func FormatSessionList(sessions []ConversationMeta) string {
	if len(sessions) == 0 {
		return "No conversations found."
	}

	var sb strings.Builder
	sb.WriteString(pad("ID", 10) + " " + pad("Updated", 16) + " " + pad("Msgs", 5) + " Summary\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	for _, s := range sessions {
		sb.WriteString(pad(util.FirstRunes(s.ID, 8), 10) + " " +
			pad(s.UpdatedAt.Local().Format("2006-01-02 15:04"), 16) + " " +
			pad(strconv.Itoa(s.MessageCount), 5) + " " +
			util.TruncateRunes(s.Summary, 40) + "\n")
	}
	return sb.String()
}

func pad(s string, width int) string {
	if w := util.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
