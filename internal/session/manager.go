// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
)

// Keys and lifetimes of the persisted slots.
const (
	KeySelectedModel = "selectedModel"
	KeyWebEnabled    = "zen:webEnabled"

	SelectedModelTTL = 24 * time.Hour
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Options configures a Manager. Every collaborator is optional.
type Options struct {
	ChatID       string
	Conversation *model.Conversation

	Identity  Identity
	Catalog   Catalog
	KV        KeyValueStore
	Navigator Navigator
	History   HistoryNotifier
	Archive   Archive
	Notifier  Notifier
	Clipboard Clipboard
	Sharer    Sharer

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Manager is the conversation session state machine.
type Manager struct {
	opts Options

	chatID string
	conv   *model.Conversation

	// In-flight request, nil when idle.
	current *Request
	stats   *model.Statistics

	// Stream-side annotations for the current request.
	streamData [][]byte

	scrollTarget string
	dirty        bool
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	if opts.Identity == nil {
		opts.Identity = guest{}
	}
	if opts.Catalog == nil {
		opts.Catalog = StaticCatalog(model.DefaultCatalog)
	}
	if opts.KV == nil {
		opts.KV = nopKV{}
	}
	if opts.Navigator == nil {
		opts.Navigator = nopNavigator{}
	}
	if opts.History == nil {
		opts.History = nopHistory{}
	}
	if opts.Archive == nil {
		opts.Archive = nopArchive{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = nopClipboard{}
	}
	if opts.Sharer == nil {
		opts.Sharer = nopSharer{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	conv := opts.Conversation
	if conv == nil {
		conv = model.NewConversation(opts.ChatID)
	}
	chatID := opts.ChatID
	if chatID == "" {
		chatID = conv.ID
	}

	return &Manager{
		opts:   opts,
		chatID: chatID,
		conv:   conv,
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatID returns the addressable chat identifier.
func (m *Manager) ChatID() string { return m.chatID }

// Conversation returns the underlying log. Callers must not mutate it.
func (m *Manager) Conversation() *model.Conversation { return m.conv }

// Messages returns a copy of the log.
func (m *Manager) Messages() []model.Message { return m.conv.Messages() }

// Epoch returns the current generation.
func (m *Manager) Epoch() uint64 { return m.conv.Epoch() }

// IsStreaming reports whether a request is in flight.
func (m *Manager) IsStreaming() bool { return m.current != nil }

// Current returns the in-flight request, if any.
func (m *Manager) Current() (Request, bool) {
	if m.current == nil {
		return Request{}, false
	}
	return *m.current, true
}

// Stats returns timing of the latest request, or nil.
func (m *Manager) Stats() *model.Statistics { return m.stats }

// StreamData returns the annotations received for the current request.
func (m *Manager) StreamData() [][]byte {
	out := make([][]byte, len(m.streamData))
	copy(out, m.streamData)
	return out
}

// IsDirty reports whether the log changed since it was last archived.
func (m *Manager) IsDirty() bool { return m.dirty }

// User returns the current identity, nil for a guest.
func (m *Manager) User() *User { return m.opts.Identity.CurrentUser() }

// Models returns the model catalog.
func (m *Manager) Models() []model.ModelInfo { return m.opts.Catalog.Models() }

// TakeScrollTarget returns the section to scroll to after the last append,
// once.
func (m *Manager) TakeScrollTarget() (string, bool) {
	id := m.scrollTarget
	m.scrollTarget = ""
	return id, id != ""
}

// =============================================================================
// LOG OPERATIONS
// =============================================================================

// Append adds a message to the log. A user message schedules a scroll to its
// section.
func (m *Manager) Append(role model.Role, content model.Content) model.Message {
	msg := model.NewMessage(role, content)
	msg.CreatedAt = m.opts.Now()
	m.conv.Append(msg)
	m.dirty = true
	if role == model.RoleUser {
		m.scrollTarget = msg.ID
	}
	return msg
}

// Submit sends typed input. Blank input is ignored and returns nil. Build
// requests get the output block appended before they are sent.
func (m *Manager) Submit(raw string) *Request {
	m.clearStreamData()
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	m.Append(model.RoleUser, model.TextContent(intent.PrepareSubmission(raw)))
	return m.issue(PurposeSubmit, nil, nil)
}

// Ask appends a user message as-is and requests a reply. It backs related
// query selection.
func (m *Manager) Ask(text string) *Request {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.Append(model.RoleUser, model.TextContent(text))
	return m.issue(PurposeSubmit, nil, nil)
}

// EditAndRegenerate replaces the content of message id, drops every message
// after it, and requests a fresh reply. An edited user prompt is steered like
// a submitted one.
func (m *Manager) EditAndRegenerate(id, newContent string) (*Request, error) {
	idx := m.conv.IndexOf(id)
	if idx < 0 {
		log.Warn().Str("chat_id", m.chatID).Str("message_id", id).Msg("edit: message not in log")
		return nil, errors.Wrapf(ErrMessageNotFound, "edit %s", id)
	}

	if target, _ := m.conv.At(idx); target.Role == model.RoleUser {
		newContent = intent.PrepareSubmission(newContent)
	}
	m.conv.ReplaceContent(idx, model.TextContent(newContent))
	m.conv.Truncate(idx + 1)
	m.clearStreamData()
	m.dirty = true

	return m.issue(PurposeRegenerate, map[string]any{
		"chatId":     m.chatID,
		"regenerate": true,
	}, nil), nil
}

// RewindAndReload truncates the log to the nearest user message at or before
// message id and requests a fresh reply. With no such user message the log is
// reloaded unchanged.
func (m *Manager) RewindAndReload(id string) (*Request, error) {
	idx := m.conv.IndexOf(id)
	if idx < 0 {
		log.Warn().Str("chat_id", m.chatID).Str("message_id", id).Msg("reload: message not in log")
		return nil, errors.Wrapf(ErrMessageNotFound, "reload %s", id)
	}

	if userIdx := m.conv.LastIndexOfRole(model.RoleUser, idx); userIdx >= 0 {
		m.conv.Truncate(userIdx + 1)
		m.dirty = true
	}
	return m.issue(PurposeReload, nil, nil), nil
}

// RerunWithModel resends the latest user prompt with a different model. The
// selection is persisted for a day and applies to later requests too.
func (m *Manager) RerunWithModel(modelID string) (*Request, error) {
	text := m.LastUserText()
	if text == "" {
		return nil, ErrNoUserMessage
	}

	sel := m.SwitchModel(modelID)
	m.Append(model.RoleUser, model.TextContent(text))
	return m.issue(PurposeRerun, nil, &sel), nil
}

// SwitchModel persists a model selection without sending anything.
func (m *Manager) SwitchModel(modelID string) model.SelectedModel {
	sel := model.SelectModel(modelID)
	if err := m.opts.KV.Set(KeySelectedModel, sel.Encode(), SelectedModelTTL); err != nil {
		log.Warn().Err(err).Str("model", modelID).Msg("persist selected model")
	}
	return sel
}

// SelectedModel returns the persisted model selection, if any.
func (m *Manager) SelectedModel() (model.SelectedModel, bool) {
	raw, ok, err := m.opts.KV.Get(KeySelectedModel)
	if err != nil {
		log.Warn().Err(err).Msg("read selected model")
		return model.SelectedModel{}, false
	}
	if !ok {
		return model.SelectedModel{}, false
	}
	return model.DecodeSelectedModel(raw)
}

// NewChat starts an empty conversation under a fresh chat id.
func (m *Manager) NewChat() {
	next := model.NewConversation("")
	next.Supersede(m.conv)
	m.conv = next
	m.chatID = m.conv.ID
	m.current = nil
	m.stats = nil
	m.scrollTarget = ""
	m.dirty = false
	m.clearStreamData()
}

// Load replaces the session with a saved conversation.
func (m *Manager) Load(chatID string, msgs []model.Message) {
	next := model.NewConversationFrom(chatID, msgs)
	next.Supersede(m.conv)
	m.conv = next
	m.chatID = chatID
	m.current = nil
	m.stats = nil
	m.scrollTarget = ""
	m.dirty = false
	m.clearStreamData()
}

// =============================================================================
// STREAMING
// =============================================================================

// ApplyIncrement merges a streamed increment. It returns false for increments
// from a superseded request.
func (m *Manager) ApplyIncrement(epoch uint64, inc model.Increment) bool {
	if !m.conv.ApplyIncrement(epoch, inc) {
		log.Debug().Str("chat_id", m.chatID).Uint64("epoch", epoch).Uint64("current", m.conv.Epoch()).Msg("stale increment dropped")
		return false
	}
	if len(inc.Data) > 0 {
		m.streamData = append(m.streamData, inc.Data)
	}
	if m.stats != nil {
		m.stats.RecordIncrement()
	}
	m.dirty = true
	return true
}

// Complete finishes the request of the given epoch. It returns false when the
// request was superseded.
//
// On success the chat location is recorded, the log archived, and history
// listeners notified. On failure a notice is shown and the log is left as it
// is, truncation included.
func (m *Manager) Complete(epoch uint64, err error) bool {
	if epoch != m.conv.Epoch() || m.current == nil {
		log.Debug().Str("chat_id", m.chatID).Uint64("epoch", epoch).Msg("stale completion ignored")
		return false
	}
	req := m.current
	m.current = nil
	if m.stats != nil {
		m.stats.Finalize()
	}

	if err != nil {
		log.Error().Err(err).Str("chat_id", m.chatID).Str("purpose", req.Purpose.String()).Msg("request failed")
		m.notify(LevelError, failureText(req.Purpose, err))
		return true
	}

	m.opts.Navigator.Replace("/search/" + m.chatID)
	if saveErr := m.opts.Archive.SaveConversation(m.chatID, m.conv.Messages()); saveErr != nil {
		log.Warn().Err(saveErr).Str("chat_id", m.chatID).Msg("archive conversation")
	} else {
		m.dirty = false
	}
	m.opts.History.HistoryUpdated(m.chatID)
	return true
}

func failureText(p Purpose, err error) string {
	switch p {
	case PurposeRegenerate, PurposeReload:
		return "Failed to reload conversation: " + err.Error()
	default:
		return "Error in chat: " + err.Error()
	}
}

// issue starts a new generation and snapshots the request for it.
func (m *Manager) issue(p Purpose, extra map[string]any, sel *model.SelectedModel) *Request {
	epoch := m.conv.Begin()

	body := map[string]any{"id": m.chatID}
	for k, v := range extra {
		body[k] = v
	}
	if sel == nil {
		if stored, ok := m.SelectedModel(); ok {
			sel = &stored
		}
	}

	req := &Request{
		Purpose:  p,
		ChatID:   m.chatID,
		Messages: m.conv.Messages(),
		Body:     body,
		Model:    sel,
		Web:      m.WebEnabled(),
		Epoch:    epoch,
		IssuedAt: m.opts.Now(),
	}
	m.current = req
	m.stats = model.NewStatistics()

	log.Debug().
		Str("chat_id", m.chatID).
		Str("purpose", p.String()).
		Uint64("epoch", epoch).
		Int("messages", len(req.Messages)).
		Msg("request issued")
	return req
}

func (m *Manager) clearStreamData() {
	m.streamData = nil
}

func (m *Manager) notify(level Level, text string) {
	m.opts.Notifier.Notify(Notice{Level: level, Text: text})
}

// =============================================================================
// DERIVED STATE
// =============================================================================

// Sections returns the user-led sections of the log.
func (m *Manager) Sections() []model.Section {
	return m.conv.Sections()
}

// LastUserText returns the flattened text of the latest user message.
func (m *Manager) LastUserText() string {
	msg, ok := m.conv.LastOfRole(model.RoleUser)
	if !ok {
		return ""
	}
	return msg.Text()
}

// LastAssistantText returns the latest assistant reply, cleaned for artifact
// detection.
func (m *Manager) LastAssistantText() string {
	msg, ok := m.conv.LastOfRole(model.RoleAssistant)
	if !ok {
		return ""
	}
	return CleanupForArtifact(msg.Text())
}

// Suggestions returns the quick-prompt chips for the latest user message.
func (m *Manager) Suggestions() intent.Bundle {
	return intent.SuggestFor(m.LastUserText())
}
