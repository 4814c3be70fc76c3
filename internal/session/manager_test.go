// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
)

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_PlainPrompt(t *testing.T) {
	h := newHarness()

	req := h.mgr.Submit("what is a monad")
	require.NotNil(t, req)
	assert.Equal(t, PurposeSubmit, req.Purpose)
	assert.Equal(t, "chat-1", req.ChatID)
	assert.Equal(t, map[string]any{"id": "chat-1"}, req.Body)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "what is a monad", req.Messages[0].Text())
	assert.Equal(t, h.mgr.Epoch(), req.Epoch)
	assert.True(t, h.mgr.IsStreaming())

	target, ok := h.mgr.TakeScrollTarget()
	require.True(t, ok)
	assert.Equal(t, req.Messages[0].ID, target)
	_, ok = h.mgr.TakeScrollTarget()
	assert.False(t, ok)
}

func TestSubmit_BuildPromptIsSteered(t *testing.T) {
	h := newHarness()

	req := h.mgr.Submit("build a dashboard component")
	require.NotNil(t, req)
	assert.Equal(t, intent.Steer("build a dashboard component"), req.LastUserText())
	assert.Contains(t, h.mgr.LastUserText(), intent.SteerMarker)
}

func TestSubmit_BlankIgnored(t *testing.T) {
	h := newHarness()
	assert.Nil(t, h.mgr.Submit("   \n\t"))
	assert.Empty(t, h.mgr.Messages())
	assert.False(t, h.mgr.IsStreaming())
}

func TestSubmit_ClearsStreamData(t *testing.T) {
	h := newHarness()
	req := h.mgr.Submit("hi")
	h.mgr.ApplyIncrement(req.Epoch, model.Increment{MessageID: "a1", Data: []byte(`{"sources":[]}`)})
	require.Len(t, h.mgr.StreamData(), 1)

	h.mgr.Submit("again")
	assert.Empty(t, h.mgr.StreamData())
}

func TestSubmit_CarriesSelectedModelAndWeb(t *testing.T) {
	h := newHarness()
	h.mgr.SwitchModel("openai:gpt-5")
	h.mgr.SetWebEnabled(true)

	req := h.mgr.Submit("hello")
	require.NotNil(t, req.Model)
	assert.Equal(t, "openai:gpt-5", req.Model.ID)
	assert.True(t, req.Web)
	assert.Equal(t, "1", h.kv.data[KeyWebEnabled])
}

// =============================================================================
// EDIT AND REGENERATE TESTS
// =============================================================================

func TestEditAndRegenerate_TruncatesToEdited(t *testing.T) {
	h := newHarness(
		msg("u1", model.RoleUser, "A"),
		msg("a1", model.RoleAssistant, "B"),
		msg("u2", model.RoleUser, "C"),
		msg("a2", model.RoleAssistant, "D"),
	)

	req, err := h.mgr.EditAndRegenerate("u2", "C edited")
	require.NoError(t, err)

	msgs := h.mgr.Messages()
	assert.Equal(t, []string{"u1", "a1", "u2"}, ids(msgs))
	assert.Equal(t, "C edited", msgs[2].Text())

	assert.Equal(t, PurposeRegenerate, req.Purpose)
	assert.Equal(t, "chat-1", req.Body["chatId"])
	assert.Equal(t, true, req.Body["regenerate"])
	assert.Len(t, req.Messages, 3)
}

func TestEditAndRegenerate_EveryIndex(t *testing.T) {
	for k := 0; k < 4; k++ {
		h := newHarness(
			msg("m0", model.RoleUser, "0"),
			msg("m1", model.RoleAssistant, "1"),
			msg("m2", model.RoleUser, "2"),
			msg("m3", model.RoleAssistant, "3"),
		)
		id := h.mgr.Messages()[k].ID

		_, err := h.mgr.EditAndRegenerate(id, "new")
		require.NoError(t, err)
		msgs := h.mgr.Messages()
		assert.Len(t, msgs, k+1)
		assert.Equal(t, "new", msgs[k].Text())
	}
}

func TestEditAndRegenerate_SteersBuildPrompt(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		content string
		want    string
	}{
		{"user build prompt", "u1", "build a pricing page", intent.Steer("build a pricing page")},
		{"user plain prompt", "u1", "explain pricing", "explain pricing"},
		{"assistant text", "a1", "build a pricing page", "build a pricing page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(
				msg("u1", model.RoleUser, "A"),
				msg("a1", model.RoleAssistant, "B"),
			)
			_, err := h.mgr.EditAndRegenerate(tt.id, tt.content)
			require.NoError(t, err)
			msgs := h.mgr.Messages()
			assert.Equal(t, tt.want, msgs[len(msgs)-1].Text())
		})
	}
}

func TestEditAndRegenerate_UnknownID(t *testing.T) {
	h := newHarness(msg("u1", model.RoleUser, "A"))
	epoch := h.mgr.Epoch()

	req, err := h.mgr.EditAndRegenerate("nope", "x")
	assert.Nil(t, req)
	assert.True(t, errors.Is(err, ErrMessageNotFound))
	assert.Equal(t, []string{"u1"}, ids(h.mgr.Messages()))
	assert.Equal(t, epoch, h.mgr.Epoch())
	assert.Empty(t, h.notifier.notices)
}

// =============================================================================
// REWIND AND RELOAD TESTS
// =============================================================================

func TestRewindAndReload_ToPrecedingUser(t *testing.T) {
	h := newHarness(
		msg("A", model.RoleUser, "a"),
		msg("B", model.RoleAssistant, "b"),
		msg("C", model.RoleUser, "c"),
		msg("D", model.RoleAssistant, "d"),
	)

	req, err := h.mgr.RewindAndReload("D")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids(h.mgr.Messages()))
	assert.Equal(t, PurposeReload, req.Purpose)
	assert.Equal(t, "c", req.LastUserText())
}

func TestRewindAndReload_OnUserKeepsIt(t *testing.T) {
	h := newHarness(
		msg("A", model.RoleUser, "a"),
		msg("B", model.RoleAssistant, "b"),
		msg("C", model.RoleUser, "c"),
	)

	_, err := h.mgr.RewindAndReload("C")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids(h.mgr.Messages()))
}

func TestRewindAndReload_NoUserReloadsUnchanged(t *testing.T) {
	h := newHarness(msg("X", model.RoleAssistant, "orphan"))

	req, err := h.mgr.RewindAndReload("X")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, []string{"X"}, ids(h.mgr.Messages()))
}

func TestRewindAndReload_UnknownID(t *testing.T) {
	h := newHarness(msg("A", model.RoleUser, "a"))
	_, err := h.mgr.RewindAndReload("missing")
	assert.True(t, errors.Is(err, ErrMessageNotFound))
	assert.False(t, h.mgr.IsStreaming())
}

// =============================================================================
// RERUN TESTS
// =============================================================================

func TestRerunWithModel(t *testing.T) {
	h := newHarness(
		msg("u1", model.RoleUser, "explain go channels"),
		msg("a1", model.RoleAssistant, "..."),
	)

	req, err := h.mgr.RerunWithModel("anthropic/claude-3-5-sonnet")
	require.NoError(t, err)

	assert.Equal(t, PurposeRerun, req.Purpose)
	require.NotNil(t, req.Model)
	assert.Equal(t, "anthropic/claude-3-5-sonnet", req.Model.ID)
	assert.Equal(t, "native", req.Model.ToolCallType)

	msgs := h.mgr.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.RoleUser, msgs[2].Role)
	assert.Equal(t, "explain go channels", msgs[2].Text())

	stored, ok := h.mgr.SelectedModel()
	require.True(t, ok)
	assert.Equal(t, "anthropic/claude-3-5-sonnet", stored.ID)
	assert.Equal(t, SelectedModelTTL, h.kv.ttls[KeySelectedModel])
	assert.Equal(t, "anthropic/claude-3-5-sonnet", h.mgr.CurrentModelID())
}

func TestRerunWithModel_MultipartUser(t *testing.T) {
	parts := model.PartsContent(model.TextPart("first"), model.LiteralPart("second"))
	h := newHarness(model.Message{ID: "u1", Role: model.RoleUser, Content: parts})

	req, err := h.mgr.RerunWithModel("google/gemini-1.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", req.LastUserText())
}

func TestRerunWithModel_NoUser(t *testing.T) {
	h := newHarness(msg("a1", model.RoleAssistant, "hello"))

	req, err := h.mgr.RerunWithModel("openai/gpt-4o-mini")
	assert.Nil(t, req)
	assert.True(t, errors.Is(err, ErrNoUserMessage))
	_, stored := h.kv.data[KeySelectedModel]
	assert.False(t, stored)
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestApplyIncrement_StaleDiscardedAfterEdit(t *testing.T) {
	h := newHarness()
	first := h.mgr.Submit("question one")
	require.True(t, h.mgr.ApplyIncrement(first.Epoch, model.Increment{MessageID: "a1", Role: model.RoleAssistant, Delta: "partial"}))

	userID := h.mgr.Messages()[0].ID
	second, err := h.mgr.EditAndRegenerate(userID, "question two")
	require.NoError(t, err)

	assert.False(t, h.mgr.ApplyIncrement(first.Epoch, model.Increment{MessageID: "a1", Delta: " more"}))
	assert.Len(t, h.mgr.Messages(), 1)

	assert.False(t, h.mgr.Complete(first.Epoch, nil))
	assert.Empty(t, h.nav.paths)

	require.True(t, h.mgr.ApplyIncrement(second.Epoch, model.Increment{MessageID: "a2", Role: model.RoleAssistant, Delta: "fresh"}))
	assert.Equal(t, "fresh", h.mgr.LastAssistantText())
}

func TestApplyIncrement_AppendMidStreamKeepsIDsUnique(t *testing.T) {
	h := newHarness()
	req := h.mgr.Submit("hi")
	require.True(t, h.mgr.ApplyIncrement(req.Epoch, model.Increment{Role: model.RoleAssistant, Delta: "part1"}))

	h.mgr.Append(model.RoleUser, model.TextContent("interject"))
	require.True(t, h.mgr.ApplyIncrement(req.Epoch, model.Increment{Role: model.RoleAssistant, Delta: "part2"}))

	msgs := h.mgr.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "part1", msgs[1].Text())
	assert.Equal(t, "part2", msgs[3].Text())
	seen := map[string]bool{}
	for _, id := range ids(msgs) {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestComplete_Success(t *testing.T) {
	h := newHarness()
	req := h.mgr.Submit("hi")
	h.mgr.ApplyIncrement(req.Epoch, model.Increment{MessageID: "a1", Role: model.RoleAssistant, Delta: "hello"})

	require.True(t, h.mgr.Complete(req.Epoch, nil))
	assert.Equal(t, []string{"/search/chat-1"}, h.nav.paths)
	assert.Equal(t, []string{"chat-1"}, h.history.updates)
	assert.Len(t, h.archive.saved["chat-1"], 2)
	assert.False(t, h.mgr.IsStreaming())
	assert.False(t, h.mgr.IsDirty())
	assert.Equal(t, 1, h.mgr.Stats().Increments)
}

func TestComplete_FailureNotices(t *testing.T) {
	tests := []struct {
		name  string
		start func(h *harness) *Request
		want  string
	}{
		{
			name:  "submit",
			start: func(h *harness) *Request { return h.mgr.Submit("hi") },
			want:  "Error in chat: boom",
		},
		{
			name: "regenerate",
			start: func(h *harness) *Request {
				req, _ := h.mgr.EditAndRegenerate("u1", "edited")
				return req
			},
			want: "Failed to reload conversation: boom",
		},
		{
			name: "reload",
			start: func(h *harness) *Request {
				req, _ := h.mgr.RewindAndReload("a1")
				return req
			},
			want: "Failed to reload conversation: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(msg("u1", model.RoleUser, "q"), msg("a1", model.RoleAssistant, "r"))
			req := tt.start(h)
			require.NotNil(t, req)
			before := ids(h.mgr.Messages())

			require.True(t, h.mgr.Complete(req.Epoch, errors.New("boom")))
			assert.Equal(t, Notice{Level: LevelError, Text: tt.want}, h.notifier.last())
			assert.Equal(t, before, ids(h.mgr.Messages()))
			assert.Empty(t, h.nav.paths)
			assert.Empty(t, h.history.updates)
		})
	}
}

// =============================================================================
// DERIVED STATE TESTS
// =============================================================================

func TestSectionsAndSuggestions(t *testing.T) {
	h := newHarness(
		msg("u1", model.RoleUser, "plot this csv"),
		msg("a1", model.RoleAssistant, "ok"),
	)

	sections := h.mgr.Sections()
	require.Len(t, sections, 1)
	assert.Equal(t, "u1", sections[0].ID)
	assert.Equal(t, intent.Suggestions(intent.CategoryData), h.mgr.Suggestions())
}

func TestNewChat(t *testing.T) {
	h := newHarness(msg("u1", model.RoleUser, "q"))
	old := h.mgr.Submit("another")

	h.mgr.NewChat()
	assert.NotEqual(t, "chat-1", h.mgr.ChatID())
	assert.Empty(t, h.mgr.Messages())
	assert.False(t, h.mgr.IsStreaming())

	fresh := h.mgr.Submit("new chat question")
	assert.NotEqual(t, old.Epoch, fresh.Epoch)
	assert.False(t, h.mgr.ApplyIncrement(old.Epoch, model.Increment{Delta: "late"}))
	assert.False(t, strings.Contains(h.mgr.Transcript(), "late"))
}

func TestLoad(t *testing.T) {
	h := newHarness()
	h.mgr.Load("saved", []model.Message{msg("u1", model.RoleUser, "q"), msg("a1", model.RoleAssistant, "r")})
	assert.Equal(t, "saved", h.mgr.ChatID())
	assert.Equal(t, "r", h.mgr.LastAssistantText())
}
