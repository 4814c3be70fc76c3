// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
)

func newStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := NewConversationStoreWithDir(t.TempDir())
	require.NoError(t, err)
	return store
}

func sampleMessages(prompt string) []model.Message {
	return []model.Message{
		{ID: "u1", Role: model.RoleUser, Content: model.TextContent(prompt)},
		{ID: "a1", Role: model.RoleAssistant, Content: model.PartsContent(model.TextPart("Hi there!"))},
	}
}

func TestSaveConversationAndLoad(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.SaveConversation("chat-1", sampleMessages("Hello")))

	conv, err := store.Load("chat-1")
	require.NoError(t, err)
	assert.Equal(t, "chat-1", conv.ID)
	assert.Equal(t, "Hello", conv.Summary)
	require.Len(t, conv.Messages, 2)
	assert.True(t, conv.Messages[1].Content.IsMultipart())
	assert.Equal(t, "Hi there!", conv.Messages[1].Text())
}

func TestSaveConversation_KeepsCreatedAt(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SaveConversation("chat-1", sampleMessages("Hello")))
	first, err := store.Load("chat-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.SaveConversation("chat-1", sampleMessages("Hello again")))
	second, err := store.Load("chat-1")
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "New conversation", Summarize(nil))
	assert.Equal(t, "build a page", Summarize(sampleMessages(intent.Steer("build a page"))))
	assert.Equal(t, "multi line prompt", Summarize(sampleMessages("multi\nline   prompt")))

	long := strings.Repeat("word ", 30)
	assert.Equal(t, 50, len([]rune(Summarize(sampleMessages(long)))))
}

func TestList_NewestFirst(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SaveConversation("old", sampleMessages("first")))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.SaveConversation("new", sampleMessages("second")))

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "new", metas[0].ID)
	assert.Equal(t, 2, metas[0].MessageCount)
	assert.Equal(t, "second", metas[0].Preview)
}

func TestList_SkipsCorruptFiles(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SaveConversation("good", sampleMessages("ok")))
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir, "bad.json"), []byte("{"), 0600))

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "good", metas[0].ID)
}

func TestEnforceLimit(t *testing.T) {
	store := newStore(t)
	store.MaxConversations = 2

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveConversation(id, sampleMessages(id)))
		time.Sleep(5 * time.Millisecond)
	}

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	_, err = store.Load("a")
	assert.True(t, errors.Is(err, ErrConversationNotFound))
}

func TestSearch(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SaveConversation("go", sampleMessages("Explain Go channels")))
	require.NoError(t, store.SaveConversation("css", sampleMessages("Center a div")))

	results, err := store.Search("channels")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "go", results[0].ID)

	results, err = store.SearchMessages("hi there")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestResolve(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SaveConversation("abc123", sampleMessages("x")))
	require.NoError(t, store.SaveConversation("abd456", sampleMessages("y")))

	conv, err := store.Resolve("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", conv.ID)

	_, err = store.Resolve("ab")
	assert.Error(t, err)

	_, err = store.Resolve("zzz")
	assert.True(t, errors.Is(err, ErrConversationNotFound))
}

func TestDeleteAndClear(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SaveConversation("a", sampleMessages("x")))
	require.NoError(t, store.SaveConversation("b", sampleMessages("y")))

	require.NoError(t, store.Delete("a"))
	assert.True(t, errors.Is(store.Delete("a"), ErrConversationNotFound))

	require.NoError(t, store.Clear())
	metas, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestInvalidIDs(t *testing.T) {
	store := newStore(t)
	for _, id := range []string{"../escape", `a\b`, "..", ""} {
		_, err := store.Load(id)
		assert.True(t, errors.Is(err, ErrInvalidID), id)
	}
}

func TestFormatSessionList(t *testing.T) {
	assert.Equal(t, "No conversations found.", FormatSessionList(nil))

	out := FormatSessionList([]ConversationMeta{{ID: "0123456789abcdef", Summary: "Hello", MessageCount: 2, UpdatedAt: time.Now()}})
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "Hello")
}
