// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONTENT TESTS
// =============================================================================

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"hi"`, "hi"},
		{"parts with text", `[{"type":"text","text":"a"},{"type":"text","text":"b"}]`, "a\nb"},
		{"literal string parts", `["x","y"]`, "x\ny"},
		{"nested content", `[{"type":"x","content":"c"}]`, "c"},
		{"null part", `[null]`, ""},
		{"empty array", `[]`, ""},
		{"null", `null`, ""},
		{"number", `42`, ""},
		{"object", `{"text":"no"}`, ""},
		{"text wins over content", `[{"text":"t","content":"c"}]`, "t"},
		{"non-string text ignored", `[{"text":5,"content":"c"}]`, "c"},
		{"mixed", `["a",{"type":"text","text":"b"},null,{"content":"d"}]`, "a\nb\n\nd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTextJSON([]byte(tt.raw)))
		})
	}
}

func TestContent_Constructors(t *testing.T) {
	assert.Equal(t, "hello", ExtractText(TextContent("hello")))
	assert.False(t, TextContent("hello").IsMultipart())

	parts := PartsContent(TextPart("a"), LiteralPart("b"), NestedPart("tool", "c"))
	assert.True(t, parts.IsMultipart())
	assert.Equal(t, "a\nb\nc", ExtractText(parts))

	assert.Equal(t, "", ExtractText(Content{}))
}

func TestMessage_JSONShape(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","role":"assistant","content":[{"type":"text","text":"hi"}]}`), &msg))

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.True(t, msg.Content.IsMultipart())
	assert.Equal(t, "hi", msg.Text())

	data, err := json.Marshal(NewUserMessage("plain"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":"plain"`)
}

// =============================================================================
// SECTION TESTS
// =============================================================================

func msg(id string, role Role, text string) Message {
	return Message{ID: id, Role: role, Content: TextContent(text)}
}

func TestBuildSections(t *testing.T) {
	msgs := []Message{
		msg("a0", RoleAssistant, "orphan"),
		msg("u1", RoleUser, "q1"),
		msg("a1", RoleAssistant, "r1"),
		msg("s1", RoleSystem, "note"),
		msg("a2", RoleAssistant, "r2"),
		msg("u2", RoleUser, "q2"),
	}

	sections := BuildSections(msgs)
	require.Len(t, sections, 2)

	assert.Equal(t, "u1", sections[0].ID)
	require.Len(t, sections[0].Assistant, 2)
	assert.Equal(t, "a1", sections[0].Assistant[0].ID)
	assert.Equal(t, "a2", sections[0].Assistant[1].ID)

	assert.Equal(t, "u2", sections[1].ID)
	assert.Empty(t, sections[1].Assistant)
	_, ok := sections[1].LastAssistant()
	assert.False(t, ok)

	last, ok := sections[0].LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "r2", last.Text())
}

func TestBuildSections_Empty(t *testing.T) {
	assert.Empty(t, BuildSections(nil))
	assert.Empty(t, BuildSections([]Message{msg("a", RoleAssistant, "x")}))
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendAssignsIDs(t *testing.T) {
	c := NewConversation("")
	assert.NotEmpty(t, c.ID)

	c.Append(Message{Role: RoleUser, Content: TextContent("hi")})
	m, ok := c.At(0)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(m.ID, "msg_"))
	assert.False(t, m.CreatedAt.IsZero())
}

func TestConversation_TruncateAdvancesEpoch(t *testing.T) {
	c := NewConversation("chat")
	c.Append(msg("u1", RoleUser, "q"))
	c.Append(msg("a1", RoleAssistant, "r"))

	before := c.Epoch()
	c.Truncate(1)
	assert.Equal(t, 1, c.Len())
	assert.Greater(t, c.Epoch(), before)

	c.Reset()
	assert.True(t, c.IsEmpty())
}

func TestConversation_ApplyIncrement(t *testing.T) {
	c := NewConversation("chat")
	c.Append(msg("u1", RoleUser, "q"))
	epoch := c.Begin()

	require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: "a1", Role: RoleAssistant, Delta: "Hel"}))
	require.True(t, c.ApplyIncrement(epoch, Increment{Delta: "lo"}))

	require.Equal(t, 2, c.Len())
	last, _ := c.LastOfRole(RoleAssistant)
	assert.Equal(t, "a1", last.ID)
	assert.Equal(t, "Hello", last.Text())
}

func TestConversation_StaleIncrementDropped(t *testing.T) {
	c := NewConversation("chat")
	c.Append(msg("u1", RoleUser, "q"))
	old := c.Begin()
	require.True(t, c.ApplyIncrement(old, Increment{MessageID: "a1", Delta: "first"}))

	c.Truncate(1)
	current := c.Begin()

	assert.False(t, c.ApplyIncrement(old, Increment{MessageID: "a1", Delta: " late"}))
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.ApplyIncrement(current, Increment{MessageID: "a2", Delta: "fresh"}))
	last, _ := c.LastOfRole(RoleAssistant)
	assert.Equal(t, "fresh", last.Text())
}

func TestConversation_LastIndexOfRole(t *testing.T) {
	c := NewConversationFrom("chat", []Message{
		msg("u1", RoleUser, "q1"),
		msg("a1", RoleAssistant, "r1"),
		msg("u2", RoleUser, "q2"),
		msg("a2", RoleAssistant, "r2"),
	})

	assert.Equal(t, 2, c.LastIndexOfRole(RoleUser, 3))
	assert.Equal(t, 2, c.LastIndexOfRole(RoleUser, 2))
	assert.Equal(t, 0, c.LastIndexOfRole(RoleUser, 1))
	assert.Equal(t, -1, c.LastIndexOfRole(RoleSystem, 3))
	assert.Equal(t, 3, c.IndexOf("a2"))
	assert.Equal(t, -1, c.IndexOf("missing"))
}

func TestConversation_KeepsEveryMessage(t *testing.T) {
	c := NewConversation("chat")
	for i := 0; i < 1500; i++ {
		c.Append(Message{Role: RoleUser, Content: TextContent("x")})
	}
	assert.Equal(t, 1500, c.Len())
	first, _ := c.At(0)
	assert.Equal(t, RoleUser, first.Role)
}

func TestConversation_DataBeforeTextAddsNoMessage(t *testing.T) {
	c := NewConversation("chat")
	c.Append(msg("u1", RoleUser, "hello"))
	epoch := c.Begin()

	require.True(t, c.ApplyIncrement(epoch, Increment{Role: RoleAssistant, Data: []byte(`[{"status":"searching"}]`)}))
	require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: "m1", Role: RoleAssistant, Data: []byte(`[]`)}))
	assert.Equal(t, 1, c.Len())

	require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: "m1", Role: RoleAssistant, Delta: "hi"}))
	require.Equal(t, 2, c.Len())
	last, _ := c.At(1)
	assert.Equal(t, "m1", last.ID)
	assert.Equal(t, "hi", last.Text())
}

func TestConversation_AppendDuringStream(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"no backend id", ""},
		{"backend id", "a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConversation("chat")
			c.Append(msg("u1", RoleUser, "hi"))
			epoch := c.Begin()

			require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: tt.id, Delta: "part1"}))
			c.Append(msg("u2", RoleUser, "interject"))
			require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: tt.id, Delta: "part2"}))
			require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: tt.id, Delta: " more"}))

			msgs := c.Messages()
			require.Len(t, msgs, 4)
			assert.Equal(t, "part1", msgs[1].Text())
			assert.Equal(t, "part2 more", msgs[3].Text())
			assertUniqueIDs(t, msgs)
		})
	}
}

func TestConversation_ReusedBackendIDGetsFreshID(t *testing.T) {
	c := NewConversationFrom("chat", []Message{
		msg("u1", RoleUser, "q1"),
		msg("a1", RoleAssistant, "r1"),
		msg("u2", RoleUser, "q2"),
	})
	epoch := c.Begin()

	require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: "a1", Delta: "r2"}))
	require.True(t, c.ApplyIncrement(epoch, Increment{MessageID: "a1", Delta: " cont"}))

	msgs := c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "r1", msgs[1].Text())
	assert.Equal(t, "r2 cont", msgs[3].Text())
	assertUniqueIDs(t, msgs)
}

func assertUniqueIDs(t *testing.T, msgs []Message) {
	t.Helper()
	seen := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestConversation_CloneIsIndependent(t *testing.T) {
	c := NewConversation("chat")
	c.Append(msg("u1", RoleUser, "q"))
	clone := c.Clone()
	c.Append(msg("u2", RoleUser, "q2"))

	assert.Equal(t, 1, clone.Len())
	assert.Equal(t, 2, c.Len())
}

// =============================================================================
// MODEL CATALOG TESTS
// =============================================================================

func TestSelectModel(t *testing.T) {
	sel := SelectModel("openai/gpt-4o-mini")
	assert.Equal(t, "openai/gpt-4o-mini", sel.ID)
	assert.Equal(t, "openai/gpt-4o-mini", sel.Name)
	assert.Empty(t, sel.Provider)
	assert.True(t, sel.Enabled)
	assert.Equal(t, "native", sel.ToolCallType)

	decoded, ok := DecodeSelectedModel(sel.Encode())
	require.True(t, ok)
	assert.Equal(t, sel, decoded)

	_, ok = DecodeSelectedModel("not json")
	assert.False(t, ok)
}

func TestProviderOf(t *testing.T) {
	assert.Equal(t, "openai", ProviderOf("openai/gpt-4o-mini"))
	assert.Equal(t, "google", ProviderOf("google:gemini-2.5-pro"))
	assert.Equal(t, "", ProviderOf("gpt-4"))
	assert.Equal(t, "gpt-4o-mini", ModelName("openai/gpt-4o-mini"))
}

func TestMeasureInput(t *testing.T) {
	m := MeasureInput("one two three four five six seven eight nine ten", "openai/gpt-4o-mini")
	assert.Equal(t, 10, m.Words)
	assert.Equal(t, 13, m.Tokens)
	assert.InDelta(t, 13.0/1000*0.15, m.Cost, 1e-9)

	empty := MeasureInput("   ", "unknown")
	assert.Equal(t, 0, empty.Words)
	assert.Equal(t, 0, empty.Tokens)
	assert.Zero(t, empty.Cost)
}

func TestStatistics(t *testing.T) {
	s := NewStatistics()
	s.RecordIncrement()
	s.RecordIncrement()
	s.Finalize()

	assert.Equal(t, 2, s.Increments)
	assert.False(t, s.FirstTokenTime.IsZero())
	assert.Contains(t, s.Format(), "2 chunks")
}
