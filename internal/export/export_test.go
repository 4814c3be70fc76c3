// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/storage"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func sampleConversation() *storage.StoredConversation {
	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	return &storage.StoredConversation{
		ID:        "chat-1",
		Summary:   "Build a #1 landing page",
		Model:     "openai/gpt-4o-mini",
		CreatedAt: created,
		UpdatedAt: created,
		Messages: []model.Message{
			{ID: "u1", Role: model.RoleUser, Content: model.TextContent(intent.Steer("build a landing page")), CreatedAt: created},
			{ID: "a1", Role: model.RoleAssistant, Content: model.TextContent("Here it is:\n\n```html\n<h1>Hi</h1>\n```\n\n<script>alert(1)</script>"), CreatedAt: created},
		},
	}
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions(t.TempDir())).Export(sampleConversation())
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "---\n"))
	assert.Contains(t, text, `title: "Build a #1 landing page"`)
	assert.Contains(t, text, "model: openai/gpt-4o-mini")
	assert.Contains(t, text, "messages: 2")
	assert.Contains(t, text, `# Build a \#1 landing page`)
	assert.Contains(t, text, "## You\n\nbuild a landing page\n")
	assert.Contains(t, text, "## Assistant\n\nHere it is:")
	assert.NotContains(t, text, intent.SteerMarker)
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.IncludeMetadata = false
	out, err := NewMarkdownExporter(opts).Export(sampleConversation())
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(out), "---"))
}

func TestEscapeYAML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain title", "plain title"},
		{"a: b", `"a: b"`},
		{`say "hi"`, `"say \"hi\""`},
		{"two\nlines", `"two\nlines"`},
		{" padded", `" padded"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeYAML(tt.in), tt.in)
	}
}

// =============================================================================
// HTML
// =============================================================================

func TestHTMLExporter(t *testing.T) {
	out, err := NewHTMLExporter(testOptions(t.TempDir())).Export(sampleConversation())
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "<title>Build a #1 landing page</title>")
	assert.Contains(t, text, `class="dark-theme"`)
	assert.Contains(t, text, `class="message message-user"`)
	assert.Contains(t, text, `<code class="language-html">&lt;h1&gt;Hi&lt;/h1&gt;`)
	assert.NotContains(t, text, "<script>alert(1)</script>")
	assert.Contains(t, text, "March 14, 2025")
}

func TestHTMLExporter_LightTheme(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.Theme = "light"
	out, err := NewHTMLExporter(opts).Export(sampleConversation())
	require.NoError(t, err)
	assert.Contains(t, string(out), `class="light-theme"`)
}

// =============================================================================
// JSON AND FILES
// =============================================================================

func TestJSONExporter_RoundTrip(t *testing.T) {
	conv := sampleConversation()
	out, err := NewJSONExporter().Export(conv)
	require.NoError(t, err)

	var back storage.StoredConversation
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, conv.ID, back.ID)
	require.Len(t, back.Messages, 2)
	assert.Equal(t, conv.Messages[1].Text(), back.Messages[1].Text())
}

func TestExport_EmptyConversation(t *testing.T) {
	empty := &storage.StoredConversation{ID: "x"}
	_, err := NewMarkdownExporter(nil).Export(empty)
	assert.ErrorIs(t, err, ErrEmptyConversation)
	_, err = NewHTMLExporter(nil).Export(empty)
	assert.ErrorIs(t, err, ErrEmptyConversation)
	_, err = NewMarkdownExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	for format, ext := range map[string]string{"md": ".md", "markdown": ".md", "HTML": ".html", "json": ".json"} {
		e, err := ForFormat(format, nil)
		require.NoError(t, err, format)
		assert.Equal(t, ext, e.FileExtension())
	}
	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	path, err := ExportToFile(sampleConversation(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "zen-chat-Build_a_#1_landing_page-20250314_092653.md", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Assistant")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c", sanitizeFilename("a/b\\c"))
	assert.Equal(t, "conversation", sanitizeFilename(""))
	assert.Equal(t, "x_y", sanitizeFilename("x y"))
	assert.Equal(t, 50, len([]rune(sanitizeFilename(strings.Repeat("é", 80)))))
}

func TestFromConversation(t *testing.T) {
	conv := model.NewConversation("chat-9")
	conv.Append(model.NewUserMessage("hello there"))
	conv.Append(model.NewAssistantMessage("hi"))

	stored := FromConversation(conv, "google:gemini-2.5-pro")
	assert.Equal(t, "chat-9", stored.ID)
	assert.Equal(t, "hello there", stored.Summary)
	assert.Equal(t, "google:gemini-2.5-pro", stored.Model)
	assert.Len(t, stored.Messages, 2)
}
