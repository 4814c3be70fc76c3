// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"type":"bar","data":{}}}`

func fence(lang, body string) string {
	return "```" + lang + "\n" + body + "\n```"
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind Kind
		wantLang string
		wantCode string
	}{
		{"plain prose", "Just an answer with no code.", KindNone, "", ""},
		{"empty", "", KindNone, "", ""},
		{"html fence", "Here:\n" + fence("html", "<h1>Hi</h1>"), KindCode, LangHTML, "<h1>Hi</h1>\n"},
		{"tsx alias", fence("tsx", "export default () => null"), KindCode, LangJSX, "export default () => null\n"},
		{"typescript alias", fence("TypeScript", "let x = 1"), KindCode, LangJS, "let x = 1\n"},
		{"scss alias", fence("scss", "a { color: red }"), KindCode, LangCSS, "a { color: red }\n"},
		{"no language", fence("", "echo hi"), KindCode, LangText, "echo hi\n"},
		{"unknown language with newline", fence("python", "print(1)"), KindCode, "python", "print(1)\n"},
		{"inline token is body", "```const x = 1```", KindCode, LangText, "const x = 1"},
		{"known alias inline", "```js console.log(1)```", KindCode, LangJS, "console.log(1)"},
		{"json not chart", fence("json", `{"rows":[1,2]}`), KindCode, LangJSON, "{\"rows\":[1,2]}\n"},
		{"malformed chart json", fence("json", `{"chart":{"type":"bar",`), KindCode, LangJSON, "{\"chart\":{\"type\":\"bar\",\n"},
		{"chart with empty type", fence("json", `{"chart":{"type":"","data":{}}}`), KindCode, LangJSON, "{\"chart\":{\"type\":\"\",\"data\":{}}}\n"},
		{"chart without data", fence("json", `{"chart":{"type":"bar"}}`), KindCode, LangJSON, "{\"chart\":{\"type\":\"bar\"}}\n"},
		{"loose doctype", "Sure!\n<!DOCTYPE html><html><body>x</body></html>", KindCode, LangHTML, "<!DOCTYPE html><html><body>x</body></html>"},
		{"loose html root", "see <html lang=\"en\"><p>x</p></html>", KindCode, LangHTML, "<html lang=\"en\"><p>x</p></html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantLang, got.Language)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Nil(t, got.Chart)
		})
	}
}

func TestClassify_ChartRoundTrip(t *testing.T) {
	chart := Classify(fence("json", chartBody))
	require.Equal(t, KindChart, chart.Kind)
	require.NotNil(t, chart.Chart)
	assert.Equal(t, "bar", chart.Chart.Type())
	assert.Empty(t, chart.Code)
	assert.True(t, chart.Renderable())

	code := Classify(fence("js", chartBody))
	require.Equal(t, KindCode, code.Kind)
	assert.Equal(t, LangJS, code.Language)
	assert.Equal(t, chartBody+"\n", code.Code)
}

func TestClassify_TruthyChartFields(t *testing.T) {
	tests := []struct {
		body string
		want Kind
	}{
		{`{"chart":{"type":"line","data":[]}}`, KindChart},
		{`{"chart":{"type":1,"data":{}}}`, KindChart},
		{`{"chart":{"type":0,"data":{}}}`, KindCode},
		{`{"chart":{"type":"bar","data":null}}`, KindCode},
		{`{"chart":{"type":"bar","data":false}}`, KindCode},
		{`{"chart":"bar"}`, KindCode},
		{`[1,2,3]`, KindCode},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(fence("json", tt.body)).Kind, tt.body)
	}
}

func TestClassify_LooseFragment(t *testing.T) {
	got := Classify(`Here is a card: <div class="card"><p>Hi</p></div>`)
	require.Equal(t, KindCode, got.Kind)
	assert.Equal(t, LangHTML, got.Language)
	assert.True(t, strings.HasPrefix(got.Code, "<!doctype html>"))
	assert.Contains(t, got.Code, `<div class="card"><p>Hi</p></div>`)
	assert.NotContains(t, got.Code, "Here is a card")
}

func TestClassify_FenceWinsOverLooseMarkup(t *testing.T) {
	got := Classify("<div>outside</div>\n" + fence("css", "body{}"))
	assert.Equal(t, LangCSS, got.Language)
	assert.Equal(t, "body{}\n", got.Code)
}

func TestClassify_NestedFenceStopsAtFirstClose(t *testing.T) {
	text := "```md\nouter\n```js\ninner\n```\nrest\n```"
	got := Classify(text)
	require.Equal(t, KindCode, got.Kind)
	assert.Equal(t, "md", got.Language)
	assert.Equal(t, "outer\n", got.Code)
}

func TestClassify_TotalAndIdempotent(t *testing.T) {
	inputs := []string{
		"", "```", "``````", "```json", "```json\n```", "<div", "<!doctype html",
		"\x00\xff", strings.Repeat("`", 10), "```\n<script></script>\n```",
		fence("json", "{"), fence("json", chartBody),
	}
	valid := map[Kind]bool{KindNone: true, KindCode: true, KindChart: true}

	for _, in := range inputs {
		first := Classify(in)
		assert.True(t, valid[first.Kind], "kind %q for %q", first.Kind, in)
		assert.Equal(t, first, Classify(in), in)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, LangHTML, NormalizeLanguage("HTM"))
	assert.Equal(t, LangJSX, NormalizeLanguage("react"))
	assert.Equal(t, LangJS, NormalizeLanguage("node"))
	assert.Equal(t, LangJSON, NormalizeLanguage("json5"))
	assert.Equal(t, LangSVG, NormalizeLanguage("svg"))
	assert.Equal(t, "rust", NormalizeLanguage("Rust"))
	assert.Equal(t, LangText, NormalizeLanguage(""))
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "0::", ContentHash(""))
	assert.Equal(t, "3:abc:abc", ContentHash("abc"))

	long := strings.Repeat("a", 64) + "MIDDLE" + strings.Repeat("z", 64)
	h := ContentHash(long)
	assert.Equal(t, "134:"+strings.Repeat("a", 64)+":"+strings.Repeat("z", 64), h)

	// Runes, not bytes.
	assert.Equal(t, "2:日本:日本", ContentHash("日本"))
}

func TestClassifier_Memoizes(t *testing.T) {
	c := NewClassifier(2)
	text := fence("html", "<p>x</p>")

	first := c.Classify(text)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, first, c.Classify(text))
	assert.Equal(t, 1, c.Len())

	c.Classify("a")
	c.Classify("b")
	assert.Equal(t, 2, c.Len())

	off := NewClassifier(0)
	assert.Equal(t, first, off.Classify(text))
	assert.Equal(t, 0, off.Len())
}
