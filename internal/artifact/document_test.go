// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, doc string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	return d
}

func TestBuildDocument_HTMLPassthrough(t *testing.T) {
	html := "<!doctype html><html><body><h1>Hi</h1></body></html>"
	assert.Equal(t, html, BuildDocument(Result{Kind: KindCode, Language: LangHTML, Code: html}))
}

func TestBuildDocument_CodeShell(t *testing.T) {
	code := "document.getElementById('app').textContent = 'hi'"
	doc := BuildDocument(Result{Kind: KindCode, Language: LangJS, Code: code})

	d := parseDoc(t, doc)
	assert.Equal(t, 1, d.Find("div#app").Length())
	script := d.Find(`script[type="module"]`)
	require.Equal(t, 1, script.Length())
	assert.Contains(t, script.Text(), code)
	assert.Equal(t, "js", d.Find("title").Text())
}

func TestBuildDocument_EscapesScriptClose(t *testing.T) {
	code := "const s = '</script><script>alert(1)</SCRIPT>'"
	doc := BuildDocument(Result{Kind: KindCode, Language: LangJS, Code: code})

	assert.NotContains(t, strings.ToLower(strings.SplitN(doc, `<script type="module">`, 2)[1]), "</script><script>")
	assert.Contains(t, doc, `<\/script><script>alert(1)<\/script>`)
	assert.Equal(t, 1, parseDoc(t, doc).Find(`script[type="module"]`).Length())
}

func TestBuildDocument_Chart(t *testing.T) {
	res := Classify(fence("json", `{"chart":{"type":"line","data":{"labels":["</script>"]}}}`))
	require.Equal(t, KindChart, res.Kind)

	doc := BuildDocument(res)
	d := parseDoc(t, doc)

	src, ok := d.Find("script[src]").Attr("src")
	require.True(t, ok)
	assert.Equal(t, ChartJSURL, src)
	assert.Equal(t, 1, d.Find("canvas#c").Length())

	assert.Contains(t, doc, `\u003c/script\u003e`)
	assert.NotContains(t, doc, `"</script>"`)
	assert.Contains(t, doc, `"type":"line"`)
	assert.Contains(t, doc, "spec.type || 'bar'")
}

func TestBuildDocument_UnserializableChart(t *testing.T) {
	doc := BuildDocument(Result{Kind: KindChart, Chart: ChartSpec{"type": "bar", "data": func() {}}})
	assert.Contains(t, doc, "const spec = {};")
}

func TestBuildDocument_NilChartUsesDefaults(t *testing.T) {
	doc := BuildDocument(Result{Kind: KindChart})
	assert.Contains(t, doc, "const spec = {};")
	assert.NotContains(t, doc, "const spec = null;")
	assert.Contains(t, doc, "spec.type || 'bar'")
}

func TestBuildDocument_None(t *testing.T) {
	doc := BuildDocument(Result{Kind: KindNone})
	d := parseDoc(t, doc)
	assert.Equal(t, 0, d.Find("script").Length())
	assert.Contains(t, doc, "#060606")
}

func TestWrapFragment(t *testing.T) {
	doc := WrapFragment(`<section id="s">x</section>`)
	assert.Equal(t, 1, parseDoc(t, doc).Find("body > section#s").Length())
}
