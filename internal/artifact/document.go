// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/rs/zerolog/log"
)

// ChartJSURL is the Chart.js bundle loaded by chart documents.
const ChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js"

// ============================================================================
// TEMPLATES
// ============================================================================

const darkHead = `<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{ .Title | default "Artifact" }}</title>`

const codeTemplate = `<!doctype html>
<html>
<head>
` + darkHead + `
<style>
  :root { color-scheme: dark; }
  html, body { margin: 0; height: 100%; background: #060606; color: #fff; }
  * { box-sizing: border-box; }
</style>
</head>
<body>
<div id="app"></div>
<script type="module">
{{ .Body }}
</script>
</body>
</html>`

const chartTemplate = `<!doctype html>
<html>
<head>
` + darkHead + `
<style>
  :root { color-scheme: dark; }
  html, body { margin: 0; height: 100%; background: #060606; color: #fff; display: grid; place-items: center; }
  * { box-sizing: border-box; }
  #wrap { width: min(900px, 96vw); height: min(520px, 78vh); padding: 16px; }
  canvas { width: 100% !important; height: 100% !important; }
</style>
</head>
<body>
<div id="wrap"><canvas id="c"></canvas></div>
<script src="{{ .ChartJS }}"></script>
<script>
const spec = {{ .Spec | toJson | default "{}" }};
const ctx = document.getElementById('c');
new Chart(ctx, {
  type: spec.type || 'bar',
  data: spec.data || {},
  options: spec.options || { responsive: true, plugins: { legend: { labels: { color: '#eee' } } }, scales: { x: { ticks: { color: '#bbb' } }, y: { ticks: { color: '#bbb' } } } }
});
</script>
</body>
</html>`

const emptyTemplate = `<!doctype html>
<html>
<head>
` + darkHead + `
<style>
  :root { color-scheme: dark; }
  html, body { margin: 0; height: 100%; background: #060606; color: #fff; }
</style>
</head>
<body></body>
</html>`

const fragmentTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
{{ .Body }}
</body>
</html>`

var (
	codeDoc     = mustTemplate("code", codeTemplate)
	chartDoc    = mustTemplate("chart", chartTemplate)
	emptyDoc    = mustTemplate("empty", emptyTemplate)
	fragmentDoc = mustTemplate("fragment", fragmentTemplate)
)

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text))
}

type docData struct {
	Title   string
	Body    string
	Spec    ChartSpec
	ChartJS string
}

// ============================================================================
// BUILDERS
// ============================================================================

var scriptCloser = regexp.MustCompile(`(?i)</script`)

// EscapeScript neutralizes closing script tags so code stays inside the
// module script region.
func EscapeScript(code string) string {
	return scriptCloser.ReplaceAllString(code, `<\/script`)
}

// BuildDocument turns a classification result into a self-contained HTML
// document for the sandboxed preview. It never fails: a template error yields
// the empty document.
func BuildDocument(r Result) string {
	switch {
	case r.Kind == KindChart:
		spec := r.Chart
		if spec == nil {
			spec = ChartSpec{}
		}
		return render(chartDoc, docData{Title: "chart", Spec: spec, ChartJS: ChartJSURL})
	case r.Kind == KindCode && r.Language == LangHTML:
		return r.Code
	case r.Kind == KindCode:
		return render(codeDoc, docData{Title: r.Language, Body: EscapeScript(r.Code)})
	default:
		return render(emptyDoc, docData{})
	}
}

// WrapFragment places loose markup into a minimal HTML document.
func WrapFragment(fragment string) string {
	return render(fragmentDoc, docData{Body: fragment})
}

func render(t *template.Template, data docData) string {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		log.Warn().Err(err).Str("template", t.Name()).Msg("document template failed")
		if t == emptyDoc {
			return "<!doctype html><html><body></body></html>"
		}
		return render(emptyDoc, docData{})
	}
	return sb.String()
}
