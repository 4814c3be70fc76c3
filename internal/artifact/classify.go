// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

// Kind is the classification outcome.
type Kind string

const (
	KindNone  Kind = "none"
	KindCode  Kind = "code"
	KindChart Kind = "chart"
)

// ChartSpec is the object found under "chart" in a chart reply. It keeps every
// field the model produced; Chart.js reads type, data and options.
type ChartSpec map[string]any

// Type returns the chart type when it is a string.
func (c ChartSpec) Type() string {
	s, _ := c["type"].(string)
	return s
}

// Result is the classification of one reply.
// Results may be shared through the memo; treat them as read-only.
type Result struct {
	Kind     Kind
	Language string
	Code     string
	Chart    ChartSpec
}

// Renderable reports whether the result can be shown in the preview.
func (r Result) Renderable() bool {
	switch r.Kind {
	case KindChart:
		return r.Chart != nil
	case KindCode:
		return r.Code != ""
	default:
		return false
	}
}

var (
	// Lazy body: the first closing fence ends the block.
	fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_+#.-]*)(.*?)```")

	doctypePattern  = regexp.MustCompile(`(?i)<!doctype html`)
	htmlRootPattern = regexp.MustCompile(`(?i)<html[\s>]`)
	fragmentPattern = regexp.MustCompile(`(?i)<(div|section|main|article|header|footer|nav|aside|form|table|ul|ol|svg|canvas|body|style)[\s>/]`)
)

// Classify inspects an assistant reply and reports what it can render.
//
// Rules (in order of priority):
//  1. Fenced block: json with a {"chart": {type, data}} shape is a chart,
//     anything else is code in the normalized fence language
//  2. Loose markup when no fence exists: a full HTML document, or a
//     block-level fragment wrapped into a minimal document
//  3. None
func Classify(text string) Result {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		lang, body := splitFence(m[1], m[2])
		if lang == LangJSON {
			if chart, ok := parseChart(body); ok {
				return Result{Kind: KindChart, Language: lang, Chart: chart}
			}
		}
		return Result{Kind: KindCode, Language: lang, Code: body}
	}

	if loc := doctypePattern.FindStringIndex(text); loc != nil {
		return Result{Kind: KindCode, Language: LangHTML, Code: text[loc[0]:]}
	}
	if loc := htmlRootPattern.FindStringIndex(text); loc != nil {
		return Result{Kind: KindCode, Language: LangHTML, Code: text[loc[0]:]}
	}
	if loc := fragmentPattern.FindStringIndex(text); loc != nil {
		return Result{Kind: KindCode, Language: LangHTML, Code: WrapFragment(text[loc[0]:])}
	}

	return Result{Kind: KindNone}
}

// splitFence decides whether the token after the opening fence is a language.
// Known aliases always count; other tokens only when a line break follows.
func splitFence(token, rest string) (lang, body string) {
	switch {
	case token == "":
		lang = LangText
		body = rest
	case IsKnownLanguage(token) || startsWithLineBreak(rest):
		lang = NormalizeLanguage(token)
		body = rest
	default:
		lang = LangText
		body = token + rest
	}
	return lang, strings.TrimLeft(body, " \t\r\n")
}

func startsWithLineBreak(s string) bool {
	s = strings.TrimLeft(s, " \t")
	return strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r\n")
}

// parseChart reads a {"chart": {...}} body. type and data must be truthy in
// the JavaScript sense, which is what the preview script checks.
func parseChart(body string) (ChartSpec, bool) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, false
	}
	chart, ok := parsed["chart"].(map[string]any)
	if !ok {
		return nil, false
	}
	if !truthy(chart["type"]) || !truthy(chart["data"]) {
		return nil, false
	}
	return ChartSpec(chart), true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		// Objects and arrays are truthy even when empty.
		return true
	}
}
