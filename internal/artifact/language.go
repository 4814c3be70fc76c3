// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import "strings"

// Canonical fence languages.
const (
	LangHTML = "html"
	LangJSX  = "jsx"
	LangJS   = "js"
	LangCSS  = "css"
	LangJSON = "json"
	LangSVG  = "svg"
	LangText = "text"
)

var languageAliases = map[string]string{
	"html":       LangHTML,
	"htm":        LangHTML,
	"xhtml":      LangHTML,
	"jsx":        LangJSX,
	"tsx":        LangJSX,
	"react":      LangJSX,
	"js":         LangJS,
	"javascript": LangJS,
	"mjs":        LangJS,
	"cjs":        LangJS,
	"ts":         LangJS,
	"typescript": LangJS,
	"mts":        LangJS,
	"cts":        LangJS,
	"node":       LangJS,
	"css":        LangCSS,
	"scss":       LangCSS,
	"sass":       LangCSS,
	"less":       LangCSS,
	"json":       LangJSON,
	"jsonc":      LangJSON,
	"json5":      LangJSON,
	"svg":        LangSVG,
}

// NormalizeLanguage maps a fence language token to its canonical name.
// Unknown tokens are lower-cased and kept; an empty token is "text".
func NormalizeLanguage(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return LangText
	}
	if canonical, ok := languageAliases[t]; ok {
		return canonical
	}
	return t
}

// IsKnownLanguage reports whether token is in the alias table.
func IsKnownLanguage(token string) bool {
	_, ok := languageAliases[strings.ToLower(token)]
	return ok
}
