// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent classifies user prompts into coarse intent categories.
//
// The category drives the quick-suggestion chips under the input and decides
// whether a submitted prompt gets the build output block appended.
//
// # Categories
//
// Rules are evaluated in a fixed order and the first match wins:
//
//  1. Build: a build verb AND a UI noun (both whole words)
//  2. Research: research verbs, question words, or source keywords
//  3. Writing: email, post, thread, cover letter and similar
//  4. Data: csv, json, table, chart and similar
//  5. Default: everything else
//
// # Usage
//
//	cat := intent.Classify("build a dashboard")  // intent.CategoryBuild
//	chips := intent.Suggestions(cat)
//	if intent.IsBuildIntent(text) {
//	    text = intent.Steer(text)
//	}
package intent
