// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"regexp"
	"strings"
)

var (
	// Echoed output block up to the next fence opener.
	echoedSpec = regexp.MustCompile("(?s)---\\s*OUTPUT SPEC\\s*---.*?```")

	doctypeMarker = regexp.MustCompile(`(?i)<!doctype html`)
	htmlMarker    = regexp.MustCompile(`(?i)<html[\s>]`)

	fencedDoctype = regexp.MustCompile("(?is)```[a-zA-Z0-9+.-]*.*<!doctype html")
	fencedHTML    = regexp.MustCompile("(?is)```[a-zA-Z0-9+.-]*.*<html[\\s>]")
)

// CleanupForArtifact prepares an assistant reply for artifact detection.
//
// An echoed output block is cut up to the fence that follows it, and a bare
// HTML document is wrapped in an html fence so the classifier sees a fenced
// block. The result is trimmed.
func CleanupForArtifact(s string) string {
	if s == "" {
		return ""
	}

	out := s
	if loc := echoedSpec.FindStringIndex(out); loc != nil {
		out = out[:loc[0]] + "```" + out[loc[1]:]
	}

	if doctypeMarker.MatchString(out) || htmlMarker.MatchString(out) {
		alreadyFenced := fencedDoctype.MatchString(out) || fencedHTML.MatchString(out)
		if !alreadyFenced {
			start := -1
			if loc := doctypeMarker.FindStringIndex(out); loc != nil {
				start = loc[0]
			} else if loc := htmlMarker.FindStringIndex(out); loc != nil {
				start = loc[0]
			}
			if start >= 0 {
				out = out[:start] + "\n```html\n" + out[start:] + "\n```\n"
			}
		}
	}

	return strings.TrimSpace(out)
}
