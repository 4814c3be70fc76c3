// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is a coarse prompt intent.
type Category string

const (
	CategoryBuild    Category = "build"
	CategoryResearch Category = "research"
	CategoryWriting  Category = "writing"
	CategoryData     Category = "data"
	CategoryDefault  Category = "default"
)

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// ============================================================================
// RULES
// ============================================================================

var (
	buildVerb = regexp.MustCompile(`\b(build|prototype|make|create|scaffold|generate)\b`)
	buildNoun = regexp.MustCompile(`\b(app|page|website|component|widget|frontend|ui|dashboard)\b`)

	researchWords   = regexp.MustCompile(`\b(research|investigate|analyze|compare|explain|summarize|what|why|how)\b`)
	researchSources = regexp.MustCompile(`\b(links|sources|citations|web results|tavily)\b`)

	writingWords = regexp.MustCompile(`\b(email|post|tweet|thread|press release|cover letter|story|script|copy)\b`)

	dataWords = regexp.MustCompile(`\b(csv|json|table|chart|graph|plot|data|dataset|columns|rows)\b`)
)

var lower = cases.Lower(language.Und)

func normalize(text string) string {
	return lower.String(text)
}

// ============================================================================
// CLASSIFICATION FUNCTIONS
// ============================================================================

// Classify returns the intent category of text.
//
// Classification rules (in order of priority):
//  1. Build: build|prototype|make|create|scaffold|generate together with
//     app|page|website|component|widget|frontend|ui|dashboard
//  2. Research: research|investigate|analyze|compare|explain|summarize|what|why|how,
//     or links|sources|citations|web results|tavily
//  3. Writing: email|post|tweet|thread|press release|cover letter|story|script|copy
//  4. Data: csv|json|table|chart|graph|plot|data|dataset|columns|rows
//  5. Default: fallback
func Classify(text string) Category {
	t := normalize(text)

	switch {
	case isBuild(t):
		return CategoryBuild
	case researchWords.MatchString(t) || researchSources.MatchString(t):
		return CategoryResearch
	case writingWords.MatchString(t):
		return CategoryWriting
	case dataWords.MatchString(t):
		return CategoryData
	default:
		return CategoryDefault
	}
}

// IsBuildIntent reports whether text asks for a buildable UI artifact.
func IsBuildIntent(text string) bool {
	return isBuild(normalize(text))
}

func isBuild(lowered string) bool {
	return buildVerb.MatchString(lowered) && buildNoun.MatchString(lowered)
}
