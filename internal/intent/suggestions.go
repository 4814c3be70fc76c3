// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

// Bundle is the pair of chip rows shown under the input.
type Bundle struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
}

var bundles = map[Category]Bundle{
	CategoryBuild: {
		Primary: []string{
			"Add a neuromorphic UI with soft shadows",
			"Make it responsive for mobile + desktop",
			"Use glassmorphism with subtle blurs",
			"Dark theme with emerald accent tokens",
			"Add a sticky header + footer CTA",
			"Refactor into components with clear props",
		},
		Secondary: []string{
			"Generate unit tests for critical UI pieces",
			"Inline docs: comment tricky parts",
			"Export a single self-contained HTML for preview",
			"Add accessibility (ARIA roles, keyboard nav)",
			"Optimize for Lighthouse performance",
		},
	},
	CategoryResearch: {
		Primary: []string{
			"Give a 5-bullet executive summary",
			"Create a pros/cons table with citations",
			"Extract key numbers & dates",
			"Add source links with one-line annotations",
			"Propose 3 actionable next steps",
		},
		Secondary: []string{
			"Rewrite as a 90-second brief",
			"Highlight uncertainties and missing data",
			"Add a timeline with milestones",
			"Generate a glossary of terms",
		},
	},
	CategoryWriting: {
		Primary: []string{
			"Outline first, then write",
			"Executive tone, concise",
			"Add a strong CTA at the end",
			"Give 3 headline options",
			"Add a TL;DR at the top",
		},
		Secondary: []string{
			"Rewrite for 5th-grade clarity",
			"Punchier, more active voice",
			"Convert to a 5-tweet thread",
			"Add an “objections & replies” section",
		},
	},
	CategoryData: {
		Primary: []string{
			"Turn into a clean table",
			"Make a chart with labeled axes",
			"Find anomalies and outliers",
			"Suggest 3 segmentations",
			"Summarize in 5 bullets + actions",
		},
		Secondary: []string{
			"Infer missing values if sensible",
			"Compute basic stats (mean, median, p95)",
			"Note data quality limitations",
			"Draft SQL to recreate this result",
		},
	},
	CategoryDefault: {
		Primary: []string{
			"Summarize in 5 bullets",
			"Explain like I’m 12",
			"Pros/cons with tradeoffs",
			"Turn into an action plan",
			"Give 3 alternative approaches",
		},
		Secondary: []string{
			"Add a one-sentence TL;DR",
			"Highlight risks and mitigations",
			"Rewrite for clarity and brevity",
		},
	},
}

// Suggestions returns a copy of the chip bundle for a category. Unknown
// categories get the default bundle.
func Suggestions(c Category) Bundle {
	b, ok := bundles[c]
	if !ok {
		b = bundles[CategoryDefault]
	}
	return Bundle{
		Primary:   append([]string(nil), b.Primary...),
		Secondary: append([]string(nil), b.Secondary...),
	}
}

// SuggestFor classifies text and returns its bundle.
func SuggestFor(text string) Bundle {
	return Suggestions(Classify(text))
}

// All returns every chip of the bundle, primary row first.
func (b Bundle) All() []string {
	out := make([]string, 0, len(b.Primary)+len(b.Secondary))
	out = append(out, b.Primary...)
	return append(out, b.Secondary...)
}
