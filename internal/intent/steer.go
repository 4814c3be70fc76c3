// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

// OutputSpecVersion identifies the revision of OutputSpec. Bump it whenever the
// text changes so stored transcripts can be told apart.
const OutputSpecVersion = "2024-08"

// SteerMarker separates the user's prompt from the appended output block.
const SteerMarker = "--- OUTPUT SPEC ---"

// OutputSpec asks the model for a single renderable fenced block.
const OutputSpec = "\n" +
	"You are a senior UI engineer. When asked for an app/page/ui, return **one fenced code block only**.\n" +
	"\n" +
	"- ```html ... full HTML with <style> + inline JS ... ```\n" +
	"- ```tsx ... self-contained React component ... ```\n" +
	"\n" +
	"Quality: responsive, accessible, semantic, smooth transitions, glass/neuromorphic polish.\n" +
	"If asked for charts: include fenced ```json``` with { \"chart\": { ... } }.\n" +
	"If asked for table: { \"table\": { \"columns\": [...], \"rows\": [...] } }.\n" +
	"No prose outside code fences.\n"

// Steer appends the output block to a prompt.
func Steer(text string) string {
	return text + "\n\n" + SteerMarker + "\n" + OutputSpec
}

// PrepareSubmission returns the text to send for a user prompt: steered when it
// is a build request, unchanged otherwise.
func PrepareSubmission(text string) string {
	if IsBuildIntent(text) {
		return Steer(text)
	}
	return text
}

// InsertQuickPrompt appends a chip's text to the current input.
func InsertQuickPrompt(input, prompt string) string {
	if input == "" {
		return prompt
	}
	return input + " " + prompt
}
