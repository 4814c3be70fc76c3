// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package artifact detects renderable artifacts in assistant replies and turns
// them into self-contained preview documents.
//
// The pipeline has three stages:
//
//   - Classify: find the first fenced block (or loose HTML markup) and decide
//     whether the reply carries code, a chart spec, or nothing renderable
//   - BuildDocument: wrap the result into an isolated HTML document
//   - Dock: the open/dismiss lifecycle of the preview surface, including the
//     rule that dismissed content is never reopened automatically
//
// # Key Types
//
//   - Result: Classification outcome (Kind, Language, Code, Chart)
//   - Classifier: LRU-memoized Classify
//   - Dock: Preview state machine (Closed, Open(Preview|Code))
//
// # Usage
//
//	dock := artifact.NewDock(artifact.WithPolicy(artifact.OpenOnRenderable))
//	if dock.Observe(replyText, false) != artifact.ChangeNone {
//	    preview.Publish(dock.Title(), dock.Document())
//	}
//
// # Limitations
//
// The fence matcher stops at the first closing fence, so a reply that nests a
// fenced block inside another one is cut short at the inner fence.
package artifact
