// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// ============================================================================
// TYPES
// ============================================================================

// Tab is the active dock panel.
type Tab int

const (
	TabPreview Tab = iota
	TabCode
)

// String returns the tab label.
func (t Tab) String() string {
	if t == TabCode {
		return "Code"
	}
	return "Preview"
}

// Policy decides when a closed dock opens by itself.
type Policy int

const (
	// OpenOnRenderable opens for any renderable reply, or when hinted.
	OpenOnRenderable Policy = iota

	// OpenOnIntent requires a renderable reply AND a hint or build-ish words
	// in the reply itself.
	OpenOnIntent
)

// String returns the config name of the policy.
func (p Policy) String() string {
	if p == OpenOnIntent {
		return "intent"
	}
	return "renderable"
}

// ParsePolicy reads a policy name from config. Unknown names fall back to
// OpenOnRenderable.
func ParsePolicy(name string) Policy {
	if strings.EqualFold(strings.TrimSpace(name), "intent") {
		return OpenOnIntent
	}
	return OpenOnRenderable
}

var dockIntent = regexp.MustCompile(`(?i)build|prototype|component|widget|landing\s?page|web\s?app|dashboard|frontend|chart|graph`)

func (p Policy) allows(text string, hint bool) bool {
	if p == OpenOnIntent {
		return hint || dockIntent.MatchString(text)
	}
	return true
}

// Change reports what an observation did to the dock.
type Change int

const (
	ChangeNone Change = iota
	ChangeOpened
	ChangeRefreshed
)

// ============================================================================
// DOCK
// ============================================================================

// Dock is the artifact preview state machine.
//
// A closed dock opens on the Preview tab when a renderable reply arrives, its
// content hash differs from the last dismissed one, and the policy allows it.
// An open dock refreshes its document when the renderable result changes and
// keeps the last valid render while the reply is not renderable.
// Dock is not safe for concurrent use.
type Dock struct {
	classifier *Classifier
	policy     Policy

	open          bool
	tab           Tab
	dismissedHash string

	text     string
	current  Result
	document string
	revision int
}

// Option configures a Dock.
type Option func(*Dock)

// WithPolicy sets the auto-open policy.
func WithPolicy(p Policy) Option {
	return func(d *Dock) { d.policy = p }
}

// WithClassifier shares a memoizing classifier.
func WithClassifier(c *Classifier) Option {
	return func(d *Dock) { d.classifier = c }
}

// NewDock creates a closed dock.
func NewDock(opts ...Option) *Dock {
	d := &Dock{policy: OpenOnRenderable}
	for _, opt := range opts {
		opt(d)
	}
	if d.classifier == nil {
		d.classifier = NewClassifier(DefaultMemoSize)
	}
	return d
}

// Observe feeds the current reply text to the dock. hint is an external
// request to show the preview.
func (d *Dock) Observe(text string, hint bool) Change {
	d.text = text
	res := d.classifier.Classify(text)

	if !d.open {
		if !res.Renderable() {
			return ChangeNone
		}
		if d.dismissedHash != "" && ContentHash(text) == d.dismissedHash {
			return ChangeNone
		}
		if !d.policy.allows(text, hint) {
			return ChangeNone
		}
		d.open = true
		d.tab = TabPreview
		d.render(res)
		log.Debug().Str("kind", string(res.Kind)).Str("lang", res.Language).Msg("artifact dock opened")
		return ChangeOpened
	}

	if !res.Renderable() {
		return ChangeNone
	}
	doc := BuildDocument(res)
	if doc == d.document {
		return ChangeNone
	}
	d.current = res
	d.document = doc
	d.revision++
	return ChangeRefreshed
}

func (d *Dock) render(res Result) {
	d.current = res
	d.document = BuildDocument(res)
	d.revision++
}

// SelectTab switches panels. It does nothing while the dock is closed.
func (d *Dock) SelectTab(tab Tab) bool {
	if !d.open {
		return false
	}
	d.tab = tab
	return true
}

// ToggleTab flips between Preview and Code.
func (d *Dock) ToggleTab() bool {
	if d.tab == TabPreview {
		return d.SelectTab(TabCode)
	}
	return d.SelectTab(TabPreview)
}

// Dismiss closes the dock and remembers the current reply so the same
// content does not reopen it.
func (d *Dock) Dismiss() {
	if !d.open {
		return
	}
	d.dismissedHash = ContentHash(d.text)
	d.open = false
	d.tab = TabPreview
	d.current = Result{Kind: KindNone}
	d.document = ""
	log.Debug().Msg("artifact dock dismissed")
}

// Reset closes the dock and forgets the dismissal, for a new conversation.
func (d *Dock) Reset() {
	d.open = false
	d.tab = TabPreview
	d.dismissedHash = ""
	d.text = ""
	d.current = Result{Kind: KindNone}
	d.document = ""
}

// ============================================================================
// ACCESSORS
// ============================================================================

// IsOpen reports whether the dock is showing.
func (d *Dock) IsOpen() bool { return d.open }

// Tab returns the active panel.
func (d *Dock) Tab() Tab { return d.tab }

// Policy returns the auto-open policy.
func (d *Dock) Policy() Policy { return d.policy }

// Revision counts rendered documents; it changes whenever Document does.
func (d *Dock) Revision() int { return d.revision }

// Result returns the result behind the current render.
func (d *Dock) Result() Result { return d.current }

// Document returns the preview document, or "" while closed.
func (d *Dock) Document() string {
	if !d.open {
		return ""
	}
	return d.document
}

// Title names the artifact: "chart", the fence language, or "code".
func (d *Dock) Title() string {
	switch {
	case d.current.Kind == KindChart:
		return "chart"
	case d.current.Language != "":
		return d.current.Language
	default:
		return "code"
	}
}

// CodeView returns the text shown on the Code tab. Charts are shown as the
// {"chart": ...} object, indented two spaces.
func (d *Dock) CodeView() string {
	if !d.open {
		return ""
	}
	if d.current.Kind == KindChart {
		data, err := json.MarshalIndent(map[string]any{"chart": d.current.Chart}, "", "  ")
		if err != nil {
			return "{}"
		}
		return string(data)
	}
	return d.current.Code
}
