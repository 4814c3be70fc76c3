// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// =============================================================================
// CONTENT PARTS
// =============================================================================

// Part is one element of a multi-part message body.
//
// Backends emit parts as objects ({"type":"text","text":"..."}) and some older
// payloads nest the string under "content". A bare JSON string is also a valid
// element and is kept as a literal.
type Part struct {
	Type    string
	Text    *string
	Content *string

	literal *string
	null    bool
}

// TextPart returns a typed text part.
func TextPart(text string) Part {
	return Part{Type: "text", Text: &text}
}

// LiteralPart returns a bare string element.
func LiteralPart(text string) Part {
	return Part{literal: &text}
}

// NestedPart returns a part carrying its text under "content".
func NestedPart(partType, content string) Part {
	return Part{Type: partType, Content: &content}
}

// text flattens a single part. Missing or non-string fields yield "".
func (p Part) text() string {
	switch {
	case p.literal != nil:
		return *p.literal
	case p.Text != nil:
		return *p.Text
	case p.Content != nil:
		return *p.Content
	default:
		return ""
	}
}

// UnmarshalJSON accepts strings, null and objects. Object fields that are not
// strings are ignored rather than rejected.
func (p *Part) UnmarshalJSON(data []byte) error {
	*p = Part{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		p.null = true
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		p.literal = &s
		return nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		p.Type = rawString(fields["type"])
		if s, ok := asString(fields["text"]); ok {
			p.Text = &s
		}
		if s, ok := asString(fields["content"]); ok {
			p.Content = &s
		}
		return nil
	default:
		// Numbers, booleans, arrays: present but contribute nothing.
		return nil
	}
}

// MarshalJSON writes literals as strings and everything else as an object.
func (p Part) MarshalJSON() ([]byte, error) {
	if p.literal != nil {
		return json.Marshal(*p.literal)
	}
	if p.null {
		return []byte("null"), nil
	}
	obj := make(map[string]string, 3)
	if p.Type != "" {
		obj["type"] = p.Type
	}
	if p.Text != nil {
		obj["text"] = *p.Text
	}
	if p.Content != nil {
		obj["content"] = *p.Content
	}
	return json.Marshal(obj)
}

// =============================================================================
// CONTENT
// =============================================================================

// Content is a message body: plain text, or an ordered list of parts.
// The zero value is empty text.
type Content struct {
	text      string
	parts     []Part
	multipart bool
}

// TextContent returns plain-text content.
func TextContent(text string) Content {
	return Content{text: text}
}

// PartsContent returns multi-part content.
func PartsContent(parts ...Part) Content {
	cp := make([]Part, len(parts))
	copy(cp, parts)
	return Content{parts: cp, multipart: true}
}

// IsMultipart reports whether the content is the list form.
func (c Content) IsMultipart() bool {
	return c.multipart
}

// Parts returns a copy of the parts (nil for plain text).
func (c Content) Parts() []Part {
	if !c.multipart {
		return nil
	}
	cp := make([]Part, len(c.parts))
	copy(cp, c.parts)
	return cp
}

// String returns the flattened text.
func (c Content) String() string {
	return ExtractText(c)
}

// UnmarshalJSON accepts a string, an array of parts, or anything else (which
// decodes to empty content).
func (c *Content) UnmarshalJSON(data []byte) error {
	*c = Content{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &c.text)
	case '[':
		var parts []Part
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return err
		}
		c.parts = parts
		c.multipart = true
		return nil
	default:
		return nil
	}
}

// MarshalJSON writes the same shape that was decoded.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.multipart {
		if c.parts == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.parts)
	}
	return json.Marshal(c.text)
}

// =============================================================================
// TEXT EXTRACTION
// =============================================================================

// ExtractText flattens content to a single newline-joined string.
//
// Plain text is returned as-is. For the multi-part form each part contributes
// its "text" string, else its nested "content" string, else "". The function is
// total and stable: the same content always yields the same string, which is
// what lets callers use it as a change-detection key.
func ExtractText(c Content) string {
	if !c.multipart {
		return c.text
	}
	if len(c.parts) == 0 {
		return ""
	}
	texts := make([]string, len(c.parts))
	for i, p := range c.parts {
		texts[i] = p.text()
	}
	return strings.Join(texts, "\n")
}

// ExtractTextJSON flattens a raw JSON message body. Malformed input yields "".
func ExtractTextJSON(raw json.RawMessage) string {
	var c Content
	if err := json.Unmarshal(raw, &c); err != nil {
		return ""
	}
	return ExtractText(c)
}

func asString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

func rawString(raw json.RawMessage) string {
	s, _ := asString(raw)
	return s
}
