// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jeranaias/zen-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content Content) Message {
	return Message{
		ID:        NewMessageID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new plain-text user message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, TextContent(text))
}

// NewAssistantMessage creates a new plain-text assistant message.
func NewAssistantMessage(text string) Message {
	return NewMessage(RoleAssistant, TextContent(text))
}

// Text returns the flattened message text.
func (m Message) Text() string {
	return ExtractText(m.Content)
}

// Preview returns a truncated single-message preview.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.Text(), maxLen)
}

// IsEmpty returns true if the message has no text.
func (m Message) IsEmpty() bool {
	return m.Text() == ""
}

// NewMessageID creates a unique message ID.
func NewMessageID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}

// =============================================================================
// STREAM INCREMENTS
// =============================================================================

// Increment is one role-tagged piece of a streamed reply.
type Increment struct {
	// MessageID identifies the message the delta belongs to. Empty means
	// "the message currently being streamed".
	MessageID string
	Role      Role
	Delta     string

	// Data carries stream-side annotations (sources, tool status) that are not
	// part of the message text.
	Data []byte
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing and token count information for a generation.
type Statistics struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	Increments int

	TTFT          time.Duration
	TotalDuration time.Duration
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
	}
}

// RecordIncrement counts an increment and records time to first token.
func (s *Statistics) RecordIncrement() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
	s.Increments++
}

// Finalize computes the final statistics.
func (s *Statistics) Finalize() {
	s.EndTime = time.Now()
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}

// Format returns a short status-bar summary.
func (s *Statistics) Format() string {
	return fmt.Sprintf("%s | %d chunks | TTFT %dms",
		formatSeconds(s.TotalDuration), s.Increments, s.TTFT.Milliseconds())
}

func formatSeconds(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
