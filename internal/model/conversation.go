// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered message log of one chat.
//
// The log carries a generation counter (epoch). Every operation that
// invalidates in-flight output (truncation, reset, a newly issued request)
// advances it, and stream increments tagged with an older epoch are dropped.
// A Conversation is not safe for concurrent use; it is owned by the UI loop.
type Conversation struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	messages  []Message
	epoch     uint64
	streaming string // ID of the message receiving increments
	streamKey string // backend message ID that maps to streaming
}

// NewConversation creates an empty conversation. An empty id gets a fresh UUID.
func NewConversation(id string) *Conversation {
	if id == "" {
		id = NewChatID()
	}
	now := time.Now()
	return &Conversation{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewConversationFrom creates a conversation seeded with saved messages.
func NewConversationFrom(id string, msgs []Message) *Conversation {
	c := NewConversation(id)
	c.messages = append(c.messages, msgs...)
	return c
}

// NewChatID returns a new chat identifier.
func NewChatID() string {
	return uuid.NewString()
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty reports whether the log has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// At returns the message at index i.
func (c *Conversation) At(i int) (Message, bool) {
	if i < 0 || i >= len(c.messages) {
		return Message{}, false
	}
	return c.messages[i], true
}

// IndexOf returns the index of the message with the given ID, or -1.
func (c *Conversation) IndexOf(id string) int {
	for i, m := range c.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// LastIndexOfRole returns the index of the last message with role at or before
// index upTo, or -1.
func (c *Conversation) LastIndexOfRole(role Role, upTo int) int {
	if upTo >= len(c.messages) {
		upTo = len(c.messages) - 1
	}
	for i := upTo; i >= 0; i-- {
		if c.messages[i].Role == role {
			return i
		}
	}
	return -1
}

// LastOfRole returns the most recent message with the given role.
func (c *Conversation) LastOfRole(role Role) (Message, bool) {
	i := c.LastIndexOfRole(role, len(c.messages)-1)
	if i < 0 {
		return Message{}, false
	}
	return c.messages[i], true
}

// Sections derives the user-led sections of the current log.
func (c *Conversation) Sections() []Section {
	return BuildSections(c.messages)
}

// Epoch returns the current generation.
func (c *Conversation) Epoch() uint64 {
	return c.epoch
}

// =============================================================================
// MUTATION
// =============================================================================

// Append adds a message to the end of the log. The streamed message, if any,
// is closed: later increments start a new message after this one.
func (c *Conversation) Append(msg Message) {
	c.appendMessage(msg)
	c.streaming = ""
	c.streamKey = ""
}

func (c *Conversation) appendMessage(msg Message) {
	if msg.ID == "" {
		msg.ID = NewMessageID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	c.messages = append(c.messages, msg)
	c.touch()
}

// ReplaceContent swaps the content of the message at index i.
func (c *Conversation) ReplaceContent(i int, content Content) bool {
	if i < 0 || i >= len(c.messages) {
		return false
	}
	c.messages[i].Content = content
	c.touch()
	return true
}

// Truncate keeps the first n messages and advances the epoch.
func (c *Conversation) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(c.messages) {
		// Zero the tail so dropped messages can be collected.
		for i := n; i < len(c.messages); i++ {
			c.messages[i] = Message{}
		}
		c.messages = c.messages[:n]
	}
	c.streaming = ""
	c.streamKey = ""
	c.epoch++
	c.touch()
}

// Reset clears the log and advances the epoch.
func (c *Conversation) Reset() {
	c.Truncate(0)
}

// Begin starts a new request generation and returns its epoch.
// Increments from earlier generations are discarded from now on.
func (c *Conversation) Begin() uint64 {
	c.epoch++
	c.streaming = ""
	c.streamKey = ""
	return c.epoch
}

// ApplyIncrement merges a streamed increment into the log.
//
// It returns false when the increment belongs to a superseded generation.
// An increment for the message currently being streamed extends it; any
// other ID starts a new message at the end of the log. An increment without
// text never starts a message. A backend ID already used earlier in the log
// is mapped to a fresh one so IDs stay unique.
func (c *Conversation) ApplyIncrement(epoch uint64, inc Increment) bool {
	if epoch != c.epoch {
		return false
	}
	role := inc.Role
	if !role.Valid() {
		role = RoleAssistant
	}

	target := c.streaming
	if inc.MessageID != "" && inc.MessageID != c.streamKey {
		target = inc.MessageID
	}

	if target != "" {
		if last := len(c.messages) - 1; last >= 0 && c.messages[last].ID == target {
			msg := &c.messages[last]
			msg.Content = TextContent(ExtractText(msg.Content) + inc.Delta)
			c.streaming = target
			if inc.MessageID != "" {
				c.streamKey = inc.MessageID
			}
			c.touch()
			return true
		}
	}

	if inc.Delta == "" {
		return true
	}

	id := target
	if id == "" || c.IndexOf(id) >= 0 {
		id = NewMessageID()
	}
	c.appendMessage(Message{ID: id, Role: role, Content: TextContent(inc.Delta)})
	c.streaming = id
	c.streamKey = inc.MessageID
	return true
}

// Supersede continues the generation count of prev, so increments addressed
// to prev can never apply to c.
func (c *Conversation) Supersede(prev *Conversation) {
	if prev != nil && prev.epoch >= c.epoch {
		c.epoch = prev.epoch + 1
	}
}

// Clone returns a deep copy of the conversation, epoch included.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.messages = c.Messages()
	return &clone
}

func (c *Conversation) touch() {
	c.UpdatedAt = time.Now()
}

