// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Section groups one user message with the assistant messages that follow it.
// Sections are derived from the log and never stored.
type Section struct {
	// ID is the owning user message ID.
	ID        string
	User      Message
	Assistant []Message
}

// BuildSections partitions msgs into user-led sections.
//
// A user message opens a new section and assistant messages attach to the open
// one. System messages neither attach nor close the section. Assistant messages
// that appear before the first user message are left out.
func BuildSections(msgs []Message) []Section {
	var (
		result  []Section
		current *Section
	)
	for _, m := range msgs {
		switch {
		case m.Role == RoleUser:
			if current != nil {
				result = append(result, *current)
			}
			current = &Section{ID: m.ID, User: m}
		case m.Role == RoleAssistant && current != nil:
			current.Assistant = append(current.Assistant, m)
		}
	}
	if current != nil {
		result = append(result, *current)
	}
	return result
}

// LastAssistant returns the final assistant message of the section.
func (s Section) LastAssistant() (Message, bool) {
	if len(s.Assistant) == 0 {
		return Message{}, false
	}
	return s.Assistant[len(s.Assistant)-1], true
}
