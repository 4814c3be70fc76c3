// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"time"

	"github.com/jeranaias/zen-tui/internal/model"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// User is the signed-in identity, if any.
type User struct {
	ID    string
	Name  string
	Email string
}

// Identity reports the current user. A nil user is a guest.
type Identity interface {
	CurrentUser() *User
}

// Catalog lists the selectable models.
type Catalog interface {
	Models() []model.ModelInfo
}

// Channel sends a request to the answer backend and streams role-tagged
// increments back through emit. It returns when the stream ends.
type Channel interface {
	Stream(ctx context.Context, req Request, emit func(model.Increment)) error
}

// KeyValueStore is a small expiring key-value slot.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string, ttl time.Duration) error
	Delete(key string) error
}

// HistoryNotifier is told when a chat has new persisted content.
type HistoryNotifier interface {
	HistoryUpdated(chatID string)
}

// Navigator records the addressable location of the session.
type Navigator interface {
	Replace(path string)
}

// Archive persists completed conversations.
type Archive interface {
	SaveConversation(chatID string, msgs []model.Message) error
}

// Clipboard copies text for the user.
type Clipboard interface {
	Copy(text string) error
}

// Sharer hands text to a platform share target.
type Sharer interface {
	Share(title, text string) error
}

// Level is the severity of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Notice is a short user-facing message (toast).
type Notice struct {
	Level Level
	Text  string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// =============================================================================
// NO-OP DEFAULTS
// =============================================================================

type guest struct{}

func (guest) CurrentUser() *User { return nil }

type staticCatalog []model.ModelInfo

func (c staticCatalog) Models() []model.ModelInfo { return c }

// StaticCatalog wraps a fixed model list.
func StaticCatalog(models []model.ModelInfo) Catalog {
	return staticCatalog(models)
}

type nopKV struct{}

func (nopKV) Get(string) (string, bool, error) { return "", false, nil }
func (nopKV) Set(string, string, time.Duration) error { return nil }
func (nopKV) Delete(string) error { return nil }

type nopHistory struct{}

func (nopHistory) HistoryUpdated(string) {}

type nopNavigator struct{}

func (nopNavigator) Replace(string) {}

type nopArchive struct{}

func (nopArchive) SaveConversation(string, []model.Message) error { return nil }

type nopClipboard struct{}

func (nopClipboard) Copy(string) error { return errClipboardUnavailable }

type nopSharer struct{}

func (nopSharer) Share(string, string) error { return ErrShareUnsupported }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// HistoryFunc adapts a function to HistoryNotifier.
type HistoryFunc func(chatID string)

// HistoryUpdated calls f(chatID).
func (f HistoryFunc) HistoryUpdated(chatID string) { f(chatID) }
