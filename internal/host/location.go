// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/session"
)

// KeyLastLocation holds the most recent session path.
const KeyLastLocation = "zen:lastLocation"

// locationTTL bounds how long a session stays resumable.
const locationTTL = 7 * 24 * time.Hour

// Location is the terminal stand-in for the browser address bar. It keeps
// the current session path and persists it so the next run can resume.
type Location struct {
	mu   sync.Mutex
	path string
	kv   session.KeyValueStore
}

// NewLocation creates a Location backed by kv. A nil kv keeps the path in
// memory only.
func NewLocation(kv session.KeyValueStore) *Location {
	return &Location{kv: kv}
}

// Replace records path as the current location.
func (l *Location) Replace(path string) {
	l.mu.Lock()
	l.path = path
	l.mu.Unlock()

	if l.kv == nil {
		return
	}
	if err := l.kv.Set(KeyLastLocation, path, locationTTL); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("persist location")
	}
}

// Path returns the current location.
func (l *Location) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// LastChatID returns the chat id of the persisted "/search/<id>" location.
func (l *Location) LastChatID() (string, bool) {
	if l.kv == nil {
		return "", false
	}
	path, ok, err := l.kv.Get(KeyLastLocation)
	if err != nil || !ok {
		return "", false
	}
	id, found := strings.CutPrefix(path, "/search/")
	if !found || id == "" {
		return "", false
	}
	return id, true
}
