// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/jeranaias/zen-tui/internal/model"
)

type fakeKV struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(key, value string, ttl time.Duration) error {
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Delete(key string) error {
	delete(f.data, key)
	return nil
}

type fakeNav struct{ paths []string }

func (f *fakeNav) Replace(path string) { f.paths = append(f.paths, path) }

type fakeHistory struct{ updates []string }

func (f *fakeHistory) HistoryUpdated(chatID string) { f.updates = append(f.updates, chatID) }

type fakeNotifier struct{ notices []Notice }

func (f *fakeNotifier) Notify(n Notice) { f.notices = append(f.notices, n) }

func (f *fakeNotifier) last() Notice {
	if len(f.notices) == 0 {
		return Notice{}
	}
	return f.notices[len(f.notices)-1]
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) Copy(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type fakeSharer struct {
	title, text string
	err         error
}

func (f *fakeSharer) Share(title, text string) error {
	f.title, f.text = title, text
	return f.err
}

type fakeArchive struct {
	saved map[string][]model.Message
}

func (f *fakeArchive) SaveConversation(chatID string, msgs []model.Message) error {
	if f.saved == nil {
		f.saved = map[string][]model.Message{}
	}
	f.saved[chatID] = msgs
	return nil
}

type harness struct {
	mgr      *Manager
	kv       *fakeKV
	nav      *fakeNav
	history  *fakeHistory
	notifier *fakeNotifier
	clip     *fakeClipboard
	sharer   *fakeSharer
	archive  *fakeArchive
}

func newHarness(msgs ...model.Message) *harness {
	h := &harness{
		kv:       newFakeKV(),
		nav:      &fakeNav{},
		history:  &fakeHistory{},
		notifier: &fakeNotifier{},
		clip:     &fakeClipboard{},
		sharer:   &fakeSharer{},
		archive:  &fakeArchive{},
	}
	h.mgr = NewManager(Options{
		ChatID:       "chat-1",
		Conversation: model.NewConversationFrom("chat-1", msgs),
		KV:           h.kv,
		Navigator:    h.nav,
		History:      h.history,
		Archive:      h.archive,
		Notifier:     h.notifier,
		Clipboard:    h.clip,
		Sharer:       h.sharer,
		Now:          func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) },
	})
	return h
}

func msg(id string, role model.Role, text string) model.Message {
	return model.Message{ID: id, Role: role, Content: model.TextContent(text)}
}

func ids(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
