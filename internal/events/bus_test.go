// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/zen-tui/internal/session"
)

var _ session.HistoryNotifier = (*Bus)(nil)

func TestBus_HistoryRoundTrip(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.SubscribeHistory(ctx)
	require.NoError(t, err)

	bus.HistoryUpdated("chat-1")
	bus.HistoryUpdated("chat-2")

	// Delivery order across publishes is not guaranteed.
	got := map[string]bool{}
	for len(got) < 2 {
		select {
		case ev := <-events:
			assert.False(t, ev.At.IsZero())
			got[ev.ChatID] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, map[string]bool{"chat-1": true, "chat-2": true}, got)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	done := make(chan struct{})
	go func() {
		bus.HistoryUpdated("nobody-listens")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked")
	}
}

func TestBus_SubscriptionClosesOnCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.SubscribeHistory(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
}
