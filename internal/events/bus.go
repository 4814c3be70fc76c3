// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TopicHistoryUpdated is published when a chat has new persisted content.
const TopicHistoryUpdated = "chat-history-updated"

// HistoryEvent is the payload of TopicHistoryUpdated.
type HistoryEvent struct {
	ChatID string    `json:"chatId"`
	At     time.Time `json:"at"`
}

// Bus is the in-process event bus.
type Bus struct {
	pubsub *gochannel.GoChannel
	now    func() time.Time
}

// NewBus creates a bus that logs through the global zerolog logger.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, NewZerologAdapter(log.Logger)),
		now: time.Now,
	}
}

// HistoryUpdated publishes a history event. It implements
// session.HistoryNotifier; failures are logged, not returned.
func (b *Bus) HistoryUpdated(chatID string) {
	payload, err := json.Marshal(HistoryEvent{ChatID: chatID, At: b.now()})
	if err != nil {
		log.Error().Err(err).Msg("encode history event")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(TopicHistoryUpdated, msg); err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("publish history event")
	}
}

// SubscribeHistory delivers history events until ctx is done. The returned
// channel is closed then.
func (b *Bus) SubscribeHistory(ctx context.Context) (<-chan HistoryEvent, error) {
	msgs, err := b.pubsub.Subscribe(ctx, TopicHistoryUpdated)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe history")
	}

	out := make(chan HistoryEvent, 16)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev HistoryEvent
			err := json.Unmarshal(msg.Payload, &ev)
			msg.Ack()
			if err != nil {
				log.Debug().Err(err).Str("message_id", msg.UUID).Msg("skip malformed history event")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down and closes every subscription.
func (b *Bus) Close() error {
	return errors.Wrap(b.pubsub.Close(), "close event bus")
}
