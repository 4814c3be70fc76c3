// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
)

// =============================================================================
// DATA STREAM PROTOCOL
// =============================================================================

// Data stream part codes. Each line is "<code>:<json>".
const (
	partText        = '0'
	partData        = '2'
	partError       = '3'
	partAnnotations = '8'
	partFinishMsg   = 'd'
	partFinishStep  = 'e'
	partStartStep   = 'f'
)

type startStep struct {
	MessageID string `json:"messageId"`
}

type finishMessage struct {
	FinishReason string `json:"finishReason"`
}

// ParseDataStream reads data-stream lines from r and emits increments.
//
// Text parts extend the current assistant message; a start-step part names
// it. Data and annotation parts travel in Increment.Data with no text. An
// error part ends the stream with that message. A stream that closes without
// a finish-message part returns session.ErrStreamInterrupted wrapped in a
// StreamError.
func ParseDataStream(ctx context.Context, r io.Reader, emit func(model.Increment)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		messageID string
		text      strings.Builder
	)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		// Some proxies wrap the protocol in SSE framing.
		line = bytes.TrimPrefix(line, []byte("data: "))
		if len(line) < 2 || line[1] != ':' {
			continue
		}
		code, payload := line[0], line[2:]

		switch code {
		case partStartStep:
			var s startStep
			if err := json.Unmarshal(payload, &s); err == nil && s.MessageID != "" {
				messageID = s.MessageID
			}
		case partText:
			var delta string
			if err := json.Unmarshal(payload, &delta); err != nil {
				log.Debug().Err(err).Msg("skip malformed text part")
				continue
			}
			text.WriteString(delta)
			emit(model.Increment{MessageID: messageID, Role: model.RoleAssistant, Delta: delta})
		case partData, partAnnotations:
			data := make([]byte, len(payload))
			copy(data, payload)
			emit(model.Increment{MessageID: messageID, Role: model.RoleAssistant, Data: data})
		case partError:
			var msg string
			if err := json.Unmarshal(payload, &msg); err != nil {
				msg = string(payload)
			}
			return &StreamError{Partial: text.String(), Err: errors.New(msg)}
		case partFinishMsg:
			var f finishMessage
			_ = json.Unmarshal(payload, &f)
			log.Debug().Str("finish_reason", f.FinishReason).Str("message_id", messageID).Msg("stream finished")
			return nil
		case partFinishStep:
			// Steps end inside one message; keep reading.
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &StreamError{Partial: text.String(), Err: errors.Wrap(err, "read stream")}
	}
	return &StreamError{Partial: text.String(), Err: session.ErrStreamInterrupted}
}
