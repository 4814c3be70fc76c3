// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
)

// ErrNoProgram is reported when a stream is started before the program is
// attached.
var ErrNoProgram = errors.New("stream runner has no program")

// ErrTimeout is reported when an answer exceeds the configured timeout.
var ErrTimeout = errors.New("request timed out")

// Sender posts messages into the running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// =============================================================================
// STREAM RUNNER
// =============================================================================

// StreamRunner runs one backend stream at a time in the background and posts
// its increments to the program, tagged with the request epoch.
type StreamRunner struct {
	channel session.Channel
	timeout time.Duration

	mu     sync.Mutex
	sender Sender
	cancel context.CancelFunc
	epoch  uint64
}

// NewStreamRunner creates a runner. A zero timeout means no limit.
func NewStreamRunner(channel session.Channel, timeout time.Duration) *StreamRunner {
	return &StreamRunner{channel: channel, timeout: timeout}
}

// SetSender attaches the program that receives stream messages.
func (r *StreamRunner) SetSender(s Sender) {
	r.mu.Lock()
	r.sender = s
	r.mu.Unlock()
}

// Start streams req. A stream that is still running is cancelled first; its
// remaining output carries an old epoch and is dropped by the session.
func (r *StreamRunner) Start(req *session.Request) {
	if req == nil {
		return
	}

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	sender := r.sender
	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	ctx, stop := context.WithCancel(ctx)
	r.cancel = func() {
		stop()
		cancel()
	}
	r.epoch = req.Epoch
	r.mu.Unlock()

	if sender == nil {
		log.Error().Uint64("epoch", req.Epoch).Msg("stream started without a program")
		return
	}
	if r.channel == nil {
		go sender.Send(StreamDoneMsg{Epoch: req.Epoch, Err: errors.New("no backend configured")})
		return
	}

	snapshot := *req
	go r.run(ctx, sender, snapshot)
}

func (r *StreamRunner) run(ctx context.Context, sender Sender, req session.Request) {
	started := time.Now()
	log.Debug().Uint64("epoch", req.Epoch).Str("purpose", req.Purpose.String()).Msg("stream started")

	err := r.channel.Stream(ctx, req, func(inc model.Increment) {
		sender.Send(StreamIncrementMsg{Epoch: req.Epoch, Increment: inc})
	})

	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = errors.Wrapf(ErrTimeout, "after %s", time.Since(started).Round(time.Second))
	case errors.Is(ctx.Err(), context.Canceled):
		// Stopped by the user or superseded; keep what arrived.
		err = nil
	}

	r.finish(req.Epoch)
	log.Debug().Uint64("epoch", req.Epoch).Dur("elapsed", time.Since(started)).Err(err).Msg("stream finished")
	sender.Send(StreamDoneMsg{Epoch: req.Epoch, Err: err})
}

// finish releases the context of epoch if it is still the current stream.
func (r *StreamRunner) finish(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch == epoch && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Stop cancels the running stream, if any.
func (r *StreamRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
