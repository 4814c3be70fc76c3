// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
)

// Router dispatches each request to a transport chosen by the provider prefix
// of its selected model.
type Router struct {
	fallback   session.Channel
	byProvider map[string]session.Channel
}

// NewRouter creates a router that sends unmatched requests to fallback.
func NewRouter(fallback session.Channel) *Router {
	return &Router{fallback: fallback, byProvider: make(map[string]session.Channel)}
}

// Handle routes the provider to ch.
func (r *Router) Handle(provider string, ch session.Channel) *Router {
	r.byProvider[provider] = ch
	return r
}

// Route returns the transport for req.
func (r *Router) Route(req session.Request) session.Channel {
	if req.Model != nil {
		if ch, ok := r.byProvider[model.ProviderOf(req.Model.ID)]; ok {
			return ch
		}
	}
	return r.fallback
}

// Stream implements session.Channel.
func (r *Router) Stream(ctx context.Context, req session.Request, emit func(model.Increment)) error {
	ch := r.Route(req)
	if ch == nil {
		return session.ErrNotConfigured
	}
	if req.Model != nil {
		log.Debug().Str("model", req.Model.ID).Str("chat_id", req.ChatID).Msg("routing request")
	}
	return ch.Stream(ctx, req, emit)
}
