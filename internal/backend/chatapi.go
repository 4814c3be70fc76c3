// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
)

// ChatPath is the endpoint path of the chat API.
const ChatPath = "/api/chat"

// ChatAPI streams answers from the product's own chat endpoint.
type ChatAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewChatAPI creates a transport for the endpoint at baseURL.
func NewChatAPI(baseURL, apiKey string) *ChatAPI {
	return &ChatAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  sharedStreamingClient,
	}
}

// WithHTTPClient replaces the HTTP client.
func (c *ChatAPI) WithHTTPClient(client *http.Client) *ChatAPI {
	c.client = client
	return c
}

// IsConfigured reports whether an endpoint is set.
func (c *ChatAPI) IsConfigured() bool {
	return c.baseURL != ""
}

// Payload builds the JSON body of a request: the request body fields, the
// message log, the selected model and the web toggle.
func Payload(req session.Request) map[string]any {
	payload := make(map[string]any, len(req.Body)+3)
	for k, v := range req.Body {
		payload[k] = v
	}
	if _, ok := payload["id"]; !ok {
		payload["id"] = req.ChatID
	}
	msgs := req.Messages
	if msgs == nil {
		msgs = []model.Message{}
	}
	payload["messages"] = msgs
	if req.Model != nil {
		payload["selectedModel"] = req.Model
	}
	payload["webSearch"] = req.Web
	return payload
}

// Stream implements session.Channel.
func (c *ChatAPI) Stream(ctx context.Context, req session.Request, emit func(model.Increment)) error {
	if !c.IsConfigured() {
		return session.ErrNotConfigured
	}

	body, err := json.Marshal(Payload(req))
	if err != nil {
		return errors.Wrap(err, "encode chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")
	httpReq.Header.Set("User-Agent", UserAgent)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log.Debug().
		Str("chat_id", req.ChatID).
		Str("purpose", req.Purpose.String()).
		Int("messages", len(req.Messages)).
		Msg("chat api request")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "chat request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp.StatusCode, readErrorBody(resp.Body))
	}
	return ParseDataStream(ctx, resp.Body, emit)
}
