// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
)

// DefaultOpenRouterURL is the default base URL of the OpenAI transport.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenAI streams answers from an OpenAI-compatible chat completions API.
type OpenAI struct {
	client       *openai.Client
	apiKey       string
	defaultModel string
}

// NewOpenAI creates a transport. An empty baseURL means OpenRouter.
func NewOpenAI(apiKey, baseURL, defaultModel string) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	config.HTTPClient = sharedStreamingClient
	return &OpenAI{
		client:       openai.NewClientWithConfig(config),
		apiKey:       apiKey,
		defaultModel: defaultModel,
	}
}

// IsConfigured reports whether an API key is set.
func (o *OpenAI) IsConfigured() bool {
	return o.apiKey != ""
}

// ModelFor returns the wire model name for a request. "provider:name" IDs
// become "provider/name".
func (o *OpenAI) ModelFor(req session.Request) string {
	id := o.defaultModel
	if req.Model != nil && req.Model.ID != "" {
		id = req.Model.ID
	}
	return strings.Replace(id, ":", "/", 1)
}

// ChatMessages converts a request log to chat completion messages. Messages
// with no text are skipped.
func ChatMessages(msgs []model.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		text := m.Text()
		if text == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case model.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case model.RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: text})
	}
	return out
}

// Stream implements session.Channel.
func (o *OpenAI) Stream(ctx context.Context, req session.Request, emit func(model.Increment)) error {
	if !o.IsConfigured() {
		return session.ErrNotConfigured
	}

	wireModel := o.ModelFor(req)
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    wireModel,
		Messages: ChatMessages(req.Messages),
		Stream:   true,
	})
	if err != nil {
		log.Error().Err(err).Str("model", wireModel).Msg("openai streaming request failed")
		return mapOpenAIError(err)
	}
	defer stream.Close()

	var (
		text   strings.Builder
		chunks int
	)
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			log.Debug().Int("chunks_received", chunks).Str("model", wireModel).Msg("openai stream completed")
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &StreamError{Partial: text.String(), Err: mapOpenAIError(err)}
		}
		chunks++

		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		text.WriteString(delta)
		emit(model.Increment{MessageID: response.ID, Role: model.RoleAssistant, Delta: delta})
	}
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return errors.Wrap(ErrAuthFailed, apiErr.Message)
		case http.StatusPaymentRequired:
			return errors.Wrap(ErrInsufficientCredits, apiErr.Message)
		case http.StatusNotFound:
			return errors.Wrap(ErrModelNotFound, apiErr.Message)
		case http.StatusTooManyRequests:
			return errors.Wrap(ErrRateLimited, apiErr.Message)
		}
		return &APIError{Message: apiErr.Message, Status: apiErr.HTTPStatusCode}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return errorFromResponse(reqErr.HTTPStatusCode, []byte(reqErr.Error()))
	}
	return errors.Wrap(err, "openai stream")
}
