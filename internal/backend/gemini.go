// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
)

// DefaultGeminiModel is used when a request names no model.
const DefaultGeminiModel = "gemini-2.5-pro"

// Gemini streams answers from Google Gemini.
type Gemini struct {
	apiKey       string
	baseURL      string
	defaultModel string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGemini creates a transport. The SDK client is built on first use.
func NewGemini(apiKey, baseURL, defaultModel string) *Gemini {
	if defaultModel == "" {
		defaultModel = DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, baseURL: baseURL, defaultModel: defaultModel}
}

// IsConfigured reports whether an API key is set.
func (g *Gemini) IsConfigured() bool {
	return g.apiKey != ""
}

// ModelFor returns the Gemini model name for a request, without provider
// prefix.
func (g *Gemini) ModelFor(req session.Request) string {
	if req.Model != nil && req.Model.ID != "" {
		return model.ModelName(req.Model.ID)
	}
	return model.ModelName(g.defaultModel)
}

// GeminiContents converts a request log to Gemini contents. System messages
// are joined into the returned instruction.
func GeminiContents(msgs []model.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range msgs {
		text := m.Text()
		if text == "" {
			continue
		}
		switch m.Role {
		case model.RoleSystem:
			system = append(system, text)
		case model.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      g.apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
		})
	})
	return g.client, g.initErr
}

// Stream implements session.Channel.
func (g *Gemini) Stream(ctx context.Context, req session.Request, emit func(model.Increment)) error {
	if !g.IsConfigured() {
		return session.ErrNotConfigured
	}
	client, err := g.getClient(ctx)
	if err != nil {
		return errors.Wrap(err, "create gemini client")
	}

	contents, system := GeminiContents(req.Messages)
	var config *genai.GenerateContentConfig
	if system != nil {
		config = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	name := g.ModelFor(req)
	messageID := model.NewMessageID()
	var text strings.Builder
	for chunk, err := range client.Models.GenerateContentStream(ctx, name, contents, config) {
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Error().Err(err).Str("model", name).Msg("gemini stream failed")
			return &StreamError{Partial: text.String(), Err: err}
		}
		delta := chunk.Text()
		if delta == "" {
			continue
		}
		text.WriteString(delta)
		emit(model.Increment{MessageID: messageID, Role: model.RoleAssistant, Delta: delta})
	}
	log.Debug().Str("model", name).Int("chars", text.Len()).Msg("gemini stream completed")
	return nil
}
