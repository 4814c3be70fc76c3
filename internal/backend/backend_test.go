// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
)

var (
	_ session.Channel = (*ChatAPI)(nil)
	_ session.Channel = (*OpenAI)(nil)
	_ session.Channel = (*Gemini)(nil)
	_ session.Channel = (*Router)(nil)
)

func collect(incs *[]model.Increment) func(model.Increment) {
	return func(inc model.Increment) { *incs = append(*incs, inc) }
}

func joined(incs []model.Increment) string {
	var sb strings.Builder
	for _, inc := range incs {
		sb.WriteString(inc.Delta)
	}
	return sb.String()
}

func sampleRequest() session.Request {
	sel := model.SelectModel("openai/gpt-4o-mini")
	return session.Request{
		ChatID: "chat-1",
		Messages: []model.Message{
			{ID: "s", Role: model.RoleSystem, Content: model.TextContent("be brief")},
			{ID: "u1", Role: model.RoleUser, Content: model.TextContent("hello")},
			{ID: "a1", Role: model.RoleAssistant, Content: model.PartsContent(model.TextPart("hi"))},
			{ID: "u2", Role: model.RoleUser, Content: model.TextContent("again")},
		},
		Body:  map[string]any{"id": "chat-1", "regenerate": true},
		Model: &sel,
		Web:   true,
	}
}

// =============================================================================
// DATA STREAM TESTS
// =============================================================================

func TestParseDataStream(t *testing.T) {
	stream := strings.Join([]string{
		`f:{"messageId":"msg-1"}`,
		`0:"Hel"`,
		`0:"lo"`,
		`2:[{"sources":[]}]`,
		`e:{"finishReason":"stop"}`,
		`0:"!"`,
		`d:{"finishReason":"stop"}`,
		`0:"ignored"`,
	}, "\n")

	var incs []model.Increment
	require.NoError(t, ParseDataStream(context.Background(), strings.NewReader(stream), collect(&incs)))

	assert.Equal(t, "Hello!", joined(incs))
	require.Len(t, incs, 4)
	for _, inc := range incs {
		assert.Equal(t, "msg-1", inc.MessageID)
		assert.Equal(t, model.RoleAssistant, inc.Role)
	}
	assert.JSONEq(t, `[{"sources":[]}]`, string(incs[2].Data))
	assert.Empty(t, incs[2].Delta)
}

func TestParseDataStream_DataBeforeStartStep(t *testing.T) {
	mgr := session.NewManager(session.Options{ChatID: "chat-1"})
	req := mgr.Submit("hello")
	require.NotNil(t, req)

	stream := strings.Join([]string{
		`2:[{"status":"searching"}]`,
		`f:{"messageId":"m1"}`,
		`0:"hi"`,
		`d:{"finishReason":"stop"}`,
	}, "\n")
	err := ParseDataStream(context.Background(), strings.NewReader(stream), func(inc model.Increment) {
		mgr.ApplyIncrement(req.Epoch, inc)
	})
	require.NoError(t, err)

	msgs := mgr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text())
	assert.Equal(t, "m1", msgs[1].ID)
	assert.Equal(t, "hi", msgs[1].Text())
	assert.Len(t, mgr.StreamData(), 1)
}

func TestParseDataStream_ErrorPart(t *testing.T) {
	stream := "0:\"partial\"\n3:\"model overloaded\"\n"

	var incs []model.Increment
	err := ParseDataStream(context.Background(), strings.NewReader(stream), collect(&incs))

	var streamErr *StreamError
	require.True(t, errors.As(err, &streamErr))
	assert.Equal(t, "partial", streamErr.Partial)
	assert.Equal(t, "model overloaded", streamErr.Err.Error())
}

func TestParseDataStream_Interrupted(t *testing.T) {
	var incs []model.Increment
	err := ParseDataStream(context.Background(), strings.NewReader(`0:"cut"`), collect(&incs))
	assert.True(t, errors.Is(err, session.ErrStreamInterrupted))
	assert.Equal(t, "cut", joined(incs))
}

func TestParseDataStream_SkipsNoise(t *testing.T) {
	stream := "\n: keep-alive\n0:not-json\ndata: 0:\"ok\"\nd:{}\n"

	var incs []model.Increment
	require.NoError(t, ParseDataStream(context.Background(), strings.NewReader(stream), collect(&incs)))
	assert.Equal(t, "ok", joined(incs))
}

func TestParseDataStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var incs []model.Increment
	err := ParseDataStream(ctx, strings.NewReader("0:\"x\"\nd:{}\n"), collect(&incs))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, incs)
}

// =============================================================================
// CHAT API TESTS
// =============================================================================

func TestChatAPI_Stream(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ChatPath, r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		fmt.Fprint(w, "f:{\"messageId\":\"m1\"}\n0:\"Hi \"\n0:\"there\"\nd:{\"finishReason\":\"stop\"}\n")
	}))
	defer srv.Close()

	var incs []model.Increment
	err := NewChatAPI(srv.URL+"/", "key").Stream(context.Background(), sampleRequest(), collect(&incs))
	require.NoError(t, err)
	assert.Equal(t, "Hi there", joined(incs))

	assert.Equal(t, "chat-1", got["id"])
	assert.Equal(t, true, got["regenerate"])
	assert.Equal(t, true, got["webSearch"])
	assert.Len(t, got["messages"], 4)
	sel, ok := got["selectedModel"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "openai/gpt-4o-mini", sel["id"])
	assert.Equal(t, "native", sel["toolCallType"])
}

func TestChatAPI_ErrorStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, ErrAuthFailed},
		{http.StatusTooManyRequests, ``, ErrRateLimited},
		{http.StatusNotFound, `{"error":{"message":"no such model"}}`, ErrModelNotFound},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			err := NewChatAPI(srv.URL, "").Stream(context.Background(), sampleRequest(), func(model.Increment) {})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestChatAPI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":{"message":"upstream down","code":"bad_gateway"}}`)
	}))
	defer srv.Close()

	err := NewChatAPI(srv.URL, "").Stream(context.Background(), sampleRequest(), func(model.Increment) {})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad_gateway", apiErr.Code)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestChatAPI_NotConfigured(t *testing.T) {
	err := NewChatAPI("", "").Stream(context.Background(), sampleRequest(), func(model.Increment) {})
	assert.True(t, errors.Is(err, session.ErrNotConfigured))
}

func TestPayload_DefaultsID(t *testing.T) {
	p := Payload(session.Request{ChatID: "c9"})
	assert.Equal(t, "c9", p["id"])
	assert.Equal(t, []model.Message{}, p["messages"])
	assert.NotContains(t, p, "selectedModel")
	assert.Equal(t, false, p["webSearch"])
}

// =============================================================================
// OPENAI TESTS
// =============================================================================

func TestOpenAI_Stream(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Hel", "lo"} {
			fmt.Fprintf(w, "data: {\"id\":\"cmpl-1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var incs []model.Increment
	err := NewOpenAI("key", srv.URL, "openai/gpt-4o").Stream(context.Background(), sampleRequest(), collect(&incs))
	require.NoError(t, err)

	assert.Equal(t, "Hello", joined(incs))
	assert.Equal(t, "cmpl-1", incs[0].MessageID)
	assert.Equal(t, "openai/gpt-4o-mini", got.Model)
	assert.True(t, got.Stream)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "hi", got.Messages[2].Content)
}

func TestOpenAI_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	err := NewOpenAI("key", srv.URL, "").Stream(context.Background(), sampleRequest(), func(model.Increment) {})
	assert.True(t, errors.Is(err, ErrAuthFailed), "got %v", err)
}

func TestOpenAI_ModelFor(t *testing.T) {
	o := NewOpenAI("key", "", "openai:gpt-5")
	assert.Equal(t, "openai/gpt-5", o.ModelFor(session.Request{}))

	sel := model.SelectModel("anthropic:sonnet-4")
	assert.Equal(t, "anthropic/sonnet-4", o.ModelFor(session.Request{Model: &sel}))

	assert.False(t, NewOpenAI("", "", "").IsConfigured())
}

func TestChatMessages_SkipsEmpty(t *testing.T) {
	msgs := ChatMessages([]model.Message{
		{Role: model.RoleUser, Content: model.TextContent("")},
		{Role: model.RoleUser, Content: model.TextContent("q")},
	})
	require.Len(t, msgs, 1)
	assert.Equal(t, "q", msgs[0].Content)
}

// =============================================================================
// GEMINI TESTS
// =============================================================================

func TestGeminiContents(t *testing.T) {
	contents, system := GeminiContents(sampleRequest().Messages)

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "hi", contents[1].Parts[0].Text)

	require.NotNil(t, system)
	assert.Equal(t, "be brief", system.Parts[0].Text)
}

func TestGemini_ModelFor(t *testing.T) {
	g := NewGemini("key", "", "")
	assert.Equal(t, DefaultGeminiModel, g.ModelFor(session.Request{}))

	sel := model.SelectModel("google/gemini-1.5-flash")
	assert.Equal(t, "gemini-1.5-flash", g.ModelFor(session.Request{Model: &sel}))
}

func TestGemini_NotConfigured(t *testing.T) {
	err := NewGemini("", "", "").Stream(context.Background(), sampleRequest(), func(model.Increment) {})
	assert.True(t, errors.Is(err, session.ErrNotConfigured))
}

// =============================================================================
// ROUTER TESTS
// =============================================================================

type namedChannel struct {
	name  string
	calls int
}

func (c *namedChannel) Stream(_ context.Context, _ session.Request, emit func(model.Increment)) error {
	c.calls++
	emit(model.Increment{Delta: c.name})
	return nil
}

func TestRouter(t *testing.T) {
	fallback := &namedChannel{name: "fallback"}
	google := &namedChannel{name: "google"}
	r := NewRouter(fallback).Handle("google", google)

	for _, tt := range []struct {
		model string
		want  string
	}{
		{"google/gemini-1.5-flash", "google"},
		{"google:gemini-2.5-pro", "google"},
		{"openai/gpt-4o-mini", "fallback"},
		{"", "fallback"},
	} {
		req := session.Request{}
		if tt.model != "" {
			sel := model.SelectModel(tt.model)
			req.Model = &sel
		}
		var incs []model.Increment
		require.NoError(t, r.Stream(context.Background(), req, collect(&incs)))
		assert.Equal(t, tt.want, joined(incs), tt.model)
	}
	assert.Equal(t, 2, google.calls)
}

func TestRouter_NoFallback(t *testing.T) {
	err := NewRouter(nil).Stream(context.Background(), session.Request{}, func(model.Increment) {})
	assert.True(t, errors.Is(err, session.ErrNotConfigured))
}
