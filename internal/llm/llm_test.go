package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/paperscrape/internal/cache"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type capturedRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func newStub(t *testing.T, answer string, calls *int32, got *capturedRequest) *OpenAIProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		choices := []map[string]any{}
		if answer != "" {
			choices = append(choices, map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": answer},
				"finish_reason": "stop",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "cmpl-1", "object": "chat.completion", "choices": choices})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "gpt-4-vision-preview", "object": "model"},
				{"id": "dall-e-3", "object": "model"},
				{"id": "GPT-4o", "object": "model"},
				{"id": "whisper-1", "object": "model"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	p, err := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)
	return p
}

func TestNewOpenAIProvider_Config(t *testing.T) {
	_, err := NewOpenAIProvider(Config{APIKey: "  "})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewOpenAIProvider(Config{APIKey: "sk", ProxyURL: "::not a url"})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(Config{APIKey: "sk", ProxyURL: "http://proxy.internal:3128"})
	require.NoError(t, err)
	assert.NotNil(t, p.Inner)
}

func TestDescribe_RequestShape(t *testing.T) {
	var calls int32
	var got capturedRequest
	p := newStub(t, "  A small test image.  ", &calls, &got)

	path := filepath.Join(t.TempDir(), "figure.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o644))

	d := &Describer{Client: p}
	text, err := d.Describe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "A small test image.", text)

	assert.Equal(t, DefaultVisionModel, got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	msg := got.Messages[0]
	assert.Equal(t, "user", msg.Role)
	require.Len(t, msg.Content, 2)
	assert.Equal(t, "text", msg.Content[0].Type)
	assert.Equal(t, DefaultPrompt, msg.Content[0].Text)
	assert.Equal(t, "image_url", msg.Content[1].Type)
	assert.True(t, strings.HasPrefix(msg.Content[1].ImageURL.URL, "data:image/png;base64,"), msg.Content[1].ImageURL.URL)
}

func TestDescribe_Overrides(t *testing.T) {
	var calls int32
	var got capturedRequest
	p := newStub(t, "ok", &calls, &got)
	d := &Describer{Client: p, Model: "gpt-4o", Prompt: "List the axes.", MaxTokens: 64}
	_, err := d.DescribeBytes(context.Background(), []byte("not really an image"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	assert.Equal(t, "List the axes.", got.Messages[0].Content[0].Text)
	assert.True(t, strings.HasPrefix(got.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,"))
}

func TestDescribe_MissingFile(t *testing.T) {
	d := &Describer{Client: &OpenAIProvider{}}
	_, err := d.Describe(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestDescribe_EmptyChoices(t *testing.T) {
	var calls int32
	p := newStub(t, "", &calls, nil)
	_, err := (&Describer{Client: p}).DescribeBytes(context.Background(), pngBytes)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestDescribe_UsesResponseCache(t *testing.T) {
	var calls int32
	p := newStub(t, "cached answer", &calls, nil)
	d := &Describer{Client: p, Cache: &cache.ResponseCache{Dir: t.TempDir()}}
	for i := 0; i < 3; i++ {
		text, err := d.DescribeBytes(context.Background(), pngBytes)
		require.NoError(t, err)
		assert.Equal(t, "cached answer", text)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	d.Prompt = "Different question"
	_, err := d.DescribeBytes(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGroupModels(t *testing.T) {
	g := GroupModels([]string{"gpt-4-vision-preview", "dall-e-3", "GPT-4o", "llava-Vision", "whisper-1"})
	assert.Equal(t, []string{"gpt-4-vision-preview", "llava-Vision"}, g.Vision)
	assert.Equal(t, []string{"gpt-4-vision-preview", "GPT-4o"}, g.GPT4)
	assert.Equal(t, []string{"dall-e-3", "whisper-1"}, g.Other)
	assert.Empty(t, GroupModels(nil).Other)
}

func TestListModels(t *testing.T) {
	var calls int32
	p := newStub(t, "", &calls, nil)
	g, err := ListModels(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4-vision-preview"}, g.Vision)
	assert.Equal(t, []string{"gpt-4-vision-preview", "GPT-4o"}, g.GPT4)
	assert.Equal(t, []string{"dall-e-3", "whisper-1"}, g.Other)
}
