package llm

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/paperscrape/internal/cache"
)

const (
	DefaultVisionModel = "gpt-4o-mini"
	DefaultPrompt      = "Please describe what you see in this image in detail."
	DefaultMaxTokens   = 500
)

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Describer asks a vision-capable chat model to describe an image.
type Describer struct {
	Client    Client
	Model     string
	Prompt    string
	MaxTokens int
	// Cache, when set, short-circuits repeated requests for the same image.
	Cache *cache.ResponseCache
}

// Describe reads the image at path and describes it.
func (d *Describer) Describe(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return d.DescribeBytes(ctx, data)
}

// DescribeBytes describes an in-memory image.
func (d *Describer) DescribeBytes(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	if d.Client == nil {
		return "", errors.New("no model client configured")
	}
	model, prompt := d.model(), d.prompt()

	var key string
	if d.Cache != nil {
		sum := sha256.Sum256(data)
		key = cache.ResponseKey(model, prompt, hex.EncodeToString(sum[:]))
		if b, ok, err := d.Cache.Get(ctx, key); err == nil && ok {
			return string(b), nil
		}
	}

	resp, err := d.Client.CreateChatCompletion(ctx, VisionRequest(model, prompt, d.maxTokens(), data))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if d.Cache != nil && text != "" {
		_ = d.Cache.Save(ctx, key, []byte(text))
	}
	return text, nil
}

// VisionRequest builds a single user message holding the prompt and the
// image as a base64 data URL.
func VisionRequest(model, prompt string, maxTokens int, image []byte) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: DataURL(image)}},
			},
		}},
	}
}

// DataURL encodes image as a data: URL. The media type is sniffed and
// falls back to image/jpeg for unrecognised bytes.
func DataURL(image []byte) string {
	return "data:" + MediaType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
}

// MediaType sniffs the image media type of data.
func MediaType(data []byte) string {
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}

func (d *Describer) model() string {
	if strings.TrimSpace(d.Model) != "" {
		return d.Model
	}
	return DefaultVisionModel
}

func (d *Describer) prompt() string {
	if strings.TrimSpace(d.Prompt) != "" {
		return d.Prompt
	}
	return DefaultPrompt
}

func (d *Describer) maxTokens() int {
	if d.MaxTokens > 0 {
		return d.MaxTokens
	}
	return DefaultMaxTokens
}
