// Command openai-stub serves a tiny OpenAI-compatible API for exercising
// the describe and models subcommands without network access.
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	models := strings.Split(os.Getenv("MODEL_IDS"), ",")
	if strings.TrimSpace(os.Getenv("MODEL_IDS")) == "" {
		models = []string{"gpt-4o-mini", "gpt-4-vision-preview", "text-embedding-3-small"}
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	log.Info().Str("addr", addr).Strs("models", models).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newHandler(models)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newHandler(models []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		data := make([]map[string]any, 0, len(models))
		for _, id := range models {
			data = append(data, map[string]any{"id": strings.TrimSpace(id), "object": "model"})
		}
		writeJSON(w, map[string]any{"object": "list", "data": data})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var parts []contentPart
		if err := json.Unmarshal(req.Messages[len(req.Messages)-1].Content, &parts); err != nil {
			http.Error(w, "expected multi-part content", http.StatusBadRequest)
			return
		}
		answer, err := describe(parts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"id":     "stub-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": answer}, "finish_reason": "stop"},
			},
		})
	})
	return mux
}

// describe answers with the prompt, media type and decoded size of the
// attached image so callers can check what was sent.
func describe(parts []contentPart) (string, error) {
	var prompt, mediaType string
	size := -1
	for _, p := range parts {
		switch p.Type {
		case "text":
			prompt = p.Text
		case "image_url":
			meta, data, ok := strings.Cut(strings.TrimPrefix(p.ImageURL.URL, "data:"), ",")
			if !ok || !strings.HasSuffix(meta, ";base64") {
				return "", fmt.Errorf("image must be a base64 data URL")
			}
			b, err := base64.StdEncoding.DecodeString(data)
			if err != nil {
				return "", fmt.Errorf("decode image: %w", err)
			}
			mediaType, size = strings.TrimSuffix(meta, ";base64"), len(b)
		}
	}
	if size < 0 {
		return "", fmt.Errorf("no image attached")
	}
	return fmt.Sprintf("A %s image of %d bytes. Prompt: %s", mediaType, size, prompt), nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
