package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/smart-assistant/internal/llm"
	"github.com/rs/zerolog/log"
)

// Responder implements llm.Responder on top of a local Ollama server
type Responder struct {
	host   string
	model  string
	client *http.Client
}

// NewResponder creates a new Ollama responder
func NewResponder(host, model string, timeout time.Duration) *Responder {
	if model == "" {
		model = "llama3"
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Responder{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the responder identifier
func (p *Responder) Name() string {
	return "ollama"
}

// IsConfigured checks if a host is set
func (p *Responder) IsConfigured() bool {
	return p.host != ""
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
}

// Reply sends content to /api/generate and returns the cleaned answer
func (p *Responder) Reply(ctx context.Context, content string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  p.model,
		Prompt: llm.BuildPrompt(content),
		Stream: false,
		Options: map[string]any{
			"temperature": 0.7,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debug().
		Str("model", p.model).
		Int("tokens", out.EvalCount).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("Ollama reply generated")

	reply := llm.CleanReply(out.Response)
	if reply == "" {
		return "", fmt.Errorf("ollama returned an empty reply")
	}
	return reply, nil
}
