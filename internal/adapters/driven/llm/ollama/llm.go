// Package ollama provides an answer composer adapter using a local
// Ollama instance, for fully offline setups.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// Ensure Composer implements the interface.
var _ driven.AnswerComposer = (*Composer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second

	// defaultContextTokens is assumed when the model's context window
	// is not configured. Most local models run with a 4k-8k window.
	defaultContextTokens = 4096

	// outputReserve is the share of the context window held back for
	// the generated answer.
	outputReserve = 512
)

// Config holds configuration for the Ollama composer.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// ContextTokens is the model's context window size in tokens
	// (default: 4096).
	ContextTokens int

	// Temperature controls sampling randomness. Zero uses the model
	// default.
	Temperature float64
}

// Composer generates answers using the Ollama /api/generate endpoint.
type Composer struct {
	client        *http.Client
	baseURL       string
	model         string
	contextTokens int
	temperature   float64
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New creates a new Ollama composer.
func New(cfg Config) *Composer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ContextTokens == 0 {
		cfg.ContextTokens = defaultContextTokens
	}

	return &Composer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		contextTokens: cfg.ContextTokens,
		temperature:   cfg.Temperature,
	}
}

// Generate produces the answer text for the prompt.
func (c *Composer) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt must not be empty", domain.ErrValidation)
	}

	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}
	if c.temperature > 0 {
		reqBody.Options = &options{Temperature: c.temperature}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d)", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return genResp.Response, nil
}

// InputBudget returns the maximum prompt size in tokens.
func (c *Composer) InputBudget() int {
	return c.contextTokens - outputReserve
}

// ModelName returns the name of the generation model being used.
func (c *Composer) ModelName() string {
	return c.model
}

// Close releases resources.
func (c *Composer) Close() error {
	return nil
}
