// Package openai provides a relevance scorer backed by the OpenAI chat
// completions API. The model judges a (query, candidate) pair jointly,
// which is what the cross-encoder reranker needs and what a bi-encoder
// embedding cannot give.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.RelevanceScorer = (*Scorer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second
)

const scoringPrompt = `Rate how relevant the passage is to the query on a scale from 0 to 10.
0 means completely unrelated, 10 means it directly answers the query.
Respond with only the number.

Query: %s

Passage: %s`

// Config holds configuration for the OpenAI relevance scorer.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Scorer scores query/candidate pairs using the OpenAI API.
type Scorer struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewScorer creates a new OpenAI relevance scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Scorer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Score returns a relevance score on a 0-10 scale. Temperature zero
// keeps repeated calls for the same pair in agreement.
func (s *Scorer) Score(ctx context.Context, query, candidate string) (float64, error) {
	reqBody := chatCompletionRequest{
		Model: s.model,
		Messages: []chatCompletionMsg{
			{Role: "user", Content: fmt.Sprintf(scoringPrompt, query, candidate)},
		},
		MaxTokens:   8,
		Temperature: 0,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return 0, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return 0, fmt.Errorf("openai: empty completion")
	}

	return parseScore(chatResp.Choices[0].Message.Content)
}

// Close releases resources.
func (s *Scorer) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// parseScore extracts a 0-10 number from the model output. Models
// occasionally wrap the number in prose despite the prompt, so the
// first numeric token wins.
func parseScore(content string) (float64, error) {
	for _, field := range strings.Fields(content) {
		field = strings.Trim(field, ".,:;")
		score, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		return score, nil
	}
	return 0, fmt.Errorf("no score in completion %q", content)
}
