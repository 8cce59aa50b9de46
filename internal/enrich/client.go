// Package enrich implements the optional LLM-backed enrichment
// collaborator. It is consulted by callers around the core pipeline and is
// never required for correctness; every contract in the extraction and
// suggestion layers holds without it.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/config"
	"github.com/herbwise/basil/internal/service"
)

const systemPrompt = "You classify grocery items into categories. Respond with ONLY the single best category name from the provided list, nothing else."

// Client calls an OpenAI-compatible chat completions endpoint to refine
// the keyword categorizer's guess.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	retry       service.RetryOptions
}

// New creates an enrichment client. Returns ErrEnrichmentDisabled when the
// configuration carries no API key, so callers can skip enrichment cleanly.
func New(cfg config.EnrichmentConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, common.ErrEnrichmentDisabled
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: enrichment enabled but no API key", common.ErrInvalidConfig)
	}

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SuggestCategory asks the model to pick the best category for an item
// name. The answer is validated against the provided category list; an
// answer outside the list is an error, so a flaky model can never invent
// categories.
func (c *Client) SuggestCategory(ctx context.Context, itemName string, categories []string) (string, error) {
	prompt := fmt.Sprintf("Item: %q\nCategories: %s", itemName, strings.Join(categories, ", "))

	var answer string
	operation := func() error {
		raw, err := c.complete(ctx, prompt)
		if err != nil {
			return err
		}
		answer = sanitizeAnswer(raw)
		return nil
	}

	if err := common.WithRetry(ctx, operation, c.retry); err != nil {
		return "", err
	}

	for _, cat := range categories {
		if strings.EqualFold(cat, answer) {
			return cat, nil
		}
	}
	return "", fmt.Errorf("model answered %q, not one of the known categories", answer)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   20,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("enrichment request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", common.ErrRateLimit
	}
	if resp.StatusCode != http.StatusOK {
		return "", &common.RetryableError{
			Err:       fmt.Errorf("enrichment returned status %d", resp.StatusCode),
			Retryable: resp.StatusCode >= 500,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("enrichment error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("enrichment returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// sanitizeAnswer strips quoting and stray punctuation a chat model tends to
// wrap around a single-word answer.
func sanitizeAnswer(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "\"'`. ")
}
