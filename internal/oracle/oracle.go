package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"shift-triage-go/internal/config"
)

// Distinguishable oracle failures. Callers decide policy; the client
// never retries on its own.
var (
	ErrRateLimited    = errors.New("oracle rate limited")
	ErrQuotaExhausted = errors.New("oracle quota exhausted")
)

// Client is the text-completion oracle consumed by the pipeline.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// HTTPClient talks to a chat-completions style endpoint.
type HTTPClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewHTTPClient creates an oracle client from configuration.
func NewHTTPClient(cfg *config.OracleConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends one completion request and returns the raw text of
// the first choice.
func (c *HTTPClient) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read oracle response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode oracle response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("oracle error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}

	content := parsed.Choices[0].Message.Content
	logrus.Debugf("Oracle completion returned %d characters", len(content))
	return content, nil
}

// classifyHTTPError maps provider status codes onto the error
// taxonomy. A 429 carrying an insufficient_quota code means the
// account is out of credit, not merely throttled.
func classifyHTTPError(status int, body []byte) error {
	if status == http.StatusTooManyRequests {
		if strings.Contains(string(body), "insufficient_quota") {
			return fmt.Errorf("oracle returned status %d: %w", status, ErrQuotaExhausted)
		}
		return fmt.Errorf("oracle returned status %d: %w", status, ErrRateLimited)
	}
	return fmt.Errorf("oracle returned non-200 status: %d", status)
}
