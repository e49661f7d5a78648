package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// OpenRouterClient talks to any OpenAI-compatible /chat/completions endpoint.
type OpenRouterClient struct {
	BaseURL  string
	Model    string
	APIKey   string
	SiteURL  string
	SiteName string
	Timeout  time.Duration
	Client   *http.Client
}

// NewOpenRouterClient fails when credentials are absent so a misconfigured
// process stops at startup instead of failing every request.
func NewOpenRouterClient(baseURL, model, apiKey string, timeout time.Duration) (*OpenRouterClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, newError(CodeConfig, "OPENROUTER_API_KEY is not set", ErrNotConfigured)
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, newError(CodeConfig, "OPENROUTER_BASE_URL is not set", ErrNotConfigured)
	}
	if strings.TrimSpace(model) == "" {
		return nil, newError(CodeConfig, "OPENROUTER_MODEL is not set", ErrNotConfigured)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenRouterClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		APIKey:  apiKey,
		Timeout: timeout,
	}, nil
}

type chatPayload struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	TopP        float64   `json:"top_p"`
}

type chatResult struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", newError(CodeConfig, "OPENROUTER_API_KEY is not set", ErrNotConfigured)
	}

	payload := chatPayload{
		Model:       c.Model,
		Messages:    make([]Message, 0, len(messages)+1),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        1,
	}
	if strings.TrimSpace(opts.System) != "" {
		payload.Messages = append(payload.Messages, Message{Role: RoleSystem, Content: opts.System})
	}
	payload.Messages = append(payload.Messages, messages...)

	b, err := json.Marshal(payload)
	if err != nil {
		return "", newError(CodeUnknown, "encode request", err)
	}
	url := c.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", newError(CodeUnknown, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.SiteURL)
	}
	if c.SiteName != "" {
		req.Header.Set("X-Title", c.SiteName)
	}

	resp, err := c.httpClient(ctx).Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", newError(CodeTimeout, "model request timed out", err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", newError(CodeTimeout, "model request timed out", err)
		}
		return "", newError(CodeHTTP, "model request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", &Error{
				Code:       CodeRateLimited,
				Message:    "rate limited",
				Status:     resp.StatusCode,
				RetryAfter: extractRetryAfter(resp.Header.Get("Retry-After"), errBody),
			}
		}
		return "", &Error{
			Code:    CodeHTTP,
			Message: fmt.Sprintf("model http error: %s: %v", resp.Status, errBody),
			Status:  resp.StatusCode,
		}
	}

	var res chatResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", newError(CodeNoResponse, "decode model response", err)
	}
	if len(res.Choices) == 0 || res.Choices[0].Message.Content == nil {
		return "", newError(CodeNoResponse, "no response from model", nil)
	}
	return *res.Choices[0].Message.Content, nil
}

// httpClient bounds the call by the configured timeout, narrowed to the
// context deadline when that is sooner.
func (c *OpenRouterClient) httpClient(ctx context.Context) *http.Client {
	if c.Client != nil {
		return c.Client
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	return &http.Client{Timeout: timeout}
}

func extractRetryAfter(header string, errBody map[string]any) time.Duration {
	if header = strings.TrimSpace(header); header != "" {
		if d, err := time.ParseDuration(header + "s"); err == nil && d > 0 {
			return d
		}
	}
	errObj, ok := errBody["error"].(map[string]any)
	if !ok {
		return 0
	}
	details, ok := errObj["details"].([]any)
	if !ok {
		return 0
	}
	for _, d := range details {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := m["@type"].(string); ok && strings.Contains(t, "RetryInfo") {
			if s, ok := m["retryDelay"].(string); ok {
				if dur, err := time.ParseDuration(s); err == nil {
					return dur
				}
			}
		}
	}
	return 0
}
