package external

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

	"github.com/kjannette/avaline-backend/internal/httputil"
	"github.com/kjannette/avaline-backend/internal/reply"
	"github.com/kjannette/avaline-backend/internal/textextract"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

var ErrNoText = errors.New("openai returned no text")

type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type OpenAIOptions struct {
	Model     string
	BaseURL   string
	MaxTokens int
}

func NewOpenAIClient(apiKey string, opts OpenAIOptions) *OpenAIClient {
	model := opts.Model
	if model == "" {
		model = "gpt-5"
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	return &OpenAIClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// Generate tries the Responses API first and Chat Completions second.
func (c *OpenAIClient) Generate(ctx context.Context, p reply.Prompt) (string, error) {
	text, err := c.respond(ctx, p)
	if err == nil && text != "" {
		return text, nil
	}
	if err == nil {
		err = ErrNoText
	}
	fmt.Printf("[OPENAI] Responses API gave no text (%v), falling back to chat completions\n", err)

	text, err = c.chat(ctx, p)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (c *OpenAIClient) respond(ctx context.Context, p reply.Prompt) (string, error) {
	var data any
	err := c.post(ctx, "/responses", map[string]any{
		"model":     c.model,
		"input":     p.Combined(),
		"reasoning": map[string]string{"effort": "minimal"},
	}, &data)
	if err != nil {
		return "", fmt.Errorf("responses api: %w", err)
	}
	return textextract.FromResponse(data), nil
}

func (c *OpenAIClient) chat(ctx context.Context, p reply.Prompt) (string, error) {
	var data struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	err := c.post(ctx, "/chat/completions", map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": p.System},
			{"role": "user", "content": p.User},
		},
		"max_completion_tokens": c.maxTokens,
	}, &data)
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	if len(data.Choices) == 0 {
		return "", nil
	}
	return textextract.FromChatContent(data.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
