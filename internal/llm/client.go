package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/siliconlad/aish/internal/cache"
	"github.com/siliconlad/aish/internal/errors"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Options configures the OpenAI client.
type Options struct {
	Model     string        // chat model, default gpt-4o-mini
	MaxTokens int           // completion budget, default 150
	Timeout   time.Duration // whole-request timeout, default 30s
	Endpoint  string        // override for tests
	Cache     *cache.Manager
}

// Client talks to the OpenAI chat-completions endpoint. Calls are
// synchronous from the shell's point of view; the statement blocks until
// the response arrives.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	maxTokens  int
	endpoint   string
	cache      *cache.Manager
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.NewInvalidOpenAIKey("empty key")
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 150
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		apiKey:     apiKey,
		model:      opts.Model,
		maxTokens:  opts.MaxTokens,
		endpoint:   opts.Endpoint,
		cache:      opts.Cache,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends a bare prompt and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt)
}

// GenerateWithInput wraps prompt and piped input in the suggestion template
// before sending. Wrapped generations are cached: the same prompt over the
// same input re-bills nothing.
func (c *Client) GenerateWithInput(ctx context.Context, prompt, input string) (string, error) {
	full := PipePrompt(prompt, input)

	if c.cache != nil {
		key := cache.Key(c.model, full)
		if content, hit, _ := c.cache.Get(key); hit {
			return string(content), nil
		}
		text, err := c.complete(ctx, full)
		if err != nil {
			return "", err
		}
		_ = c.cache.Set(key, []byte(text))
		return text, nil
	}
	return c.complete(ctx, full)
}

// complete performs one chat-completions round trip.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:     c.model,
		Messages:  []message{{Role: "user", Content: prompt}},
		MaxTokens: c.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("text generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("text generation API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse text generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("text generation response had no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
