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

	"emojiplot/internal/services"
)

const (
	defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout  = 60 * time.Second

	// Sampling temperatures for the plot and emoji stages.
	textTemperature = 0.7
	jsonTemperature = 0
)

// Config captures the runtime settings required to talk to OpenRouter.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	// RetryAttempts caps request attempts; zero keeps the default policy.
	RetryAttempts int
}

// Client is an OpenRouter chat-completions client.
type Client struct {
	cfg   Config
	http  *http.Client
	retry RetryPolicy
	sleep func(context.Context, time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryPolicy replaces the retry policy. Config.RetryAttempts still wins
// when set.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithSleeper replaces the wait between attempts. Tests use it to record
// delays without sleeping.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) {
		c.sleep = func(ctx context.Context, d time.Duration) error {
			sleep(d)
			return ctx.Err()
		}
	}
}

// NewClient constructs a client. An empty BaseURL targets OpenRouter.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultEndpoint
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: DefaultRetryPolicy(),
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.RetryAttempts > 0 {
		c.retry.Attempts = cfg.RetryAttempts
	}
	return c
}

// CompleteText sends a system and user prompt and returns the plain reply.
func (c *Client) CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, "complete text", systemPrompt, userPrompt, false)
}

// CompleteJSON asks for a json_object response and returns the raw payload.
// Decode it with DecodeJSON, which tolerates code fences.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, "complete json", systemPrompt, userPrompt, true)
}

// HealthCheck issues a tiny JSON request to verify the API key and model.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.complete(ctx, "health", "You must respond with JSON only.", `Respond with {"ok":true}`, true)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeJSON(content, &parsed); err != nil {
		return services.Wrap(services.ErrGeneration, "llm", "health", "parse payload", err)
	}
	if !parsed.OK {
		return services.Wrap(services.ErrGeneration, "llm", "health", "unexpected response", nil)
	}
	return nil
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content   string `json:"content"`
			Refusal   string `json:"refusal"`
			ToolCalls []struct {
				Function struct {
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// content returns the first non-empty reply, falling back to tool-call
// arguments for providers that answer JSON requests that way.
func (r chatResponse) content() (text, finishReason, refusal string) {
	for _, choice := range r.Choices {
		if finishReason == "" {
			finishReason = choice.FinishReason
		}
		if refusal == "" {
			refusal = strings.TrimSpace(choice.Message.Refusal)
		}
		if text = strings.TrimSpace(choice.Message.Content); text != "" {
			return text, finishReason, refusal
		}
		for _, call := range choice.Message.ToolCalls {
			if text = strings.TrimSpace(call.Function.Arguments); text != "" {
				return text, finishReason, refusal
			}
		}
	}
	return "", finishReason, refusal
}

func (c *Client) complete(ctx context.Context, op, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "llm", op, "api key required", nil)
	}
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", services.Wrap(services.ErrValidation, "llm", op, "user prompt required", nil)
	}

	req := chatRequest{Model: c.cfg.Model, Temperature: textTemperature}
	if system := strings.TrimSpace(systemPrompt); system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: userPrompt})
	if jsonMode {
		req.Temperature = jsonTemperature
		req.ResponseFormat = map[string]string{"type": "json_object"}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("llm %s: encode request: %w", op, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.attempts(); attempt++ {
		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		wait, ok := c.retry.next(ctx, err, attempt)
		if !ok {
			break
		}
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", services.Wrap(markerFor(lastErr), "llm", op, fmt.Sprintf("model %s", c.cfg.Model), lastErr)
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &statusError{Code: resp.StatusCode, Body: snippet(string(payload)), RetryAfter: retryAfter}
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w (body: %s)", err, snippet(string(payload)))
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	text, finish, refusal := parsed.content()
	if text == "" {
		return "", &emptyReplyError{FinishReason: finish, Refusal: refusal, Body: snippet(string(payload))}
	}
	return text, nil
}

type statusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

type emptyReplyError struct {
	FinishReason string
	Refusal      string
	Body         string
}

func (e *emptyReplyError) Error() string {
	return fmt.Sprintf("empty content (finish_reason=%q, refusal=%q, response_snippet=%s)", e.FinishReason, e.Refusal, e.Body)
}

// snippet flattens whitespace and truncates s for error messages.
func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(s); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return s
}
