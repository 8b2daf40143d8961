package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"emojiplot/internal/services"
)

func noSleep() Option {
	return WithSleeper(func(time.Duration) {})
}

func completionServer(t *testing.T, choice map[string]any, inspect func(chatRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			inspect(req)
		}
		if err := json.NewEncoder(w).Encode(map[string]any{"choices": []any{choice}}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func message(content string) map[string]any {
	return map[string]any{"message": map[string]any{"content": content}}
}

func TestClientHealthCheck(t *testing.T) {
	for _, content := range []string{`{"ok":true}`, "```json\n{\"ok\":true}\n```"} {
		server := completionServer(t, message(content), nil)
		client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
		if err := client.HealthCheck(context.Background()); err != nil {
			t.Fatalf("HealthCheck(%q) returned error: %v", content, err)
		}
	}
}

func TestClientHealthCheckRejectedKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"}, noSleep())
	err := client.HealthCheck(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for 401, got %v", err)
	}
}

func TestClientCompleteTextRequest(t *testing.T) {
	var seen chatRequest
	server := completionServer(t, message("1. A farm boy finds a droid."), func(req chatRequest) { seen = req })

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, err := client.CompleteText(context.Background(), "system", "The title of the movie is Star Wars.")
	if err != nil {
		t.Fatalf("CompleteText returned error: %v", err)
	}
	if content != "1. A farm boy finds a droid." {
		t.Fatalf("unexpected content %q", content)
	}
	if seen.ResponseFormat != nil {
		t.Fatalf("expected no response_format, got %v", seen.ResponseFormat)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != "system" || seen.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %#v", seen.Messages)
	}
	if seen.Model != "demo-model" || seen.Temperature != textTemperature {
		t.Fatalf("unexpected model/temperature %q/%v", seen.Model, seen.Temperature)
	}
}

func TestClientCompleteJSONRequestsJSONObject(t *testing.T) {
	var seen chatRequest
	server := completionServer(t, message("```json\n{\"plot_with_emoji\":\"🚀\"}\n```"), func(req chatRequest) { seen = req })

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if seen.ResponseFormat["type"] != "json_object" || seen.Temperature != 0 {
		t.Fatalf("unexpected JSON request settings: %+v", seen)
	}
	var parsed struct {
		PlotWithEmoji string `json:"plot_with_emoji"`
	}
	if err := DecodeJSON(content, &parsed); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if parsed.PlotWithEmoji != "🚀" {
		t.Fatalf("unexpected payload %#v", parsed)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo-model"})
	if _, err := client.CompleteText(context.Background(), "system", "user"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClientToolCallArguments(t *testing.T) {
	server := completionServer(t, map[string]any{
		"finish_reason": "tool_calls",
		"message": map[string]any{
			"content": "",
			"tool_calls": []any{
				map[string]any{
					"type": "function",
					"function": map[string]any{
						"name":      "emoji_plot",
						"arguments": `{"plot_with_emoji":"🦈🌊","explanation":"shark"}`,
					},
				},
			},
		},
	}, nil)

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if !strings.Contains(content, `"explanation"`) {
		t.Fatalf("expected tool call arguments, got %q", content)
	}
}

func TestClientEmptyReplyIsTransient(t *testing.T) {
	server := completionServer(t, map[string]any{
		"finish_reason": "stop",
		"message":       map[string]any{"content": ""},
	}, nil)

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", RetryAttempts: 2}, noSleep())
	_, err := client.CompleteText(context.Background(), "system", "user")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty content") || !strings.Contains(err.Error(), "response_snippet=") {
		t.Fatalf("expected empty-content error to include snippet, got %v", err)
	}
}

func TestClientHonoursRetryAfter(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{message("1. The shark arrives.")}})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	content, err := client.CompleteText(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteText returned error: %v", err)
	}
	if content != "1. The shark arrives." || calls != 2 {
		t.Fatalf("unexpected content %q after %d calls", content, calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientRetryAttemptsFromConfig(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", RetryAttempts: 2}, noSleep())
	if _, err := client.CompleteText(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected failure after retries")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"}, noSleep())
	_, err := client.CompleteText(context.Background(), "system", "user")
	if !errors.Is(err, services.ErrGeneration) || calls != 1 {
		t.Fatalf("expected one attempt and a generation error, got %d calls and %v", calls, err)
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := RetryPolicy{Attempts: 6, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	transient := &statusError{Code: http.StatusServiceUnavailable}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		got, ok := policy.next(context.Background(), transient, i+1)
		if !ok || got != expected {
			t.Fatalf("attempt %d: got %v (ok=%v), want %v", i+1, got, ok, expected)
		}
	}
	if _, ok := policy.next(context.Background(), transient, 6); ok {
		t.Fatal("expected no retry after the last attempt")
	}
}

func TestDecodeJSON(t *testing.T) {
	cases := map[string]string{
		"plain":   `{"explanation":"ok"}`,
		"fenced":  "```json\n{\"explanation\":\"ok\"}\n```",
		"chatter": "Here you go: {\"explanation\":\"ok\"} Enjoy!",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			var parsed struct {
				Explanation string `json:"explanation"`
			}
			if err := DecodeJSON(content, &parsed); err != nil || parsed.Explanation != "ok" {
				t.Fatalf("DecodeJSON(%q) = %+v, %v", content, parsed, err)
			}
		})
	}
	var parsed map[string]any
	if err := DecodeJSON("no json here", &parsed); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}
