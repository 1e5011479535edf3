package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cinephile/internal/services"
)

func completionHandler(t *testing.T, content string, inspect func(*http.Request, chatRequest)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var payload chatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(r, payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		})
	}
}

func TestGenerateSendsRequest(t *testing.T) {
	var seen chatRequest
	var auth, title string
	server := httptest.NewServer(completionHandler(t, "  Filmed in 1999.  ", func(r *http.Request, payload chatRequest) {
		seen = payload
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "default-model", Title: "Cinephile"})
	text, err := client.Generate(context.Background(), Request{
		System:      "be factual",
		Prompt:      "tell me about Heat",
		Model:       "gpt-4o-mini",
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "Filmed in 1999." {
		t.Fatalf("unexpected text: %q", text)
	}
	if auth != "Bearer test" || title != "Cinephile" {
		t.Fatalf("unexpected headers: auth=%q title=%q", auth, title)
	}
	if seen.Model != "gpt-4o-mini" || seen.MaxTokens != 300 || seen.Temperature != 0.2 {
		t.Fatalf("unexpected payload: %+v", seen)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != "system" || seen.Messages[1].Content != "tell me about Heat" {
		t.Fatalf("unexpected messages: %+v", seen.Messages)
	}
}

func TestGenerateDefaultsModel(t *testing.T) {
	var model string
	server := httptest.NewServer(completionHandler(t, "ok", func(_ *http.Request, payload chatRequest) {
		model = payload.Model
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "configured"})
	if _, err := client.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if model != "configured" {
		t.Fatalf("expected configured model, got %q", model)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key hint, got %v", err)
	}
}

func TestGenerateHTTPFailureIsExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	_, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
	if !strings.Contains(err.Error(), "http 401") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		completionHandler(t, "recovered", nil)(w, r)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithRetryMaxAttempts(2),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	text, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "recovered" || calls.Load() != 2 {
		t.Fatalf("unexpected result %q after %d calls", text, calls.Load())
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected Retry-After honoured, got %v", slept)
	}
}

func TestGenerateSingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	if _, err := client.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one attempt, got %d", calls.Load())
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"finish_reason": "length", "message": map[string]any{"content": ""}}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	var empty *emptyReplyError
	if !errors.As(err, &empty) {
		t.Fatalf("expected empty content error, got %v", err)
	}
	if empty.FinishReason != "length" {
		t.Fatalf("unexpected finish reason %q", empty.FinishReason)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithBreaker(BreakerSettings{Name: "test-open", FailureThreshold: 2, OpenTimeout: time.Minute}),
	)
	for i := 0; i < 2; i++ {
		if _, err := client.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	if client.BreakerState() != "open" {
		t.Fatalf("expected open breaker, got %s", client.BreakerState())
	}
	_, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error from open breaker, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open breaker must not reach upstream, got %d calls", calls.Load())
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	client := NewClient(Config{APIKey: "test"})
	if _, err := client.Generate(context.Background(), Request{Prompt: "  "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected seconds parse: %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative values must be rejected")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage must be rejected")
	}
}

func TestBackoffDelayCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.retry.delayFor(i + 1); got != expected {
			t.Fatalf("attempt %d: got %s want %s", i+1, got, expected)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := snippet("  "); got != "<empty>" {
		t.Fatalf("unexpected empty summary %q", got)
	}
	long := strings.Repeat("x", 200)
	if got := snippet(long); len([]rune(got)) != 163 {
		t.Fatalf("expected truncated snippet, got %d runes", len([]rune(got)))
	}
}
