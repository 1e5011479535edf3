package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"cinephile/internal/metrics"
	"cinephile/internal/services"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultTimeout  = 30 * time.Second
)

// Config holds connection settings for an OpenAI-compatible endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Request is one text generation call. Zero fields use client defaults.
type Request struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// BreakerSettings tunes the circuit breaker guarding the endpoint.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client generates text through a chat completion API. Calls are retried per
// the configured policy and pass through a circuit breaker.
type Client struct {
	cfg     Config
	http    *http.Client
	retry   retryPolicy
	breaker *gobreaker.CircuitBreaker[string]
}

type options struct {
	http    *http.Client
	retry   retryPolicy
	breaker BreakerSettings
}

// Option customizes the client.
type Option func(*options)

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.http = client
		}
	}
}

// WithRetryMaxAttempts sets the total attempt count. Values below one mean one.
func WithRetryMaxAttempts(attempts int) Option {
	return func(o *options) { o.retry.attempts = attempts }
}

func WithRetryBackoff(base, ceiling time.Duration) Option {
	return func(o *options) {
		o.retry.base = base
		o.retry.ceiling = ceiling
	}
}

// WithSleeper replaces the timer used between attempts.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(o *options) { o.retry.sleep = sleep }
}

// WithBreaker overrides breaker settings; zero fields keep defaults.
func WithBreaker(settings BreakerSettings) Option {
	return func(o *options) {
		if settings.Name != "" {
			o.breaker.Name = settings.Name
		}
		if settings.FailureThreshold > 0 {
			o.breaker.FailureThreshold = settings.FailureThreshold
		}
		if settings.OpenTimeout > 0 {
			o.breaker.OpenTimeout = settings.OpenTimeout
		}
	}
}

// NewClient builds a client from cfg.
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
	o := options{
		http:  &http.Client{Timeout: timeout},
		retry: retryPolicy{attempts: 1, base: time.Second, ceiling: 10 * time.Second},
		breaker: BreakerSettings{
			Name:             "trivia-llm",
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		cfg:     cfg,
		http:    o.http,
		retry:   o.retry,
		breaker: newBreaker(o.breaker),
	}
}

func newBreaker(settings BreakerSettings) *gobreaker.CircuitBreaker[string] {
	threshold := settings.FailureThreshold
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Caller cancellations and rejected prompts do not count against the upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, services.ErrValidation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
}

// BreakerState reports "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Generate sends the system directive and prompt and returns the trimmed reply.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "llm", "generate", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "llm", "generate", "api key required (set llm.api_key or OPENAI_API_KEY)", nil)
	}

	body := chatRequest{
		Model:       firstNonEmpty(req.Model, c.cfg.Model),
		MaxTokens:   max(req.MaxTokens, 0),
		Temperature: req.Temperature,
	}
	if system := strings.TrimSpace(req.System); system != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: system})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: prompt})

	text, err := c.breaker.Execute(func() (string, error) {
		return c.retry.run(ctx, func() (string, error) { return c.complete(ctx, body) })
	})
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "", services.Wrap(services.ErrTransient, "llm", "generate", "trivia service temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return "", services.Wrap(services.ErrTimeout, "llm", "generate", "", err)
	default:
		return "", services.Wrap(services.ErrExternal, "llm", "generate", "", err)
	}
}
