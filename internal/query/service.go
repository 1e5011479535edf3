package query

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"cinephile/internal/catalog"
	"cinephile/internal/logging"
	"cinephile/internal/metrics"
	"cinephile/internal/services/llm"
)

// Generator produces free text for a prompt. *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// TriviaCache stores generated trivia answers. *triviacache.Store satisfies it.
type TriviaCache interface {
	Get(ctx context.Context, title, model string) (string, bool, error)
	Put(ctx context.Context, title, model, answer string) error
}

// TriviaSettings controls trivia generation requests.
type TriviaSettings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultTriviaSettings returns the stock trivia request parameters.
func DefaultTriviaSettings() TriviaSettings {
	return TriviaSettings{
		Model:       "gpt-4o-mini",
		MaxTokens:   300,
		Temperature: 0.2,
	}
}

// Service answers catalog queries.
type Service struct {
	store     *catalog.Store
	generator Generator
	cache     TriviaCache
	trivia    TriviaSettings
	logger    *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customizes the service.
type Option func(*Service)

// WithRand injects the random source used by Recommend.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSeed seeds a deterministic random source. Zero keeps a random seed.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		if seed != 0 {
			s.rng = NewRand(seed)
		}
	}
}

// WithGenerator sets the trivia text generator.
func WithGenerator(generator Generator) Option {
	return func(s *Service) {
		s.generator = generator
	}
}

// WithTriviaCache enables caching of trivia answers.
func WithTriviaCache(cache TriviaCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithTriviaSettings overrides trivia request parameters. An empty model and
// non-positive token or timeout values keep defaults; temperature always applies.
func WithTriviaSettings(settings TriviaSettings) Option {
	return func(s *Service) {
		if settings.Model != "" {
			s.trivia.Model = settings.Model
		}
		if settings.MaxTokens > 0 {
			s.trivia.MaxTokens = settings.MaxTokens
		}
		s.trivia.Temperature = settings.Temperature
		if settings.Timeout > 0 {
			s.trivia.Timeout = settings.Timeout
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRand returns a PCG-backed source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New constructs a Service over store.
func New(store *catalog.Store, opts ...Option) *Service {
	if store == nil {
		store = catalog.New()
	}
	s := &Service{
		store:  store,
		trivia: DefaultTriviaSettings(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.logger = logging.NewComponentLogger(s.logger, "query")
	return s
}

// Store returns the catalog the service reads.
func (s *Service) Store() *catalog.Store {
	return s.store
}

func (s *Service) observe(operation, outcome string, started time.Time) {
	elapsed := time.Since(started)
	metrics.RecordQuery(operation, outcome, elapsed)
	s.logger.Debug("query served",
		logging.String(logging.FieldOperation, operation),
		logging.String("outcome", outcome),
		logging.Duration("elapsed", elapsed),
	)
}
