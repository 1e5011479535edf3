package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"cinephile/internal/catalog"
	"cinephile/internal/config"
	"cinephile/internal/logging"
	"cinephile/internal/metrics"
	"cinephile/internal/query"
	"cinephile/internal/services"
	"cinephile/internal/services/llm"
	"cinephile/internal/triviacache"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// openCatalog loads the configured dataset. With allowEmpty a missing dataset
// yields an empty catalog and a warning instead of an error.
func (c *commandContext) openCatalog(allowEmpty bool) (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg.Paths.Dataset)
	switch {
	case err == nil:
	case allowEmpty && errors.Is(err, services.ErrNotFound):
		logging.WarnWithContext(logger, "dataset missing; serving an empty catalog", "catalog_empty",
			logging.String("path", cfg.Paths.Dataset),
			logging.String(logging.FieldErrorHint, "run `cinephile prep` to build the dataset"),
			logging.String(logging.FieldImpact, "every lookup reports no match"),
		)
		store = catalog.New()
	default:
		return nil, err
	}
	metrics.SetCatalogRecords(store.Len())
	logger.Debug("catalog loaded",
		logging.String(logging.FieldEventType, "catalog_loaded"),
		logging.String("path", cfg.Paths.Dataset),
		logging.Int("records", store.Len()),
	)
	return store, nil
}

// queryEnv bundles a query service with the resources backing it.
type queryEnv struct {
	svc   *query.Service
	llm   *llm.Client
	cache *triviacache.Store
}

func (e *queryEnv) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// newQueryEnv wires the query service over store. A zero seed falls back to
// the configured recommend.seed.
func (c *commandContext) newQueryEnv(store *catalog.Store, seed uint64) (*queryEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	settings := cfg.LLM
	client := llm.NewClient(llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		Referer:        settings.Referer,
		Title:          settings.Title,
		TimeoutSeconds: settings.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(settings.RetryAttempts))

	env := &queryEnv{llm: client}
	opts := []query.Option{
		query.WithLogger(logger),
		query.WithGenerator(client),
		query.WithTriviaSettings(query.TriviaSettings{
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
			Timeout:     time.Duration(settings.TimeoutSeconds) * time.Second,
		}),
	}
	if seed == 0 {
		seed = cfg.Recommend.Seed
	}
	opts = append(opts, query.WithSeed(seed))

	if cfg.Trivia.CacheEnabled {
		cache, err := triviacache.Open(cfg.TriviaCachePath(), cfg.TriviaCacheTTL())
		if err != nil {
			logging.WarnWithContext(logger, "trivia cache unavailable", "trivia_cache_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, fmt.Sprintf("check permissions on %s", cfg.TriviaCachePath())),
				logging.String(logging.FieldImpact, "trivia answers are generated on every request"),
			)
		} else {
			env.cache = cache
			opts = append(opts, query.WithTriviaCache(cache))
		}
	}

	env.svc = query.New(store, opts...)
	return env, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
