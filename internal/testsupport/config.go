package testsupport

import (
	"path/filepath"
	"testing"

	"cinephile/internal/catalog"
	"cinephile/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.MetadataCSV = filepath.Join(base, "input", "movies_metadata.csv")
	cfgVal.Paths.CreditsCSV = filepath.Join(base, "input", "credits.csv")
	cfgVal.Paths.Dataset = filepath.Join(base, "data", "movies_simple.csv")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.LLM.APIKey = "test"
	cfgVal.Recommend.Seed = 42

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the text-generation API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = key
	}
}

// WithBaseURL points the text-generation client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithTriviaCache enables the trivia cache under the test cache directory.
func WithTriviaCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Trivia.CacheEnabled = true
	}
}

// WithCatalog writes records to the configured dataset path.
func WithCatalog(records ...catalog.MovieRecord) ConfigOption {
	return func(b *configBuilder) {
		WriteCatalog(b.t, b.cfg.Paths.Dataset, records)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
