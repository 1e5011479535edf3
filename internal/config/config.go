package config

import (
	"path/filepath"
	"time"
)

// Paths contains input, output, and runtime directory configuration.
type Paths struct {
	MetadataCSV string `toml:"metadata_csv"`
	CreditsCSV  string `toml:"credits_csv"`
	Dataset     string `toml:"dataset"`
	LogDir      string `toml:"log_dir"`
	CacheDir    string `toml:"cache_dir"`
	APIBind     string `toml:"api_bind"`
}

// LLM contains connection settings for the trivia text generator.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RetryAttempts  int     `toml:"retry_attempts"`
}

// Trivia contains configuration for the trivia answer cache.
type Trivia struct {
	CacheEnabled  bool `toml:"cache_enabled"`
	CacheTTLHours int  `toml:"cache_ttl_hours"`
}

// Recommend contains configuration for recommendation sampling.
type Recommend struct {
	// Seed fixes the random source when non-zero. Zero means a fresh seed per process.
	Seed uint64 `toml:"seed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cinephile.
//
// Configuration sections by subsystem:
//   - Paths: pipeline inputs, the persisted dataset, runtime directories, API bind address
//   - LLM: trivia text generation endpoint and sampling settings
//   - Trivia: optional SQLite answer cache
//   - Recommend: random source seeding
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	LLM       LLM       `toml:"llm"`
	Trivia    Trivia    `toml:"trivia"`
	Recommend Recommend `toml:"recommend"`
	Logging   Logging   `toml:"logging"`
}

// TriviaCachePath returns the SQLite database holding cached trivia answers.
func (c *Config) TriviaCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "trivia.db")
}

// TriviaCacheTTL returns how long cached trivia answers stay valid.
func (c *Config) TriviaCacheTTL() time.Duration {
	return time.Duration(c.Trivia.CacheTTLHours) * time.Hour
}
