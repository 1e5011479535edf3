package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"cinephile/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("CINEPHILE_DATASET", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDataset := filepath.Join(tempHome, ".local", "share", "cinephile", "movies_simple.csv")
	if cfg.Paths.Dataset != wantDataset {
		t.Fatalf("unexpected dataset: got %q want %q", cfg.Paths.Dataset, wantDataset)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7491" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Fatalf("expected API key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 300 {
		t.Fatalf("unexpected max tokens: %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", cfg.LLM.Temperature)
	}
	if cfg.Trivia.CacheEnabled {
		t.Fatal("expected trivia cache disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.TriviaCacheTTL() != 30*24*time.Hour {
		t.Fatalf("unexpected trivia ttl: %s", cfg.TriviaCacheTTL())
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CINEPHILE_DATASET", "")

	configPath := filepath.Join(tempHome, "config.toml")
	payload := struct {
		Paths struct {
			MetadataCSV string `toml:"metadata_csv"`
			CreditsCSV  string `toml:"credits_csv"`
			Dataset     string `toml:"dataset"`
			APIBind     string `toml:"api_bind"`
		} `toml:"paths"`
		LLM struct {
			APIKey        string `toml:"api_key"`
			Model         string `toml:"model"`
			RetryAttempts int    `toml:"retry_attempts"`
		} `toml:"llm"`
		Recommend struct {
			Seed uint64 `toml:"seed"`
		} `toml:"recommend"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}{}
	payload.Paths.MetadataCSV = "~/raw/meta.csv"
	payload.Paths.CreditsCSV = "~/raw/credits.csv"
	payload.Paths.Dataset = "~/data/simple.csv"
	payload.Paths.APIBind = "0.0.0.0:9000"
	payload.LLM.APIKey = "file-key"
	payload.LLM.Model = "custom-model"
	payload.LLM.RetryAttempts = 3
	payload.Recommend.Seed = 42
	payload.Logging.Format = "JSON"
	payload.Logging.Level = "debug"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.MetadataCSV != filepath.Join(tempHome, "raw", "meta.csv") {
		t.Fatalf("unexpected metadata path: %q", cfg.Paths.MetadataCSV)
	}
	if cfg.Paths.Dataset != filepath.Join(tempHome, "data", "simple.csv") {
		t.Fatalf("unexpected dataset: %q", cfg.Paths.Dataset)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("expected file API key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "custom-model" || cfg.LLM.RetryAttempts != 3 {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Recommend.Seed != 42 {
		t.Fatalf("unexpected seed: %d", cfg.Recommend.Seed)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestDatasetEnvOverridesConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	override := filepath.Join(tempHome, "override.csv")
	t.Setenv("CINEPHILE_DATASET", override)

	cfg, _, _, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Dataset != override {
		t.Fatalf("expected dataset from env, got %q", cfg.Paths.Dataset)
	}
}

func TestOpenRouterKeyFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")
	t.Setenv("OPENROUTER_API_KEY", "router-key")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "router-key" {
		t.Fatalf("expected OpenRouter key fallback, got %q", cfg.LLM.APIKey)
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.Dataset = filepath.Join(base, "data", "movies.csv")
	cfg.Trivia.CacheEnabled = true

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.CacheDir, filepath.Dir(cfg.Paths.Dataset)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be directory", dir)
		}
	}
	if cfg.TriviaCachePath() != filepath.Join(base, "cache", "trivia.db") {
		t.Fatalf("unexpected trivia cache path: %q", cfg.TriviaCachePath())
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(data)
	for _, section := range []string{"[paths]", "[llm]", "[trivia]", "[recommend]", "[logging]"} {
		if !strings.Contains(content, section) {
			t.Fatalf("sample config missing %s", section)
		}
	}

	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if decoded.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected sample model: %q", decoded.LLM.Model)
	}
}

func TestCreateSampleKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("# mine\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	err := config.CreateSample(path, false)
	if !errors.Is(err, config.ErrSampleExists) {
		t.Fatalf("expected ErrSampleExists, got %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "# mine\n" {
		t.Fatalf("existing config was modified: %q", data)
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Fatalf("overwrite returned error: %v", err)
	}
	if data, _ := os.ReadFile(path); !strings.Contains(string(data), "[paths]") {
		t.Fatalf("expected sample after overwrite, got %q", data)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\ndatset = \"typo.csv\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/data/movies.csv")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "data", "movies.csv") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("empty path must stay empty, got %q", got)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Dataset = "/tmp/movies.csv"
	cfg.Paths.MetadataCSV = "/tmp/meta.csv"
	cfg.Paths.CreditsCSV = "/tmp/credits.csv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"same inputs", func(c *config.Config) { c.Paths.CreditsCSV = c.Paths.MetadataCSV }},
		{"dataset overwrites input", func(c *config.Config) { c.Paths.Dataset = c.Paths.MetadataCSV }},
		{"bad bind", func(c *config.Config) { c.Paths.APIBind = "nope" }},
		{"temperature", func(c *config.Config) { c.LLM.Temperature = 3 }},
		{"max tokens", func(c *config.Config) { c.LLM.MaxTokens = 0 }},
		{"level", func(c *config.Config) { c.Logging.Level = "verbose" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			broken := cfg
			tc.mutate(&broken)
			if err := broken.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
