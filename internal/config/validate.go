package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable. The LLM API key is not
// required here: trivia reports a missing credential as text instead of
// refusing to start.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Dataset) == "" {
		return errors.New("paths.dataset must be set")
	}
	if c.Paths.MetadataCSV == c.Paths.CreditsCSV {
		return errors.New("paths.metadata_csv and paths.credits_csv must differ")
	}
	if c.Paths.Dataset == c.Paths.MetadataCSV || c.Paths.Dataset == c.Paths.CreditsCSV {
		return errors.New("paths.dataset must not overwrite a pipeline input")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return ensurePositiveMap(map[string]int{
		"llm.max_tokens":      c.LLM.MaxTokens,
		"llm.timeout_seconds": c.LLM.TimeoutSeconds,
		"llm.retry_attempts":  c.LLM.RetryAttempts,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
