package config

const (
	defaultMetadataCSV        = "movies_metadata.csv"
	defaultCreditsCSV         = "credits.csv"
	defaultDataset            = "~/.local/share/cinephile/movies_simple.csv"
	defaultLogDir             = "~/.local/share/cinephile/logs"
	defaultCacheDir           = "~/.cache/cinephile"
	defaultAPIBind            = "127.0.0.1:7491"
	defaultLLMBaseURL         = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel           = "gpt-4o-mini"
	defaultLLMMaxTokens       = 300
	defaultLLMTemperature     = 0.2
	defaultLLMTimeoutSeconds  = 30
	defaultLLMRetryAttempts   = 1
	defaultLLMReferer         = "https://github.com/cinephile/cinephile"
	defaultLLMTitle           = "Cinephile Trivia"
	defaultTriviaCacheTTLHour = 24 * 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MetadataCSV: defaultMetadataCSV,
			CreditsCSV:  defaultCreditsCSV,
			Dataset:     defaultDataset,
			LogDir:      defaultLogDir,
			CacheDir:    defaultCacheDir,
			APIBind:     defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			MaxTokens:      defaultLLMMaxTokens,
			Temperature:    defaultLLMTemperature,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Trivia: Trivia{
			CacheTTLHours: defaultTriviaCacheTTLHour,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
