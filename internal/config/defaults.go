package config

const (
	defaultConfigPath        = "~/.config/emojiplot/config.toml"
	defaultLogDir            = "~/.local/share/emojiplot/logs"
	artifactSubdir           = "cache"
	lockSubdir               = ".locks"
	sqliteFileName           = "artifacts.db"
	defaultCacheBackend      = BackendFile
	defaultLockRetryMillis   = 250
	defaultProvider          = ProviderOpenRouter
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "openai/gpt-4o-mini"
	defaultLLMTitle          = "Emoji Plot"
	defaultLLMTimeoutSeconds = 90
	defaultLLMRetryAttempts  = 3
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultMinEmoji          = 30
	defaultMinDistinctEmoji  = 5
	defaultMinPlotBeats      = 12
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Supported cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Supported text service providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Cache: Cache{
			Backend:         defaultCacheBackend,
			LockGeneration:  true,
			LockRetryMillis: defaultLockRetryMillis,
		},
		LLM: LLM{
			Provider:       defaultProvider,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Gemini: Gemini{
			Model: defaultGeminiModel,
		},
		Generation: Generation{
			MinEmoji:         defaultMinEmoji,
			MinDistinctEmoji: defaultMinDistinctEmoji,
			MinPlotBeats:     defaultMinPlotBeats,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
