package config

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const (
	ErrMsgParseEnv       = "failed to parse environment: %w"
	ErrMsgMissingAPIKey  = "API_KEY environment variable must be set for security"
	ErrMsgInvalidPort    = "PORT must be between 1 and 65535, got %d"
	ErrMsgInvalidStorage = "STORAGE must be %q or %q, got %q"
	ErrMsgInvalidFormat  = "LOG_FORMAT must be json or text, got %q"
	ErrMsgInvalidRetries = "TRADE_MAX_ATTEMPTS must be positive, got %d"
)
