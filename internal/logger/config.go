package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config selects the handler, level and base attributes of the default logger
type Config struct {
	Level       string
	Format      string
	ServiceName string
	Version     string
	Environment string
	AddSource   bool
}

var presets = map[string]Config{
	EnvDevelopment: {Level: LogLevelDebug, Format: LogFormatText, Version: DefaultVersion, AddSource: true},
	EnvStaging:     {Level: LogLevelInfo, Format: LogFormatJSON, Version: DefaultVersion, AddSource: true},
	EnvProduction:  {Level: LogLevelInfo, Format: LogFormatJSON, Version: ProductionVersion},
}

var envAliases = map[string]string{
	"development": EnvDevelopment,
	"local":       EnvDevelopment,
	"test":        EnvDevelopment,
	"stage":       EnvStaging,
	"production":  EnvProduction,
}

// Preset returns the defaults for an environment. Unknown names get the
// development preset but keep their own name as the environment attribute.
func Preset(environment string) Config {
	name := strings.ToLower(strings.TrimSpace(environment))
	key := name
	if alias, ok := envAliases[name]; ok {
		key = alias
	}
	cfg, ok := presets[key]
	if !ok {
		cfg = presets[EnvDevelopment]
	}
	cfg.ServiceName = DefaultServiceName
	cfg.Environment = name
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}
	return cfg
}

// Override returns c with every non-empty string field of o applied.
// AddSource always comes from c.
func (c Config) Override(o Config) Config {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Level, o.Level)
	set(&c.Format, o.Format)
	set(&c.ServiceName, o.ServiceName)
	set(&c.Version, o.Version)
	set(&c.Environment, o.Environment)
	return c
}

// ParseLevel accepts the slog level names, offsets such as "warn+2", and
// "warning" as an alias of warn
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, LogLevelWarning) {
		s = LogLevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf(ErrMsgInvalidLevel, s, err)
	}
	return lvl, nil
}

// LogLevel is the parsed Level, falling back to info when it does not parse
func (c Config) LogLevel() slog.Level {
	lvl, _ := ParseLevel(c.Level)
	return lvl
}

func (c Config) IsJSON() bool {
	return strings.EqualFold(c.Format, LogFormatJSON)
}

// BaseAttributes are attached to every record
func (c Config) BaseAttributes() []slog.Attr {
	return []slog.Attr{
		slog.String(AttrKeyService, c.ServiceName),
		slog.String(AttrKeyVersion, c.Version),
		slog.String(AttrKeyEnvironment, c.Environment),
	}
}
