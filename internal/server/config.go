// Package server provides configuration helpers that define runtime defaults
// and validation for the room relay.
package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	defaultPort              = ":8080"
	defaultOrigin            = "http://localhost:8080"
	defaultMaxMessageSize    = 1 << 20
	defaultSendBufferSize    = 256
	defaultLogLevel          = "info"
	defaultShutdownTimeout   = 10 * time.Second
	defaultNATSSubjectPrefix = "roomchat"
)

// Config holds the server configuration settings including security controls.
type Config struct {
	Port              string        `env:"SERVER_PORT,default=:8080"`
	RawOrigins        string        `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	MaxMessageSize    int64         `env:"MAX_MESSAGE_SIZE,default=1048576"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE,default=256"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	NATSURL           string        `env:"NATS_URL"`
	NATSSubjectPrefix string        `env:"NATS_SUBJECT_PREFIX,default=roomchat"`

	// AllowedOrigins is parsed from RawOrigins; "*" allows every origin.
	AllowedOrigins []string
}

func defaultConfig() Config {
	return Config{
		Port:              defaultPort,
		AllowedOrigins:    []string{defaultOrigin},
		MaxMessageSize:    defaultMaxMessageSize,
		SendBufferSize:    defaultSendBufferSize,
		LogLevel:          defaultLogLevel,
		ShutdownTimeout:   defaultShutdownTimeout,
		NATSSubjectPrefix: defaultNATSSubjectPrefix,
	}
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables, after loading
// any .env file found in the working directory. Unset or empty variables take
// their defaults, out-of-range values are reset to defaults, and a value that
// cannot be parsed is an error.
func NewConfigFromEnv() (*Config, error) {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	es = lo.OmitBy(es, func(_ string, value string) bool {
		return strings.TrimSpace(value) == ""
	})

	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	cfg.AllowedOrigins = parseOrigins(cfg.RawOrigins)

	sanitized := sanitizeConfig(cfg)
	return &sanitized, nil
}

// sanitizeConfig replaces unusable values with defaults. Invalid origins are
// dropped from the allow-list, and an allow-list left empty falls back to the
// default origin.
func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBufferSize
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.NATSSubjectPrefix == "" {
		cfg.NATSSubjectPrefix = defaultNATSSubjectPrefix
	}

	cfg.AllowedOrigins = lo.Filter(cfg.AllowedOrigins, func(origin string, _ int) bool {
		if origin == "*" {
			return true
		}
		_, ok := normalizeOrigin(origin)
		return ok
	})
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{defaultOrigin}
	}
	return cfg
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
