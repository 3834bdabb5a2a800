// Package config handles application configuration loading from environment
// variables. A .env file in the working directory is read first when present;
// real environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"sitegen/internal/ai"
)

// defaultDBPassword is refused in production.
const defaultDBPassword = "changeme"

// ProviderSettings holds one LLM backend's credentials, read under a
// per-provider prefix (GEMINI_API_KEY, OPENAI_MODEL, ...).
type ProviderSettings struct {
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL"`
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT"`
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host            string        `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"APP_PORT" envDefault:"8080"`
	Env             string        `env:"APP_ENV" envDefault:"development"` // development, production, testing
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// PostgreSQL connection. DATABASE_URL wins over the POSTGRES_* parts.
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort      string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser      string `env:"POSTGRES_USER" envDefault:"sitegen"`
	DBPassword  string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName      string `env:"POSTGRES_DB" envDefault:"sitegen"`

	// Valkey (Redis-compatible) preview cache. Empty host disables it.
	ValkeyHost      string        `env:"VALKEY_HOST"`
	ValkeyPort      string        `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword  string        `env:"VALKEY_PASSWORD"`
	PreviewCacheTTL time.Duration `env:"PREVIEW_CACHE_TTL" envDefault:"5m"`

	// Generation chain
	PrimaryProvider   string  `env:"PRIMARY_PROVIDER" envDefault:"gemini"`
	SecondaryProvider string  `env:"SECONDARY_PROVIDER" envDefault:"huggingface"`
	Temperature       float64 `env:"GEN_TEMPERATURE" envDefault:"0.7"`
	TopP              float64 `env:"GEN_TOP_P" envDefault:"0.9"`
	MaxTokens         int     `env:"GEN_MAX_TOKENS" envDefault:"4096"`

	Gemini  ProviderSettings `envPrefix:"GEMINI_"`
	OpenAI  ProviderSettings `envPrefix:"OPENAI_"`
	Claude  ProviderSettings `envPrefix:"CLAUDE_"`
	Mistral ProviderSettings `envPrefix:"MISTRAL_"`

	// Hugging Face Inference API uses its own variable names.
	HFAPIToken string        `env:"HF_API_TOKEN"`
	HFModel    string        `env:"HF_MODEL" envDefault:"mistralai/Mistral-7B-Instruct"`
	HFAPIURL   string        `env:"HF_API_URL" envDefault:"https://api-inference.huggingface.co/models"`
	HFTimeout  time.Duration `env:"HF_TIMEOUT" envDefault:"90s"`

	ModerationEnabled bool `env:"MODERATION_ENABLED" envDefault:"false"`

	// HTTP surface
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"0.5"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"5"`
	// Reverse proxies in front of the server that append to X-Forwarded-For.
	// 0 limits by the TCP peer address.
	TrustedProxyHops int `env:"TRUSTED_PROXY_HOPS" envDefault:"0"`

	// S3-compatible storage for published sites. Optional.
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET" envDefault:"sitegen-sites"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Tracing
	OTELEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"sitegen"`
	OTELSampleRate  float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text or json
	LogFile   string `env:"LOG_FILE"`                     // rotated with lumberjack when set
}

// Load reads the optional .env file, then the process environment.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config dotenv: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom builds a Config from the given variables only, ignoring the
// process environment and any .env file.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PrimaryProvider == c.SecondaryProvider {
		return fmt.Errorf("PRIMARY_PROVIDER and SECONDARY_PROVIDER must differ (both %q)", c.PrimaryProvider)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.Env == "production" && c.DatabaseURL == "" && c.DBPassword == defaultDBPassword {
		return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyEnabled reports whether a preview cache should be connected.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// StorageEnabled reports whether publishing to S3 is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// ProviderConfigs maps each registry name to its provider settings. Every
// provider shares the generation sampling options.
func (c *Config) ProviderConfigs() map[string]ai.ProviderConfig {
	opts := ai.Options{Temperature: c.Temperature, TopP: c.TopP, MaxTokens: c.MaxTokens}
	conv := func(s ProviderSettings) ai.ProviderConfig {
		return ai.ProviderConfig{APIKey: s.APIKey, Model: s.Model, BaseURL: s.BaseURL, Timeout: s.Timeout, Options: opts}
	}
	return map[string]ai.ProviderConfig{
		"gemini":  conv(c.Gemini),
		"openai":  conv(c.OpenAI),
		"claude":  conv(c.Claude),
		"mistral": conv(c.Mistral),
		"huggingface": {
			APIKey:  c.HFAPIToken,
			Model:   c.HFModel,
			BaseURL: c.HFAPIURL,
			Timeout: c.HFTimeout,
			Options: opts,
		},
	}
}

// LogFields returns a redacted summary suitable for a startup log line.
func (c *Config) LogFields() []any {
	return []any{
		"env", c.Env,
		"addr", c.Addr(),
		"primary", c.PrimaryProvider,
		"secondary", c.SecondaryProvider,
		"valkey", c.ValkeyEnabled(),
		"storage", c.StorageEnabled(),
		"cors_origins", strings.Join(c.CORSOrigins, ","),
	}
}
