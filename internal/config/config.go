package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TABLEBOT_LOG_LEVEL.
const EnvPrefix = "TABLEBOT"

// ErrMissingToken is returned when a command needs the booking API but no
// token is configured.
var ErrMissingToken = errors.New("booking API token is not set (BOOKING_API_TOKEN)")

// Config is the full runtime configuration.
type Config struct {
	API   APIConfig   `mapstructure:"api"`
	Redis RedisConfig `mapstructure:"redis"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	MCP   MCPConfig   `mapstructure:"mcp"`
	Mock  MockConfig  `mapstructure:"mock"`
	Log   LogConfig   `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Token              string        `mapstructure:"token"`
	Restaurant         string        `mapstructure:"restaurant"`
	Channel            string        `mapstructure:"channel"`
	CancellationReason int           `mapstructure:"cancellation_reason"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Retries            int           `mapstructure:"retries"`
	Backoff            time.Duration `mapstructure:"backoff"`
	Breaker            BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the circuit breaker around the booking API.
// Zero Failures disables it.
type BreakerConfig struct {
	Failures    uint32        `mapstructure:"failures"`
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RedisConfig selects the shared session store. An empty URL keeps
// sessions in process memory.
type RedisConfig struct {
	URL    string        `mapstructure:"url"`
	TTL    time.Duration `mapstructure:"ttl"`
	Prefix string        `mapstructure:"prefix"`
	// EncryptionKey is a base64 AES-256 key. When set, sessions are
	// sealed before they reach the store.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys are retired keys still accepted for reading.
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateBurst      int      `mapstructure:"rate_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MCPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MockConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8547")
	v.SetDefault("api.token", "")
	v.SetDefault("api.restaurant", "TheHungryUnicorn")
	v.SetDefault("api.channel", "ONLINE")
	v.SetDefault("api.cancellation_reason", 1)
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.retries", 3)
	v.SetDefault("api.backoff", 300*time.Millisecond)
	v.SetDefault("api.breaker.failures", 5)
	v.SetDefault("api.breaker.max_requests", 1)
	v.SetDefault("api.breaker.interval", time.Minute)
	v.SetDefault("api.breaker.timeout", 30*time.Second)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("redis.prefix", "tablebot:session:")
	v.SetDefault("redis.encryption_key", "")
	v.SetDefault("redis.fallback_keys", []string{})

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.rate_limit", 5.0)
	v.SetDefault("http.rate_burst", 10)
	v.SetDefault("http.allowed_origins", []string{})

	v.SetDefault("mcp.addr", ":8081")
	v.SetDefault("mock.addr", ":8547")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, tablebot.yaml is
	// looked up in the working directory and is optional.
	ConfigFile string
	// EnvFile is an explicit dotenv file. When empty, .env is loaded if
	// present.
	EnvFile string
}

// Load reads configuration from, in increasing precedence: defaults, the
// YAML file, environment variables, and flags already bound on v.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The booking API variables keep their conventional unprefixed names.
	_ = v.BindEnv("api.base_url", EnvPrefix+"_API_BASE_URL", "BOOKING_API_BASE_URL")
	_ = v.BindEnv("api.token", EnvPrefix+"_API_TOKEN", "BOOKING_API_TOKEN")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("tablebot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative, got %d", c.API.Retries)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative, got %v", c.HTTP.RateLimit)
	}
	return nil
}

// RequireToken returns ErrMissingToken when no API token is configured.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.API.Token) == "" {
		return ErrMissingToken
	}
	return nil
}
