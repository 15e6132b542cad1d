package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"costmanager/internal/core"
)

const (
	DefaultRatesURL = "https://api.exchangerate-api.com/v4/latest/USD"
	ConfigFileEnv   = "COSTS_CONFIG_FILE"
)

type Config struct {
	// HTTP Server
	Port               string `toml:"port"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`

	// Cost store
	DataBackend string `toml:"data_backend"`
	DBDir       string `toml:"db_dir"`
	DBName      string `toml:"db_name"`
	DBVersion   int    `toml:"db_version"`

	// Exchange rates
	DefaultRatesURL   string        `toml:"default_rates_url"`
	RatesFetchTimeout time.Duration `toml:"rates_fetch_timeout"`
	DefaultCurrency   string        `toml:"default_currency"`

	// AMQP, optional
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	fileErr error
}

// Defaults returns the configuration used when neither a config file nor
// the environment sets a value.
func Defaults() Config {
	return Config{
		Port:               "8081",
		RateLimitPerMinute: 60,
		DataBackend:        "sqlite",
		DBDir:              "./data",
		DBName:             "costs",
		DBVersion:          1,
		DefaultRatesURL:    DefaultRatesURL,
		RatesFetchTimeout:  10 * time.Second,
		DefaultCurrency:    string(core.USD),
		AMQPExchange:       "costs",
		AMQPQueue:          "cost_recorded",
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// COSTS_CONFIG_FILE (if any), then environment variables. A file that cannot
// be read is reported by Validate.
func Load() *Config {
	base := Defaults()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := decodeFile(path, &base); err != nil {
			base.fileErr = err
		}
	}

	cfg := &Config{
		Port:               getEnv("PORT", base.Port),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", base.RateLimitPerMinute),

		DataBackend: getEnv("DATA_BACKEND", base.DataBackend),
		DBDir:       getEnv("DB_DIR", base.DBDir),
		DBName:      getEnv("DB_NAME", base.DBName),
		DBVersion:   getEnvInt("DB_VERSION", base.DBVersion),

		DefaultRatesURL:   getEnv("DEFAULT_RATES_URL", base.DefaultRatesURL),
		RatesFetchTimeout: getEnvDuration("RATES_FETCH_TIMEOUT", base.RatesFetchTimeout),
		DefaultCurrency:   core.NormalizeCode(getEnv("DEFAULT_CURRENCY", base.DefaultCurrency)),

		AMQPURL:      getEnv("AMQP_URL", base.AMQPURL),
		AMQPExchange: getEnv("AMQP_EXCHANGE", base.AMQPExchange),
		AMQPQueue:    getEnv("AMQP_QUEUE", base.AMQPQueue),

		fileErr: base.fileErr,
	}

	return cfg
}

func decodeFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Currency returns DefaultCurrency as a currency code.
func (c *Config) Currency() core.Currency {
	return core.Currency(c.DefaultCurrency)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.fileErr != nil {
		errors = append(errors, c.fileErr.Error())
	}

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.DBName == "" {
			errors = append(errors, "database name cannot be empty when using sqlite backend")
		}
		if c.DBVersion < 1 {
			errors = append(errors, fmt.Sprintf("invalid database version %d: must be at least 1", c.DBVersion))
		}
	}

	if u, err := url.Parse(c.DefaultRatesURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid default rates URL '%s': must be an absolute http(s) URL", c.DefaultRatesURL))
	}

	if c.RatesFetchTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid rates fetch timeout %v: must be at least 100ms", c.RatesFetchTimeout))
	} else if c.RatesFetchTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid rates fetch timeout %v: must be at most 2m", c.RatesFetchTimeout))
	}

	if !core.Currency(c.DefaultCurrency).IsSupported() {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be one of %v", c.DefaultCurrency, core.SupportedCurrencies))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
