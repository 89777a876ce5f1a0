package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileEnv names the environment variable pointing at an optional TOML file.
const FileEnv = "ORCAMENTO_CONFIG"

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Budget API
	FinanceAPIURL  string
	RequestTimeout time.Duration

	// AMQP, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Submission journal, disabled when JournalPath is empty
	JournalPath string
}

// fileConfig is the TOML layout of the optional config file.
type fileConfig struct {
	Server struct {
		Port     string `toml:"port"`
		LogLevel string `toml:"log_level"`
	} `toml:"server"`
	Finance struct {
		URL     string `toml:"url"`
		Timeout string `toml:"timeout"`
	} `toml:"finance"`
	AMQP struct {
		URL        string `toml:"url"`
		Exchange   string `toml:"exchange"`
		RoutingKey string `toml:"routing_key"`
	} `toml:"amqp"`
	Journal struct {
		Path string `toml:"path"`
	} `toml:"journal"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:           "8090",
		LogLevel:       "info",
		FinanceAPIURL:  "http://localhost:8080",
		RequestTimeout: 10 * time.Second,
		AMQPExchange:   "orcamento",
		AMQPRoutingKey: "expense.created",
	}
}

// Load builds the configuration from defaults, the file named by
// ORCAMENTO_CONFIG (if any) and the environment, later sources winning.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv(FileEnv))
}

// LoadFrom is Load with an explicit config file; an empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile overlays the non-empty values of a TOML file.
func (c *Config) LoadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&c.Port, fc.Server.Port)
	setString(&c.LogLevel, fc.Server.LogLevel)
	setString(&c.FinanceAPIURL, fc.Finance.URL)
	if fc.Finance.Timeout != "" {
		d, err := time.ParseDuration(fc.Finance.Timeout)
		if err != nil {
			return fmt.Errorf("invalid finance.timeout %q: %w", fc.Finance.Timeout, err)
		}
		c.RequestTimeout = d
	}
	setString(&c.AMQPURL, fc.AMQP.URL)
	setString(&c.AMQPExchange, fc.AMQP.Exchange)
	setString(&c.AMQPRoutingKey, fc.AMQP.RoutingKey)
	setString(&c.JournalPath, fc.Journal.Path)
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.FinanceAPIURL = getEnv("FINANCE_API_URL", c.FinanceAPIURL)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPRoutingKey = getEnv("AMQP_ROUTING_KEY", c.AMQPRoutingKey)
	c.JournalPath = getEnv("JOURNAL_PATH", c.JournalPath)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.FinanceAPIURL == "" {
		errors = append(errors, "finance API URL cannot be empty")
	} else if u, err := url.Parse(c.FinanceAPIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid finance API URL '%s': %v", c.FinanceAPIURL, err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid finance API URL '%s': must be an absolute http(s) URL", c.FinanceAPIURL))
	}

	if c.RequestTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 100ms", c.RequestTimeout))
	} else if c.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 5 minutes", c.RequestTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
