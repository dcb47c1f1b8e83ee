package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"webbrowser/internal/log"
)

const (
	APP_NAME         = "APP_NAME"
	APP_VERSION      = "APP_VERSION"
	DEBUG            = "DEBUG"
	HOST             = "HOST"
	PORT             = "PORT"
	WORKERS          = "WORKERS"
	RELOAD           = "RELOAD"
	LOG_LEVEL        = "LOG_LEVEL"
	USER_AGENT       = "USER_AGENT"
	REQUEST_TIMEOUT  = "REQUEST_TIMEOUT"
	MAX_RETRIES      = "MAX_RETRIES"
	METRICS_ADDR     = "METRICS_ADDR"
	PPROF_ADDR       = "PPROF_ADDR"
	RATE_LIMIT_RPS   = "RATE_LIMIT_RPS"
	RATE_LIMIT_BURST = "RATE_LIMIT_BURST"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultEnvFile is read when present; its absence is not an error.
const DefaultEnvFile = ".env"

type Config struct {
	AppName        string  `mapstructure:"APP_NAME"`
	AppVersion     string  `mapstructure:"APP_VERSION"`
	Debug          bool    `mapstructure:"DEBUG"`
	Host           string  `mapstructure:"HOST"`
	Port           int     `mapstructure:"PORT"`
	Workers        int     `mapstructure:"WORKERS"`
	Reload         bool    `mapstructure:"RELOAD"`
	LogLevel       string  `mapstructure:"LOG_LEVEL"`
	UserAgent      string  `mapstructure:"USER_AGENT"`
	RequestTimeout int     `mapstructure:"REQUEST_TIMEOUT"`
	MaxRetries     int     `mapstructure:"MAX_RETRIES"` // accepted, not used by the fetch path
	MetricsAddr    string  `mapstructure:"METRICS_ADDR"`
	PprofAddr      string  `mapstructure:"PPROF_ADDR"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

// Load reads settings from the env file at path (if any) and the process
// environment, environment winning.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")

		if err := v.ReadInConfig(); err != nil {
			log.Logger.Debug("env file not loaded, using environment only",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	v.AutomaticEnv()

	v.SetDefault(APP_NAME, "web-browser-mcp")
	v.SetDefault(APP_VERSION, "0.2.0")
	v.SetDefault(DEBUG, false)
	v.SetDefault(HOST, "0.0.0.0")
	v.SetDefault(PORT, 8000)
	v.SetDefault(WORKERS, 1)
	v.SetDefault(RELOAD, false)
	v.SetDefault(LOG_LEVEL, "info")
	v.SetDefault(USER_AGENT, DefaultUserAgent)
	v.SetDefault(REQUEST_TIMEOUT, 30)
	v.SetDefault(MAX_RETRIES, 3)
	v.SetDefault(METRICS_ADDR, ":8081")
	v.SetDefault(PPROF_ADDR, ":6060")
	v.SetDefault(RATE_LIMIT_RPS, 0)
	v.SetDefault(RATE_LIMIT_BURST, 3)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be a positive number of seconds")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.MaxRetries < 0 {
		return errors.New("MAX_RETRIES must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Timeout is the whole-request bound applied to each upstream fetch.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Addr is the listen address of the HTTP front end.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
