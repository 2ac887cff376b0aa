package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tickchart/render"
	"tickchart/utils/pointer"
)

// Environment variables that override the file.
const (
	EnvAPIBase  = "TICKCHART_API_BASE"
	EnvAddr     = "TICKCHART_ADDR"
	EnvWSAddr   = "TICKCHART_WS_ADDR"
	EnvLogLevel = "TICKCHART_LOG_LEVEL"
)

var ErrInvalid = errors.New("invalid config")

// Config is the complete tickchart configuration.
type Config struct {
	Source SourceConfig  `json:"source" yaml:"source"`
	Server ServerConfig  `json:"server" yaml:"server"`
	Chart  render.Config `json:"chart" yaml:"chart"`
	Log    LogConfig     `json:"log" yaml:"log"`
}

// SourceConfig points at the history API.
type SourceConfig struct {
	BaseURL         string `json:"base_url" yaml:"base_url"`
	RetryCount      int    `json:"retry_count" yaml:"retry_count"`
	Timeout         string `json:"timeout" yaml:"timeout"`                   // e.g. "10s"
	RefreshInterval string `json:"refresh_interval" yaml:"refresh_interval"` // "0" disables refreshes
	CacheTTL        string `json:"cache_ttl" yaml:"cache_ttl"`
	// Preload lists symbols fetched at startup, as "SYMBOL" or "SYMBOL:candle".
	Preload []string `json:"preload,omitempty" yaml:"preload,omitempty"`
}

type ServerConfig struct {
	Addr   string `json:"addr" yaml:"addr"`       // HTTP API
	WSAddr string `json:"ws_addr" yaml:"ws_addr"` // websocket sessions
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:         "http://localhost:9000",
			RetryCount:      2,
			Timeout:         "10s",
			RefreshInterval: "1m",
			CacheTTL:        "1m",
		},
		Server: ServerConfig{
			Addr:   ":8080",
			WSAddr: ":8081",
		},
		Chart: render.Config{
			Width:      pointer.Of(render.DefaultWidth),
			Height:     pointer.Of(render.DefaultHeight),
			EnableZoom: pointer.Of(true),
		},
		Log: LogConfig{Level: "info"},
	}
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}

func (s SourceConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("source.timeout", s.Timeout)
}

func (s SourceConfig) RefreshDuration() (time.Duration, error) {
	return parseDuration("source.refresh_interval", s.RefreshInterval)
}

func (s SourceConfig) CacheDuration() (time.Duration, error) {
	return parseDuration("source.cache_ttl", s.CacheTTL)
}

// Load reads path, or starts from Default when path is empty, then applies a .env file
// in the working directory and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	_ = godotenv.Load()
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml and .yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the TICKCHART_* variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIBase)); v != "" {
		c.Source.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvWSAddr)); v != "" {
		c.Server.WSAddr = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source.base_url is required"))
	} else if u, err := url.Parse(c.Source.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("source.base_url %q is not an absolute URL", c.Source.BaseURL))
	}
	if c.Source.RetryCount < 0 {
		errs = append(errs, errors.New("source.retry_count must not be negative"))
	}
	for _, parse := range []func() (time.Duration, error){
		c.Source.TimeoutDuration, c.Source.RefreshDuration, c.Source.CacheDuration,
	} {
		if _, err := parse(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.WSAddr == "" {
		errs = append(errs, errors.New("server.ws_addr is required"))
	}
	if c.Server.Addr != "" && c.Server.Addr == c.Server.WSAddr {
		errs = append(errs, errors.New("server.addr and server.ws_addr must differ"))
	}
	if err := c.Chart.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chart: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
