package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	SocketURL   string `yaml:"socket_url"`
	APIURL      string `yaml:"api_url"`
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`
	GameID      string `yaml:"game_id"`
	Token       string `yaml:"token"`

	OutboxSize  int           `yaml:"outbox_size"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	RPCTimeout  time.Duration `yaml:"rpc_timeout"`
}

func Default() Config {
	return Config{
		SocketURL:   "ws://localhost:8087/ws",
		APIURL:      "http://localhost:8001/api",
		HTTPAddr:    ":8080",
		LogLevel:    "info",
		OutboxSize:  8,
		ReadTimeout: 60 * time.Second,
		RPCTimeout:  10 * time.Second,
	}
}

var envOverrides = []struct {
	key string
	dst func(*Config) *string
}{
	{"WOOGLES_SOCKET_URL", func(c *Config) *string { return &c.SocketURL }},
	{"WOOGLES_API_URL", func(c *Config) *string { return &c.APIURL }},
	{"WOOGLES_HTTP_ADDR", func(c *Config) *string { return &c.HTTPAddr }},
	{"WOOGLES_DATABASE_URL", func(c *Config) *string { return &c.DatabaseURL }},
	{"WOOGLES_LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }},
	{"WOOGLES_GAME_ID", func(c *Config) *string { return &c.GameID }},
	{"WOOGLES_TOKEN", func(c *Config) *string { return &c.Token }},
}

// Load reads .env (if any), then the YAML file at path (if given), then
// environment overrides, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst(&cfg) = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	for name, raw := range map[string]string{"socket_url": c.SocketURL, "api_url": c.APIURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s %q", ErrInvalidConfig, name, raw)
		}
	}
	if c.OutboxSize <= 0 {
		return fmt.Errorf("%w: outbox_size must be positive", ErrInvalidConfig)
	}
	return nil
}
