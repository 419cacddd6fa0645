// Package config provides configuration management for wikidom.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpotapov/go-wikidom"
)

const DefaultAddr = ":8080"

// Config holds the wikidom configuration.
type Config struct {
	Addr      string `yaml:"addr,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`
	Trace     bool   `yaml:"trace,omitempty"`

	// KeepTypeOf and KeepProperty extend the default meta policy prefixes.
	KeepTypeOf   []string `yaml:"keep_typeof,omitempty"`
	KeepProperty []string `yaml:"keep_property,omitempty"`

	// MetaRules are expressions that keep a meta marker as an element when true.
	MetaRules []string `yaml:"meta_rules,omitempty"`
}

// Validate checks that all fields hold valid values.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("WIKIDOM_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("WIKIDOM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WIKIDOM_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("WIKIDOM_TRACE"); v != "" {
		c.Trace, _ = strconv.ParseBool(v)
	}
	// Rules may contain commas, so they are separated by semicolons.
	if v := os.Getenv("WIKIDOM_META_RULES"); v != "" {
		c.MetaRules = splitList(v, ";")
	}
}

func splitList(v, sep string) []string {
	var out []string
	for _, s := range strings.Split(v, sep) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ListenAddr returns Addr or DefaultAddr.
func (c *Config) ListenAddr() string {
	if c.Addr == "" {
		return DefaultAddr
	}
	return c.Addr
}

// SlogLevel parses LogLevel. An empty level is slog.LevelInfo.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return l, nil
}

// Logger returns a logger writing to w with the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	l, err := c.SlogLevel()
	if err != nil {
		l = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: l}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Policy returns the default meta policy extended with the configured prefixes and rules.
func (c *Config) Policy() (*wikidom.MetaPolicy, error) {
	p := wikidom.DefaultMetaPolicy()
	p.TypeOfPrefixes = append(p.TypeOfPrefixes, c.KeepTypeOf...)
	p.PropertyPrefixes = append(p.PropertyPrefixes, c.KeepProperty...)
	return p.WithRules(c.MetaRules...)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wikidom", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".wikidom", "config.yml")
	}

	return filepath.Join(home, ".config", "wikidom", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
// A missing file yields an empty configuration; any other read error is returned.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
