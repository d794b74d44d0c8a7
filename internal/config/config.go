// Package config provides configuration management for crl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/creole-cli/pkg/creole"
)

// Line break mode names accepted in the config file and CRL_LINE_BREAKS.
const (
	LineBreaksBlog = "blog"
	LineBreaksWiki = "wiki"
)

// Config holds the crl configuration.
type Config struct {
	Verbose        int    `yaml:"verbose"`
	LineBreaks     string `yaml:"line_breaks,omitempty"`
	Debug          bool   `yaml:"debug,omitempty"`
	HighlightStyle string `yaml:"highlight_style,omitempty"`
	HighlightURL   string `yaml:"highlight_url,omitempty"`
	HighlightToken string `yaml:"highlight_token,omitempty"`
	OutputFormat   string `yaml:"output_format,omitempty"`
	Jobs           int    `yaml:"jobs,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Verbose:    int(creole.VerboseErrors),
		LineBreaks: LineBreaksBlog,
	}
}

// Validate checks that all fields hold supported values.
func (c *Config) Validate() error {
	if c.Verbose < int(creole.VerboseSilent) || c.Verbose > int(creole.VerboseTrace) {
		return fmt.Errorf("verbose must be 0, 1 or 2, got %d", c.Verbose)
	}

	switch c.LineBreaks {
	case "", LineBreaksBlog, LineBreaksWiki:
	default:
		return fmt.Errorf("line_breaks must be %q or %q, got %q", LineBreaksBlog, LineBreaksWiki, c.LineBreaks)
	}

	if c.HighlightURL != "" && !strings.HasPrefix(c.HighlightURL, "http://") && !strings.HasPrefix(c.HighlightURL, "https://") {
		return errors.New("highlight_url must use http or https")
	}

	if c.Jobs < 0 {
		return errors.New("jobs must not be negative")
	}

	return nil
}

// ConvertOptions maps the configuration onto conversion options.
// Macros, the diagnostic sink and the highlighter are wired by the caller.
func (c *Config) ConvertOptions() creole.ConvertOptions {
	opts := creole.ConvertOptions{
		Verbose: creole.Verbosity(c.Verbose),
		Debug:   c.Debug,
	}
	if c.LineBreaks == LineBreaksWiki {
		opts.LineBreaks = creole.LineBreaksWiki
	}
	return opts
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Values that do not parse are ignored.
func (c *Config) LoadFromEnv() {
	if v, ok := envInt("CRL_VERBOSE"); ok {
		c.Verbose = v
	}
	if v := os.Getenv("CRL_LINE_BREAKS"); v != "" {
		c.LineBreaks = strings.ToLower(v)
	}
	if v := os.Getenv("CRL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
	if v := os.Getenv("CRL_HIGHLIGHT_STYLE"); v != "" {
		c.HighlightStyle = v
	}
	if v := os.Getenv("CRL_HIGHLIGHT_URL"); v != "" {
		c.HighlightURL = v
	}
	if v := os.Getenv("CRL_HIGHLIGHT_TOKEN"); v != "" {
		c.HighlightToken = v
	}
	if v := os.Getenv("CRL_OUTPUT_FORMAT"); v != "" {
		c.OutputFormat = v
	}
	if v, ok := envInt("CRL_JOBS"); ok {
		c.Jobs = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Honor XDG_CONFIG_HOME changes made after xdg initialized.
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "crl", "config.yml")
	}
	return filepath.Join(xdg.ConfigHome, "crl", "config.yml")
}

// PathOrDefault returns path, or DefaultConfigPath when path is empty.
func PathOrDefault(path string) string {
	if path != "" {
		return path
	}
	return DefaultConfigPath()
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

	// The highlight token is a credential: user read/write only.
	if err := os.WriteFile(path, data, 0600); err != nil {
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

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment
// variables. A missing file yields the defaults; a malformed one is an error.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
