// Package config loads the mdsite YAML configuration.
//
// A configuration is loaded once per process and passed explicitly to the
// components that need it.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Config is the complete mdsite configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	// Template is an HTML skeleton file; empty selects the built-in one.
	Template string        `yaml:"template,omitempty"`
	Server   ServerConfig  `yaml:"server"`
	Sitemap  SitemapConfig `yaml:"sitemap"`
	Output   OutputConfig  `yaml:"output"`
	Build    BuildConfig   `yaml:"build"`
	Logging  LoggingConfig `yaml:"logging"`
}

// SiteConfig describes where the site is published.
type SiteConfig struct {
	// Host is the scheme and authority, e.g. https://domain.tld.
	Host string `yaml:"host"`
	// WebPath is the URL path of the site root, e.g. "/".
	WebPath     string   `yaml:"web_path"`
	DefaultView string   `yaml:"default_view"`
	Types       TypeList `yaml:"types"`
	Debug       bool     `yaml:"debug"`
}

// ContentConfig locates the content files.
type ContentConfig struct {
	Root          string `yaml:"root"`
	Extension     string `yaml:"extension"`
	SkipMalformed bool   `yaml:"skip_malformed"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Listen         string        `yaml:"listen"`
	RedirectStatus string        `yaml:"redirect_status"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// SitemapConfig tunes sitemap generation.
type SitemapConfig struct {
	IncludeListings bool `yaml:"include_listings"`
}

// OutputConfig is the static build target.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
}

// BuildConfig tunes watch and scheduled rebuilds.
type BuildConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Every    time.Duration `yaml:"every"`
}

// LoggingConfig selects log verbosity and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// TypeList accepts either a YAML sequence or a comma separated string.
type TypeList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TypeList) UnmarshalYAML(node *yaml.Node) error {
	var raw []string
	if node.Kind == yaml.ScalarNode {
		raw = strings.Split(node.Value, ",")
	} else if err := node.Decode(&raw); err != nil {
		return err
	}
	out := make(TypeList, 0, len(raw))
	for _, s := range raw {
		if s = strings.Trim(strings.TrimSpace(s), "/"); s != "" {
			out = append(out, s)
		}
	}
	*t = out
	return nil
}

// Load reads, expands, defaults and validates the configuration at configPath.
//
// .env and .env.local in the working directory are loaded first without
// overriding the process environment; ${VAR} references are then expanded.
// Relative content, template and output paths are resolved against the
// directory of the configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(configPath))
	return cfg, nil
}

// Parse decodes configuration bytes, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Content.Root = abs(c.Content.Root)
	c.Template = abs(c.Template)
	c.Output.Directory = abs(c.Output.Directory)
}
