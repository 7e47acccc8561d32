package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Example returns a starter configuration.
func Example() *Config {
	cfg := &Config{
		Site: SiteConfig{
			Host:        "https://example.com",
			WebPath:     "/",
			DefaultView: "pages/home",
			Types:       TypeList{"posts", "pages"},
		},
		Content: ContentConfig{Root: "."},
		Output:  OutputConfig{Directory: "./public", Clean: true},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Init writes the example configuration to configPath. An existing file is
// only replaced when force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
