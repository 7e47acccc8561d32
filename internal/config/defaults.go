package config

import "time"

// Default values applied when a field is left empty.
const (
	DefaultWebPath        = "/"
	DefaultContentRoot    = "."
	DefaultExtension      = ".md"
	DefaultListen         = ":8080"
	DefaultRedirectStatus = "302"
	DefaultOutputDir      = "./public"
	DefaultDebounce       = 500 * time.Millisecond
	DefaultReadTimeout    = 10 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
)

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	if c.Site.WebPath == "" {
		c.Site.WebPath = DefaultWebPath
	}
	if c.Content.Root == "" {
		c.Content.Root = DefaultContentRoot
	}
	if c.Content.Extension == "" {
		c.Content.Extension = DefaultExtension
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.RedirectStatus == "" {
		c.Server.RedirectStatus = DefaultRedirectStatus
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Build.Debounce <= 0 {
		c.Build.Debounce = DefaultDebounce
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
		if c.Site.Debug {
			c.Logging.Level = LogLevelDebug
		}
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}
