package config

import (
	"net/http"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/server/responses"
)

// Validate checks required fields and enumerations.
//
// Missing required values are CategoryConfig errors; values outside a known
// set are CategoryUnsupported errors. Both are fatal.
func (c *Config) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"site.host", c.Site.Host},
		{"site.web_path", c.Site.WebPath},
		{"site.default_view", c.Site.DefaultView},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.ConfigError("required configuration value is missing").
				WithContext("field", r.field).
				Build()
		}
	}
	if len(c.Site.Types) == 0 {
		return errors.ConfigError("no content types configured").WithContext("field", "site.types").Build()
	}
	if !strings.Contains(c.Site.Host, "://") {
		return errors.ConfigError("site host must include a scheme").
			WithContext("field", "site.host").
			WithContext("value", c.Site.Host).
			Build()
	}
	if !strings.HasPrefix(c.Content.Extension, ".") {
		return errors.ConfigError("content extension must start with a dot").
			WithContext("field", "content.extension").
			WithContext("value", c.Content.Extension).
			Build()
	}

	code, err := responses.ParseStatus(c.Server.RedirectStatus)
	if err != nil || !responses.IsRedirect(code) {
		return errors.UnsupportedError("unsupported redirect status").
			WithContext("field", "server.redirect_status").
			WithContext("value", c.Server.RedirectStatus).
			Fatal().
			Build()
	}
	if !c.Logging.Level.Valid() {
		return errors.UnsupportedError("unsupported log level").
			WithContext("field", "logging.level").
			WithContext("value", string(c.Logging.Level)).
			Fatal().
			Build()
	}
	if !c.Logging.Format.Valid() {
		return errors.UnsupportedError("unsupported log format").
			WithContext("field", "logging.format").
			WithContext("value", string(c.Logging.Format)).
			Fatal().
			Build()
	}
	return nil
}

// RedirectCode is the validated redirect status as a number.
func (c *Config) RedirectCode() int {
	code, err := responses.ParseStatus(c.Server.RedirectStatus)
	if err != nil {
		return http.StatusFound
	}
	return code
}
