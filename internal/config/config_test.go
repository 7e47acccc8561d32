package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

const minimalConfig = `site:
  host: https://domain.tld
  default_view: pages/home
  types: posts, pages
`

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	require.NoError(t, err)

	require.Equal(t, "https://domain.tld", cfg.Site.Host)
	require.Equal(t, TypeList{"posts", "pages"}, cfg.Site.Types)
	require.Equal(t, DefaultWebPath, cfg.Site.WebPath)
	require.Equal(t, DefaultExtension, cfg.Content.Extension)
	require.Equal(t, DefaultListen, cfg.Server.Listen)
	require.Equal(t, 302, cfg.RedirectCode())
	require.Equal(t, DefaultDebounce, cfg.Build.Debounce)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestParse_FullDocument(t *testing.T) {
	cfg, err := Parse([]byte(`site:
  host: https://domain.tld
  web_path: /blog/
  default_view: pages/home
  types:
    - posts
    - /pages/
  debug: true
content:
  root: /srv/content
  skip_malformed: true
server:
  listen: 127.0.0.1:9000
  redirect_status: Moved Permanently
  read_timeout: 5s
sitemap:
  include_listings: true
build:
  debounce: 2s
  every: 15m
logging:
  format: JSON
`))
	require.NoError(t, err)
	require.Equal(t, TypeList{"posts", "pages"}, cfg.Site.Types)
	require.Equal(t, "/blog/", cfg.Site.WebPath)
	require.True(t, cfg.Content.SkipMalformed)
	require.Equal(t, 301, cfg.RedirectCode())
	require.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	require.True(t, cfg.Sitemap.IncludeListings)
	require.Equal(t, 2*time.Second, cfg.Build.Debounce)
	require.Equal(t, 15*time.Minute, cfg.Build.Every)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level, "debug site defaults to debug logging")
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("MDSITE_TEST_HOST", "https://env.example")
	cfg, err := Parse([]byte(`site:
  host: ${MDSITE_TEST_HOST}
  default_view: pages/home
  types: [pages]
`))
	require.NoError(t, err)
	require.Equal(t, "https://env.example", cfg.Site.Host)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		category errors.ErrorCategory
		field    string
	}{
		{"missing host", "site:\n  default_view: a\n  types: a\n", errors.CategoryConfig, "site.host"},
		{"missing default view", "site:\n  host: https://x\n  types: a\n", errors.CategoryConfig, "site.default_view"},
		{"missing types", "site:\n  host: https://x\n  default_view: a\n", errors.CategoryConfig, "site.types"},
		{"host without scheme", "site:\n  host: x.tld\n  default_view: a\n  types: a\n", errors.CategoryConfig, "site.host"},
		{"bad extension", "site:\n  host: https://x\n  default_view: a\n  types: a\ncontent:\n  extension: md\n", errors.CategoryConfig, "content.extension"},
		{"unknown redirect", "site:\n  host: https://x\n  default_view: a\n  types: a\nserver:\n  redirect_status: Sometimes\n", errors.CategoryUnsupported, "server.redirect_status"},
		{"non redirect status", "site:\n  host: https://x\n  default_view: a\n  types: a\nserver:\n  redirect_status: \"404\"\n", errors.CategoryUnsupported, "server.redirect_status"},
		{"unknown log level", "site:\n  host: https://x\n  default_view: a\n  types: a\nlogging:\n  level: loud\n", errors.CategoryUnsupported, "logging.level"},
		{"unknown log format", "site:\n  host: https://x\n  default_view: a\n  types: a\nlogging:\n  format: xml\n", errors.CategoryUnsupported, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			require.Equal(t, tt.category, ce.Category())
			require.True(t, ce.IsFatal())
			field, _ := ce.Context().GetString("field")
			require.Equal(t, tt.field, field)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("site: [unclosed"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mdsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig+"content:\n  root: content\ntemplate: skel.html\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "content"), cfg.Content.Root)
	require.Equal(t, filepath.Join(dir, "skel.html"), cfg.Template)
	require.Equal(t, filepath.Join(dir, "public"), cfg.Output.Directory)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInit_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdsite.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Example().Site, cfg.Site)

	err = Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}
