// Package commands implements the mdsite command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// Global carries process-wide state into commands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mdsite.yaml" env:"MDSITE_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" help:"Serve the site over HTTP"`
	CGI     CGICmd     `cmd:"" name:"cgi" help:"Answer one request as a CGI program"`
	Page    PageCmd    `cmd:"" help:"Render one page to stdout"`
	Listing ListingCmd `cmd:"" help:"Render the listing of a content type to stdout"`
	Sitemap SitemapCmd `cmd:"" help:"Print the XML sitemap"`
	Index   IndexCmd   `cmd:"" help:"Print the JSON metadata index"`
	Build   BuildCmd   `cmd:"" help:"Write the site as static files"`
	Check   CheckCmd   `cmd:"" help:"Report relative links that point at missing content"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`

	logger *slog.Logger
	stderr io.Writer
}

// AfterApply runs after flag parsing; set up a provisional logger until the
// configuration says otherwise.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.logger)
	return nil
}

// SetStderr redirects log output, for tests.
func (c *CLI) SetStderr(w io.Writer) { c.stderr = w }

// Logger returns the active logger.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// configureLogging replaces the provisional logger with one following the
// logging section. --verbose always forces debug.
func (c *CLI) configureLogging(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	w := c.stderr
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Logging.Format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	c.logger = slog.New(h)
	slog.SetDefault(c.logger)
	return c.logger
}

// loadSite loads the configuration and builds the site with the given
// recorder.
func (c *CLI) loadSite(recorder metrics.Recorder) (*site.Site, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logger := c.configureLogging(cfg)
	opts := []site.Option{site.WithLogger(logger)}
	if recorder != nil {
		opts = append(opts, site.WithRecorder(recorder))
	}
	return site.New(cfg, opts...)
}
