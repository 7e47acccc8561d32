// Package site ties configuration, content loading and rendering together.
//
// A Site holds only immutable configuration. Every call re-reads the content
// tree, so nothing is cached between requests.
package site

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/content"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/paths"
	"git.home.luguber.info/inful/mdsite/internal/templater"
)

// Site renders pages, listings, the sitemap and the JSON index.
type Site struct {
	cfg      *config.Config
	resolver *paths.Resolver
	renderer markdown.Renderer
	skeleton *templater.Skeleton
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option customizes a Site.
type Option func(*Site)

// WithRenderer replaces the goldmark renderer.
func WithRenderer(r markdown.Renderer) Option { return func(s *Site) { s.renderer = r } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(s *Site) { s.recorder = r } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Site) { s.logger = l } }

// WithSkeleton replaces the HTML skeleton named in the configuration.
func WithSkeleton(sk *templater.Skeleton) Option { return func(s *Site) { s.skeleton = sk } }

// New validates cfg and builds a Site. Configuration problems surface here,
// before any content is read.
func New(cfg *config.Config, opts ...Option) (*Site, error) {
	if cfg == nil {
		return nil, errors.ConfigError("configuration is not loaded").Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolver, err := paths.NewResolver(cfg.Site.Host, cfg.Site.WebPath, cfg.Content.Extension)
	if err != nil {
		return nil, err
	}

	s := &Site{
		cfg:      cfg,
		resolver: resolver,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = markdown.NewRenderer()
	}
	if s.skeleton == nil {
		sk, skErr := templater.LoadSkeleton(cfg.Template)
		if skErr != nil {
			return nil, skErr
		}
		s.skeleton = sk
	}
	return s, nil
}

// Config returns the configuration the site was built from.
func (s *Site) Config() *config.Config { return s.cfg }

// Resolver returns the URL resolver.
func (s *Site) Resolver() *paths.Resolver { return s.resolver }

// HomeURL is the URL of the configured default view.
func (s *Site) HomeURL() string { return s.resolver.HomeURL(s.cfg.Site.DefaultView) }

// HasType reports whether t is a configured content type.
func (s *Site) HasType(t string) bool { return slices.Contains(s.cfg.Site.Types, t) }

// Snapshot is the content of several types loaded in one pass.
type Snapshot struct {
	// Collections follow the order the types were requested in.
	Collections []*content.Collection
	// Missing lists requested types whose directory does not exist.
	Missing []string
}

// Load scans types in parallel. A missing type directory is skipped and
// reported in Snapshot.Missing; any other scan error aborts the load.
// With no types given, every configured type is loaded.
func (s *Site) Load(ctx context.Context, types ...string) (*Snapshot, error) {
	if len(types) == 0 {
		types = s.cfg.Site.Types
	}

	cols := make([]*content.Collection, len(types))
	missing := make([]bool, len(types))

	group, groupctx := errgroup.WithContext(ctx)
	for i, t := range types {
		group.Go(func() error {
			if err := groupctx.Err(); err != nil {
				return err
			}
			c, err := s.scan(t)
			if err != nil {
				if errors.IsNotFound(err) {
					missing[i] = true
					return nil
				}
				return err
			}
			cols[i] = c
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	for i, t := range types {
		if missing[i] {
			snap.Missing = append(snap.Missing, t)
			continue
		}
		snap.Collections = append(snap.Collections, cols[i])
	}
	return snap, nil
}

func (s *Site) scan(contentType string) (*content.Collection, error) {
	start := time.Now()
	c, err := content.Scan(s.cfg.Content.Root, contentType, s.resolver, content.ScanOptions{
		SkipMalformed: s.cfg.Content.SkipMalformed,
		Logger:        s.logger,
	})
	s.recorder.ObserveScanDuration(contentType, time.Since(start))
	if err != nil {
		if errors.IsNotFound(err) {
			s.recorder.IncMissingType(contentType)
			s.logger.Warn("Content type directory missing", logfields.ContentType(contentType))
		}
		return nil, err
	}
	s.recorder.AddItemsLoaded(contentType, c.Len())
	for range c.Diagnostics() {
		s.recorder.IncMalformed(contentType)
	}
	return c, nil
}
