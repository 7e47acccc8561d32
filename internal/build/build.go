package build

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// Status is the outcome of a build.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Request describes one build.
type Request struct {
	// OutputDir receives the generated files.
	OutputDir string
	// Clean removes OutputDir before writing.
	Clean bool
}

// Result summarizes a build.
type Result struct {
	Status     Status
	OutputPath string
	Pages      int
	Listings   int
	// Missing lists configured types whose directory does not exist.
	Missing   []string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Builder renders a site to disk.
type Builder struct {
	site     *site.Site
	recorder metrics.Recorder
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewBuilder creates a builder. A nil recorder or logger gets the default.
func NewBuilder(s *site.Site, recorder metrics.Recorder, logger *slog.Logger) *Builder {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{site: s, recorder: recorder, logger: logger}
}

// RequestFromConfig builds a Request from the site's output settings.
func (b *Builder) RequestFromConfig() Request {
	cfg := b.site.Config()
	return Request{OutputDir: cfg.Output.Directory, Clean: cfg.Output.Clean}
}

// Run executes one build. Concurrent calls are serialized.
func (b *Builder) Run(ctx context.Context, req Request) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := &Result{OutputPath: req.OutputDir, StartTime: time.Now()}
	err := b.run(ctx, req, res)
	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)

	b.recorder.ObserveBuildDuration(res.Duration)
	if err != nil {
		res.Status = StatusFailed
		b.recorder.IncBuildOutcome(metrics.BuildFailed)
		b.logger.Error("Build failed", logfields.Output(req.OutputDir), logfields.Error(err))
		return res, err
	}
	res.Status = StatusSuccess
	b.recorder.IncBuildOutcome(metrics.BuildSuccess)
	b.logger.Info("Build completed",
		logfields.Output(req.OutputDir),
		slog.Int("pages", res.Pages),
		slog.Int("listings", res.Listings),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res, nil
}

func (b *Builder) run(ctx context.Context, req Request, res *Result) error {
	if err := b.checkOutputDir(req.OutputDir); err != nil {
		return err
	}
	if req.Clean {
		if err := os.RemoveAll(req.OutputDir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output directory").
				WithContext("output", req.OutputDir).
				Build()
		}
	}

	snap, err := b.site.Load(ctx)
	if err != nil {
		return err
	}
	res.Missing = snap.Missing
	ext := b.site.Config().Content.Extension

	for _, c := range snap.Collections {
		for _, it := range c.Published() {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := strings.TrimSuffix(strings.TrimPrefix(it.Path(), "/"), ext)
			page, err := b.site.RenderPage(name)
			if err != nil {
				return err
			}
			if err := writeFile(req.OutputDir, name+".html", []byte(page.HTML)); err != nil {
				return err
			}
			res.Pages++
		}

		listing, err := b.site.RenderListing(ctx, c.Type())
		if err != nil {
			return err
		}
		if err := writeFile(req.OutputDir, c.Type()+".html", []byte(listing.HTML)); err != nil {
			return err
		}
		res.Listings++
	}

	sm, err := b.site.Sitemap(ctx)
	if err != nil {
		return err
	}
	if err := writeFile(req.OutputDir, "sitemap.xml", sm); err != nil {
		return err
	}

	idx, err := b.site.Index(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode index").Build()
	}
	return writeFile(req.OutputDir, "meta.json", append(data, '\n'))
}

// checkOutputDir refuses output directories that would overwrite or clean
// away the content itself.
func (b *Builder) checkOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.ValidationError("output directory is required").WithContext("field", "output.directory").Build()
	}
	out, err := filepath.Abs(dir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve output directory").Build()
	}
	root, err := filepath.Abs(b.site.Config().Content.Root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve content root").Build()
	}
	if rel, err := filepath.Rel(out, root); err == nil && !strings.HasPrefix(rel, "..") {
		return errors.ValidationError("output directory must not contain the content root").
			WithContext("output", out).
			WithContext("root", root).
			Build()
	}
	return nil
}

func writeFile(dir, rel string, data []byte) error {
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", full).
			Build()
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
			WithContext("path", full).
			Build()
	}
	return nil
}
