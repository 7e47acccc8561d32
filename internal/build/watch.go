package build

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Watcher rebuilds the site when files under the content root change.
type Watcher struct {
	builder  *Builder
	req      Request
	root     string
	output   string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// OnBuild, when set, is called after every triggered build.
	OnBuild func(*Result, error)

	mu       sync.Mutex
	stopChan chan struct{}
	trigger  chan struct{}
}

// NewWatcher creates a watcher for b's content root. Builds are debounced by
// the given duration.
func NewWatcher(b *Builder, req Request, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	root, err := filepath.Abs(b.site.Config().Content.Root)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to resolve content root: %w", err)
	}
	output, err := filepath.Abs(req.OutputDir)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return &Watcher{
		builder:  b,
		req:      req,
		root:     root,
		output:   output,
		debounce: debounce,
		watcher:  w,
		logger:   b.logger,
		stopChan: make(chan struct{}),
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Start watches the content root and its subdirectories.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info("Watching content for changes", logfields.Path(w.root))

	go w.watchLoop(ctx)
	go w.buildLoop(ctx)
	return nil
}

// Stop ends watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopChan:
		return nil
	default:
	}
	close(w.stopChan)
	return w.watcher.Close()
}

// addTree registers dir and every directory below it, except the output tree.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	if p == w.output || strings.HasPrefix(p, w.output+string(filepath.Separator)) {
		return true
	}
	base := filepath.Base(p)
	return p != w.root && strings.HasPrefix(base, ".")
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("Content change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			select {
			case w.trigger <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Content watcher error", logfields.Error(err))
		}
	}
}

// buildLoop runs one build per quiet period.
func (w *Watcher) buildLoop(ctx context.Context) {
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-w.stopChan:
			stop()
			return
		case <-w.trigger:
			stop()
			timer = time.AfterFunc(w.debounce, func() {
				res, err := w.builder.Run(ctx, w.req)
				if w.OnBuild != nil {
					w.OnBuild(res, err)
				}
			})
		}
	}
}
