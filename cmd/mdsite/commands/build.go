package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/build"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string        `short:"o" help:"Output directory, overrides output.directory"`
	Clean  bool          `help:"Remove the output directory first"`
	Watch  bool          `short:"w" help:"Rebuild when content changes"`
	Every  time.Duration `help:"Rebuild on this interval, overrides build.every"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	st, err := root.loadSite(nil)
	if err != nil {
		return err
	}
	cfg := st.Config()
	logger := root.Logger()
	builder := build.NewBuilder(st, metrics.NoopRecorder{}, logger)

	req := builder.RequestFromConfig()
	if b.Output != "" {
		req.OutputDir = b.Output
	}
	req.Clean = req.Clean || b.Clean

	every := cfg.Build.Every
	if b.Every > 0 {
		every = b.Every
	}

	if !b.Watch && every <= 0 {
		res, err := builder.Run(context.Background(), req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(g.Stdout, "Built %d pages and %d listings into %s\n", res.Pages, res.Listings, res.OutputPath)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if every > 0 {
		sch, err := build.NewScheduler(ctx, builder, req, every)
		if err != nil {
			return err
		}
		sch.Start()
		defer func() {
			if err := sch.Stop(); err != nil {
				logger.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
		logger.Info("Scheduled rebuilds", slog.Duration("every", every))
	} else if _, err := builder.Run(ctx, req); err != nil {
		return err
	}

	if b.Watch {
		w, err := build.NewWatcher(builder, req, cfg.Build.Debounce)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := w.Stop(); err != nil {
				logger.Warn("Failed to stop watcher", logfields.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping...")
	return nil
}
