package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/server/httpserver"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Listen string `short:"l" help:"Listen address, overrides server.listen"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	reg := metrics.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	st, err := root.loadSite(recorder)
	if err != nil {
		return err
	}
	if s.Listen != "" {
		st.Config().Server.Listen = s.Listen
	}
	logger := root.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := httpserver.New(st, httpserver.Options{Recorder: recorder, Registry: reg, Logger: logger})
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("Serving site", slog.String("listen", st.Config().Server.Listen), slog.String("home", st.HomeURL()))

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}
