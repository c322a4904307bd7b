package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andgen/jobsystem/internal/handlers"
	"github.com/andgen/jobsystem/internal/metrics"
	"github.com/andgen/jobsystem/internal/server"
	"github.com/andgen/jobsystem/internal/services"
	"github.com/andgen/jobsystem/internal/store"
	"github.com/andgen/jobsystem/pkg/scheduler"
	"github.com/andgen/jobsystem/pkg/worker"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start a pool behind the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	log := zap.S().Named("cmd")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	exporter, err := metrics.NewExporter(reg, metrics.ExporterOptions{})
	if err != nil {
		return err
	}
	observers := []worker.Observer{exporter}

	// stays a nil interface when history is disabled
	var history handlers.HistoryReader
	if a.cfg.Store.Path != "" {
		st, err := store.Open(ctx, a.cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		history = st.History()
		observers = append(observers, store.NewRecorder(st.History()))
	}

	pool, err := scheduler.NewPool(a.cfg.Workers(),
		scheduler.WithName(a.cfg.Pool.Name),
		scheduler.WithObserver(worker.Observers(observers...)),
	)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := metrics.RegisterPoolCollector(reg, "", pool); err != nil {
		return err
	}

	h := handlers.New(services.NewWorkloadService(pool), history)
	srv, err := server.NewServer(a.cfg, reg, func(router *gin.RouterGroup) {
		handlers.RegisterHandlers(router, h)
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	log.Infow("job system started", a.cfg.Fields()...)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Errorw("failed to stop server", "error", err)
	}
	log.Infow("job system stopped", "pending", pool.PendingJobsCount())

	return <-errCh
}
