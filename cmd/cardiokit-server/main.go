package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/cardiokit/artifact"
	"github.com/rushteam/cardiokit/config"
	_ "github.com/rushteam/cardiokit/config/builders"
	"github.com/rushteam/cardiokit/core"
	"github.com/rushteam/cardiokit/feature"
	"github.com/rushteam/cardiokit/httpapi"
	"github.com/rushteam/cardiokit/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err, "schema_load", core.IsSchemaLoad(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	logger := config.InitLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 工件在开始服务之前加载一次，任何缺失或不兼容都直接退出
	src, err := config.BuildSource(cfg.Artifacts)
	if err != nil {
		return err
	}
	bundle, err := artifact.NewOnceFromSource(src).Get(ctx)
	if err != nil {
		return err
	}
	logger.Info("artifacts loaded", "source", src, "version", bundle.Version, "models", bundle.Ensemble.Members())

	kv, err := config.BuildStore(cfg.Store)
	if err != nil {
		return err
	}
	defer kv.Close()

	opts := []service.Option{
		service.WithReports(kv, cfg.Store.ReportTTL),
		service.WithRules(cfg.Validation.Rules...),
		service.WithMonitor(feature.NewMonitor(cfg.Monitor.MaxSamples)),
		service.WithLogger(logger),
		service.WithMaxConcurrent(cfg.Ensemble.MaxConcurrent),
	}
	if cfg.Store.CacheTTL > 0 {
		opts = append(opts, service.WithCache(kv, cfg.Store.CacheTTL))
	}
	records, closeRecords, err := config.BuildRecordSource(cfg.Feast)
	if err != nil {
		return err
	}
	if records != nil {
		defer closeRecords()
		opts = append(opts, service.WithRecordSource(records))
	}

	pred, err := service.NewPredictor(bundle, opts...)
	if err != nil {
		return err
	}
	defer pred.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.NewRouter(pred, httpapi.Options{CORSOrigins: cfg.Server.CORSOrigins, Logger: logger}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
