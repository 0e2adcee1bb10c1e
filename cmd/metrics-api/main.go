package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roboricindustries/sync-events/internal/config"
	"github.com/roboricindustries/sync-events/internal/metrics"
	"github.com/roboricindustries/sync-events/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "metrics-api: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	var querier metrics.Querier
	wh := cfg.MetricsAPI.Warehouse
	if wh.Enabled() {
		querier = metrics.NewAnalyticsClient(wh.Endpoint, wh.APIKey, time.Duration(wh.TimeoutSeconds)*time.Second)
	} else {
		logger.Warn("no analytics warehouse configured, serving mock data")
	}
	svc := metrics.NewService(querier, logger, metrics.WithDefaultDays(cfg.MetricsAPI.DefaultDays))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.MetricsAPI.Addr,
		Handler:           metrics.NewRouter(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics api listening", slog.String("addr", srv.Addr), slog.Bool("mock", svc.Mock()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
