package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/app"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/config"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/tracer"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	owner := flag.String("owner", "", "sweep this owner's temporary images once and exit")
	flag.Parse()

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("gateway_driver", cfg.Gateway.Driver),
		zap.Duration("sweep_interval", cfg.Sweeper.Interval),
		zap.Duration("temp_ttl", cfg.Sweeper.TempTTL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.InitTracer(ctx, cfg.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			appLogger.Error("Failed to close adapters", zap.Error(err))
		}
	}()

	if *owner != "" {
		n, err := a.Sweeper.SweepOwnerTemp(ctx, *owner)
		if err != nil {
			appLogger.Error("Owner sweep failed", zap.String("owner_id", *owner), zap.Error(err))
			os.Exit(1)
		}
		appLogger.Info("Owner sweep finished", zap.String("owner_id", *owner), zap.Int("removed", n))
		return
	}

	go func() {
		if err := metrics.StartServer(cfg.Telemetry.MetricsPort, appLogger, a.Metrics.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	a.Sweeper.Run(ctx, cfg.Sweeper.Interval, cfg.Sweeper.TempTTL)
	appLogger.Info("Application shutting down")
}
