package main

import (
	"context"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/api"
	"github.com/gemwalletcom/swapper/internal/graceful"
	"github.com/gemwalletcom/swapper/internal/logging"
	"github.com/gemwalletcom/swapper/internal/metrics"
	"github.com/gemwalletcom/swapper/internal/providers"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

func main() {
	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLoggerWithLevel(cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := graceful.WithSignalCancel(context.Background(), func(sig os.Signal) {
		logger.Infof("received exit signal: %v", sig)
	})
	defer cancel()

	metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceHTTP, metrics.ServiceSwapper}, logger)
	defer func() {
		if metricsServer != nil {
			if err := metricsServer.Stop(context.Background()); err != nil {
				logger.Errorf("failed to stop metrics server: %v", err)
			}
		}
	}()

	set, err := providers.Build(ctx, cfg.Providers, logger)
	if err != nil {
		logger.Fatalf("failed to initialize providers: %v", err)
	}
	defer set.Close()

	var swapperOpts []swapper.Option
	middlewares := []echo.MiddlewareFunc{}
	if metricsServer != nil {
		swapperOpts = append(swapperOpts, swapper.WithMetrics(metrics.NewSwapperMetrics()))
		middlewares = append(middlewares, metrics.HTTPMiddleware())
	}
	sw := swapper.New(set.Registry, cfg.Providers.SwapperConfig(), logger, swapperOpts...)

	logger.WithField("chains", sw.SupportedChains()).Info("swapper ready")

	srv := api.NewServer(cfg.Server, sw, logger, middlewares, api.WithDefaultFee(cfg.Providers.Referral.Fees()))
	if err := srv.Start(ctx); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
