package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Host    string `envconfig:"METRICS_HOST" default:"0.0.0.0"`
	Port    string `envconfig:"METRICS_PORT" default:"88"`
}

type Server struct {
	echo   *echo.Echo
	logger logrus.FieldLogger
}

// StartMetricsServer registers the collectors of services and serves
// /metrics in the background. It returns nil when metrics are disabled.
func StartMetricsServer(cfg Config, services []string, logger logrus.FieldLogger) *Server {
	if !cfg.Enabled {
		logger.Info("metrics server disabled")
		return nil
	}

	RegisterMetrics(services, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	go func() {
		logger.Infof("metrics server listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server failed: %v", err)
		}
	}()

	return &Server{echo: e, logger: logger}
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
