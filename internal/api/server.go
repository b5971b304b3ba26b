package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

const shutdownTimeout = 10 * time.Second

type Config struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"8080"`
}

// Swapper is the part of *swapper.Swapper served over HTTP.
type Swapper interface {
	GetQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.SwapQuote, error)
	GetQuotes(ctx context.Context, req swapper.QuoteRequest) ([]swapper.SwapQuote, error)
	GetQuoteByProvider(ctx context.Context, id swapper.ProviderID, req swapper.QuoteRequest) (*swapper.SwapQuote, error)
	BuildTransaction(ctx context.Context, quote swapper.SwapQuote) (*swapper.QuoteData, error)
	GetSwapResult(ctx context.Context, id swapper.ProviderID, c chain.Chain, txHash string) (*swapper.SwapResult, error)
	SupportedChains() []chain.Chain
	SupportedChainsForAsset(asset chain.AssetID) []chain.Chain
	Providers() []swapper.ProviderType
}

type Server struct {
	cfg        Config
	swapper    Swapper
	defaultFee *swapper.ReferralFees
	logger     logrus.FieldLogger
	echo       *echo.Echo
}

type Option func(*Server)

// WithDefaultFee attaches fees to quote requests that carry none.
func WithDefaultFee(fees *swapper.ReferralFees) Option {
	return func(s *Server) {
		s.defaultFee = fees
	}
}

func NewServer(cfg Config, sw Swapper, logger logrus.FieldLogger, middlewares []echo.MiddlewareFunc, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		swapper: sw,
		logger:  logger.WithField("component", "api"),
		echo:    echo.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.errorHandler

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(s.logRequests)
	s.echo.Use(middlewares...)
	// panics come back as errors so the middlewares above count them
	s.echo.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.WithError(err).WithField("stack", string(stack)).Error("handler panicked")
			return err
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.healthz)

	v1 := s.echo.Group("/v1/swap")
	v1.POST("/quote", s.quote)
	v1.POST("/quotes", s.quotes)
	v1.POST("/quote/:provider", s.quoteByProvider)
	v1.POST("/quote_data", s.quoteData)
	v1.GET("/chains", s.chains)
	v1.GET("/providers", s.providers)
	v1.GET("/status/:provider/:chain/:hash", s.status)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("api server starting")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown api server: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		fields := logrus.Fields{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"method":     c.Request().Method,
			"path":       c.Path(),
			"status":     c.Response().Status,
			"duration":   time.Since(start),
		}
		if c.Response().Status >= http.StatusInternalServerError {
			s.logger.WithFields(fields).WithError(err).Warn("request failed")
		} else {
			s.logger.WithFields(fields).Debug("request served")
		}
		return nil
	}
}
