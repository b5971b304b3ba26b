package swapper

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultProviderTimeout = 10 * time.Second

// Metrics receives swapper events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveProviderQuote(provider ProviderID, duration time.Duration, err error)
	ObserveQuoteRound(quotes int, err error)
	ObserveBuildTransaction(provider ProviderID, err error)
}

type nilMetrics struct{}

func (nilMetrics) ObserveProviderQuote(ProviderID, time.Duration, error) {}
func (nilMetrics) ObserveQuoteRound(int, error)                          {}
func (nilMetrics) ObserveBuildTransaction(ProviderID, error)             {}

// ProviderResult is the outcome of one adapter call in a round. Exactly one
// of Quote and Err is set.
type ProviderResult struct {
	Provider ProviderType
	Quote    *ProviderQuote
	Err      *Error
	Duration time.Duration
}

type Orchestrator struct {
	timeout time.Duration
	logger  logrus.FieldLogger
	metrics Metrics
}

func NewOrchestrator(timeout time.Duration, logger logrus.FieldLogger, metrics Metrics) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	if metrics == nil {
		metrics = nilMetrics{}
	}
	return &Orchestrator{
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// GetQuotes queries every provider concurrently. Each call is bounded by the
// per-provider timeout and failures are returned as values in the result
// slice, indexed like providers. The only call level error is Cancelled.
func (o *Orchestrator) GetQuotes(ctx context.Context, req QuoteRequest, providers []Provider) ([]ProviderResult, error) {
	if len(providers) == 0 {
		return nil, NewError(KindNoAvailableProvider, "no providers for %s -> %s", req.FromAsset.ID, req.ToAsset.ID)
	}

	results := make([]ProviderResult, len(providers))
	// provider failures stay in results, only cancellation stops the group
	g, gctx := errgroup.WithContext(ctx)
	for i, provider := range providers {
		g.Go(func() error {
			results[i] = o.fetch(gctx, provider, req)
			if res := results[i]; res.Err != nil && res.Err.Kind == KindCancelled {
				return res.Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if err := ctx.Err(); err != nil {
		return results, WrapError(KindCancelled, err, "quote round cancelled")
	}
	return results, nil
}

func (o *Orchestrator) fetch(parent context.Context, p Provider, req QuoteRequest) ProviderResult {
	providerType := p.Provider()
	start := time.Now()

	ctx, cancel := context.WithTimeout(parent, o.timeout)
	defer cancel()

	type outcome struct {
		quote *ProviderQuote
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: NewError(KindComputeQuoteError, "provider panicked: %v", r)}
			}
		}()
		quote, err := p.FetchQuote(ctx, req)
		done <- outcome{quote: quote, err: err}
	}()

	var (
		quote *ProviderQuote
		err   error
	)
	select {
	case out := <-done:
		quote, err = out.quote, out.err
		if err == nil && quote == nil {
			err = NewError(KindNoQuoteAvailable, "empty quote")
		}
	case <-ctx.Done():
		// the adapter keeps running until it observes ctx, its result is dropped
		err = ctx.Err()
	}

	res := ProviderResult{
		Provider: providerType,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Err = o.classify(parent, ctx, err)
	} else {
		res.Quote = quote
	}

	o.metrics.ObserveProviderQuote(providerType.ID, res.Duration, errOrNil(res.Err))

	logger := o.logger.WithFields(logrus.Fields{
		"provider": providerType.ID,
		"duration": res.Duration.String(),
	})
	if res.Err != nil {
		logger.WithError(res.Err).Warn("provider quote failed")
	} else {
		logger.WithField("to_value", quote.ToValue).Debug("provider quote received")
	}
	return res
}

func (o *Orchestrator) classify(parent, ctx context.Context, err error) *Error {
	if parent.Err() != nil {
		return WrapError(KindCancelled, parent.Err(), "quote cancelled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return WrapError(KindTimeout, err, "provider exceeded %s", o.timeout)
	}
	return AsError(err, KindNetworkError)
}

func errOrNil(err *Error) error {
	if err == nil {
		return nil
	}
	return err
}
