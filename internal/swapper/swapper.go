package swapper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
)

type Config struct {
	ProviderTimeout    time.Duration
	DefaultSlippageBps uint32
}

// Swapper is the public entry point: validate, fan out, select, build.
type Swapper struct {
	registry        *Registry
	orchestrator    *Orchestrator
	logger          logrus.FieldLogger
	metrics         Metrics
	now             func() time.Time
	timeout         time.Duration
	defaultSlippage uint32
}

type Option func(*Swapper)

func WithMetrics(m Metrics) Option {
	return func(s *Swapper) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Swapper) {
		s.now = now
	}
}

func New(registry *Registry, cfg Config, logger logrus.FieldLogger, opts ...Option) *Swapper {
	s := &Swapper{
		registry:        registry,
		logger:          logger.WithField("component", "swapper"),
		metrics:         nilMetrics{},
		now:             time.Now,
		timeout:         cfg.ProviderTimeout,
		defaultSlippage: cfg.DefaultSlippageBps,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultProviderTimeout
	}
	if s.defaultSlippage == 0 {
		s.defaultSlippage = DefaultSlippageBps
	}
	for _, opt := range opts {
		opt(s)
	}
	s.orchestrator = NewOrchestrator(s.timeout, s.logger, s.metrics)
	return s
}

// GetQuote returns the best policy-applied quote across eligible providers.
func (s *Swapper) GetQuote(ctx context.Context, req QuoteRequest) (*SwapQuote, error) {
	quotes, err := s.GetQuotes(ctx, req)
	if err != nil {
		return nil, err
	}
	best := quotes[0]

	s.logger.WithFields(logrus.Fields{
		"provider": best.Provider().ID,
		"from":     req.FromAsset.ID.String(),
		"to":       req.ToAsset.ID.String(),
		"to_value": best.ToValue,
	}).Info("selected quote")
	return &best, nil
}

// GetQuotes returns every valid quote ranked best first. Individual provider
// failures are logged and dropped; only a round without any quote fails.
func (s *Swapper) GetQuotes(ctx context.Context, req QuoteRequest) (quotes []SwapQuote, err error) {
	defer func() {
		s.metrics.ObserveQuoteRound(len(quotes), err)
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, WrapError(KindCancelled, ctxErr, "request cancelled")
	}

	req, providers, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	results, err := s.orchestrator.GetQuotes(ctx, req, providers)
	if err != nil {
		return nil, err
	}

	quotes = s.selectQuotes(req, results)
	if len(quotes) == 0 {
		return nil, NewError(KindNoQuoteAvailable, "%d providers returned no usable quote", len(results))
	}
	return quotes, nil
}

// GetQuoteByProvider queries a single provider and returns its own error on
// failure.
func (s *Swapper) GetQuoteByProvider(ctx context.Context, id ProviderID, req QuoteRequest) (*SwapQuote, error) {
	req.Options.PreferredProviders = []ProviderID{id}
	if _, ok := s.registry.Provider(id); !ok {
		return nil, NewError(KindNoAvailableProvider, "unknown provider %s", id)
	}

	req, providers, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	results, err := s.orchestrator.GetQuotes(ctx, req, providers)
	if err != nil {
		return nil, err
	}
	res := results[0]
	if res.Err != nil {
		return nil, res.Err
	}

	if err = ValidateQuote(*res.Quote, s.now()); err != nil {
		return nil, err
	}
	quote, err := BuildQuote(req, *res.Quote)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// BuildTransaction materializes the call data of a selected quote.
func (s *Swapper) BuildTransaction(ctx context.Context, quote SwapQuote) (data *QuoteData, err error) {
	id := quote.Provider().ID
	defer func() {
		s.metrics.ObserveBuildTransaction(id, err)
	}()

	provider, ok := s.registry.Provider(id)
	if !ok {
		return nil, NewError(KindNoAvailableProvider, "unknown provider %q", id)
	}
	if len(quote.ProviderQuote.Routes) == 0 {
		return nil, NewError(KindInvalidRoute, "quote has no routes")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err = provider.FetchQuoteData(ctx, quote)
	if err != nil {
		swapErr := AsError(err, KindTransactionError)
		s.logger.WithError(swapErr).WithField("provider", id).Warn("failed to build transaction")
		return nil, swapErr
	}
	if data == nil {
		return nil, NewError(KindTransactionError, "provider %s returned no transaction", id)
	}

	s.logger.WithFields(logrus.Fields{
		"provider": id,
		"to":       data.To,
	}).Info("built swap transaction")
	return data, nil
}

// GetSwapResult looks up the status of a submitted swap.
func (s *Swapper) GetSwapResult(ctx context.Context, id ProviderID, c chain.Chain, txHash string) (*SwapResult, error) {
	provider, ok := s.registry.Provider(id)
	if !ok {
		return nil, NewError(KindNoAvailableProvider, "unknown provider %q", id)
	}
	statusProvider, ok := provider.(StatusProvider)
	if !ok {
		return nil, NewError(KindNotImplemented, "provider %s does not track swaps", id)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := statusProvider.SwapStatus(ctx, c, txHash)
	if err != nil {
		return nil, AsError(err, KindNetworkError)
	}
	return res, nil
}

func (s *Swapper) SupportedChains() []chain.Chain {
	return s.registry.SupportedChains()
}

func (s *Swapper) SupportedChainsForAsset(asset chain.AssetID) []chain.Chain {
	return s.registry.SupportedChainsForAsset(asset)
}

func (s *Swapper) Providers() []ProviderType {
	return s.registry.Providers()
}

// ProviderChains returns the chains declared by a registered provider.
func (s *Swapper) ProviderChains(id ProviderID) ([]chain.Chain, bool) {
	p, ok := s.registry.Provider(id)
	if !ok {
		return nil, false
	}
	return p.SupportedChains(), true
}

func (s *Swapper) prepare(req QuoteRequest) (QuoteRequest, []Provider, error) {
	req, err := validateRequest(req, s.defaultSlippage)
	if err != nil {
		return req, nil, err
	}

	from, to := req.FromAsset.ID.Chain, req.ToAsset.ID.Chain
	if !s.registry.IsChainSupported(from) || !s.registry.IsChainSupported(to) {
		return req, nil, NewError(KindNotSupportedPair, "no provider supports %s -> %s", from, to)
	}

	providers := s.registry.EligibleProviders(from, to, req.Options.PreferredProviders)
	if len(providers) == 0 {
		return req, nil, NewError(KindNoAvailableProvider, "no eligible provider for %s -> %s", from, to)
	}
	return req, providers, nil
}

func (s *Swapper) selectQuotes(req QuoteRequest, results []ProviderResult) []SwapQuote {
	now := s.now()
	quotes := make([]SwapQuote, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		logger := s.logger.WithField("provider", res.Provider.ID)
		if err := ValidateQuote(*res.Quote, now); err != nil {
			logger.WithError(err).Warn("dropping invalid quote")
			continue
		}
		quote, err := BuildQuote(req, *res.Quote)
		if err != nil {
			logger.WithError(err).Warn("failed to build quote")
			continue
		}
		quotes = append(quotes, quote)
	}
	return RankQuotes(quotes, s.registry.Priority)
}
