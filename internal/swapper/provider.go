package swapper

import (
	"context"
	"slices"

	"github.com/gemwalletcom/swapper/internal/chain"
)

// Provider is a liquidity source adapter. Implementations map every failure
// into *Error and hold no state shared between calls.
type Provider interface {
	Provider() ProviderType
	SupportedChains() []chain.Chain
	FetchQuote(ctx context.Context, req QuoteRequest) (*ProviderQuote, error)
	FetchQuoteData(ctx context.Context, quote SwapQuote) (*QuoteData, error)
}

// StatusProvider is implemented by providers that can track a submitted swap.
type StatusProvider interface {
	SwapStatus(ctx context.Context, c chain.Chain, txHash string) (*SwapResult, error)
}

// supportsPair applies the provider mode and its declared chains.
func supportsPair(p Provider, from, to chain.Chain) bool {
	chains := p.SupportedChains()
	if !slices.Contains(chains, from) || !slices.Contains(chains, to) {
		return false
	}

	mode := p.Provider().Mode
	switch mode.Kind {
	case ModeOnChain:
		return from == to
	case ModeCrossChain, ModeBridge:
		return from != to
	case ModeOmniChain:
		return from != to || slices.Contains(mode.Chains, from)
	default:
		return false
	}
}
