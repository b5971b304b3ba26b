package swapper

import (
	"context"
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
)

const (
	testWallet = "0x6507f97E3A26E966bC381153eB16Fa55ED23a38E"
	testBtc    = "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"
	testUSDT   = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	testUSDC   = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

type mockProvider struct {
	ptype  ProviderType
	chains []chain.Chain
	quote  func(ctx context.Context, req QuoteRequest) (*ProviderQuote, error)
	data   func(ctx context.Context, quote SwapQuote) (*QuoteData, error)
	status func(ctx context.Context, c chain.Chain, hash string) (*SwapResult, error)
}

func (m *mockProvider) Provider() ProviderType         { return m.ptype }
func (m *mockProvider) SupportedChains() []chain.Chain { return m.chains }

func (m *mockProvider) FetchQuote(ctx context.Context, req QuoteRequest) (*ProviderQuote, error) {
	q, err := m.quote(ctx, req)
	if q != nil && q.Provider.ID == "" {
		q.Provider = m.ptype
	}
	return q, err
}

func (m *mockProvider) FetchQuoteData(ctx context.Context, quote SwapQuote) (*QuoteData, error) {
	if m.data == nil {
		return nil, NewError(KindNotImplemented, "no data")
	}
	return m.data(ctx, quote)
}

type statusMockProvider struct {
	*mockProvider
}

func (m statusMockProvider) SwapStatus(ctx context.Context, c chain.Chain, hash string) (*SwapResult, error) {
	return m.status(ctx, c, hash)
}

func onChainProvider(id ProviderID, quote func(ctx context.Context, req QuoteRequest) (*ProviderQuote, error)) *mockProvider {
	return &mockProvider{
		ptype:  ProviderType{ID: id, Name: string(id), Mode: ProviderMode{Kind: ModeOnChain}},
		chains: []chain.Chain{chain.Ethereum, chain.SmartChain},
		quote:  quote,
	}
}

func fixedQuote(toValue string) func(ctx context.Context, req QuoteRequest) (*ProviderQuote, error) {
	return func(_ context.Context, req QuoteRequest) (*ProviderQuote, error) {
		q := newProviderQuote(req, toValue)
		return &q, nil
	}
}

func failingQuote(err error) func(ctx context.Context, req QuoteRequest) (*ProviderQuote, error) {
	return func(context.Context, QuoteRequest) (*ProviderQuote, error) {
		return nil, err
	}
}

func newProviderQuote(req QuoteRequest, toValue string) ProviderQuote {
	return ProviderQuote{
		FromValue: req.Value,
		ToValue:   toValue,
		Routes: []Route{{
			Input:     req.FromAsset.ID,
			Output:    req.ToAsset.ID,
			RouteData: json.RawMessage(`{"pool":"0x01"}`),
		}},
	}
}

func sameChainRequest() QuoteRequest {
	return QuoteRequest{
		FromAsset:     SwapAsset{ID: chain.NewNativeAsset(chain.Ethereum), Symbol: "ETH", Decimals: 18},
		ToAsset:       SwapAsset{ID: chain.NewTokenAsset(chain.Ethereum, testUSDT), Symbol: "USDT", Decimals: 6},
		WalletAddress: testWallet,
		Value:         "1000000000000000000",
	}
}

func crossChainRequest() QuoteRequest {
	return QuoteRequest{
		FromAsset:          SwapAsset{ID: chain.NewNativeAsset(chain.Ethereum), Symbol: "ETH", Decimals: 18},
		ToAsset:            SwapAsset{ID: chain.NewNativeAsset(chain.Bitcoin), Symbol: "BTC", Decimals: 8},
		WalletAddress:      testWallet,
		DestinationAddress: testBtc,
		Value:              "1000000000000000000",
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestSwapper(cfg Config, providers ...Provider) (*Swapper, error) {
	ids := make([]ProviderID, 0, len(providers))
	for _, p := range providers {
		ids = append(ids, p.Provider().ID)
	}
	registry, err := NewRegistryBuilder().Add(providers...).Priority(ids...).Build()
	if err != nil {
		return nil, err
	}
	return New(registry, cfg, testLogger()), nil
}
