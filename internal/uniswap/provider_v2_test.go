package uniswap

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

var (
	routerAddr = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	wethAddr   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdcAddr   = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	walletAddr = common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2")
)

type fakeCaller struct {
	amountsOut []*big.Int
	allowance  *big.Int
	err        error
	calls      []ethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	if *call.To == routerAddr {
		return routerABI.Methods["getAmountsOut"].Outputs.Pack(f.amountsOut)
	}
	return tokenABI.Methods["allowance"].Outputs.Pack(f.allowance)
}

func newTestProvider(caller *fakeCaller) *ProviderV2 {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	p := NewProviderV2(logger, Deployment{Chain: chain.Ethereum, RPC: caller, Router: routerAddr, WETH: wethAddr})
	p.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return p
}

func ethToUsdc() swapper.QuoteRequest {
	return swapper.QuoteRequest{
		FromAsset:     swapper.SwapAsset{ID: chain.NewNativeAsset(chain.Ethereum), Symbol: "ETH", Decimals: 18},
		ToAsset:       swapper.SwapAsset{ID: chain.NewTokenAsset(chain.Ethereum, usdcAddr.Hex()), Symbol: "USDC", Decimals: 6},
		WalletAddress: walletAddr.Hex(),
		Value:         "1000000000000000000",
	}
}

func TestTruncSlippage(t *testing.T) {
	tests := []struct {
		name         string
		amount       *big.Int
		slippageBips uint64
		expected     *big.Int
	}{
		{
			name:         "5% slippage (500 bips)",
			amount:       big.NewInt(1000),
			slippageBips: 500,
			expected:     big.NewInt(950),
		},
		{
			name:         "fractional result",
			amount:       big.NewInt(999),
			slippageBips: 100,             // 1%
			expected:     big.NewInt(989), // 999 * 0.99 = 989.01, truncated to 989
		},
		{
			name:         "slippage above 100% clamps to zero",
			amount:       big.NewInt(999),
			slippageBips: 20000,
			expected:     big.NewInt(0),
		},
		{
			name:         "nil amount",
			amount:       nil,
			slippageBips: 100,
			expected:     big.NewInt(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := deductSlippage(tt.amount, tt.slippageBips)
			if result.Cmp(tt.expected) != 0 {
				t.Errorf("deductSlippage(%v, %v) = %v, expected %v",
					tt.amount, tt.slippageBips, result, tt.expected)
			}
		})
	}
}

func TestProviderV2_FetchQuote(t *testing.T) {
	caller := &fakeCaller{amountsOut: []*big.Int{big.NewInt(1e18), big.NewInt(2_500_000_000)}}
	p := newTestProvider(caller)

	quote, err := p.FetchQuote(context.Background(), ethToUsdc())
	require.NoError(t, err)

	assert.Equal(t, swapper.ProviderUniswapV2, quote.Provider.ID)
	assert.Equal(t, "2500000000", quote.ToValue)
	assert.False(t, quote.ReferralIncluded)
	require.Len(t, quote.Routes, 1)
	assert.JSONEq(t, `{"router":"`+routerAddr.Hex()+`","path":["`+wethAddr.Hex()+`","`+usdcAddr.Hex()+`"]}`, string(quote.Routes[0].RouteData))

	require.Len(t, caller.calls, 1)
	args, err := routerABI.Methods["getAmountsOut"].Inputs.Unpack(caller.calls[0].Data[4:])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e18), args[0])
	assert.Equal(t, []common.Address{wethAddr, usdcAddr}, args[1])
}

func TestProviderV2_FetchQuote_Errors(t *testing.T) {
	tests := []struct {
		name     string
		caller   *fakeCaller
		req      func() swapper.QuoteRequest
		expected swapper.Kind
	}{
		{
			name:     "reverted",
			caller:   &fakeCaller{err: errors.New("execution reverted: UniswapV2Library: INSUFFICIENT_LIQUIDITY")},
			req:      ethToUsdc,
			expected: swapper.KindNoQuoteAvailable,
		},
		{
			name:     "rpc down",
			caller:   &fakeCaller{err: errors.New("dial tcp: connection refused")},
			req:      ethToUsdc,
			expected: swapper.KindNetworkError,
		},
		{
			name:   "other chain",
			caller: &fakeCaller{},
			req: func() swapper.QuoteRequest {
				req := ethToUsdc()
				req.FromAsset.ID = chain.NewNativeAsset(chain.SmartChain)
				return req
			},
			expected: swapper.KindNotSupportedChain,
		},
		{
			name:   "native to weth",
			caller: &fakeCaller{},
			req: func() swapper.QuoteRequest {
				req := ethToUsdc()
				req.ToAsset.ID = chain.NewTokenAsset(chain.Ethereum, wethAddr.Hex())
				return req
			},
			expected: swapper.KindNotSupportedPair,
		},
		{
			name:   "bad token",
			caller: &fakeCaller{},
			req: func() swapper.QuoteRequest {
				req := ethToUsdc()
				req.ToAsset.ID = chain.NewTokenAsset(chain.Ethereum, "usdc")
				return req
			},
			expected: swapper.KindNotSupportedAsset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(tt.caller)
			_, err := p.FetchQuote(context.Background(), tt.req())
			require.Error(t, err)
			assert.Equal(t, tt.expected, swapper.KindOf(err))
		})
	}
}

func TestProviderV2_FetchQuoteData(t *testing.T) {
	deadline := big.NewInt(1_700_000_000 + int64(txDeadline/time.Second))

	t.Run("native in", func(t *testing.T) {
		p := newTestProvider(&fakeCaller{})
		quote := swapper.SwapQuote{Request: ethToUsdc(), ToMinValue: "2475000000"}

		data, err := p.FetchQuoteData(context.Background(), quote)
		require.NoError(t, err)
		assert.Equal(t, routerAddr.Hex(), data.To)
		assert.Equal(t, "1000000000000000000", data.Value)
		assert.Nil(t, data.Approval)

		raw, err := hexutil.Decode(data.Data)
		require.NoError(t, err)
		method := routerABI.Methods["swapExactETHForTokens"]
		assert.Equal(t, method.ID, raw[:4])
		args, err := method.Inputs.Unpack(raw[4:])
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(2_475_000_000), args[0])
		assert.Equal(t, []common.Address{wethAddr, usdcAddr}, args[1])
		assert.Equal(t, walletAddr, args[2])
		assert.Equal(t, deadline, args[3])
	})

	t.Run("token in needs approval", func(t *testing.T) {
		caller := &fakeCaller{allowance: big.NewInt(0)}
		p := newTestProvider(caller)
		req := ethToUsdc()
		req.FromAsset, req.ToAsset = req.ToAsset, req.FromAsset
		req.Value = "2500000000"
		quote := swapper.SwapQuote{Request: req, ToMinValue: "990000000000000000"}

		data, err := p.FetchQuoteData(context.Background(), quote)
		require.NoError(t, err)
		assert.Equal(t, "0", data.Value)
		require.NotNil(t, data.Approval)
		assert.Equal(t, usdcAddr.Hex(), data.Approval.Token)
		assert.Equal(t, routerAddr.Hex(), data.Approval.Spender)
		assert.Equal(t, "2500000000", data.Approval.Value)

		raw, err := hexutil.Decode(data.Data)
		require.NoError(t, err)
		assert.Equal(t, routerABI.Methods["swapExactTokensForETH"].ID, raw[:4])
	})

	t.Run("missing minimum falls back to slippage", func(t *testing.T) {
		caller := &fakeCaller{amountsOut: []*big.Int{big.NewInt(1e18), big.NewInt(1000)}}
		p := newTestProvider(caller)
		quote := swapper.SwapQuote{Request: ethToUsdc(), SlippageBps: 500}

		data, err := p.FetchQuoteData(context.Background(), quote)
		require.NoError(t, err)

		raw, err := hexutil.Decode(data.Data)
		require.NoError(t, err)
		args, err := routerABI.Methods["swapExactETHForTokens"].Inputs.Unpack(raw[4:])
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(950), args[0])
	})
}

func TestProviderV2_ReferralNotCharged(t *testing.T) {
	caller := &fakeCaller{amountsOut: []*big.Int{big.NewInt(1e18), big.NewInt(2_500_000_000)}}
	p := newTestProvider(caller)

	req := ethToUsdc()
	req.Options.SlippageBps = 100
	req.Options.Fee = &swapper.ReferralFees{
		Evm: swapper.ReferralFee{Address: "0x0D9DAB1A248f63B0a48965bA8435e4de7497a3dC", Bps: 50},
	}

	pq, err := p.FetchQuote(context.Background(), req)
	require.NoError(t, err)

	quote, err := swapper.BuildQuote(req, *pq)
	require.NoError(t, err)
	assert.Equal(t, "2500000000", quote.ToValue)
	assert.Equal(t, "0", quote.ReferralFee)
	assert.Zero(t, quote.ReferralBps)
	assert.Equal(t, "2475000000", quote.ToMinValue)

	data, err := p.FetchQuoteData(context.Background(), quote)
	require.NoError(t, err)
	raw, err := hexutil.Decode(data.Data)
	require.NoError(t, err)
	args, err := routerABI.Methods["swapExactETHForTokens"].Inputs.Unpack(raw[4:])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2_475_000_000), args[0])
	assert.Equal(t, walletAddr, args[2])
}

func TestNewProviderV2_Deployments(t *testing.T) {
	logger := logrus.New()
	base := common.HexToAddress("0x4752ba5DBc23f44D87826276BF6Fd6b1C372aD24")
	p := NewProviderV2(logger,
		Deployment{Chain: chain.Ethereum, RPC: &fakeCaller{}, Router: routerAddr, WETH: wethAddr},
		Deployment{Chain: chain.Base, RPC: &fakeCaller{}, Router: base, WETH: wethAddr},
	)

	assert.ElementsMatch(t, []chain.Chain{chain.Ethereum, chain.Base}, p.SupportedChains())
	assert.Contains(t, p.String(), base.Hex())
	assert.Contains(t, p.String(), routerAddr.Hex())
}
