package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type mockJupiter struct {
	mu       sync.Mutex
	query    map[string]string
	swapReq  SwapRequest
	swapTx   string
	status   int
	body     string
	platform bool
}

func (m *mockJupiter) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.status != 0 {
			w.WriteHeader(m.status)
			_, _ = w.Write([]byte(m.body))
			return
		}

		var resp any
		switch r.URL.Path {
		case "/swap/v1/quote":
			m.query = map[string]string{}
			for k := range r.URL.Query() {
				m.query[k] = r.URL.Query().Get(k)
			}
			quote := QuoteResponse{
				InputMint:            solana.SolMint.String(),
				InAmount:             "1000000000",
				OutputMint:           usdcMint,
				OutAmount:            "149250000",
				OtherAmountThreshold: "148503750",
				SwapMode:             swapModeExactIn,
				SlippageBps:          50,
				RoutePlan:            []RoutePlan{{Percent: 100, SwapInfo: SwapInfo{Label: "Whirlpool"}}},
			}
			if m.platform {
				quote.PlatformFee = &PlatformFee{Amount: "750000", FeeBps: 50}
			}
			resp = quote
		case "/swap/v1/swap":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&m.swapReq))
			resp = SwapResponse{SwapTransaction: m.swapTx, LastValidBlockHeight: 100}
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (m *mockJupiter) param(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query[key]
}

func (m *mockJupiter) lastSwap() SwapRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.swapReq
}

func newTestProvider(t *testing.T, m *mockJupiter) *Provider {
	srv := m.server(t)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewProvider(NewClient(srv.URL, ""), nil, logger)
}

// signedSwapTx builds a signed transaction paid by payer that touches the
// Jupiter program when withJupiter is set.
func signedSwapTx(t *testing.T, payer solana.PrivateKey, withJupiter bool) string {
	instructions := []solana.Instruction{
		system.NewTransferInstruction(1000, payer.PublicKey(), solana.NewWallet().PublicKey()).Build(),
	}
	if withJupiter {
		instructions = append(instructions, solana.NewInstruction(
			solana.MustPublicKeyFromBase58(ProgramID),
			solana.AccountMetaSlice{solana.NewAccountMeta(payer.PublicKey(), true, true)},
			[]byte{0xe5, 0x17, 0xcb, 0x97},
		))
	}

	tx, err := solana.NewTransaction(instructions, solana.Hash{}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func solToUsdc(wallet string) swapper.QuoteRequest {
	return swapper.QuoteRequest{
		FromAsset:     swapper.SwapAsset{ID: chain.NewNativeAsset(chain.Solana), Symbol: "SOL", Decimals: 9},
		ToAsset:       swapper.SwapAsset{ID: chain.NewTokenAsset(chain.Solana, usdcMint), Symbol: "USDC", Decimals: 6},
		WalletAddress: wallet,
		Value:         "1000000000",
		Options:       swapper.Options{SlippageBps: 50},
	}
}

func TestProvider_FetchQuote(t *testing.T) {
	referrer := solana.NewWallet().PublicKey().String()
	m := &mockJupiter{platform: true}
	p := newTestProvider(t, m)

	req := solToUsdc(solana.NewWallet().PublicKey().String())
	req.Options.Fee = &swapper.ReferralFees{Solana: swapper.ReferralFee{Address: referrer, Bps: 50}}

	quote, err := p.FetchQuote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, swapper.ProviderJupiter, quote.Provider.ID)
	assert.Equal(t, "149250000", quote.ToValue)
	assert.Equal(t, "148503750", quote.ToMinValue)
	assert.True(t, quote.ReferralIncluded)
	require.Len(t, quote.Fees, 1)
	assert.Equal(t, "750000", quote.Fees[0].Amount)

	assert.Equal(t, solana.SolMint.String(), m.param("inputMint"))
	assert.Equal(t, usdcMint, m.param("outputMint"))
	assert.Equal(t, "50", m.param("slippageBps"))
	assert.Equal(t, "50", m.param("platformFeeBps"))
	assert.Equal(t, swapModeExactIn, m.param("swapMode"))
}

func TestProvider_FetchQuote_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*swapper.QuoteRequest)
		expected swapper.Kind
	}{
		{
			name:     "non solana asset",
			mutate:   func(r *swapper.QuoteRequest) { r.ToAsset.ID = chain.NewNativeAsset(chain.Ethereum) },
			expected: swapper.KindNotSupportedChain,
		},
		{
			name:     "bad mint",
			mutate:   func(r *swapper.QuoteRequest) { r.ToAsset.ID = chain.NewTokenAsset(chain.Solana, "not-a-mint") },
			expected: swapper.KindNotSupportedAsset,
		},
		{
			name: "sol to wsol",
			mutate: func(r *swapper.QuoteRequest) {
				r.ToAsset.ID = chain.NewTokenAsset(chain.Solana, solana.SolMint.String())
			},
			expected: swapper.KindNotSupportedPair,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, &mockJupiter{})
			req := solToUsdc(solana.NewWallet().PublicKey().String())
			tt.mutate(&req)

			_, err := p.FetchQuote(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.expected, swapper.KindOf(err))
		})
	}
}

func TestProvider_FetchQuote_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected swapper.Kind
	}{
		{
			name:     "no route",
			status:   http.StatusBadRequest,
			body:     `{"error":"Could not find any route","errorCode":"COULD_NOT_FIND_ANY_ROUTE"}`,
			expected: swapper.KindNoQuoteAvailable,
		},
		{
			name:     "not tradable",
			status:   http.StatusBadRequest,
			body:     `{"error":"The token is not tradable","errorCode":"TOKEN_NOT_TRADABLE"}`,
			expected: swapper.KindNotSupportedAsset,
		},
		{
			name:     "amount too small",
			status:   http.StatusBadRequest,
			body:     `{"error":"Input amount is too small"}`,
			expected: swapper.KindInputAmountTooSmall,
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{}`,
			expected: swapper.KindNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, &mockJupiter{status: tt.status, body: tt.body})
			_, err := p.FetchQuote(context.Background(), solToUsdc(solana.NewWallet().PublicKey().String()))
			require.Error(t, err)
			assert.Equal(t, tt.expected, swapper.KindOf(err))
		})
	}
}

func quoteFor(t *testing.T, p *Provider, req swapper.QuoteRequest) swapper.SwapQuote {
	pq, err := p.FetchQuote(context.Background(), req)
	require.NoError(t, err)
	return swapper.SwapQuote{Request: req, ProviderQuote: *pq, SlippageBps: 50}
}

func TestProvider_FetchQuoteData(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	referrer := solana.NewWallet().PublicKey()

	m := &mockJupiter{platform: true, swapTx: signedSwapTx(t, payer, true)}
	p := newTestProvider(t, m)

	req := solToUsdc(payer.PublicKey().String())
	req.Options.Fee = &swapper.ReferralFees{Solana: swapper.ReferralFee{Address: referrer.String(), Bps: 50}}

	data, err := p.FetchQuoteData(context.Background(), quoteFor(t, p, req))
	require.NoError(t, err)
	assert.Equal(t, ProgramID, data.To)
	assert.Equal(t, m.swapTx, data.Data)

	sent := m.lastSwap()
	assert.Equal(t, payer.PublicKey().String(), sent.UserPublicKey)
	assert.True(t, sent.WrapAndUnwrapSol)
	assert.Contains(t, string(sent.QuoteResponse), `"otherAmountThreshold":"148503750"`)

	feeAccount, err := FindAssociatedTokenAddress(referrer, solana.MustPublicKeyFromBase58(usdcMint), solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, feeAccount.String(), sent.FeeAccount)
	assert.Empty(t, sent.DestinationTokenAccount)
}

func TestProvider_FetchQuoteData_Recipient(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	recipient := solana.NewWallet().PublicKey()

	m := &mockJupiter{swapTx: signedSwapTx(t, payer, true)}
	p := newTestProvider(t, m)

	req := solToUsdc(payer.PublicKey().String())
	req.DestinationAddress = recipient.String()

	_, err := p.FetchQuoteData(context.Background(), quoteFor(t, p, req))
	require.NoError(t, err)

	dest, err := FindAssociatedTokenAddress(recipient, solana.MustPublicKeyFromBase58(usdcMint), solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, dest.String(), m.lastSwap().DestinationTokenAccount)
	assert.Empty(t, m.lastSwap().FeeAccount)
}

func TestProvider_FetchQuoteData_RejectsForeignTransaction(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	other := solana.NewWallet().PrivateKey

	tests := []struct {
		name string
		tx   string
	}{
		{name: "other fee payer", tx: signedSwapTx(t, other, true)},
		{name: "no jupiter instruction", tx: signedSwapTx(t, payer, false)},
		{name: "garbage", tx: "bm90IGEgdHJhbnNhY3Rpb24="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockJupiter{swapTx: tt.tx}
			p := newTestProvider(t, m)
			req := solToUsdc(payer.PublicKey().String())

			_, err := p.FetchQuoteData(context.Background(), quoteFor(t, p, req))
			require.Error(t, err)
			assert.Equal(t, swapper.KindTransactionError, swapper.KindOf(err))
		})
	}
}
