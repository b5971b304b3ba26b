package swapper

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuote_SlippageFloor(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		providerMin string
		slippageBps uint32
		feeBps      uint32
		included    bool
		wantValue   string
		wantMin     string
	}{
		{
			name:        "floor from slippage",
			output:      "10000",
			slippageBps: 100,
			wantValue:   "10000",
			wantMin:     "9900",
		},
		{
			name:        "provider min tighter than floor",
			output:      "10000",
			providerMin: "9950",
			slippageBps: 100,
			wantValue:   "10000",
			wantMin:     "9950",
		},
		{
			name:        "provider min looser than floor",
			output:      "10000",
			providerMin: "9000",
			slippageBps: 100,
			wantValue:   "10000",
			wantMin:     "9900",
		},
		{
			name:        "referral deducted before floor",
			output:      "10000",
			slippageBps: 100,
			feeBps:      50,
			wantValue:   "9950",
			wantMin:     "9850", // 9950 * 9900 / 10000 = 9850.5
		},
		{
			name:        "provider min scaled by referral",
			output:      "10000",
			providerMin: "10000",
			slippageBps: 100,
			feeBps:      50,
			wantValue:   "9950",
			wantMin:     "9950",
		},
		{
			name:        "referral already included",
			output:      "10000",
			slippageBps: 100,
			feeBps:      50,
			included:    true,
			wantValue:   "10000",
			wantMin:     "9900",
		},
		{
			name:        "zero slippage",
			output:      "777",
			slippageBps: 0,
			wantValue:   "777",
			wantMin:     "777",
		},
		{
			name:        "full slippage",
			output:      "777",
			slippageBps: 10_000,
			wantValue:   "777",
			wantMin:     "0",
		},
		{
			name:        "large amounts keep precision",
			output:      "123456789012345678901234567890",
			slippageBps: 30,
			wantValue:   "123456789012345678901234567890",
			wantMin:     "123086418645308641864530864186",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sameChainRequest()
			req.Options.SlippageBps = tt.slippageBps
			if tt.feeBps > 0 {
				req.Options.Fee = &ReferralFees{Evm: ReferralFee{Address: testWallet, Bps: tt.feeBps}}
			}

			pq := newProviderQuote(req, tt.output)
			pq.Provider = ProviderType{ID: "p", Mode: ProviderMode{Kind: ModeOnChain}}
			pq.ToMinValue = tt.providerMin
			pq.ReferralIncluded = tt.included

			quote, err := BuildQuote(req, pq)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, quote.ToValue)
			assert.Equal(t, tt.wantMin, quote.ToMinValue)

			net, _ := new(big.Int).SetString(quote.ToValue, 10)
			minOut, _ := new(big.Int).SetString(quote.ToMinValue, 10)
			floor := applySlippage(net, tt.slippageBps)
			assert.LessOrEqual(t, minOut.Cmp(net), 0, "min_output <= output")
			assert.GreaterOrEqual(t, minOut.Cmp(floor), 0, "min_output >= request floor")
		})
	}
}

func TestBuildQuote_Idempotent(t *testing.T) {
	req := sameChainRequest()
	req.Options.SlippageBps = 75
	req.Options.Fee = &ReferralFees{Evm: ReferralFee{Address: testWallet, Bps: 50}}

	pq := newProviderQuote(req, "98765432109876543210")
	pq.Provider = ProviderType{ID: "p", Mode: ProviderMode{Kind: ModeOnChain}}
	pq.ToMinValue = "98000000000000000000"
	pq.ValidUntil = time.Unix(1_900_000_000, 0)
	pq.EtaSeconds = 30

	first, err := BuildQuote(req, pq)
	require.NoError(t, err)
	second, err := BuildQuote(req, pq)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidateQuote(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	base := func() ProviderQuote {
		q := newProviderQuote(sameChainRequest(), "1000")
		q.Provider = ProviderType{ID: "p"}
		return q
	}

	tests := []struct {
		name   string
		mutate func(q *ProviderQuote)
		want   *Error
	}{
		{name: "valid", mutate: func(q *ProviderQuote) {}},
		{name: "valid with expiry ahead", mutate: func(q *ProviderQuote) { q.ValidUntil = now.Add(time.Minute) }},
		{name: "expired", mutate: func(q *ProviderQuote) { q.ValidUntil = now }, want: ErrComputeQuoteError},
		{name: "negative output", mutate: func(q *ProviderQuote) { q.ToValue = "-1" }, want: ErrComputeQuoteError},
		{name: "garbage output", mutate: func(q *ProviderQuote) { q.ToValue = "1e18" }, want: ErrComputeQuoteError},
		{name: "min above output", mutate: func(q *ProviderQuote) { q.ToMinValue = "1001" }, want: ErrComputeQuoteError},
		{name: "no routes", mutate: func(q *ProviderQuote) { q.Routes = nil }, want: ErrInvalidRoute},
		{name: "empty route data", mutate: func(q *ProviderQuote) { q.Routes[0].RouteData = nil }, want: ErrInvalidRoute},
		{name: "no provider", mutate: func(q *ProviderQuote) { q.Provider.ID = "" }, want: ErrComputeQuoteError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base()
			tt.mutate(&q)
			err := ValidateQuote(q, now)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRankQuotes(t *testing.T) {
	priority := map[ProviderID]int{"a": 0, "b": 1, "c": 2}
	quote := func(id ProviderID, value string) SwapQuote {
		return SwapQuote{ProviderQuote: ProviderQuote{Provider: ProviderType{ID: id}}, ToValue: value}
	}

	in := []SwapQuote{quote("c", "500"), quote("b", "700"), quote("a", "500")}
	ranked := RankQuotes(in, func(id ProviderID) int { return priority[id] })

	require.Len(t, ranked, 3)
	assert.Equal(t, ProviderID("b"), ranked[0].Provider().ID)
	assert.Equal(t, ProviderID("a"), ranked[1].Provider().ID)
	assert.Equal(t, ProviderID("c"), ranked[2].Provider().ID)
	assert.Equal(t, ProviderID("c"), in[0].Provider().ID, "input untouched")
}
