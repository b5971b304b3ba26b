package swapper

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/gemwalletcom/swapper/internal/chain"
)

const (
	DefaultSlippageBps           uint32 = 100
	DefaultSwapFeeBps            uint32 = 50
	DefaultStableSwapReferralBps uint32 = 25
	bpsDenominator                      = 10_000
)

type ProviderID string

const (
	ProviderThorchain   ProviderID = "thorchain"
	ProviderOneInch     ProviderID = "oneinch"
	ProviderUniswapV2   ProviderID = "uniswap_v2"
	ProviderJupiter     ProviderID = "jupiter"
	ProviderNearIntents ProviderID = "near_intents"
)

type ModeKind string

const (
	ModeOnChain    ModeKind = "on_chain"
	ModeCrossChain ModeKind = "cross_chain"
	ModeBridge     ModeKind = "bridge"
	ModeOmniChain  ModeKind = "omni_chain"
)

// ProviderMode declares which chain pairs a provider can route.
// Chains is only meaningful for ModeOmniChain: same chain swaps are
// allowed when the source chain is listed.
type ProviderMode struct {
	Kind   ModeKind      `json:"kind"`
	Chains []chain.Chain `json:"chains,omitempty"`
}

type ProviderType struct {
	ID       ProviderID   `json:"id"`
	Name     string       `json:"name"`
	Protocol string       `json:"protocol"`
	Mode     ProviderMode `json:"mode"`
	// FeeKey selects the referral entry used by this provider. When empty the
	// destination chain family is used.
	FeeKey FeeKey `json:"fee_key,omitempty"`
}

type SwapAsset struct {
	ID       chain.AssetID `json:"id"`
	Symbol   string        `json:"symbol"`
	Decimals int32         `json:"decimals"`
}

type Options struct {
	SlippageBps        uint32        `json:"slippage_bps"`
	Fee                *ReferralFees `json:"fee,omitempty"`
	PreferredProviders []ProviderID  `json:"preferred_providers,omitempty"`
	UseMaxAmount       bool          `json:"use_max_amount"`
}

type QuoteRequest struct {
	FromAsset          SwapAsset `json:"from_asset"`
	ToAsset            SwapAsset `json:"to_asset"`
	WalletAddress      string    `json:"wallet_address"`
	DestinationAddress string    `json:"destination_address"`
	// Value is the input amount in base units of FromAsset.
	Value   string  `json:"value"`
	Options Options `json:"options"`
}

func (r QuoteRequest) ValueBig() (*big.Int, bool) {
	return parseAmount(r.Value)
}

// Recipient returns the destination address, defaulting to the wallet.
func (r QuoteRequest) Recipient() string {
	if r.DestinationAddress != "" {
		return r.DestinationAddress
	}
	return r.WalletAddress
}

func (r QuoteRequest) IsCrossChain() bool {
	return r.FromAsset.ID.Chain != r.ToAsset.ID.Chain
}

type Route struct {
	Input  chain.AssetID `json:"input"`
	Output chain.AssetID `json:"output"`
	// RouteData is provider specific and opaque to the selector.
	RouteData json.RawMessage `json:"route_data"`
	GasLimit  string          `json:"gas_limit,omitempty"`
}

type Fee struct {
	Asset  chain.AssetID `json:"asset"`
	Amount string        `json:"amount"`
	Kind   string        `json:"kind"`
}

// ProviderQuote is a quote as normalized by an adapter.
type ProviderQuote struct {
	Provider   ProviderType `json:"provider"`
	FromValue  string       `json:"from_value"`
	ToValue    string       `json:"to_value"`
	ToMinValue string       `json:"to_min_value,omitempty"`
	Routes     []Route      `json:"routes"`
	Fees       []Fee        `json:"fees,omitempty"`
	ValidUntil time.Time    `json:"valid_until,omitempty"`
	EtaSeconds uint32       `json:"eta_in_seconds,omitempty"`
	// ReferralIncluded is set when the provider already deducted the
	// referral fee from ToValue.
	ReferralIncluded bool `json:"referral_included"`
}

// SwapQuote is a ProviderQuote with slippage and referral policy applied.
type SwapQuote struct {
	Request       QuoteRequest  `json:"request"`
	ProviderQuote ProviderQuote `json:"provider_quote"`
	// ToValue is the output after referral fees, used for ranking.
	ToValue     string `json:"to_value"`
	ToMinValue  string `json:"to_min_value"`
	ReferralBps uint32 `json:"referral_bps"`
	ReferralFee string `json:"referral_fee"`
	SlippageBps uint32 `json:"slippage_bps"`
}

func (q SwapQuote) Provider() ProviderType {
	return q.ProviderQuote.Provider
}

type ApprovalData struct {
	Token   string `json:"token"`
	Spender string `json:"spender"`
	Value   string `json:"value"`
}

// QuoteData is the executable transaction payload of a quote.
type QuoteData struct {
	To       string        `json:"to"`
	Value    string        `json:"value"`
	Data     string        `json:"data"`
	Memo     string        `json:"memo,omitempty"`
	GasLimit string        `json:"gas_limit,omitempty"`
	Approval *ApprovalData `json:"approval,omitempty"`
}

type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusFailed    SwapStatus = "failed"
	SwapStatusRefunded  SwapStatus = "refunded"
)

type SwapResult struct {
	Status    SwapStatus  `json:"status"`
	FromChain chain.Chain `json:"from_chain"`
	ToChain   chain.Chain `json:"to_chain,omitempty"`
	ToTxHash  string      `json:"to_tx_hash,omitempty"`
	ToValue   string      `json:"to_value,omitempty"`
}

func parseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return v, true
}
