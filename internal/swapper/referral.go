package swapper

import (
	"strings"

	"github.com/gemwalletcom/swapper/internal/chain"
)

type FeeKey string

const (
	FeeKeyEvm       FeeKey = "evm"
	FeeKeyEvmBridge FeeKey = "evm_bridge"
	FeeKeySolana    FeeKey = "solana"
	FeeKeyThorchain FeeKey = "thorchain"
	FeeKeyNear      FeeKey = "near"
	FeeKeyTron      FeeKey = "tron"
	FeeKeySui       FeeKey = "sui"
	FeeKeyTon       FeeKey = "ton"
	// FeeKeyNone marks providers whose transactions cannot pay a referrer.
	// Their quotes carry no referral fee.
	FeeKeyNone FeeKey = "none"
)

type ReferralFee struct {
	Address string `json:"address"`
	Bps     uint32 `json:"bps"`
}

func (f ReferralFee) IsSet() bool {
	return f.Address != "" && f.Bps > 0
}

// ReferralFees holds one referral entry per chain family / protocol.
type ReferralFees struct {
	Evm       ReferralFee `json:"evm"`
	EvmBridge ReferralFee `json:"evm_bridge"`
	Solana    ReferralFee `json:"solana"`
	Thorchain ReferralFee `json:"thorchain"`
	Near      ReferralFee `json:"near"`
	Tron      ReferralFee `json:"tron"`
	Sui       ReferralFee `json:"sui"`
	Ton       ReferralFee `json:"ton"`
}

func (f ReferralFees) Get(key FeeKey) ReferralFee {
	switch key {
	case FeeKeyEvm:
		return f.Evm
	case FeeKeyEvmBridge:
		return f.EvmBridge
	case FeeKeySolana:
		return f.Solana
	case FeeKeyThorchain:
		return f.Thorchain
	case FeeKeyNear:
		return f.Near
	case FeeKeyTron:
		return f.Tron
	case FeeKeySui:
		return f.Sui
	case FeeKeyTon:
		return f.Ton
	default:
		return ReferralFee{}
	}
}

// WithBps returns a copy with every bps replaced.
func (f ReferralFees) WithBps(bps uint32) ReferralFees {
	for _, fee := range []*ReferralFee{&f.Evm, &f.EvmBridge, &f.Solana, &f.Thorchain, &f.Near, &f.Tron, &f.Sui, &f.Ton} {
		fee.Bps = bps
	}
	return f
}

// FeeKeyForChain maps a chain to its default referral entry.
func FeeKeyForChain(c chain.Chain) FeeKey {
	switch c.Family() {
	case chain.FamilyEvm:
		return FeeKeyEvm
	case chain.FamilySolana:
		return FeeKeySolana
	case chain.FamilyThorchain:
		return FeeKeyThorchain
	case chain.FamilyNear:
		return FeeKeyNear
	case chain.FamilyTron:
		return FeeKeyTron
	case chain.FamilySui:
		return FeeKeySui
	case chain.FamilyTon:
		return FeeKeyTon
	default:
		return ""
	}
}

// ReferralFor returns the referral fee applicable to a provider for a request.
func ReferralFor(p ProviderType, req QuoteRequest) ReferralFee {
	if req.Options.Fee == nil {
		return ReferralFee{}
	}
	key := p.FeeKey
	if key == "" {
		key = FeeKeyForChain(req.ToAsset.ID.Chain)
	}
	fee := req.Options.Fee.Get(key)
	if !fee.IsSet() {
		return ReferralFee{}
	}
	return fee
}

func isStableSwap(req QuoteRequest) bool {
	return strings.Contains(strings.ToUpper(req.FromAsset.Symbol), "USD") &&
		strings.Contains(strings.ToUpper(req.ToAsset.Symbol), "USD")
}

// transformRequest lowers referral fees for stablecoin to stablecoin swaps.
func transformRequest(req QuoteRequest) QuoteRequest {
	if req.Options.Fee == nil || !isStableSwap(req) {
		return req
	}
	fees := req.Options.Fee.WithBps(DefaultStableSwapReferralBps)
	req.Options.Fee = &fees
	return req
}
