package swapper

import (
	"cmp"
	"math/big"
	"slices"
	"time"
)

// ValidateQuote rejects provider quotes that cannot be turned into a SwapQuote.
func ValidateQuote(q ProviderQuote, now time.Time) error {
	if q.Provider.ID == "" {
		return NewError(KindComputeQuoteError, "quote without provider")
	}
	if _, err := nonNegative("from_value", q.FromValue); err != nil {
		return err
	}
	output, err := nonNegative("to_value", q.ToValue)
	if err != nil {
		return err
	}
	if q.ToMinValue != "" {
		minOutput, er := nonNegative("to_min_value", q.ToMinValue)
		if er != nil {
			return er
		}
		if minOutput.Cmp(output) > 0 {
			return NewError(KindComputeQuoteError, "min output %s above output %s", minOutput, output)
		}
	}
	if len(q.Routes) == 0 {
		return NewError(KindInvalidRoute, "quote has no routes")
	}
	for _, r := range q.Routes {
		if len(r.RouteData) == 0 {
			return NewError(KindInvalidRoute, "route %s -> %s has no route data", r.Input, r.Output)
		}
	}
	if !q.ValidUntil.IsZero() && !now.Before(q.ValidUntil) {
		return NewError(KindComputeQuoteError, "quote expired at %s", q.ValidUntil.UTC().Format(time.RFC3339))
	}
	return nil
}

// BuildQuote applies referral and slippage policy to a provider quote. It is
// deterministic: no clock, no randomness.
func BuildQuote(req QuoteRequest, q ProviderQuote) (SwapQuote, error) {
	output, err := nonNegative("to_value", q.ToValue)
	if err != nil {
		return SwapQuote{}, err
	}

	referral := ReferralFor(q.Provider, req)
	feeBps := uint32(0)
	if !q.ReferralIncluded {
		feeBps = referral.Bps
	}
	fee := mulBps(output, feeBps)
	net := new(big.Int).Sub(output, fee)

	slippage := min(req.Options.SlippageBps, bpsDenominator)
	floor := applySlippage(net, slippage)

	minOutput := floor
	if q.ToMinValue != "" {
		providerMin, er := nonNegative("to_min_value", q.ToMinValue)
		if er != nil {
			return SwapQuote{}, er
		}
		providerMin.Sub(providerMin, mulBps(providerMin, feeBps))
		if providerMin.Cmp(minOutput) > 0 {
			minOutput = providerMin
		}
	}
	if minOutput.Cmp(net) > 0 {
		minOutput = new(big.Int).Set(net)
	}

	return SwapQuote{
		Request:       req,
		ProviderQuote: q,
		ToValue:       net.String(),
		ToMinValue:    minOutput.String(),
		ReferralBps:   referral.Bps,
		ReferralFee:   fee.String(),
		SlippageBps:   slippage,
	}, nil
}

// RankQuotes orders quotes by net output descending, ties by priority
// ascending. The input slice is not modified.
func RankQuotes(quotes []SwapQuote, priority func(ProviderID) int) []SwapQuote {
	ranked := slices.Clone(quotes)
	slices.SortStableFunc(ranked, func(a, b SwapQuote) int {
		av, _ := parseAmount(a.ToValue)
		bv, _ := parseAmount(b.ToValue)
		if c := bv.Cmp(av); c != 0 {
			return c
		}
		return cmp.Compare(priority(a.Provider().ID), priority(b.Provider().ID))
	})
	return ranked
}

// mulBps returns amount * bps / 10000, truncated.
func mulBps(amount *big.Int, bps uint32) *big.Int {
	if bps == 0 {
		return new(big.Int)
	}
	res := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return res.Quo(res, big.NewInt(bpsDenominator))
}

// applySlippage returns amount * (10000 - bps) / 10000, truncated.
func applySlippage(amount *big.Int, bps uint32) *big.Int {
	res := new(big.Int).Mul(amount, big.NewInt(int64(bpsDenominator-bps)))
	return res.Quo(res, big.NewInt(bpsDenominator))
}

func nonNegative(field, value string) (*big.Int, error) {
	v, ok := parseAmount(value)
	if !ok {
		return nil, NewError(KindComputeQuoteError, "invalid %s %q", field, value)
	}
	if v.Sign() < 0 {
		return nil, NewError(KindComputeQuoteError, "negative %s %s", field, value)
	}
	return v, nil
}
