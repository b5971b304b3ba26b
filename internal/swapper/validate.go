package swapper

import (
	"github.com/gemwalletcom/swapper/internal/address"
)

// validateRequest checks the request shape and fills defaults. It never
// performs network calls.
func validateRequest(req QuoteRequest, defaultSlippage uint32) (QuoteRequest, error) {
	from, to := req.FromAsset.ID, req.ToAsset.ID
	if !from.Chain.Valid() {
		return req, NewError(KindNotSupportedChain, "unknown chain %q", from.Chain)
	}
	if !to.Chain.Valid() {
		return req, NewError(KindNotSupportedChain, "unknown chain %q", to.Chain)
	}
	if from.Equal(to) {
		return req, NewError(KindNotSupportedPair, "cannot swap %s to itself", from)
	}

	value, ok := req.ValueBig()
	if !ok {
		return req, NewError(KindInvalidAmount, "invalid value %q", req.Value)
	}
	if value.Sign() <= 0 {
		return req, NewError(KindInvalidAmount, "value must be positive, got %s", value)
	}
	if req.FromAsset.Decimals < 0 || req.ToAsset.Decimals < 0 {
		return req, NewError(KindInvalidAmount, "negative decimals")
	}

	if err := address.Validate(from.Chain, req.WalletAddress); err != nil {
		return req, WrapError(KindInvalidAddress, err, "wallet address")
	}
	if req.DestinationAddress != "" {
		if err := address.Validate(to.Chain, req.DestinationAddress); err != nil {
			return req, WrapError(KindInvalidAddress, err, "destination address")
		}
	} else if req.IsCrossChain() {
		return req, NewError(KindInvalidAddress, "destination address required for cross chain swap")
	}

	if req.Options.SlippageBps > bpsDenominator {
		return req, NewError(KindInvalidAmount, "slippage %d bps out of range", req.Options.SlippageBps)
	}
	if req.Options.SlippageBps == 0 {
		req.Options.SlippageBps = defaultSlippage
	}

	return transformRequest(req), nil
}
