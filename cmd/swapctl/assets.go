package main

import (
	"cmp"
	"fmt"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
	"github.com/gemwalletcom/swapper/internal/util"
)

type assetFlags struct {
	decimals int32
	symbol   string
}

// parseAsset reads <chain> or <chain>_<token>. Natives take decimals and
// symbol from the chain, tokens need explicit decimals.
func parseAsset(raw string, flags assetFlags) (swapper.SwapAsset, error) {
	id, err := chain.ParseAssetID(raw)
	if err != nil {
		return swapper.SwapAsset{}, err
	}
	if util.IsNativeToken(id.TokenID) {
		id = chain.NewNativeAsset(id.Chain)
	}

	if id.IsNative() {
		decimals, err := id.Chain.NativeDecimals()
		if err != nil {
			return swapper.SwapAsset{}, err
		}
		symbol, err := id.Chain.NativeSymbol()
		if err != nil {
			return swapper.SwapAsset{}, err
		}
		return swapper.SwapAsset{
			ID:       id,
			Symbol:   cmp.Or(flags.symbol, symbol),
			Decimals: decimals,
		}, nil
	}

	if flags.decimals <= 0 {
		return swapper.SwapAsset{}, fmt.Errorf("decimals are required for token %s", id)
	}
	return swapper.SwapAsset{
		ID:       id,
		Symbol:   cmp.Or(flags.symbol, id.TokenID),
		Decimals: flags.decimals,
	}, nil
}

func baseUnits(amount string, asset swapper.SwapAsset) (string, error) {
	v, err := util.ToBaseUnits(amount, asset.Decimals)
	if err != nil {
		return "", err
	}
	if v.Sign() <= 0 {
		return "", fmt.Errorf("amount must be positive: %s", amount)
	}
	return v.String(), nil
}

func humanAmount(value string, asset swapper.SwapAsset) string {
	return util.FormatBaseUnits(value, asset.Decimals) + " " + asset.Symbol
}
