package thorchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

const PoolStatusAvailable = "Available"

// thorAsset is an asset resolved to its THORChain notation.
type thorAsset struct {
	network thorNetwork
	// name is the full pool asset, e.g. ETH.USDC-0XA0B8...
	name    string
	isToken bool
	tokenID string
}

// memoName is the shortest asset form accepted in a swap memo.
func (a thorAsset) memoName() string {
	if a.isToken {
		return a.name
	}
	return networks[a.network].short
}

func nativeAsset(network thorNetwork) (thorAsset, error) {
	info, ok := networks[network]
	if !ok {
		return thorAsset{}, fmt.Errorf("unknown network %s", network)
	}
	symbol, err := info.chain.NativeSymbol()
	if err != nil {
		return thorAsset{}, fmt.Errorf("failed to get native symbol: %w", err)
	}
	return thorAsset{network: network, name: string(network) + "." + symbol}, nil
}

// resolveAsset maps an asset to its pool and checks the pool is available.
// Tokens are matched by contract address against NETWORK.SYMBOL-ADDRESS pools.
func (c *Client) resolveAsset(ctx context.Context, id chain.AssetID) (thorAsset, error) {
	network, err := toThor(id.Chain)
	if err != nil {
		return thorAsset{}, swapper.WrapError(swapper.KindNotSupportedChain, err, "chain not supported")
	}

	pools, err := c.getPools(ctx)
	if err != nil {
		return thorAsset{}, mapError(err)
	}

	if id.IsNative() {
		asset, er := nativeAsset(network)
		if er != nil {
			return thorAsset{}, swapper.WrapError(swapper.KindNotSupportedAsset, er, "native asset")
		}
		// RUNE is the settlement asset and has no pool.
		if network == thor {
			return asset, nil
		}
		for _, p := range pools {
			if p.Asset == asset.name {
				if p.Status != PoolStatusAvailable {
					return thorAsset{}, swapper.NewError(swapper.KindNotSupportedAsset, "pool %s is %s (not available)", p.Asset, p.Status)
				}
				return asset, nil
			}
		}
		return thorAsset{}, swapper.NewError(swapper.KindNotSupportedAsset, "no pool found for native %s", network)
	}

	networkPrefix := string(network) + "."
	targetAddr := strings.ToUpper(id.TokenID)
	for _, p := range pools {
		if !strings.HasPrefix(p.Asset, networkPrefix) {
			continue
		}
		if !strings.HasSuffix(strings.ToUpper(p.Asset), "-"+targetAddr) {
			continue
		}
		if p.Status != PoolStatusAvailable {
			return thorAsset{}, swapper.NewError(swapper.KindNotSupportedAsset, "pool %s is %s (not available)", p.Asset, p.Status)
		}
		return thorAsset{network: network, name: p.Asset, isToken: true, tokenID: id.TokenID}, nil
	}

	return thorAsset{}, swapper.NewError(swapper.KindNotSupportedAsset, "no pool found for %s on %s", id.TokenID, network)
}
