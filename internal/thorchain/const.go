package thorchain

import (
	"fmt"

	"github.com/gemwalletcom/swapper/internal/chain"
)

const (
	thorDecimals = 8

	streamingInterval = "1"
	streamingQuantity = "0"

	outboundDelaySeconds = 60
	depositGasLimit      = "90000"
	defaultExpirySeconds = 86400
)

type thorNetwork string

const (
	btc  thorNetwork = "BTC"
	eth  thorNetwork = "ETH"
	bsc  thorNetwork = "BSC"
	base thorNetwork = "BASE"
	avax thorNetwork = "AVAX"
	ltc  thorNetwork = "LTC"
	doge thorNetwork = "DOGE"
	bch  thorNetwork = "BCH"
	tron thorNetwork = "TRON"
	thor thorNetwork = "THOR"
)

type networkInfo struct {
	chain chain.Chain
	// short is the memo abbreviation of the native asset.
	short            string
	blockTimeSeconds uint32
}

var networks = map[thorNetwork]networkInfo{
	btc:  {chain: chain.Bitcoin, short: "b", blockTimeSeconds: 600},
	eth:  {chain: chain.Ethereum, short: "e", blockTimeSeconds: 12},
	bsc:  {chain: chain.SmartChain, short: "s", blockTimeSeconds: 1},
	base: {chain: chain.Base, short: "f", blockTimeSeconds: 2},
	avax: {chain: chain.AvalancheC, short: "a", blockTimeSeconds: 2},
	ltc:  {chain: chain.Litecoin, short: "l", blockTimeSeconds: 150},
	doge: {chain: chain.Doge, short: "d", blockTimeSeconds: 60},
	bch:  {chain: chain.BitcoinCash, short: "c", blockTimeSeconds: 600},
	tron: {chain: chain.Tron, short: "TRON.TRX", blockTimeSeconds: 3},
	thor: {chain: chain.Thorchain, short: "r", blockTimeSeconds: 6},
}

func toThor(c chain.Chain) (thorNetwork, error) {
	for n, info := range networks {
		if info.chain == c {
			return n, nil
		}
	}
	return "", fmt.Errorf("chain %s is not supported by thorchain", c)
}

func fromThor(n thorNetwork) (chain.Chain, bool) {
	info, ok := networks[n]
	return info.chain, ok
}

func supportedChains() []chain.Chain {
	list := make([]chain.Chain, 0, len(networks))
	for _, info := range networks {
		list = append(list, info.chain)
	}
	chain.Sort(list)
	return list
}
