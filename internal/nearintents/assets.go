package nearintents

import (
	"strings"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

const (
	nearWrap   = "nep141:wrap.near"
	hotOmni    = "nep245:v2_1.omni.hot.tg:"
	hotNative  = "11111111111111111111"
	nativeKey  = ""
	usdtTron   = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	usdcSolana = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdtSolana = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	usdtTon    = "EQCxE6mUtQJKFnGfaROTKOt1lZbDiiX1kCixRv7Nw2Id_sDs"
)

// assets maps chain -> lowercased token id ("" for native) -> 1Click asset id.
var assets = map[chain.Chain]map[string]string{
	chain.Near: {
		nativeKey: nearWrap,
	},
	chain.Ethereum: {
		nativeKey: "nep141:eth.omft.near",
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": "nep141:eth-0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48.omft.near",
		"0xdac17f958d2ee523a2206206994597c13d831ec7": "nep141:eth-0xdac17f958d2ee523a2206206994597c13d831ec7.omft.near",
		"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599": "nep141:eth-0x2260fac5e5542a773aa44fbcfedf7c193bc2c599.omft.near",
		"0x6b175474e89094c44da98b954eedeac495271d0f": "nep141:eth-0x6b175474e89094c44da98b954eedeac495271d0f.omft.near",
	},
	chain.Arbitrum: {
		nativeKey: "nep141:arb.omft.near",
		"0xaf88d065e77c8cc2239327c5edb3a432268e5831": "nep141:arb-0xaf88d065e77c8cc2239327c5edb3a432268e5831.omft.near",
		"0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9": "nep141:arb-0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9.omft.near",
	},
	chain.Base: {
		nativeKey: "nep141:base.omft.near",
		"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": "nep141:base-0x833589fcd6edb6e08f4c7c32d4f71b54bda02913.omft.near",
	},
	chain.Optimism: {
		nativeKey: hotOmni + "10_" + hotNative,
		"0x0b2c639c533813f4aa9d7837caf62653d097ff85": hotOmni + "10_A2ewyUyDp6qsue1jqZsGypkCxRJ",
		"0x94b008aa00579c1307b0ef2c499ad98a8ce58e58": hotOmni + "10_359RPSJVdTxwTJT9TyGssr2rFoWo",
	},
	chain.AvalancheC: {
		nativeKey: hotOmni + "43114_" + hotNative,
		"0xb97ef9ef8734c71904d8002f8b6bc66dd9c48a6e": hotOmni + "43114_3atVJH3r5c4GqiSYmg9fECvjc47o",
		"0x9702230a8ea53601f5cd2dc00fdbc13d4df4a8c7": hotOmni + "43114_372BeH7ENZieCaabwkbWkBiTTgXp",
	},
	chain.SmartChain: {
		nativeKey: hotOmni + "56_" + hotNative,
		"0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d": hotOmni + "56_2w93GqMcEmQFDru84j3HZZWt557r",
		"0x55d398326f99059ff775485246999027b3197955": hotOmni + "56_2CMMyVTGZkeyNZTSvS5sarzfir6g",
	},
	chain.Polygon: {
		nativeKey: hotOmni + "137_" + hotNative,
		"0x3c499c542cef5e3811e1192ce70d8cc03d5c3359": hotOmni + "137_qiStmoQJDQPTebaPjgx5VBxZv6L",
		"0xc2132d05d31c914a87c6611c10748aeb04b58e8f": hotOmni + "137_3hpYoaLtt8MP1Z2GH1U473DMRKgr",
	},
	chain.Solana: {
		nativeKey:                   "nep141:sol.omft.near",
		strings.ToLower(usdcSolana): "nep141:sol-5ce3bf3a31af18be40ba30f721101b4341690186.omft.near",
		strings.ToLower(usdtSolana): "nep141:sol-c800a4bd850783ccb82c2b2c7e84175443606352.omft.near",
	},
	chain.Tron: {
		nativeKey:                 "nep141:tron.omft.near",
		strings.ToLower(usdtTron): "nep141:tron-d28a265909efecdcee7c5028585214ea0b96f015.omft.near",
	},
	chain.Ton: {
		nativeKey:                hotOmni + "1117_",
		strings.ToLower(usdtTon): hotOmni + "1117_3tsdfyziyc7EJbP2aULWSKU4toBaAcN4FdTgfm5W1mC4ouR",
	},
	chain.Sui: {
		nativeKey: "nep141:sui.omft.near",
	},
	chain.Bitcoin: {
		nativeKey: "nep141:btc.omft.near",
	},
	chain.BitcoinCash: {
		nativeKey: "nep141:bch.omft.near",
	},
	chain.Litecoin: {
		nativeKey: "nep141:ltc.omft.near",
	},
	chain.Doge: {
		nativeKey: "nep141:doge.omft.near",
	},
}

// reservedFees is kept back from max-amount native swaps to pay for the deposit.
var reservedFees = map[chain.Chain]string{
	chain.Ethereum:   "500000000000000",
	chain.Arbitrum:   "100000000000000",
	chain.Base:       "100000000000000",
	chain.Optimism:   "100000000000000",
	chain.SmartChain: "1000000000000000",
	chain.Polygon:    "100000000000000000",
	chain.AvalancheC: "10000000000000000",
	chain.Solana:     "5000000",
	chain.Bitcoin:    "10000",
	chain.Litecoin:   "100000",
	chain.Doge:       "100000000",
	chain.Near:       "10000000000000000000000",
}

func assetID(id chain.AssetID) (string, error) {
	chainAssets, ok := assets[id.Chain]
	if !ok {
		return "", swapper.NewError(swapper.KindNotSupportedChain, "near intents does not support %s", id.Chain)
	}
	asset, ok := chainAssets[strings.ToLower(id.TokenID)]
	if !ok {
		return "", swapper.NewError(swapper.KindNotSupportedAsset, "near intents does not support %s", id)
	}
	return asset, nil
}

func supportedChains() []chain.Chain {
	out := make([]chain.Chain, 0, len(assets))
	for c := range assets {
		out = append(out, c)
	}
	chain.Sort(out)
	return out
}
