package chain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Chain string

const (
	Ethereum    Chain = "ethereum"
	SmartChain  Chain = "smartchain"
	Base        Chain = "base"
	Arbitrum    Chain = "arbitrum"
	Optimism    Chain = "optimism"
	Polygon     Chain = "polygon"
	AvalancheC  Chain = "avalanchec"
	Bitcoin     Chain = "bitcoin"
	BitcoinCash Chain = "bitcoincash"
	Litecoin    Chain = "litecoin"
	Doge        Chain = "doge"
	Solana      Chain = "solana"
	Thorchain   Chain = "thorchain"
	Near        Chain = "near"
	Tron        Chain = "tron"
	Sui         Chain = "sui"
	Ton         Chain = "ton"
)

// Family groups chains that share address format and referral settings.
type Family string

const (
	FamilyEvm       Family = "evm"
	FamilyBitcoin   Family = "bitcoin"
	FamilySolana    Family = "solana"
	FamilyThorchain Family = "thorchain"
	FamilyNear      Family = "near"
	FamilyTron      Family = "tron"
	FamilySui       Family = "sui"
	FamilyTon       Family = "ton"
)

type chainInfo struct {
	family   Family
	symbol   string
	decimals int32
	evmID    int64
}

var chains = map[Chain]chainInfo{
	Ethereum:    {family: FamilyEvm, symbol: "ETH", decimals: 18, evmID: 1},
	SmartChain:  {family: FamilyEvm, symbol: "BNB", decimals: 18, evmID: 56},
	Base:        {family: FamilyEvm, symbol: "ETH", decimals: 18, evmID: 8453},
	Arbitrum:    {family: FamilyEvm, symbol: "ETH", decimals: 18, evmID: 42161},
	Optimism:    {family: FamilyEvm, symbol: "ETH", decimals: 18, evmID: 10},
	Polygon:     {family: FamilyEvm, symbol: "POL", decimals: 18, evmID: 137},
	AvalancheC:  {family: FamilyEvm, symbol: "AVAX", decimals: 18, evmID: 43114},
	Bitcoin:     {family: FamilyBitcoin, symbol: "BTC", decimals: 8},
	BitcoinCash: {family: FamilyBitcoin, symbol: "BCH", decimals: 8},
	Litecoin:    {family: FamilyBitcoin, symbol: "LTC", decimals: 8},
	Doge:        {family: FamilyBitcoin, symbol: "DOGE", decimals: 8},
	Solana:      {family: FamilySolana, symbol: "SOL", decimals: 9},
	Thorchain:   {family: FamilyThorchain, symbol: "RUNE", decimals: 8},
	Near:        {family: FamilyNear, symbol: "NEAR", decimals: 24},
	Tron:        {family: FamilyTron, symbol: "TRX", decimals: 6},
	Sui:         {family: FamilySui, symbol: "SUI", decimals: 9},
	Ton:         {family: FamilyTon, symbol: "TON", decimals: 9},
}

var ErrUnknownChain = errors.New("unknown chain")

func FromString(s string) (Chain, error) {
	c := Chain(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := chains[c]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChain, s)
	}
	return c, nil
}

// All returns every known chain sorted by name.
func All() []Chain {
	res := make([]Chain, 0, len(chains))
	for c := range chains {
		res = append(res, c)
	}
	Sort(res)
	return res
}

func Sort(list []Chain) {
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
}

func (c Chain) String() string {
	return string(c)
}

func (c Chain) Valid() bool {
	_, ok := chains[c]
	return ok
}

func (c Chain) Family() Family {
	return chains[c].family
}

func (c Chain) IsEvm() bool {
	return chains[c].family == FamilyEvm
}

func (c Chain) IsUtxo() bool {
	return chains[c].family == FamilyBitcoin
}

func (c Chain) EvmID() (int64, error) {
	info, ok := chains[c]
	if !ok || info.family != FamilyEvm {
		return 0, fmt.Errorf("chain %s is not evm", c)
	}
	return info.evmID, nil
}

func (c Chain) NativeSymbol() (string, error) {
	info, ok := chains[c]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChain, c)
	}
	return info.symbol, nil
}

func (c Chain) NativeDecimals() (int32, error) {
	info, ok := chains[c]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownChain, c)
	}
	return info.decimals, nil
}
