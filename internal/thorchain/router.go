package thorchain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const routerABI = `[{
	"name": "depositWithExpiry",
	"type": "function",
	"stateMutability": "payable",
	"inputs": [
		{"name": "vault", "type": "address"},
		{"name": "asset", "type": "address"},
		{"name": "amount", "type": "uint256"},
		{"name": "memo", "type": "string"},
		{"name": "expiration", "type": "uint256"}
	],
	"outputs": []
}]`

var parsedRouterABI = mustParseABI(routerABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid router abi: %v", err))
	}
	return parsed
}

func packDepositWithExpiry(vault, asset common.Address, amount *big.Int, memo string, expiry *big.Int) ([]byte, error) {
	data, err := parsedRouterABI.Pack("depositWithExpiry", vault, asset, amount, memo, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to pack depositWithExpiry: %w", err)
	}
	return data, nil
}
