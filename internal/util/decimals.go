package util

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// IsNativeToken checks if the token address represents a native token
func IsNativeToken(token string) bool {
	return token == "" || strings.EqualFold(token, "native")
}

// ToBaseUnits converts a human-readable amount to base units, truncating
// digits beyond decimals.
// e.g., "10" USDC (6 decimals) -> "10000000"
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Shift(decimals).Truncate(0).BigInt(), nil
}

// FromBaseUnits converts base units to a human-readable amount
// e.g., "10000000" with 6 decimals -> "10"
func FromBaseUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// FormatBaseUnits is FromBaseUnits for decimal strings. Invalid input is
// returned unchanged.
func FormatBaseUnits(amount string, decimals int32) string {
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return amount
	}
	return FromBaseUnits(v, decimals)
}

// ConvertDecimals rescales an amount between two precisions, truncating
// when precision is lost.
func ConvertDecimals(amount *big.Int, from, to int32) *big.Int {
	if from == to {
		return new(big.Int).Set(amount)
	}
	return decimal.NewFromBigInt(amount, 0).Shift(to - from).Truncate(0).BigInt()
}
