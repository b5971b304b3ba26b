package thorchain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gemwalletcom/swapper/internal/chain"
)

func TestSwapMemo(t *testing.T) {
	tests := []struct {
		name        string
		asset       string
		destination string
		limit       string
		affiliate   string
		bps         uint32
		expected    string
	}{
		{
			name:        "native bsc",
			asset:       "s",
			destination: "0x1234567890abcdef",
			limit:       "0",
			affiliate:   "g1",
			bps:         50,
			expected:    "=:s:0x1234567890abcdef:0/1/0:g1:50",
		},
		{
			name:        "token",
			asset:       "ETH.USDT-0XDAC17F958D2EE523A2206206994597C13D831EC7",
			destination: "0x1234567890abcdef",
			limit:       "1500",
			affiliate:   "g1",
			bps:         50,
			expected:    "=:ETH.USDT-0XDAC17F958D2EE523A2206206994597C13D831EC7:0x1234567890abcdef:1500/1/0:g1:50",
		},
		{
			name:        "bitcoin cash prefix stripped",
			asset:       "c",
			destination: "bitcoincash:qpcns7lget89x9km0t8ry5fk52e8lhl53q0a64gd65",
			limit:       "0",
			affiliate:   "g1",
			bps:         50,
			expected:    "=:c:qpcns7lget89x9km0t8ry5fk52e8lhl53q0a64gd65:0/1/0:g1:50",
		},
		{
			name:        "no affiliate",
			asset:       "d",
			destination: "DTXyzD8ZPNtjC8Z5CgLxobCz4ZN9F5yRQF",
			limit:       "42",
			expected:    "=:d:DTXyzD8ZPNtjC8Z5CgLxobCz4ZN9F5yRQF:42/1/0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, swapMemo(tt.asset, tt.destination, tt.limit, tt.affiliate, tt.bps))
		})
	}
}

func TestParseMemo_DestinationChain(t *testing.T) {
	tests := []struct {
		memo     string
		expected chain.Chain
		ok       bool
	}{
		{memo: "=:ETH.USDT:0x858734a6353C9921a78fB3c937c8E20Ba6f36902:1635978e6/1/0:-_/ll:0/150", expected: chain.Ethereum, ok: true},
		{memo: "=:e:0x858734a6353C9921a78fB3c937c8E20Ba6f36902:0/1/0", expected: chain.Ethereum, ok: true},
		{memo: "=:b:bc1qxyz:0/1/0:g1:50", expected: chain.Bitcoin, ok: true},
		{memo: "SWAP:BSC.BNB:0xabc", expected: chain.SmartChain, ok: true},
		{memo: "=:r:thor1xyz", expected: chain.Thorchain, ok: true},
		{memo: "=:GAIA.ATOM:cosmos1xyz", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.memo, func(t *testing.T) {
			parsed, ok := parseMemo(tt.memo)
			assert.True(t, ok)
			dest, ok := parsed.destinationChain()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, dest)
		})
	}

	_, ok := parseMemo("OUT:ABC")
	assert.False(t, ok)
}

func TestIsRefundMemo(t *testing.T) {
	assert.True(t, isRefundMemo("REFUND:9999A5A08D"))
	assert.True(t, isRefundMemo("refund:abc"))
	assert.False(t, isRefundMemo("OUT:9999A5A08D"))
}
