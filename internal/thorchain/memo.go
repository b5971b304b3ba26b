package thorchain

import (
	"fmt"
	"strings"

	"github.com/gemwalletcom/swapper/internal/chain"
)

// swapMemo formats =:ASSET:DEST:LIMIT/INTERVAL/QUANTITY[:AFFILIATE:BPS].
func swapMemo(asset, destination, limit, affiliate string, bps uint32) string {
	destination = strings.TrimPrefix(destination, "bitcoincash:")
	memo := fmt.Sprintf("=:%s:%s:%s/%s/%s", asset, destination, limit, streamingInterval, streamingQuantity)
	if affiliate != "" && bps > 0 {
		memo += fmt.Sprintf(":%s:%d", affiliate, bps)
	}
	return memo
}

type parsedMemo struct {
	action  string
	asset   string
	address string
}

func parseMemo(memo string) (parsedMemo, bool) {
	parts := strings.Split(memo, ":")
	if len(parts) < 3 {
		return parsedMemo{}, false
	}
	return parsedMemo{action: parts[0], asset: parts[1], address: parts[2]}, true
}

// destinationChain resolves both NETWORK.SYMBOL and short asset forms.
func (m parsedMemo) destinationChain() (chain.Chain, bool) {
	name := m.asset
	if i := strings.IndexAny(name, ".~"); i >= 0 {
		return fromThor(thorNetwork(strings.ToUpper(name[:i])))
	}
	for n, info := range networks {
		if strings.EqualFold(info.short, name) || strings.EqualFold(string(n), name) {
			return info.chain, true
		}
	}
	return "", false
}

func isRefundMemo(memo string) bool {
	return strings.HasPrefix(strings.ToUpper(memo), "REFUND")
}
