package thorchain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/txscript"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/libhttp"
	"github.com/gemwalletcom/swapper/internal/swapper"
	"github.com/gemwalletcom/swapper/internal/util"
)

const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// routeData is carried inside the quote so the transaction can be built
// without re-quoting.
type routeData struct {
	InboundAddress string `json:"inbound_address"`
	Router         string `json:"router,omitempty"`
	Expiry         int64  `json:"expiry,omitempty"`
	MemoAsset      string `json:"memo_asset"`
}

type Provider struct {
	client *Client
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewProvider(client *Client, logger logrus.FieldLogger) *Provider {
	return &Provider{
		client: client,
		logger: logger.WithField("provider", swapper.ProviderThorchain),
		now:    time.Now,
	}
}

func (p *Provider) Provider() swapper.ProviderType {
	return swapper.ProviderType{
		ID:       swapper.ProviderThorchain,
		Name:     "THORChain",
		Protocol: "thorchain",
		Mode: swapper.ProviderMode{
			Kind:   swapper.ModeOmniChain,
			Chains: []chain.Chain{chain.Thorchain},
		},
		FeeKey: swapper.FeeKeyThorchain,
	}
}

func (p *Provider) SupportedChains() []chain.Chain {
	return supportedChains()
}

func (p *Provider) FetchQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.ProviderQuote, error) {
	value, ok := req.ValueBig()
	if !ok {
		return nil, swapper.NewError(swapper.KindInvalidAmount, "invalid value %q", req.Value)
	}

	from, err := p.client.resolveAsset(ctx, req.FromAsset.ID)
	if err != nil {
		return nil, err
	}
	to, err := p.client.resolveAsset(ctx, req.ToAsset.ID)
	if err != nil {
		return nil, err
	}

	thorAmount := util.ConvertDecimals(value, req.FromAsset.Decimals, thorDecimals)
	if thorAmount.Sign() <= 0 {
		return nil, swapper.NewInputAmountTooSmall(util.ConvertDecimals(big.NewInt(1), thorDecimals, req.FromAsset.Decimals).String())
	}

	// RUNE deposits do not go through an inbound vault.
	if from.network != thor {
		inbound, er := p.client.getInboundAddress(ctx, from.network)
		if er != nil {
			return nil, mapError(er)
		}
		if inbound.tradingHalted() {
			return nil, swapper.NewError(swapper.KindNoQuoteAvailable, "trading halted on %s", from.network)
		}
		if er = checkMinimum(thorAmount, inbound.DustThreshold, req.FromAsset.Decimals); er != nil {
			return nil, er
		}
	}

	fee := swapper.ReferralFor(p.Provider(), req)
	quoteReq := quoteSwapRequest{
		FromAsset:         from.name,
		ToAsset:           to.name,
		Amount:            thorAmount.String(),
		Destination:       req.Recipient(),
		StreamingInterval: streamingInterval,
		StreamingQuantity: streamingQuantity,
	}
	if fee.IsSet() {
		quoteReq.Affiliate = fee.Address
		quoteReq.AffiliateBps = strconv.FormatUint(uint64(fee.Bps), 10)
	}

	quote, err := p.client.getQuote(ctx, quoteReq)
	if err != nil {
		return nil, mapError(err)
	}
	if err = checkMinimum(thorAmount, quote.RecommendedMinAmountIn, req.FromAsset.Decimals); err != nil {
		return nil, err
	}

	expected, ok := new(big.Int).SetString(quote.ExpectedAmountOut, 10)
	if !ok {
		return nil, swapper.NewError(swapper.KindComputeQuoteError, "invalid expected_amount_out %q", quote.ExpectedAmountOut)
	}

	raw, err := json.Marshal(routeData{
		InboundAddress: quote.InboundAddress,
		Router:         quote.Router,
		Expiry:         quote.Expiry,
		MemoAsset:      to.memoName(),
	})
	if err != nil {
		return nil, swapper.WrapError(swapper.KindComputeQuoteError, err, "encode route data")
	}

	result := &swapper.ProviderQuote{
		Provider:  p.Provider(),
		FromValue: req.Value,
		ToValue:   util.ConvertDecimals(expected, thorDecimals, req.ToAsset.Decimals).String(),
		Routes: []swapper.Route{{
			Input:     req.FromAsset.ID,
			Output:    req.ToAsset.ID,
			RouteData: raw,
		}},
		EtaSeconds:       etaSeconds(to.network, quote.TotalSwapSeconds),
		ReferralIncluded: true,
	}
	if quote.Expiry > 0 {
		result.ValidUntil = time.Unix(quote.Expiry, 0)
	}
	if total, ok := new(big.Int).SetString(quote.Fees.Total, 10); ok {
		result.Fees = append(result.Fees, swapper.Fee{
			Asset:  req.ToAsset.ID,
			Amount: util.ConvertDecimals(total, thorDecimals, req.ToAsset.Decimals).String(),
			Kind:   "network",
		})
	}

	p.logger.WithFields(logrus.Fields{
		"from_asset": from.name,
		"to_asset":   to.name,
		"amount":     thorAmount.String(),
		"expected":   quote.ExpectedAmountOut,
	}).Debug("thorchain quote")
	return result, nil
}

func (p *Provider) FetchQuoteData(ctx context.Context, quote swapper.SwapQuote) (*swapper.QuoteData, error) {
	req := quote.Request
	if len(quote.ProviderQuote.Routes) == 0 {
		return nil, swapper.NewError(swapper.KindInvalidRoute, "missing route")
	}
	var route routeData
	if err := json.Unmarshal(quote.ProviderQuote.Routes[0].RouteData, &route); err != nil {
		return nil, swapper.WrapError(swapper.KindInvalidRoute, err, "decode route data")
	}

	value, ok := req.ValueBig()
	if !ok {
		return nil, swapper.NewError(swapper.KindInvalidAmount, "invalid value %q", req.Value)
	}
	minOut, ok := new(big.Int).SetString(quote.ToMinValue, 10)
	if !ok {
		minOut = big.NewInt(0)
	}

	fromChain := req.FromAsset.ID.Chain
	network, err := toThor(fromChain)
	if err != nil {
		return nil, swapper.WrapError(swapper.KindNotSupportedChain, err, "chain not supported")
	}
	if network != thor {
		inbound, er := p.client.getInboundAddress(ctx, network)
		if er != nil {
			return nil, mapError(er)
		}
		if inbound.tradingHalted() {
			return nil, swapper.NewError(swapper.KindNoQuoteAvailable, "trading halted on %s", network)
		}
		if !strings.EqualFold(inbound.Address, route.InboundAddress) {
			return nil, swapper.NewError(swapper.KindInvalidRoute, "inbound vault for %s rotated, quote again", network)
		}
	}

	fee := swapper.ReferralFor(p.Provider(), req)
	limit := util.ConvertDecimals(minOut, req.ToAsset.Decimals, thorDecimals)
	memo := swapMemo(route.MemoAsset, req.Recipient(), limit.String(), fee.Address, fee.Bps)

	switch {
	case fromChain.IsEvm() && !req.FromAsset.ID.IsNative():
		return p.routerDeposit(route, req.FromAsset.ID.TokenID, value, memo)
	case fromChain.IsEvm():
		return &swapper.QuoteData{
			To:    route.InboundAddress,
			Value: value.String(),
			Data:  hexutil.Encode([]byte(memo)),
			Memo:  memo,
		}, nil
	case fromChain.IsUtxo():
		script, er := txscript.NullDataScript([]byte(memo))
		if er != nil {
			return nil, swapper.WrapError(swapper.KindTransactionError, er, "memo output")
		}
		return &swapper.QuoteData{
			To:    route.InboundAddress,
			Value: value.String(),
			Data:  hex.EncodeToString(script),
			Memo:  memo,
		}, nil
	default:
		return &swapper.QuoteData{
			To:    route.InboundAddress,
			Value: value.String(),
			Memo:  memo,
		}, nil
	}
}

// routerDeposit builds a depositWithExpiry call; the router pulls the token
// so an allowance for the router is required.
func (p *Provider) routerDeposit(route routeData, token string, amount *big.Int, memo string) (*swapper.QuoteData, error) {
	if route.Router == "" {
		return nil, swapper.NewError(swapper.KindInvalidRoute, "missing router address")
	}
	expiry := route.Expiry
	if expiry <= 0 {
		expiry = p.now().Unix() + defaultExpirySeconds
	}

	data, err := packDepositWithExpiry(
		common.HexToAddress(route.InboundAddress),
		common.HexToAddress(token),
		amount,
		memo,
		big.NewInt(expiry),
	)
	if err != nil {
		return nil, swapper.WrapError(swapper.KindABIError, err, "router call")
	}

	return &swapper.QuoteData{
		To:       route.Router,
		Value:    "0",
		Data:     hexutil.Encode(data),
		Memo:     memo,
		GasLimit: depositGasLimit,
		Approval: &swapper.ApprovalData{
			Token:   token,
			Spender: route.Router,
			Value:   amount.String(),
		},
	}, nil
}

func (p *Provider) SwapStatus(ctx context.Context, c chain.Chain, txHash string) (*swapper.SwapResult, error) {
	status, err := p.client.getTxStatus(ctx, txHash)
	if err != nil {
		return nil, mapError(err)
	}

	res := &swapper.SwapResult{
		Status:    swapper.SwapStatusPending,
		FromChain: c,
	}
	if memo, ok := parseMemo(status.Tx.Memo); ok {
		if dest, ok := memo.destinationChain(); ok {
			res.ToChain = dest
		}
	}

	for _, out := range status.OutTxs {
		if isRefundMemo(out.Memo) {
			res.Status = swapper.SwapStatusRefunded
			res.ToChain = c
			res.ToTxHash = out.ID
			return res, nil
		}
	}
	for _, out := range status.OutTxs {
		if out.ID != "" && out.ID != zeroHash {
			res.ToTxHash = out.ID
			break
		}
	}

	stages := status.Stages
	switch {
	case stages.OutboundSigned != nil && stages.OutboundSigned.Completed:
		res.Status = swapper.SwapStatusCompleted
	case stages.OutboundSigned == nil && stages.SwapFinalised != nil && stages.SwapFinalised.Completed && len(status.OutTxs) > 0:
		res.Status = swapper.SwapStatusCompleted
	}
	return res, nil
}

// checkMinimum compares an 8 decimal amount against a THORChain minimum and
// reports the minimum in the asset's own decimals.
func checkMinimum(thorAmount *big.Int, minimum string, decimals int32) error {
	if minimum == "" {
		return nil
	}
	minAmount, ok := new(big.Int).SetString(minimum, 10)
	if !ok || thorAmount.Cmp(minAmount) >= 0 {
		return nil
	}
	return swapper.NewInputAmountTooSmall(util.ConvertDecimals(minAmount, thorDecimals, decimals).String())
}

func etaSeconds(destination thorNetwork, totalSwapSeconds int64) uint32 {
	eta := networks[destination].blockTimeSeconds + outboundDelaySeconds
	if totalSwapSeconds > 0 {
		eta += uint32(totalSwapSeconds)
	}
	return eta
}

// mapError classifies thornode failures. Context errors pass through so the
// caller can tell a timeout from a cancellation.
func mapError(err error) error {
	var swapErr *swapper.Error
	if errors.As(err, &swapErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	httpErr, ok := libhttp.AsHTTPError(err)
	if !ok {
		return swapper.WrapError(swapper.KindNetworkError, err, "thornode request failed")
	}
	if httpErr.StatusCode >= 500 {
		return swapper.WrapError(swapper.KindNetworkError, err, "thornode unavailable")
	}
	body := strings.ToLower(string(httpErr.Body))
	if strings.Contains(body, "dust") || strings.Contains(body, "less than") || strings.Contains(body, "not enough asset to pay for fees") {
		return swapper.WrapError(swapper.KindInputAmountTooSmall, err, "amount below thorchain minimum")
	}
	return swapper.WrapError(swapper.KindNoQuoteAvailable, err, "thornode rejected quote")
}
