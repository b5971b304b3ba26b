package oneinch

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/libhttp"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

var supportedChains = []chain.Chain{
	chain.Arbitrum,
	chain.AvalancheC,
	chain.Base,
	chain.Ethereum,
	chain.Optimism,
	chain.Polygon,
	chain.SmartChain,
}

type routeData struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

type Provider struct {
	client *Client
	logger logrus.FieldLogger
}

func NewProvider(client *Client, logger logrus.FieldLogger) *Provider {
	return &Provider{
		client: client,
		logger: logger.WithField("provider", swapper.ProviderOneInch),
	}
}

func (p *Provider) Provider() swapper.ProviderType {
	return swapper.ProviderType{
		ID:       swapper.ProviderOneInch,
		Name:     "1inch",
		Protocol: "1inch",
		Mode:     swapper.ProviderMode{Kind: swapper.ModeOnChain},
		FeeKey:   swapper.FeeKeyEvm,
	}
}

func (p *Provider) SupportedChains() []chain.Chain {
	return supportedChains
}

func tokenAddress(id chain.AssetID) string {
	if id.IsNative() {
		return NativeTokenAddress
	}
	return id.TokenID
}

// bpsToPercent renders basis points the way the 1inch API expects them.
func bpsToPercent(bps uint32) string {
	return decimal.New(int64(bps), -2).String()
}

func (p *Provider) validateSwap(req swapper.QuoteRequest) error {
	from, to := req.FromAsset.ID.Chain, req.ToAsset.ID.Chain
	if !from.IsEvm() {
		return swapper.NewError(swapper.KindNotSupportedChain, "from chain %s is not EVM", from)
	}
	if from != to {
		return swapper.NewError(swapper.KindNotSupportedPair, "1inch only supports same-chain swaps: from=%s, to=%s", from, to)
	}
	return nil
}

func (p *Provider) FetchQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.ProviderQuote, error) {
	if err := p.validateSwap(req); err != nil {
		return nil, err
	}

	src, dst := tokenAddress(req.FromAsset.ID), tokenAddress(req.ToAsset.ID)
	q := quoteRequest{
		Src:        src,
		Dst:        dst,
		Amount:     req.Value,
		IncludeGas: true,
	}
	if fee := swapper.ReferralFor(p.Provider(), req); fee.IsSet() {
		q.Fee = bpsToPercent(fee.Bps)
	}

	resp, err := p.client.GetQuote(ctx, req.FromAsset.ID.Chain, q)
	if err != nil {
		return nil, mapError(err)
	}
	if _, ok := new(big.Int).SetString(resp.DstAmount, 10); !ok {
		return nil, swapper.NewError(swapper.KindComputeQuoteError, "invalid dstAmount %q", resp.DstAmount)
	}

	raw, err := json.Marshal(routeData{Src: src, Dst: dst})
	if err != nil {
		return nil, swapper.WrapError(swapper.KindComputeQuoteError, err, "encode route data")
	}
	route := swapper.Route{
		Input:     req.FromAsset.ID,
		Output:    req.ToAsset.ID,
		RouteData: raw,
	}
	if resp.Gas > 0 {
		route.GasLimit = strconv.FormatInt(resp.Gas, 10)
	}

	return &swapper.ProviderQuote{
		Provider:  p.Provider(),
		FromValue: req.Value,
		ToValue:   resp.DstAmount,
		Routes:    []swapper.Route{route},
		// 1inch deducts the fee param from dstAmount.
		ReferralIncluded: true,
	}, nil
}

func (p *Provider) FetchQuoteData(ctx context.Context, quote swapper.SwapQuote) (*swapper.QuoteData, error) {
	req := quote.Request
	if err := p.validateSwap(req); err != nil {
		return nil, err
	}
	ch := req.FromAsset.ID.Chain

	s := swapRequest{
		Src:              tokenAddress(req.FromAsset.ID),
		Dst:              tokenAddress(req.ToAsset.ID),
		Amount:           req.Value,
		From:             req.WalletAddress,
		Origin:           req.WalletAddress,
		Slippage:         bpsToPercent(quote.SlippageBps),
		DisableEstimate:  true,
		AllowPartialFill: false,
		Compatibility:    true,
	}
	if recipient := req.Recipient(); !strings.EqualFold(recipient, req.WalletAddress) {
		s.Receiver = recipient
	}
	if fee := swapper.ReferralFor(p.Provider(), req); fee.IsSet() {
		s.Fee = bpsToPercent(fee.Bps)
		s.Referrer = fee.Address
	}

	resp, err := p.client.GetSwap(ctx, ch, s)
	if err != nil {
		return nil, mapError(err)
	}
	if _, err = hexutil.Decode(resp.Tx.Data); err != nil {
		return nil, swapper.WrapError(swapper.KindTransactionError, err, "invalid tx data")
	}

	data := &swapper.QuoteData{
		To:    resp.Tx.To,
		Value: resp.Tx.Value,
		Data:  resp.Tx.Data,
	}
	if resp.Tx.Gas > 0 {
		data.GasLimit = strconv.FormatInt(resp.Tx.Gas, 10)
	}

	if !req.FromAsset.ID.IsNative() {
		approval, er := p.approval(ctx, ch, req.FromAsset.ID.TokenID, req.WalletAddress, req.Value)
		if er != nil {
			return nil, er
		}
		data.Approval = approval
	}

	p.logger.WithFields(logrus.Fields{
		"chain":      ch,
		"to":         data.To,
		"dst_amount": resp.DstAmount,
	}).Debug("1inch swap built")
	return data, nil
}

// approval returns nil when the router already has enough allowance.
func (p *Provider) approval(ctx context.Context, ch chain.Chain, token, wallet, amount string) (*swapper.ApprovalData, error) {
	spender, err := p.client.GetSpender(ctx, ch)
	if err != nil {
		return nil, mapError(err)
	}
	allowance, err := p.client.GetAllowance(ctx, ch, token, wallet)
	if err != nil {
		return nil, mapError(err)
	}

	current, ok := new(big.Int).SetString(allowance, 10)
	required, _ := new(big.Int).SetString(amount, 10)
	if ok && required != nil && current.Cmp(required) >= 0 {
		return nil, nil
	}
	return &swapper.ApprovalData{
		Token:   token,
		Spender: spender,
		Value:   amount,
	}, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	httpErr, ok := libhttp.AsHTTPError(err)
	if !ok {
		return swapper.WrapError(swapper.KindNetworkError, err, "1inch request failed")
	}
	if httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError {
		return swapper.WrapError(swapper.KindNetworkError, err, "1inch unavailable")
	}

	var body struct {
		Description string `json:"description"`
	}
	_ = json.Unmarshal(httpErr.Body, &body)
	desc := strings.ToLower(body.Description)
	switch {
	case strings.Contains(desc, "insufficient liquidity"):
		return swapper.WrapError(swapper.KindNoQuoteAvailable, err, "insufficient liquidity")
	case strings.Contains(desc, "amount is not set") || strings.Contains(desc, "too small"):
		return swapper.WrapError(swapper.KindInputAmountTooSmall, err, "amount too small")
	case strings.Contains(desc, "token") && strings.Contains(desc, "not supported"):
		return swapper.WrapError(swapper.KindNotSupportedAsset, err, "token not supported")
	default:
		return swapper.WrapError(swapper.KindNoQuoteAvailable, err, "1inch rejected request")
	}
}
