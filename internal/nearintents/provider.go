package nearintents

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

const (
	swapTypeExactInput     = "EXACT_INPUT"
	depositTypeOriginChain = "ORIGIN_CHAIN"
	refundTypeOriginChain  = "ORIGIN_CHAIN"
	recipientTypeDestChain = "DESTINATION_CHAIN"
	defaultDeadline        = 30 * time.Minute
	statusSuccess          = "SUCCESS"
	statusRefunded         = "REFUNDED"
	statusFailed           = "FAILED"
)

type routeData struct {
	OriginAsset      string    `json:"origin_asset"`
	DestinationAsset string    `json:"destination_asset"`
	Amount           string    `json:"amount"`
	SlippageBps      uint32    `json:"slippage_bps"`
	RefundTo         string    `json:"refund_to"`
	Recipient        string    `json:"recipient"`
	Deadline         time.Time `json:"deadline"`
	// Referral is charged by 1Click as an app fee on the output.
	Referral swapper.ReferralFee `json:"referral"`
}

type Provider struct {
	api    API
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewProvider(api API, logger logrus.FieldLogger) *Provider {
	return &Provider{
		api:    api,
		logger: logger.WithField("provider", swapper.ProviderNearIntents),
		now:    time.Now,
	}
}

func (p *Provider) Provider() swapper.ProviderType {
	return swapper.ProviderType{
		ID:       swapper.ProviderNearIntents,
		Name:     "NEAR Intents",
		Protocol: "near_intents",
		Mode:     swapper.ProviderMode{Kind: swapper.ModeCrossChain},
		FeeKey:   swapper.FeeKeyNear,
	}
}

func (p *Provider) SupportedChains() []chain.Chain {
	return supportedChains()
}

// quoteAmount keeps a deposit fee back when the whole native balance is swapped.
func quoteAmount(req swapper.QuoteRequest) (string, error) {
	amount, ok := req.ValueBig()
	if !ok {
		return "", swapper.NewError(swapper.KindInvalidAmount, "invalid value %q", req.Value)
	}
	if !req.Options.UseMaxAmount || !req.FromAsset.ID.IsNative() {
		return amount.String(), nil
	}
	reserved, ok := reservedFees[req.FromAsset.ID.Chain]
	if !ok {
		return amount.String(), nil
	}
	fee, _ := new(big.Int).SetString(reserved, 10)
	if amount.Cmp(fee) <= 0 {
		return "", swapper.NewInputAmountTooSmall(new(big.Int).Add(fee, big.NewInt(1)).String())
	}
	return new(big.Int).Sub(amount, fee).String(), nil
}

func (p *Provider) route(req swapper.QuoteRequest) (routeData, error) {
	origin, err := assetID(req.FromAsset.ID)
	if err != nil {
		return routeData{}, err
	}
	destination, err := assetID(req.ToAsset.ID)
	if err != nil {
		return routeData{}, err
	}
	if req.IsCrossChain() && req.DestinationAddress == "" {
		return routeData{}, swapper.NewError(swapper.KindInvalidAddress, "destination address is required for cross chain swaps")
	}
	amount, err := quoteAmount(req)
	if err != nil {
		return routeData{}, err
	}

	return routeData{
		OriginAsset:      origin,
		DestinationAsset: destination,
		Amount:           amount,
		SlippageBps:      req.Options.SlippageBps,
		RefundTo:         req.WalletAddress,
		Recipient:        req.Recipient(),
		Deadline:         p.now().Add(defaultDeadline).UTC(),
		Referral:         swapper.ReferralFor(p.Provider(), req),
	}, nil
}

func (r routeData) request(dry bool) *oneclick.QuoteRequest {
	req := oneclick.NewQuoteRequest(
		dry,
		swapTypeExactInput,
		float32(r.SlippageBps),
		r.OriginAsset,
		depositTypeOriginChain,
		r.DestinationAsset,
		r.Amount,
		r.RefundTo,
		refundTypeOriginChain,
		r.Recipient,
		recipientTypeDestChain,
		r.Deadline,
	)
	if r.Referral.IsSet() {
		req.SetAppFees([]oneclick.AppFee{*oneclick.NewAppFee(r.Referral.Address, float32(r.Referral.Bps))})
	}
	return req
}

func (p *Provider) FetchQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.ProviderQuote, error) {
	route, err := p.route(req)
	if err != nil {
		return nil, err
	}

	quote, err := p.api.Quote(ctx, route.request(true))
	if err != nil {
		return nil, mapError(err)
	}
	if quote.AmountOut == "" {
		return nil, swapper.NewError(swapper.KindComputeQuoteError, "missing amountOut in near intents response")
	}

	raw, err := json.Marshal(route)
	if err != nil {
		return nil, swapper.WrapError(swapper.KindComputeQuoteError, err, "encode route data")
	}

	p.logger.WithFields(logrus.Fields{
		"origin":      route.OriginAsset,
		"destination": route.DestinationAsset,
		"amount_out":  quote.AmountOut,
	}).Debug("near intents quote")

	return &swapper.ProviderQuote{
		Provider:   p.Provider(),
		FromValue:  route.Amount,
		ToValue:    quote.AmountOut,
		ToMinValue: quote.MinAmountOut,
		Routes: []swapper.Route{{
			Input:     req.FromAsset.ID,
			Output:    req.ToAsset.ID,
			RouteData: raw,
		}},
		EtaSeconds:       quote.TimeEstimate,
		ReferralIncluded: route.Referral.IsSet(),
	}, nil
}

func (p *Provider) FetchQuoteData(ctx context.Context, quote swapper.SwapQuote) (*swapper.QuoteData, error) {
	var route routeData
	if err := json.Unmarshal(quote.ProviderQuote.Routes[0].RouteData, &route); err != nil {
		return nil, swapper.WrapError(swapper.KindInvalidRoute, err, "decode near intents route")
	}
	if now := p.now(); !route.Deadline.After(now) {
		route.Deadline = now.Add(defaultDeadline).UTC()
	}

	res, err := p.api.Quote(ctx, route.request(false))
	if err != nil {
		return nil, mapError(err)
	}
	if res.DepositAddress == "" {
		return nil, swapper.NewError(swapper.KindComputeQuoteError, "missing depositAddress in near intents response")
	}
	if res.AmountIn == "" {
		return nil, swapper.NewError(swapper.KindComputeQuoteError, "missing amountIn in near intents response")
	}

	p.logger.WithField("deposit_address", res.DepositAddress).Info("near intents deposit address issued")
	return &swapper.QuoteData{
		To:    res.DepositAddress,
		Value: res.AmountIn,
		Memo:  res.DepositMemo,
	}, nil
}

// SwapStatus looks up a swap by its deposit address.
func (p *Provider) SwapStatus(ctx context.Context, c chain.Chain, depositAddress string) (*swapper.SwapResult, error) {
	res, err := p.api.Status(ctx, depositAddress)
	if err != nil {
		return nil, mapError(err)
	}

	status := mapStatus(res.Status)
	result := &swapper.SwapResult{
		Status:    status,
		FromChain: c,
	}
	txs := res.DestTxs
	if status == swapper.SwapStatusRefunded {
		txs = res.OriginTxs
		result.ToChain = c
	}
	if len(txs) > 0 {
		result.ToTxHash = txs[0].Hash
	}
	return result, nil
}

func mapStatus(status string) swapper.SwapStatus {
	switch strings.ToUpper(status) {
	case statusSuccess, "SWAP_COMPLETED", "SWAP_COMPLETED_TX":
		return swapper.SwapStatusCompleted
	case statusRefunded, "SWAP_REFUNDED":
		return swapper.SwapStatusRefunded
	case statusFailed, "SWAP_FAILED", "SWAP_LIQUIDITY_TIMEOUT", "SWAP_RISK_FAILED":
		return swapper.SwapStatusFailed
	default:
		return swapper.SwapStatusPending
	}
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return swapper.WrapError(swapper.KindNetworkError, err, "near intents request failed")
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(msg, "too low"):
		return swapper.WrapError(swapper.KindInputAmountTooSmall, err, "amount too low")
	case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError:
		return swapper.WrapError(swapper.KindNetworkError, err, "near intents unavailable")
	case apiErr.StatusCode == http.StatusNotFound:
		return swapper.WrapError(swapper.KindNoQuoteAvailable, err, "deposit address not found")
	default:
		return swapper.WrapError(swapper.KindNoQuoteAvailable, err, "near intents rejected request")
	}
}
