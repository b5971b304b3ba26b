package thorchain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gemwalletcom/swapper/internal/libhttp"
)

type Client struct {
	baseURL string
	http    *libhttp.Client
}

func NewClient(baseURL string, opts ...libhttp.Option) *Client {
	return &Client{
		baseURL: baseURL,
		http:    libhttp.NewClient(opts...),
	}
}

type quoteSwapRequest struct {
	FromAsset         string `url:"from_asset"`
	ToAsset           string `url:"to_asset"`
	Amount            string `url:"amount"`
	Destination       string `url:"destination,omitempty"`
	RefundAddress     string `url:"refund_address,omitempty"`
	StreamingInterval string `url:"streaming_interval,omitempty"`
	StreamingQuantity string `url:"streaming_quantity,omitempty"`
	ToleranceBps      string `url:"tolerance_bps,omitempty"`
	AffiliateBps      string `url:"affiliate_bps,omitempty"`
	Affiliate         string `url:"affiliate,omitempty"`
}

type quoteSwapResponse struct {
	InboundAddress             string    `json:"inbound_address"`
	InboundConfirmationSeconds int64     `json:"inbound_confirmation_seconds"`
	OutboundDelaySeconds       int64     `json:"outbound_delay_seconds"`
	Fees                       quoteFees `json:"fees"`
	Router                     string    `json:"router"`
	Expiry                     int64     `json:"expiry"`
	Warning                    string    `json:"warning"`
	DustThreshold              string    `json:"dust_threshold"`
	RecommendedMinAmountIn     string    `json:"recommended_min_amount_in"`
	Memo                       string    `json:"memo"`
	ExpectedAmountOut          string    `json:"expected_amount_out"`
	StreamingSwapSeconds       int64     `json:"streaming_swap_seconds"`
	TotalSwapSeconds           int64     `json:"total_swap_seconds"`
}

type quoteFees struct {
	Asset       string `json:"asset"`
	Affiliate   string `json:"affiliate"`
	Outbound    string `json:"outbound"`
	Liquidity   string `json:"liquidity"`
	Total       string `json:"total"`
	SlippageBps int64  `json:"slippage_bps"`
	TotalBps    int64  `json:"total_bps"`
}

type inboundAddress struct {
	Chain              thorNetwork `json:"chain"`
	Address            string      `json:"address"`
	Router             string      `json:"router"`
	Halted             bool        `json:"halted"`
	GlobalTradingPause bool        `json:"global_trading_paused"`
	ChainTradingPaused bool        `json:"chain_trading_paused"`
	DustThreshold      string      `json:"dust_threshold"`
}

func (a inboundAddress) tradingHalted() bool {
	return a.Halted || a.GlobalTradingPause || a.ChainTradingPaused
}

type pool struct {
	Asset    string `json:"asset"`
	Status   string `json:"status"`
	Decimals int32  `json:"decimals"`
}

type poolsResponse []pool

type txStatusResponse struct {
	Tx struct {
		ID    string `json:"id"`
		Chain string `json:"chain"`
		Memo  string `json:"memo"`
	} `json:"tx"`
	Stages struct {
		InboundObserved struct {
			Completed bool `json:"completed"`
		} `json:"inbound_observed"`
		SwapStatus *struct {
			Pending bool `json:"pending"`
		} `json:"swap_status"`
		SwapFinalised *struct {
			Completed bool `json:"completed"`
		} `json:"swap_finalised"`
		OutboundSigned *struct {
			Completed bool `json:"completed"`
		} `json:"outbound_signed"`
	} `json:"stages"`
	OutTxs []outTx `json:"out_txs"`
}

type outTx struct {
	ID    string `json:"id"`
	Chain string `json:"chain"`
	Memo  string `json:"memo"`
	Coins []struct {
		Asset  string `json:"asset"`
		Amount string `json:"amount"`
	} `json:"coins"`
}

func (c *Client) getQuote(ctx context.Context, req quoteSwapRequest) (quoteSwapResponse, error) {
	resp, err := libhttp.Call[quoteSwapResponse](
		ctx,
		c.http,
		http.MethodGet,
		c.baseURL+"/thorchain/quote/swap",
		nil,
		req,
	)
	if err != nil {
		return quoteSwapResponse{}, fmt.Errorf("failed to get quote: %w", err)
	}
	return resp, nil
}

func (c *Client) getInboundAddresses(ctx context.Context) ([]inboundAddress, error) {
	resp, err := libhttp.Call[[]inboundAddress](
		ctx,
		c.http,
		http.MethodGet,
		c.baseURL+"/thorchain/inbound_addresses",
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound addresses: %w", err)
	}
	return resp, nil
}

func (c *Client) getInboundAddress(ctx context.Context, network thorNetwork) (inboundAddress, error) {
	addresses, err := c.getInboundAddresses(ctx)
	if err != nil {
		return inboundAddress{}, err
	}
	for _, a := range addresses {
		if a.Chain == network {
			return a, nil
		}
	}
	return inboundAddress{}, fmt.Errorf("no inbound address for %s", network)
}

func (c *Client) getPools(ctx context.Context) (poolsResponse, error) {
	resp, err := libhttp.Call[poolsResponse](
		ctx,
		c.http,
		http.MethodGet,
		c.baseURL+"/thorchain/pools",
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}
	return resp, nil
}

func (c *Client) getTxStatus(ctx context.Context, txHash string) (txStatusResponse, error) {
	resp, err := libhttp.Call[txStatusResponse](
		ctx,
		c.http,
		http.MethodGet,
		c.baseURL+"/thorchain/tx/status/"+url.PathEscape(txHash),
		nil,
		nil,
	)
	if err != nil {
		return txStatusResponse{}, fmt.Errorf("failed to get tx status: %w", err)
	}
	return resp, nil
}
