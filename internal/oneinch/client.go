package oneinch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/libhttp"
)

const (
	APIVersion         = "v6.0"
	NativeTokenAddress = "0xEeeeeEeeeEeEeEeEeEeeEEEeeeeEeeeeeeeEEeE"
)

type Client struct {
	baseURL string
	http    *libhttp.Client
}

// NewClient builds a 1inch API client. The API key is sent as a bearer token.
func NewClient(baseURL, apiKey string, opts ...libhttp.Option) *Client {
	if apiKey != "" {
		opts = append(opts, libhttp.WithHeader("Authorization", "Bearer "+apiKey))
	}
	return &Client{
		baseURL: baseURL,
		http:    libhttp.NewClient(opts...),
	}
}

type quoteRequest struct {
	Src        string `url:"src"`
	Dst        string `url:"dst"`
	Amount     string `url:"amount"`
	Fee        string `url:"fee,omitempty"`
	IncludeGas bool   `url:"includeGas,omitempty"`
}

type QuoteResponse struct {
	DstAmount string `json:"dstAmount"`
	Gas       int64  `json:"gas"`
}

type swapRequest struct {
	Src              string `url:"src"`
	Dst              string `url:"dst"`
	Amount           string `url:"amount"`
	From             string `url:"from"`
	Origin           string `url:"origin,omitempty"`
	Receiver         string `url:"receiver,omitempty"`
	Slippage         string `url:"slippage"`
	Fee              string `url:"fee,omitempty"`
	Referrer         string `url:"referrer,omitempty"`
	DisableEstimate  bool   `url:"disableEstimate"`
	AllowPartialFill bool   `url:"allowPartialFill"`
	Compatibility    bool   `url:"compatibility"`
}

type SwapResponse struct {
	DstAmount string `json:"dstAmount"`
	Tx        TxData `json:"tx"`
}

type TxData struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      int64  `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

type SpenderResponse struct {
	Address string `json:"address"`
}

type allowanceRequest struct {
	TokenAddress  string `url:"tokenAddress"`
	WalletAddress string `url:"walletAddress"`
}

type AllowanceResponse struct {
	Allowance string `json:"allowance"`
}

func (c *Client) endpoint(ch chain.Chain, path string) (string, error) {
	chainID, err := ch.EvmID()
	if err != nil {
		return "", fmt.Errorf("failed to get chain ID: %w", err)
	}
	return fmt.Sprintf("%s/swap/%s/%d/%s", c.baseURL, APIVersion, chainID, path), nil
}

func (c *Client) GetQuote(ctx context.Context, ch chain.Chain, req quoteRequest) (*QuoteResponse, error) {
	endpoint, err := c.endpoint(ch, "quote")
	if err != nil {
		return nil, err
	}

	resp, err := libhttp.Call[QuoteResponse](ctx, c.http, http.MethodGet, endpoint, nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get 1inch quote: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetSpender(ctx context.Context, ch chain.Chain) (string, error) {
	endpoint, err := c.endpoint(ch, "approve/spender")
	if err != nil {
		return "", err
	}

	resp, err := libhttp.Call[SpenderResponse](ctx, c.http, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get spender address: %w", err)
	}
	return resp.Address, nil
}

func (c *Client) GetAllowance(ctx context.Context, ch chain.Chain, token, wallet string) (string, error) {
	endpoint, err := c.endpoint(ch, "approve/allowance")
	if err != nil {
		return "", err
	}

	resp, err := libhttp.Call[AllowanceResponse](ctx, c.http, http.MethodGet, endpoint, nil, allowanceRequest{
		TokenAddress:  token,
		WalletAddress: wallet,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get allowance: %w", err)
	}
	return resp.Allowance, nil
}

func (c *Client) GetSwap(ctx context.Context, ch chain.Chain, req swapRequest) (*SwapResponse, error) {
	endpoint, err := c.endpoint(ch, "swap")
	if err != nil {
		return nil, err
	}

	resp, err := libhttp.Call[SwapResponse](ctx, c.http, http.MethodGet, endpoint, nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call 1inch API: %w", err)
	}
	return &resp, nil
}
