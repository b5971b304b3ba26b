package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gemwalletcom/swapper/internal/libhttp"
)

type quoteRequest struct {
	InputMint        string `url:"inputMint"`
	OutputMint       string `url:"outputMint"`
	Amount           string `url:"amount"`
	SlippageBps      uint32 `url:"slippageBps"`
	SwapMode         string `url:"swapMode"`
	PlatformFeeBps   uint32 `url:"platformFeeBps,omitempty"`
	OnlyDirectRoutes bool   `url:"onlyDirectRoutes,omitempty"`
}

type QuoteResponse struct {
	InputMint            string       `json:"inputMint"`
	InAmount             string       `json:"inAmount"`
	OutputMint           string       `json:"outputMint"`
	OutAmount            string       `json:"outAmount"`
	OtherAmountThreshold string       `json:"otherAmountThreshold"`
	SwapMode             string       `json:"swapMode"`
	SlippageBps          uint32       `json:"slippageBps"`
	PlatformFee          *PlatformFee `json:"platformFee"`
	PriceImpactPct       string       `json:"priceImpactPct"`
	RoutePlan            []RoutePlan  `json:"routePlan"`
	ContextSlot          int64        `json:"contextSlot"`
	TimeTaken            float64      `json:"timeTaken"`
}

type PlatformFee struct {
	Amount string `json:"amount"`
	FeeBps uint32 `json:"feeBps"`
}

type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// SwapRequest echoes the quote back verbatim, Jupiter rejects re-encoded quotes
// that drop unknown fields.
type SwapRequest struct {
	UserPublicKey           string          `json:"userPublicKey"`
	QuoteResponse           json.RawMessage `json:"quoteResponse"`
	WrapAndUnwrapSol        bool            `json:"wrapAndUnwrapSol"`
	UseSharedAccounts       bool            `json:"useSharedAccounts,omitempty"`
	FeeAccount              string          `json:"feeAccount,omitempty"`
	DestinationTokenAccount string          `json:"destinationTokenAccount,omitempty"`
	DynamicComputeUnitLimit bool            `json:"dynamicComputeUnitLimit"`
	AsLegacyTransaction     bool            `json:"asLegacyTransaction,omitempty"`
}

type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

type Client struct {
	baseURL string
	http    *libhttp.Client
}

func NewClient(baseURL, apiKey string, opts ...libhttp.Option) *Client {
	opts = append([]libhttp.Option{
		libhttp.WithHeader("User-Agent", "gem-swapper/1.0"),
		libhttp.WithHeader("x-api-key", apiKey),
	}, opts...)
	return &Client{
		baseURL: baseURL,
		http:    libhttp.NewClient(opts...),
	}
}

// GetQuote returns the decoded quote together with the raw payload that has to
// be posted back to /swap.
func (c *Client) GetQuote(ctx context.Context, req quoteRequest) (QuoteResponse, json.RawMessage, error) {
	raw, err := c.http.Do(ctx, http.MethodGet, c.baseURL+"/swap/v1/quote", nil, req)
	if err != nil {
		return QuoteResponse{}, nil, fmt.Errorf("failed to get quote from jupiter: %w", err)
	}

	var resp QuoteResponse
	if err = json.Unmarshal(raw, &resp); err != nil {
		return QuoteResponse{}, nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return resp, raw, nil
}

func (c *Client) GetSwap(ctx context.Context, req SwapRequest) (SwapResponse, error) {
	resp, err := libhttp.Call[SwapResponse](ctx, c.http, http.MethodPost, c.baseURL+"/swap/v1/swap", req, nil)
	if err != nil {
		return SwapResponse{}, fmt.Errorf("failed to get swap from jupiter: %w", err)
	}
	return resp, nil
}
