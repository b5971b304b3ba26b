package nearintents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
)

const DefaultBaseURL = "https://1click.chaindefuser.com"

type quoteResult struct {
	AmountIn       string
	AmountOut      string
	MinAmountOut   string
	DepositAddress string
	DepositMemo    string
	TimeEstimate   uint32
}

type transaction struct {
	Hash string
}

type statusResult struct {
	Status      string
	OriginTxs   []transaction
	DestTxs     []transaction
	UpdatedAtMs int64
}

// apiError is a non 2xx answer of the 1Click API.
type apiError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *apiError) Error() string {
	return fmt.Sprintf("1click status %d: %s", e.StatusCode, e.Message)
}

func (e *apiError) Unwrap() error {
	return e.Err
}

// API is the part of the 1Click service the provider needs.
type API interface {
	Quote(ctx context.Context, req *oneclick.QuoteRequest) (quoteResult, error)
	Status(ctx context.Context, depositAddress string) (statusResult, error)
}

// Client wraps the 1Click SDK.
type Client struct {
	api   *oneclick.APIClient
	token string
}

func NewClient(baseURL, jwtToken string, timeout time.Duration) *Client {
	cfg := oneclick.NewConfiguration()
	cfg.Servers = oneclick.ServerConfigurations{{URL: baseURL}}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	cfg.UserAgent = "gem-swapper/1.0"

	return &Client{
		api:   oneclick.NewAPIClient(cfg),
		token: jwtToken,
	}
}

func (c *Client) authorize(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.token)
}

func (c *Client) Quote(ctx context.Context, req *oneclick.QuoteRequest) (quoteResult, error) {
	resp, httpResp, err := c.api.OneClickAPI.GetQuote(c.authorize(ctx)).QuoteRequest(*req).Execute()
	if err != nil {
		return quoteResult{}, responseError(httpResp, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()
	if resp == nil {
		return quoteResult{}, fmt.Errorf("empty quote response")
	}

	quote := resp.GetQuote()
	return quoteResult{
		AmountIn:       quote.GetAmountIn(),
		AmountOut:      quote.GetAmountOut(),
		MinAmountOut:   quote.GetMinAmountOut(),
		DepositAddress: quote.GetDepositAddress(),
		DepositMemo:    quote.GetDepositMemo(),
		TimeEstimate:   uint32(quote.GetTimeEstimate()),
	}, nil
}

func (c *Client) Status(ctx context.Context, depositAddress string) (statusResult, error) {
	resp, httpResp, err := c.api.OneClickAPI.GetExecutionStatus(c.authorize(ctx)).DepositAddress(depositAddress).Execute()
	if err != nil {
		return statusResult{}, responseError(httpResp, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()
	if resp == nil {
		return statusResult{}, fmt.Errorf("empty status response")
	}

	details := resp.GetSwapDetails()
	res := statusResult{
		Status:      resp.GetStatus(),
		UpdatedAtMs: resp.GetUpdatedAt().UnixMilli(),
	}
	for _, tx := range details.GetOriginChainTxHashes() {
		res.OriginTxs = append(res.OriginTxs, transaction{Hash: tx.GetHash()})
	}
	for _, tx := range details.GetDestinationChainTxHashes() {
		res.DestTxs = append(res.DestTxs, transaction{Hash: tx.GetHash()})
	}
	return res, nil
}

// responseError extracts the API message from a failed call. Without a
// response the transport error is returned as is.
func responseError(httpResp *http.Response, err error) error {
	if httpResp == nil {
		return fmt.Errorf("failed to call 1click: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	apiErr := &apiError{StatusCode: httpResp.StatusCode, Message: err.Error(), Err: err}
	raw, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil || len(raw) == 0 {
		return apiErr
	}

	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = string(raw)
	}
	return apiErr
}
