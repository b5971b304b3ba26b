package uniswap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

const (
	txDeadline      = 20 * time.Minute
	defaultGasLimit = "250000"
)

// ContractCaller is the read-only subset of ethclient.Client used for quoting.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type routeData struct {
	Router string   `json:"router"`
	Path   []string `json:"path"`
}

// Deployment is a V2 router with its wrapped native token on one chain.
type Deployment struct {
	Chain  chain.Chain
	RPC    ContractCaller
	Router common.Address
	WETH   common.Address
}

// ProviderV2 quotes Uniswap V2 style routers, one deployment per EVM chain.
type ProviderV2 struct {
	deployments map[chain.Chain]Deployment
	chains      []chain.Chain
	logger      logrus.FieldLogger
	now         func() time.Time
}

func NewProviderV2(logger logrus.FieldLogger, deployments ...Deployment) *ProviderV2 {
	p := &ProviderV2{
		deployments: make(map[chain.Chain]Deployment, len(deployments)),
		logger:      logger.WithField("provider", swapper.ProviderUniswapV2),
		now:         time.Now,
	}
	for _, d := range deployments {
		if _, ok := p.deployments[d.Chain]; !ok {
			p.chains = append(p.chains, d.Chain)
		}
		p.deployments[d.Chain] = d
	}
	chain.Sort(p.chains)
	return p
}

func (p *ProviderV2) Provider() swapper.ProviderType {
	return swapper.ProviderType{
		ID:       swapper.ProviderUniswapV2,
		Name:     "Uniswap v2",
		Protocol: "uniswap_v2",
		Mode:     swapper.ProviderMode{Kind: swapper.ModeOnChain},
		// the v2 router swaps straight to the recipient, no fee leg
		FeeKey: swapper.FeeKeyNone,
	}
}

func (p *ProviderV2) SupportedChains() []chain.Chain {
	return p.chains
}

func (p *ProviderV2) validatePath(req swapper.QuoteRequest) (Deployment, []common.Address, error) {
	from, to := req.FromAsset.ID, req.ToAsset.ID
	d, ok := p.deployments[from.Chain]
	if !ok {
		return Deployment{}, nil, swapper.NewError(swapper.KindNotSupportedChain, "unsupported from chain: %s", from.Chain)
	}
	if to.Chain != from.Chain {
		return Deployment{}, nil, swapper.NewError(swapper.KindNotSupportedChain, "unsupported to chain: %s", to.Chain)
	}

	for _, id := range []chain.AssetID{from, to} {
		if !id.IsNative() && !common.IsHexAddress(id.TokenID) {
			return Deployment{}, nil, swapper.NewError(swapper.KindNotSupportedAsset, "invalid token address %q", id.TokenID)
		}
	}
	path := []common.Address{d.tokenAddress(from), d.tokenAddress(to)}
	if path[0] == path[1] {
		return Deployment{}, nil, swapper.NewError(swapper.KindNotSupportedPair, "wrapping is not a swap")
	}
	return d, path, nil
}

func (d Deployment) tokenAddress(id chain.AssetID) common.Address {
	if id.IsNative() {
		return d.WETH
	}
	return common.HexToAddress(id.TokenID)
}

func (p *ProviderV2) FetchQuote(ctx context.Context, req swapper.QuoteRequest) (*swapper.ProviderQuote, error) {
	d, path, err := p.validatePath(req)
	if err != nil {
		return nil, err
	}
	amount, ok := req.ValueBig()
	if !ok {
		return nil, swapper.NewError(swapper.KindInvalidAmount, "invalid value %q", req.Value)
	}

	amountOut, err := p.getAmountsOut(ctx, d, amount, path)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"chain":      d.Chain,
		"amount_in":  amount.String(),
		"amount_out": amountOut.String(),
	}).Debug("uniswap v2 quote")

	raw, err := json.Marshal(routeData{Router: d.Router.Hex(), Path: hexPath(path)})
	if err != nil {
		return nil, swapper.WrapError(swapper.KindComputeQuoteError, err, "encode route data")
	}

	return &swapper.ProviderQuote{
		Provider:  p.Provider(),
		FromValue: req.Value,
		ToValue:   amountOut.String(),
		Routes: []swapper.Route{{
			Input:     req.FromAsset.ID,
			Output:    req.ToAsset.ID,
			RouteData: raw,
			GasLimit:  defaultGasLimit,
		}},
	}, nil
}

func (p *ProviderV2) getAmountsOut(ctx context.Context, d Deployment, amount *big.Int, path []common.Address) (*big.Int, error) {
	input, err := routerABI.Pack("getAmountsOut", amount, path)
	if err != nil {
		return nil, swapper.WrapError(swapper.KindABIError, err, "pack getAmountsOut")
	}

	out, err := call(ctx, d.RPC, d.Router, input)
	if err != nil {
		return nil, err
	}

	var amounts []*big.Int
	if err = unpack(routerABI, "getAmountsOut", out, &amounts); err != nil {
		return nil, err
	}
	if len(amounts) == 0 {
		return nil, swapper.NewError(swapper.KindComputeQuoteError, "unexpected empty amountsOut")
	}
	return amounts[len(amounts)-1], nil
}

func (p *ProviderV2) FetchQuoteData(ctx context.Context, quote swapper.SwapQuote) (*swapper.QuoteData, error) {
	req := quote.Request
	d, path, err := p.validatePath(req)
	if err != nil {
		return nil, err
	}
	amount, ok := req.ValueBig()
	if !ok {
		return nil, swapper.NewError(swapper.KindInvalidAmount, "invalid value %q", req.Value)
	}

	amountOutMin, ok := new(big.Int).SetString(quote.ToMinValue, 10)
	if !ok {
		expected, er := p.getAmountsOut(ctx, d, amount, path)
		if er != nil {
			return nil, er
		}
		amountOutMin = deductSlippage(expected, uint64(quote.SlippageBps))
	}

	to := common.HexToAddress(req.Recipient())
	deadline := big.NewInt(p.now().Add(txDeadline).Unix())

	var data []byte
	value := big.NewInt(0)
	switch {
	case req.FromAsset.ID.IsNative():
		data, err = routerABI.Pack("swapExactETHForTokens", amountOutMin, path, to, deadline)
		value = amount
	case req.ToAsset.ID.IsNative():
		data, err = routerABI.Pack("swapExactTokensForETH", amount, amountOutMin, path, to, deadline)
	default:
		data, err = routerABI.Pack("swapExactTokensForTokens", amount, amountOutMin, path, to, deadline)
	}
	if err != nil {
		return nil, swapper.WrapError(swapper.KindABIError, err, "pack swap")
	}

	result := &swapper.QuoteData{
		To:       d.Router.Hex(),
		Value:    value.String(),
		Data:     hexutil.Encode(data),
		GasLimit: defaultGasLimit,
	}

	if !req.FromAsset.ID.IsNative() {
		approval, er := approval(ctx, d, path[0], common.HexToAddress(req.WalletAddress), amount)
		if er != nil {
			return nil, er
		}
		result.Approval = approval
	}
	return result, nil
}

func approval(ctx context.Context, d Deployment, token, owner common.Address, amount *big.Int) (*swapper.ApprovalData, error) {
	input, err := tokenABI.Pack("allowance", owner, d.Router)
	if err != nil {
		return nil, swapper.WrapError(swapper.KindABIError, err, "pack allowance")
	}
	out, err := call(ctx, d.RPC, token, input)
	if err != nil {
		return nil, err
	}
	var allowance *big.Int
	if err = unpack(tokenABI, "allowance", out, &allowance); err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) >= 0 {
		return nil, nil
	}
	return &swapper.ApprovalData{
		Token:   token.Hex(),
		Spender: d.Router.Hex(),
		Value:   amount.String(),
	}, nil
}

func call(ctx context.Context, rpc ContractCaller, to common.Address, input []byte) ([]byte, error) {
	out, err := rpc.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		// reverts come from missing pairs or drained reserves
		if strings.Contains(err.Error(), "execution reverted") {
			return nil, swapper.WrapError(swapper.KindNoQuoteAvailable, err, "router call reverted")
		}
		return nil, swapper.WrapError(swapper.KindNetworkError, err, "eth_call failed")
	}
	if len(out) == 0 {
		return nil, swapper.NewError(swapper.KindNoQuoteAvailable, "empty eth_call result from %s", to.Hex())
	}
	return out, nil
}

func unpack(contract abi.ABI, method string, data []byte, dst any) error {
	if err := contract.UnpackIntoInterface(dst, method, data); err != nil {
		return swapper.WrapError(swapper.KindABIError, err, "unpack %s", method)
	}
	return nil
}

func hexPath(path []common.Address) []string {
	out := make([]string, len(path))
	for i, a := range path {
		out[i] = a.Hex()
	}
	return out
}

func deductSlippage(amount *big.Int, slippageBips uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}

	bipsTotal := big.NewInt(10000)
	slippageBig := new(big.Int).SetUint64(min(slippageBips, 10000))

	// amount * (10000 - slippageBips) / 10000
	multiplier := new(big.Int).Sub(bipsTotal, slippageBig)
	result := new(big.Int).Mul(amount, multiplier)
	result.Div(result, bipsTotal)

	return result
}

func (p *ProviderV2) String() string {
	parts := make([]string, 0, len(p.chains))
	for _, c := range p.chains {
		parts = append(parts, fmt.Sprintf("%s@%s", c, p.deployments[c].Router.Hex()))
	}
	return fmt.Sprintf("uniswap_v2(%s)", strings.Join(parts, ","))
}
