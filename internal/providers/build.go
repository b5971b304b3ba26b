package providers

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/jupiter"
	"github.com/gemwalletcom/swapper/internal/libhttp"
	"github.com/gemwalletcom/swapper/internal/nearintents"
	"github.com/gemwalletcom/swapper/internal/oneinch"
	"github.com/gemwalletcom/swapper/internal/swapper"
	"github.com/gemwalletcom/swapper/internal/thorchain"
	"github.com/gemwalletcom/swapper/internal/uniswap"
)

type routerDefaults struct {
	router string
	weth   string
}

var uniswapDefaults = map[chain.Chain]routerDefaults{
	chain.Ethereum:   {router: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", weth: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
	chain.SmartChain: {router: "0x10ED43C718714eb63d5aA57B78B54704E256024E", weth: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"},
	chain.Base:       {router: "0x4752ba5DBc23f44D87826276BF6Fd6b1C372aD24", weth: "0x4200000000000000000000000000000000000006"},
}

var knownProviders = map[swapper.ProviderID]struct{}{
	swapper.ProviderThorchain:   {},
	swapper.ProviderOneInch:     {},
	swapper.ProviderUniswapV2:   {},
	swapper.ProviderJupiter:     {},
	swapper.ProviderNearIntents: {},
}

// Set is a built registry together with the connections it holds open.
type Set struct {
	Registry *swapper.Registry
	closers  []func()
}

func (s *Set) Close() {
	for _, c := range s.closers {
		c()
	}
}

// Build creates every enabled provider and orders them by cfg.Priority.
func Build(ctx context.Context, cfg Config, logger logrus.FieldLogger) (*Set, error) {
	set := &Set{}
	builder := swapper.NewRegistryBuilder()
	registered := map[swapper.ProviderID]bool{}
	add := func(p swapper.Provider) {
		builder.Add(p)
		registered[p.Provider().ID] = true
		logger.WithField("provider", p.Provider().ID).Info("provider enabled")
	}

	if cfg.Thorchain.Enabled {
		client := thorchain.NewClient(cfg.Thorchain.URL,
			libhttp.WithTimeout(cfg.Timeout),
			libhttp.WithRateLimit(cfg.Thorchain.RateLimit, 1),
		)
		add(thorchain.NewProvider(client, logger))
	}

	if cfg.OneInch.APIKey != "" {
		client := oneinch.NewClient(cfg.OneInch.URL, cfg.OneInch.APIKey,
			libhttp.WithTimeout(cfg.Timeout),
			libhttp.WithRateLimit(cfg.OneInch.RateLimit, 1),
		)
		add(oneinch.NewProvider(client, logger))
	}

	if cfg.Jupiter.Enabled {
		var accounts jupiter.AccountReader
		if cfg.Jupiter.SolanaRPC != "" {
			accounts = rpc.New(cfg.Jupiter.SolanaRPC)
		}
		client := jupiter.NewClient(cfg.Jupiter.URL, cfg.Jupiter.APIKey, libhttp.WithTimeout(cfg.Timeout))
		add(jupiter.NewProvider(client, accounts, logger))
	}

	if cfg.NearIntents.Enabled {
		client := nearintents.NewClient(cfg.NearIntents.URL, cfg.NearIntents.JWT, cfg.Timeout)
		add(nearintents.NewProvider(client, logger))
	}

	deployments, err := set.dialUniswap(ctx, cfg.Uniswap)
	if err != nil {
		set.Close()
		return nil, err
	}
	if len(deployments) > 0 {
		add(uniswap.NewProviderV2(logger, deployments...))
	}

	priority, err := resolvePriority(cfg.Priority, registered)
	if err != nil {
		set.Close()
		return nil, err
	}

	registry, err := builder.Priority(priority...).Build()
	if err != nil {
		set.Close()
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	set.Registry = registry
	return set, nil
}

func (s *Set) dialUniswap(ctx context.Context, cfg Uniswap) ([]uniswap.Deployment, error) {
	configured := []struct {
		chain chain.Chain
		cfg   UniswapDeployment
	}{
		{chain.Ethereum, cfg.Ethereum},
		{chain.SmartChain, cfg.SmartChain},
		{chain.Base, cfg.Base},
	}

	var res []uniswap.Deployment
	for _, item := range configured {
		if item.cfg.RPCURL == "" {
			continue
		}
		router, weth, err := routerAddresses(item.chain, item.cfg)
		if err != nil {
			return nil, err
		}
		client, err := ethclient.DialContext(ctx, item.cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s rpc: %w", item.chain, err)
		}
		s.closers = append(s.closers, client.Close)
		res = append(res, uniswap.Deployment{
			Chain:  item.chain,
			RPC:    client,
			Router: router,
			WETH:   weth,
		})
	}
	return res, nil
}

func routerAddresses(c chain.Chain, cfg UniswapDeployment) (common.Address, common.Address, error) {
	defaults := uniswapDefaults[c]
	router, weth := cfg.Router, cfg.WETH
	if router == "" {
		router = defaults.router
	}
	if weth == "" {
		weth = defaults.weth
	}
	if !common.IsHexAddress(router) {
		return common.Address{}, common.Address{}, fmt.Errorf("invalid %s router address: %q", c, router)
	}
	if !common.IsHexAddress(weth) {
		return common.Address{}, common.Address{}, fmt.Errorf("invalid %s weth address: %q", c, weth)
	}
	return common.HexToAddress(router), common.HexToAddress(weth), nil
}

// resolvePriority drops providers that are known but disabled and rejects
// names that match no provider at all.
func resolvePriority(names []string, registered map[swapper.ProviderID]bool) ([]swapper.ProviderID, error) {
	var res []swapper.ProviderID
	for _, name := range names {
		id := swapper.ProviderID(name)
		if _, ok := knownProviders[id]; !ok {
			return nil, fmt.Errorf("unknown provider in priority: %q", name)
		}
		if registered[id] {
			res = append(res, id)
		}
	}
	return res, nil
}
