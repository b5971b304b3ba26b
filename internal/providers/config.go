package providers

import (
	"time"

	"github.com/gemwalletcom/swapper/internal/swapper"
)

// Config is loaded with envconfig by the server and with viper by swapctl.
type Config struct {
	Priority    []string      `envconfig:"PRIORITY" mapstructure:"priority" default:"thorchain,near_intents,oneinch,jupiter,uniswap_v2"`
	Timeout     time.Duration `envconfig:"TIMEOUT" mapstructure:"timeout" default:"10s"`
	SlippageBps uint32        `envconfig:"SLIPPAGE_BPS" mapstructure:"slippage_bps" default:"100"`
	Referral    Referral      `envconfig:"REFERRAL" mapstructure:"referral"`
	Thorchain   Thorchain     `envconfig:"THORCHAIN" mapstructure:"thorchain"`
	OneInch     OneInch       `envconfig:"ONEINCH" mapstructure:"oneinch"`
	Jupiter     Jupiter       `envconfig:"JUPITER" mapstructure:"jupiter"`
	NearIntents NearIntents   `envconfig:"NEAR_INTENTS" mapstructure:"near_intents"`
	Uniswap     Uniswap       `envconfig:"UNISWAP" mapstructure:"uniswap"`
}

type Thorchain struct {
	Enabled   bool    `envconfig:"ENABLED" mapstructure:"enabled" default:"true"`
	URL       string  `envconfig:"URL" mapstructure:"url" default:"https://thornode.ninerealms.com"`
	RateLimit float64 `envconfig:"RATE_LIMIT" mapstructure:"rate_limit" default:"5"`
}

// OneInch is enabled only with an API key.
type OneInch struct {
	URL       string  `envconfig:"URL" mapstructure:"url" default:"https://api.1inch.dev"`
	APIKey    string  `envconfig:"API_KEY" mapstructure:"api_key"`
	RateLimit float64 `envconfig:"RATE_LIMIT" mapstructure:"rate_limit" default:"1"`
}

type Jupiter struct {
	Enabled bool   `envconfig:"ENABLED" mapstructure:"enabled" default:"true"`
	URL     string `envconfig:"URL" mapstructure:"url" default:"https://lite-api.jup.ag"`
	APIKey  string `envconfig:"API_KEY" mapstructure:"api_key"`
	// SolanaRPC resolves Token-2022 mints for fee accounts. Optional.
	SolanaRPC string `envconfig:"SOLANA_RPC" mapstructure:"solana_rpc"`
}

type NearIntents struct {
	Enabled bool   `envconfig:"ENABLED" mapstructure:"enabled" default:"true"`
	URL     string `envconfig:"URL" mapstructure:"url" default:"https://1click.chaindefuser.com"`
	JWT     string `envconfig:"JWT" mapstructure:"jwt"`
}

// Uniswap holds one V2 router deployment per chain. A deployment without
// an RPC URL is skipped.
type Uniswap struct {
	Ethereum   UniswapDeployment `envconfig:"ETHEREUM" mapstructure:"ethereum"`
	SmartChain UniswapDeployment `envconfig:"SMARTCHAIN" mapstructure:"smartchain"`
	Base       UniswapDeployment `envconfig:"BASE" mapstructure:"base"`
}

type UniswapDeployment struct {
	RPCURL string `envconfig:"RPC_URL" mapstructure:"rpc_url"`
	Router string `envconfig:"ROUTER" mapstructure:"router"`
	WETH   string `envconfig:"WETH" mapstructure:"weth"`
}

// Referral is the default fee attached to requests that carry none.
type Referral struct {
	Bps       uint32 `envconfig:"BPS" mapstructure:"bps" default:"50"`
	Evm       string `envconfig:"EVM" mapstructure:"evm"`
	Solana    string `envconfig:"SOLANA" mapstructure:"solana"`
	Thorchain string `envconfig:"THORCHAIN" mapstructure:"thorchain"`
	Near      string `envconfig:"NEAR" mapstructure:"near"`
	Tron      string `envconfig:"TRON" mapstructure:"tron"`
	Sui       string `envconfig:"SUI" mapstructure:"sui"`
	Ton       string `envconfig:"TON" mapstructure:"ton"`
}

// Fees returns nil when no referral address is configured.
func (r Referral) Fees() *swapper.ReferralFees {
	fee := func(address string) swapper.ReferralFee {
		if address == "" {
			return swapper.ReferralFee{}
		}
		return swapper.ReferralFee{Address: address, Bps: r.Bps}
	}

	fees := swapper.ReferralFees{
		Evm:       fee(r.Evm),
		EvmBridge: fee(r.Evm),
		Solana:    fee(r.Solana),
		Thorchain: fee(r.Thorchain),
		Near:      fee(r.Near),
		Tron:      fee(r.Tron),
		Sui:       fee(r.Sui),
		Ton:       fee(r.Ton),
	}
	if fees == (swapper.ReferralFees{}) {
		return nil
	}
	return &fees
}

func (c Config) SwapperConfig() swapper.Config {
	return swapper.Config{
		ProviderTimeout:    c.Timeout,
		DefaultSlippageBps: c.SlippageBps,
	}
}

// DefaultConfig mirrors the default tags for loaders that do not read them.
func DefaultConfig() Config {
	return Config{
		Priority:    []string{"thorchain", "near_intents", "oneinch", "jupiter", "uniswap_v2"},
		Timeout:     10 * time.Second,
		SlippageBps: 100,
		Referral:    Referral{Bps: 50},
		Thorchain: Thorchain{
			Enabled:   true,
			URL:       "https://thornode.ninerealms.com",
			RateLimit: 5,
		},
		OneInch: OneInch{
			URL:       "https://api.1inch.dev",
			RateLimit: 1,
		},
		Jupiter: Jupiter{
			Enabled: true,
			URL:     "https://lite-api.jup.ag",
		},
		NearIntents: NearIntents{
			Enabled: true,
			URL:     "https://1click.chaindefuser.com",
		},
	}
}
