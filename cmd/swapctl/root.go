package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gemwalletcom/swapper/internal/logging"
	"github.com/gemwalletcom/swapper/internal/providers"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

var (
	configFile string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "swapctl",
	Short: "Query swap quotes across THORChain, 1inch, Uniswap, Jupiter and NEAR Intents",
	Long: `swapctl asks every configured provider for a quote and prints the best one.

Assets are written as <chain> for the native coin or <chain>_<token> for tokens.

Examples:
  swapctl quote 1 ethereum bitcoin --wallet 0x... --destination bc1q...
  swapctl quote 100 ethereum_0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 ethereum --from-decimals 6 --wallet 0x...
  swapctl quote-data 0.5 solana solana_EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v --to-decimals 6 --wallet <sol-addr>
  swapctl chains --asset bitcoin
  swapctl status thorchain ethereum 0x...`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $HOME/.swapctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// configKeys are bound to SWAPCTL_* variables so env-only settings reach
// Unmarshal.
var configKeys = []string{
	"priority", "timeout", "slippage_bps",
	"referral.bps", "referral.evm", "referral.solana", "referral.thorchain", "referral.near",
	"referral.tron", "referral.sui", "referral.ton",
	"thorchain.enabled", "thorchain.url", "thorchain.rate_limit",
	"oneinch.url", "oneinch.api_key", "oneinch.rate_limit",
	"jupiter.enabled", "jupiter.url", "jupiter.api_key", "jupiter.solana_rpc",
	"near_intents.enabled", "near_intents.url", "near_intents.jwt",
	"uniswap.ethereum.rpc_url", "uniswap.ethereum.router", "uniswap.ethereum.weth",
	"uniswap.smartchain.rpc_url", "uniswap.smartchain.router", "uniswap.smartchain.weth",
	"uniswap.base.rpc_url", "uniswap.base.router", "uniswap.base.weth",
}

func loadConfig() (providers.Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".swapctl")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SWAPCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return providers.Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return providers.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := providers.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return providers.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

type app struct {
	swapper *swapper.Swapper
	close   func()
}

func newApp(ctx context.Context) (*app, providers.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, providers.Config{}, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := logging.NewLoggerWithLevel(logging.LogFormatText, level)

	set, err := providers.Build(ctx, cfg, logger)
	if err != nil {
		return nil, providers.Config{}, err
	}
	return &app{
		swapper: swapper.New(set.Registry, cfg.SwapperConfig(), logger),
		close:   set.Close,
	}, cfg, nil
}

func printError(err error) {
	color.Red("\nError: %v\n", err)
	var swapErr *swapper.Error
	if errors.As(err, &swapErr) && swapErr.MinAmount != "" {
		color.Yellow("Minimum amount: %s (base units)\n", swapErr.MinAmount)
	}
	fmt.Println()
}
