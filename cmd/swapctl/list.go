package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gemwalletcom/swapper/internal/chain"
	"github.com/gemwalletcom/swapper/internal/swapper"
)

var chainsAsset string

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains, or destinations reachable from --asset",
	Args:  cobra.NoArgs,
	RunE:  runChains,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers in priority order",
	Args:  cobra.NoArgs,
	RunE:  runProviders,
}

var statusCmd = &cobra.Command{
	Use:   "status <provider> <chain> <tx-hash>",
	Short: "Track a submitted cross chain swap",
	Long: `Track a submitted swap. THORChain takes the inbound transaction hash,
NEAR Intents takes the deposit address.`,
	Args: cobra.ExactArgs(3),
	RunE: runStatus,
}

func init() {
	chainsCmd.Flags().StringVar(&chainsAsset, "asset", "", "Source asset, <chain> or <chain>_<token>")
	rootCmd.AddCommand(chainsCmd, providersCmd, statusCmd)
}

func runChains(cmd *cobra.Command, _ []string) error {
	a, _, err := newApp(cmd.Context())
	if err != nil {
		printError(err)
		return err
	}
	defer a.close()

	chains := a.swapper.SupportedChains()
	if chainsAsset != "" {
		asset, err := chain.ParseAssetID(chainsAsset)
		if err != nil {
			printError(err)
			return err
		}
		chains = a.swapper.SupportedChainsForAsset(asset)
	}

	if jsonOutput {
		return printJSON(chains)
	}
	for _, c := range chains {
		fmt.Println(c)
	}
	return nil
}

func runProviders(cmd *cobra.Command, _ []string) error {
	a, _, err := newApp(cmd.Context())
	if err != nil {
		printError(err)
		return err
	}
	defer a.close()

	list := a.swapper.Providers()
	if jsonOutput {
		return printJSON(list)
	}
	for i, p := range list {
		var chains []string
		if supported, ok := a.swapper.ProviderChains(p.ID); ok {
			for _, c := range supported {
				chains = append(chains, c.String())
			}
		}
		fmt.Printf("%d. %s %s %s\n", i+1, color.GreenString("%-12s", p.ID), color.CyanString("%-12s", p.Mode.Kind), strings.Join(chains, ","))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, _, err := newApp(cmd.Context())
	if err != nil {
		printError(err)
		return err
	}
	defer a.close()

	c, err := chain.FromString(args[1])
	if err != nil {
		printError(err)
		return err
	}

	res, err := withSpinner("Checking status...", func() (*swapper.SwapResult, error) {
		return a.swapper.GetSwapResult(cmd.Context(), swapper.ProviderID(args[0]), c, args[2])
	})
	if err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		return printJSON(res)
	}
	status := string(res.Status)
	switch res.Status {
	case swapper.SwapStatusCompleted:
		status = color.GreenString(status)
	case swapper.SwapStatusFailed, swapper.SwapStatusRefunded:
		status = color.RedString(status)
	default:
		status = color.YellowString(status)
	}
	fmt.Printf("\n  Status:   %s\n", status)
	if res.ToChain != "" {
		fmt.Printf("  To chain: %s\n", res.ToChain)
	}
	if res.ToTxHash != "" {
		fmt.Printf("  Tx hash:  %s\n", color.CyanString(res.ToTxHash))
	}
	fmt.Println()
	return nil
}
