package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gemwalletcom/swapper/internal/swapper"
)

type quoteFlags struct {
	wallet      string
	destination string
	slippage    uint32
	providers   []string
	useMax      bool
	all         bool
	build       bool
	from        assetFlags
	to          assetFlags
}

var qf quoteFlags

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <from-asset> <to-asset>",
	Short: "Fetch the best quote, or every quote with --all",
	Args:  cobra.ExactArgs(3),
	RunE:  runQuote,
}

var quoteDataCmd = &cobra.Command{
	Use:   "quote-data <amount> <from-asset> <to-asset>",
	Short: "Fetch the best quote and build its transaction payload",
	Args:  cobra.ExactArgs(3),
	RunE:  runQuoteData,
}

func init() {
	for _, cmd := range []*cobra.Command{quoteCmd, quoteDataCmd} {
		cmd.Flags().StringVar(&qf.wallet, "wallet", "", "Wallet address paying the swap (required)")
		cmd.Flags().StringVar(&qf.destination, "destination", "", "Destination address, defaults to the wallet")
		cmd.Flags().Uint32Var(&qf.slippage, "slippage", 0, "Slippage in basis points (default from config)")
		cmd.Flags().StringSliceVar(&qf.providers, "provider", nil, "Only ask these providers")
		cmd.Flags().BoolVar(&qf.useMax, "max", false, "Amount is the whole balance")
		cmd.Flags().Int32Var(&qf.from.decimals, "from-decimals", 0, "Decimals of the source token")
		cmd.Flags().StringVar(&qf.from.symbol, "from-symbol", "", "Symbol of the source asset")
		cmd.Flags().Int32Var(&qf.to.decimals, "to-decimals", 0, "Decimals of the destination token")
		cmd.Flags().StringVar(&qf.to.symbol, "to-symbol", "", "Symbol of the destination asset")
		_ = cmd.MarkFlagRequired("wallet")
	}
	quoteCmd.Flags().BoolVar(&qf.all, "all", false, "Show every ranked quote")
	quoteDataCmd.Flags().BoolVar(&qf.build, "build", true, "Build the transaction, false stops after quoting")

	rootCmd.AddCommand(quoteCmd, quoteDataCmd)
}

func buildRequest(args []string, f quoteFlags, fee *swapper.ReferralFees) (swapper.QuoteRequest, error) {
	from, err := parseAsset(args[1], f.from)
	if err != nil {
		return swapper.QuoteRequest{}, fmt.Errorf("invalid from asset: %w", err)
	}
	to, err := parseAsset(args[2], f.to)
	if err != nil {
		return swapper.QuoteRequest{}, fmt.Errorf("invalid to asset: %w", err)
	}
	value, err := baseUnits(args[0], from)
	if err != nil {
		return swapper.QuoteRequest{}, err
	}

	preferred := make([]swapper.ProviderID, 0, len(f.providers))
	for _, p := range f.providers {
		preferred = append(preferred, swapper.ProviderID(strings.TrimSpace(p)))
	}

	return swapper.QuoteRequest{
		FromAsset:          from,
		ToAsset:            to,
		WalletAddress:      f.wallet,
		DestinationAddress: f.destination,
		Value:              value,
		Options: swapper.Options{
			SlippageBps:        f.slippage,
			Fee:                fee,
			PreferredProviders: preferred,
			UseMaxAmount:       f.useMax,
		},
	}, nil
}

func withSpinner[T any](suffix string, fn func() (T, error)) (T, error) {
	if jsonOutput {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Writer = os.Stderr
	s.Start()
	defer s.Stop()
	return fn()
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, cfg, err := newApp(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer a.close()

	req, err := buildRequest(args, qf, cfg.Referral.Fees())
	if err != nil {
		printError(err)
		return err
	}

	quotes, err := withSpinner("Fetching quotes...", func() ([]swapper.SwapQuote, error) {
		if qf.all {
			return a.swapper.GetQuotes(ctx, req)
		}
		q, err := a.swapper.GetQuote(ctx, req)
		if err != nil {
			return nil, err
		}
		return []swapper.SwapQuote{*q}, nil
	})
	if err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		if qf.all {
			return printJSON(quotes)
		}
		return printJSON(quotes[0])
	}
	for i, q := range quotes {
		displayQuote(i+1, q)
	}
	return nil
}

func runQuoteData(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, cfg, err := newApp(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer a.close()

	req, err := buildRequest(args, qf, cfg.Referral.Fees())
	if err != nil {
		printError(err)
		return err
	}

	quote, err := withSpinner("Fetching quote...", func() (*swapper.SwapQuote, error) {
		return a.swapper.GetQuote(ctx, req)
	})
	if err != nil {
		printError(err)
		return err
	}
	if !qf.build {
		if jsonOutput {
			return printJSON(quote)
		}
		displayQuote(1, *quote)
		return nil
	}

	data, err := withSpinner("Building transaction...", func() (*swapper.QuoteData, error) {
		return a.swapper.BuildTransaction(ctx, *quote)
	})
	if err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		return printJSON(struct {
			Quote *swapper.SwapQuote `json:"quote"`
			Data  *swapper.QuoteData `json:"data"`
		}{quote, data})
	}
	displayQuote(1, *quote)
	displayQuoteData(data)
	return nil
}

func displayQuote(rank int, q swapper.SwapQuote) {
	req := q.Request
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("  #%d %s", rank, q.Provider().Name)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:            %s\n", color.YellowString(humanAmount(req.Value, req.FromAsset)))
	fmt.Printf("  To:              ~%s\n", color.YellowString(humanAmount(q.ToValue, req.ToAsset)))
	fmt.Printf("  Minimum:         %s\n", humanAmount(q.ToMinValue, req.ToAsset))
	fmt.Printf("  Slippage:        %d bps\n", q.SlippageBps)
	if q.ReferralBps > 0 {
		fmt.Printf("  Referral:        %d bps (%s)\n", q.ReferralBps, humanAmount(q.ReferralFee, req.ToAsset))
	}
	if eta := q.ProviderQuote.EtaSeconds; eta > 0 {
		fmt.Printf("  Estimated Time:  %s\n", time.Duration(eta)*time.Second)
	}
	fmt.Println()
}

func displayQuoteData(data *swapper.QuoteData) {
	color.Yellow("  TRANSACTION")
	fmt.Printf("\n  To:        %s\n", color.CyanString(data.To))
	fmt.Printf("  Value:     %s\n", data.Value)
	if data.Memo != "" {
		fmt.Printf("  Memo:      %s\n", color.MagentaString(data.Memo))
	}
	if data.Data != "" {
		fmt.Printf("  Data:      %s\n", data.Data)
	}
	if data.GasLimit != "" {
		fmt.Printf("  Gas Limit: %s\n", data.GasLimit)
	}
	if data.Approval != nil {
		color.Yellow("\n  Approval required: %s for spender %s", data.Approval.Value, data.Approval.Spender)
	}
	fmt.Println()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
