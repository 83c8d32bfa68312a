package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"swaprail/config"
	"swaprail/pkg/coinswitch"
	"swaprail/pkg/fetch"
	"swaprail/pkg/parser"
	"swaprail/pkg/sideshift"
	"swaprail/pkg/types"
	"swaprail/pkg/wallet"
)

var (
	viaPlugin    string
	quoteForSide string
	fromAddress  string
	fromLegacy   string
	toAddress    string
	fromDecimals int32
	toDecimals   int32
)

// defaultDecimals covers the common currencies so the demo wallet works
// without flags; anything else needs --from-decimals/--to-decimals.
var defaultDecimals = map[string]int32{
	"BTC":  8,
	"BCH":  8,
	"LTC":  8,
	"DGB":  8,
	"ETH":  18,
	"ETC":  18,
	"USDT": 6,
	"USDC": 6,
	"SOL":  9,
	"XMR":  12,
}

var quoteCmd = &cobra.Command{
	Use:   "quote <native-amount> <source-currency> to <dest-currency>",
	Short: "Fetch a swap quote from an exchange adapter",
	Long: `Fetch a swap quote through one of the swap adapter plugins, using an
offline wallet built from the given addresses. The funding transaction is
constructed but never signed or broadcast.

Examples:
  swaprail quote 100000000 BTC to ETH --via sideshift --from-address bc1q... --to-address 0x...
  swaprail quote 200000000 BTC to ETH --via coinswitch --quote-for from`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&viaPlugin, "via", "sideshift", "Swap plugin to use: sideshift or coinswitch")
	quoteCmd.Flags().StringVar(&quoteForSide, "quote-for", "from", "Which side the amount applies to: from or to")
	quoteCmd.Flags().StringVar(&fromAddress, "from-address", "", "Refund address on the source chain")
	quoteCmd.Flags().StringVar(&fromLegacy, "from-legacy", "", "Legacy-format refund address (optional)")
	quoteCmd.Flags().StringVar(&toAddress, "to-address", "", "Payout address on the destination chain")
	quoteCmd.Flags().Int32Var(&fromDecimals, "from-decimals", 0, "Decimal places of the source denomination")
	quoteCmd.Flags().Int32Var(&toDecimals, "to-decimals", 0, "Decimal places of the destination denomination")
}

func decimalsFor(currencyCode string, override int32) (int32, error) {
	if override > 0 {
		return override, nil
	}
	if d, ok := defaultDecimals[currencyCode]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown denomination for %s, pass --from-decimals/--to-decimals", currencyCode)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func runQuote(cmd *cobra.Command, args []string) {
	quoteReq, err := parser.ParseQuoteCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	logger := newLogger(verbose)

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	fromDec, err := decimalsFor(quoteReq.FromCurrencyCode, fromDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	toDec, err := decimalsFor(quoteReq.ToCurrencyCode, toDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	req := types.SwapRequest{
		FromWallet: wallet.NewOffline(quoteReq.FromCurrencyCode, "cli-from", fromDec, wallet.AddressSet{
			PublicAddress: fromAddress,
			LegacyAddress: fromLegacy,
		}),
		ToWallet: wallet.NewOffline(quoteReq.ToCurrencyCode, "cli-to", toDec, wallet.AddressSet{
			PublicAddress: toAddress,
		}),
		FromCurrencyCode: quoteReq.FromCurrencyCode,
		ToCurrencyCode:   quoteReq.ToCurrencyCode,
		NativeAmount:     quoteReq.NativeAmount,
		QuoteFor:         types.Direction(quoteForSide),
	}

	plugin, err := swapPluginFor(viaPlugin, cfg, logger)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = fmt.Sprintf(" Fetching quote from %s...", plugin.Info().DisplayName)
		s.Start()
	}

	quote, err := plugin.FetchSwapQuote(context.Background(), req)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]any{
			"plugin_id":          quote.PluginID,
			"order_id":           quote.OrderID,
			"deposit_address":    quote.DestinationAddress,
			"from_native_amount": quote.FromNativeAmount,
			"to_native_amount":   quote.ToNativeAmount,
			"is_estimate":        quote.IsEstimate,
			"expiration":         quote.Expiration.Format(time.RFC3339),
			"funding_tx_id":      quote.FundingTx.TxID,
			"expires_in_seconds": cast.ToString(int(time.Until(quote.Expiration).Seconds())),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displaySwapQuote(quote, req)
}

func swapPluginFor(name string, cfg *config.Config, logger zerolog.Logger) (types.SwapPlugin, error) {
	fetcher := fetch.NewClient()
	switch name {
	case "sideshift":
		return sideshift.New(sideshift.Options{
			AffiliateID: cfg.SideShiftAffiliateID,
			BaseURL:     cfg.SideShiftBaseURL,
			Fetcher:     fetcher,
			Logger:      logger,
		}), nil
	case "coinswitch":
		return coinswitch.New(coinswitch.Options{
			APIKey:  cfg.CoinSwitchAPIKey,
			UserIP:  cfg.CoinSwitchUserIP,
			BaseURL: cfg.CoinSwitchBaseURL,
			Fetcher: fetcher,
			Logger:  logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown swap plugin %q (want sideshift or coinswitch)", name)
	}
}

func displaySwapQuote(quote *types.Quote, req types.SwapRequest) {
	kind := "FIXED-RATE QUOTE"
	if quote.IsEstimate {
		kind = "FLOATING-RATE ESTIMATE"
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                 %s", kind)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Plugin:            %s\n", quote.PluginID)
	fmt.Printf("  Order ID:          %s\n", color.CyanString(quote.OrderID))
	fmt.Printf("  Deposit Address:   %s\n", color.CyanString(quote.DestinationAddress))
	fmt.Printf("  From:              %s %s (native)\n", quote.FromNativeAmount, color.YellowString(req.FromCurrencyCode))
	fmt.Printf("  To:                %s %s (native)\n", quote.ToNativeAmount, color.YellowString(req.ToCurrencyCode))
	fmt.Printf("  Expires:           %s\n", quote.Expiration.Format(time.RFC3339))
	fmt.Printf("  Funding Tx:        %s (unsigned)\n", quote.FundingTx.TxID)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
