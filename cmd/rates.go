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
	"github.com/spf13/cobra"

	"swaprail/config"
	"swaprail/pkg/fetch"
	"swaprail/pkg/nomics"
	"swaprail/pkg/parser"
	"swaprail/pkg/types"
)

var ratesCmd = &cobra.Command{
	Use:     "rates <pair> [<pair>...]",
	Aliases: []string{"rate"},
	Short:   "Fetch fiat exchange rates for currency pairs",
	Long: `Fetch exchange rates for mixed fiat/crypto pairs through the Nomics
rate plugin. Fiat codes carry the "iso:" prefix. Pairs the source cannot
price are omitted from the output.

Examples:
  swaprail rates BTC/iso:USD
  swaprail rates BTC/iso:USD iso:EUR/ETH`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}

func runRates(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	logger := newLogger(verbose)

	pairs := make([]types.CurrencyPair, 0, len(args))
	for _, arg := range args {
		from, to, err := parser.ParsePair(arg)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		pairs = append(pairs, types.CurrencyPair{FromCurrency: from, ToCurrency: to})
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	plugin := nomics.New(nomics.Options{
		APIKey:  cfg.NomicsAPIKey,
		BaseURL: cfg.NomicsBaseURL,
		Fetcher: fetch.NewClient(),
		Logger:  logger,
	})

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching rates..."
		s.Start()
	}

	rates := plugin.FetchRates(context.Background(), pairs)
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(rates, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayRates(rates, len(pairs))
}

func displayRates(rates []types.Rate, requested int) {
	if len(rates) == 0 {
		fmt.Println("\nNo pairs could be priced.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                   EXCHANGE RATES")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	for _, r := range rates {
		fmt.Printf("  %-12s -> %-12s  %s\n",
			color.YellowString(r.FromCurrency),
			color.YellowString(r.ToCurrency),
			fmt.Sprintf("%g", r.Rate))
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("\nPriced %d of %d pairs\n\n", len(rates), requested)
}
