package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swaprail",
	Short: "A CLI for exchange swap and rate adapter plugins",
	Long: `swaprail drives the SideShift, CoinSwitch and Nomics adapter plugins from
the command line against an offline demo wallet. Amounts are given in native
integer units (smallest denomination).

Examples:
  swaprail quote 100000000 BTC to ETH --via sideshift
  swaprail quote 200000000 BTC to ETH --via coinswitch --quote-for to
  swaprail rates BTC/iso:USD iso:EUR/ETH`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
