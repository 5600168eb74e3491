package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "varlytics",
	Short: "Varlytics - equity price simulation and portfolio VaR engine",
	Long: `Varlytics Unified CLI

Monte Carlo price simulation over a 22-model volatility catalogue
and portfolio value-at-risk for NSE/BSE equities.

Usage:
  go run ./cmd/varlytics [command]

Examples:
  go run ./cmd/varlytics api
  go run ./cmd/varlytics models
  go run ./cmd/varlytics simulate RELIANCE garch-t --days 30
  go run ./cmd/varlytics portfolio RELIANCE=100 TCS=50 --garch
  go run ./cmd/varlytics worker start`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Flags override the environment read by config.Load
		if cmd.Flags().Changed("env") {
			os.Setenv("ENV", env)
		}
		if verbose {
			os.Setenv("LOG_LEVEL", "debug")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
