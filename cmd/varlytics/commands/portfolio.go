package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/varlytics/internal/contracts"
)

// portfolioCmd analyzes a portfolio given as SYMBOL=QTY arguments
var portfolioCmd = &cobra.Command{
	Use:   "portfolio <SYMBOL=QTY>...",
	Short: "Portfolio VaR, stress test and beta",
	Example: `  go run ./cmd/varlytics portfolio RELIANCE=100 TCS=50 INFY=75
  go run ./cmd/varlytics portfolio RELIANCE=100 TCS=50 --garch --confidence 0.99
  go run ./cmd/varlytics portfolio HDFCBANK=60 --detailed`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPortfolio,
}

var (
	pfNumSimulations int
	pfNumDays        int
	pfConfidence     float64
	pfGarch          bool
	pfDetailed       bool
	pfSeed           uint64
)

func init() {
	rootCmd.AddCommand(portfolioCmd)

	defaults := contracts.DefaultPortfolioParams()
	portfolioCmd.Flags().IntVarP(&pfNumSimulations, "simulations", "n", defaults.NumSimulations, "Monte Carlo draws")
	portfolioCmd.Flags().IntVarP(&pfNumDays, "days", "d", defaults.NumDays, "forecast horizon in trading days")
	portfolioCmd.Flags().Float64Var(&pfConfidence, "confidence", defaults.ConfidenceLevel, "VaR confidence level")
	portfolioCmd.Flags().BoolVar(&pfGarch, "garch", false, "include GARCH(1,1) VaR")
	portfolioCmd.Flags().BoolVar(&pfDetailed, "detailed", false, "print the VaR-focused subset only")
	portfolioCmd.Flags().Uint64Var(&pfSeed, "seed", 0, "random seed (0 = random)")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	holdings, err := parseHoldings(args)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	params := contracts.PortfolioParams{
		NumSimulations:  pfNumSimulations,
		NumDays:         pfNumDays,
		ConfidenceLevel: pfConfidence,
		IncludeGarch:    pfGarch,
		Seed:            pfSeed,
	}
	printHeader("Portfolio analysis",
		[2]string{"Holdings", strconv.Itoa(len(holdings))},
		[2]string{"Horizon", strconv.Itoa(params.NumDays) + " days"},
	)

	ctx := context.Background()
	if pfDetailed {
		report, err := a.portfolio.Detailed(ctx, holdings, params)
		if err != nil {
			return err
		}
		return printJSON(report)
	}

	report, err := a.portfolio.Analyze(ctx, holdings, params)
	if err != nil {
		return err
	}
	return printJSON(report)
}
