package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/varlytics/internal/batch"
	"github.com/wonny/varlytics/internal/contracts"
)

// simulateCmd runs one catalogue entry or the whole catalogue
var simulateCmd = &cobra.Command{
	Use:   "simulate <symbol> [type|all]",
	Short: "Run catalogue simulations for a symbol",
	Long: `Run one catalogue entry, or all 22 when the type is omitted or "all".

Example:
  go run ./cmd/varlytics simulate RELIANCE
  go run ./cmd/varlytics simulate RELIANCE all --per-model --seed 42
  go run ./cmd/varlytics simulate NIFTY egarch-skewed-t --days 30 --chart`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSimulate,
}

var (
	simNumSimulations int
	simNumDays        int
	simSeed           uint64
	simPerModel       bool
	simChart          bool
	simCompress       bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVarP(&simNumSimulations, "simulations", "n", contracts.DefaultSimulations, "number of simulated paths")
	simulateCmd.Flags().IntVarP(&simNumDays, "days", "d", contracts.DefaultDays, "trading days to simulate")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "random seed (0 = random)")
	simulateCmd.Flags().BoolVar(&simPerModel, "per-model", false, "run every entry on its own batch")
	simulateCmd.Flags().BoolVar(&simChart, "chart", false, "include chart data (single entry)")
	simulateCmd.Flags().BoolVar(&simCompress, "compress", false, "gzip+base64 the chart data")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	params := contracts.SimulationParams{
		NumSimulations: simNumSimulations,
		NumDays:        simNumDays,
		Seed:           simSeed,
	}
	symbol := args[0]
	ctx := context.Background()

	if len(args) == 1 || strings.EqualFold(args[1], "all") {
		printHeader("Run-all simulation",
			[2]string{"Symbol", symbol},
			[2]string{"Paths", strconv.Itoa(params.NumSimulations)},
			[2]string{"Days", strconv.Itoa(params.NumDays)},
		)
		resp, err := a.batch.RunAll(ctx, symbol, params, !simPerModel)
		if err != nil {
			return err
		}
		return printJSON(resp)
	}

	resp, err := a.batch.RunEntry(ctx, symbol, args[1], params, batch.EntryOptions{
		IncludeChart: simChart,
		Compress:     simCompress,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
