package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/varlytics/internal/marketdata"
)

// dbCmd manages the price table
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Price table management",
	Long: `Manage the PostgreSQL price table used when DATA_SOURCE=postgres.

Example:
  go run ./cmd/varlytics db migrate
  go run ./cmd/varlytics db status
  go run ./cmd/varlytics db sync RELIANCE TCS NIFTY --period 5y`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the price table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireDB(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.db.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Schema is up to date")
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database connectivity and pool usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireDB(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := a.db.HealthCheck(ctx)
		if perr := printJSON(status); perr != nil {
			return perr
		}
		return err
	},
}

var dbSyncCmd = &cobra.Command{
	Use:   "sync [symbols...]",
	Short: "Copy remote price history into the price table",
	Long:  "Copy remote price history into the price table. Without arguments SYNC_SYMBOLS is used.",
	RunE:  runDBSync,
}

var (
	syncPeriod  string
	syncWorkers int
)

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd, dbStatusCmd, dbSyncCmd)

	dbSyncCmd.Flags().StringVar(&syncPeriod, "period", "", "history window (default SYNC_PERIOD)")
	dbSyncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "concurrent fetches (default SYNC_WORKERS)")
}

func runDBSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireDB(); err != nil {
		return err
	}

	symbols := args
	if len(symbols) == 0 {
		symbols = a.cfg.Sync.Symbols
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given and SYNC_SYMBOLS is empty")
	}

	cfg := marketdata.SyncConfig{Workers: a.cfg.Sync.Workers, Period: a.cfg.Sync.Period}
	if syncPeriod != "" {
		cfg.Period = syncPeriod
	}
	if syncWorkers > 0 {
		cfg.Workers = syncWorkers
	}

	syncer := marketdata.NewSyncer(a.remote, a.repo, a.log)
	results, err := syncer.SyncAll(context.Background(), symbols, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tRESOLVED\tBARS\tERROR")
	failed := 0
	for _, r := range results {
		msg := ""
		if r.Error != nil {
			msg = r.Error.Error()
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Symbol, r.Resolved, r.Count, msg)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(results))
	}
	return nil
}
