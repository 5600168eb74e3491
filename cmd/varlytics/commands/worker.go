package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/varlytics/internal/marketdata"
	"github.com/wonny/varlytics/internal/scheduler"
	"github.com/wonny/varlytics/internal/scheduler/jobs"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Scheduled background jobs",
	Long: `Run the cron scheduler that keeps caches and the price table warm.

Jobs:
  benchmark_refresh - re-populate the benchmark volatility cache (BENCHMARK_REFRESH_CRON)
  price_sync        - copy SYNC_SYMBOLS history into the price table (SYNC_CRON, needs DATABASE_URL)

Example:
  go run ./cmd/varlytics worker start
  go run ./cmd/varlytics worker list
  go run ./cmd/varlytics worker run benchmark_refresh`,
}

var workerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler and block until interrupted",
	RunE:  runWorkerStart,
}

var workerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	RunE:  runWorkerList,
}

var workerRunCmd = &cobra.Command{
	Use:   "run <job>",
	Short: "Run one job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkerRun,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.AddCommand(workerStartCmd, workerListCmd, workerRunCmd)
}

// newScheduler registers every job the configuration enables
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewBenchmarkRefreshJob(a.benchmark, a.cfg.BenchmarkRefreshCron, a.log)); err != nil {
		return nil, err
	}

	if a.repo != nil && len(a.cfg.Sync.Symbols) > 0 {
		syncer := marketdata.NewSyncer(a.remote, a.repo, a.log)
		syncCfg := marketdata.SyncConfig{Workers: a.cfg.Sync.Workers, Period: a.cfg.Sync.Period}
		job := jobs.NewPriceSyncJob(syncer, a.cfg.Sync.Symbols, syncCfg, a.cfg.Sync.Cron, a.log)
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func runWorkerStart(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}
	sched.Start()

	fmt.Fprintln(os.Stderr, "Worker started (Ctrl+C to stop)")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(os.Stderr, "Shutdown signal received, waiting for running jobs")
	sched.Stop()
	return nil
}

func runWorkerList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	stats := sched.Stats()
	names := sched.Jobs()
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tSCHEDULE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, stats[name].Schedule)
	}
	return w.Flush()
}

func runWorkerRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	result, err := sched.RunNow(context.Background(), args[0])
	if err != nil {
		return err
	}
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", result.JobName, result.Error)
	}
	return nil
}
