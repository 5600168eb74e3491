package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/varlytics/internal/api"
	"github.com/wonny/varlytics/internal/api/handlers"
	"github.com/wonny/varlytics/pkg/metrics"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health
  GET  /api/simulations/available
  GET  /api/simulations/{symbol}/all
  GET  /api/simulations/{symbol}/{type}
  GET  /api/varlytics-special/egarch-skewed-t/{symbol}
  POST /api/portfolio/analyze
  POST /api/portfolio/var
  GET  /api/portfolio/example

Metrics are served on METRICS_PORT when METRICS_ENABLED is set. The
scheduler runs in-process when SCHEDULER_ENABLED is set.

Example:
  go run ./cmd/varlytics api
  go run ./cmd/varlytics api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	simHandler := handlers.NewSimulationHandler(a.batch, log)
	portfolioHandler := handlers.NewPortfolioHandler(a.portfolio, log)
	router := api.NewRouter(simHandler, portfolioHandler, log)
	server := api.New(a.cfg, log, router)

	var metricsServer *http.Server
	if a.cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:              ":" + a.cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
		log.WithField("port", a.cfg.MetricsPort).Info("Metrics server started")
	}

	if a.cfg.SchedulerEnabled {
		sched, err := newScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(os.Stderr, "Server running on http://localhost:%s (Ctrl+C to stop)\n", a.cfg.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
