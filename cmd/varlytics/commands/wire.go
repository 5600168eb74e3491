package commands

import (
	"fmt"

	"github.com/wonny/varlytics/internal/batch"
	"github.com/wonny/varlytics/internal/benchmark"
	"github.com/wonny/varlytics/internal/contracts"
	"github.com/wonny/varlytics/internal/marketdata"
	"github.com/wonny/varlytics/internal/portfolio"
	"github.com/wonny/varlytics/internal/volatility"
	"github.com/wonny/varlytics/pkg/config"
	"github.com/wonny/varlytics/pkg/database"
	"github.com/wonny/varlytics/pkg/httputil"
	"github.com/wonny/varlytics/pkg/logger"
	"github.com/wonny/varlytics/pkg/redis"
)

// cachePrefix namespaces every Redis key of the application
const cachePrefix = "varlytics"

// app holds the wired components shared by the commands
type app struct {
	cfg *config.Config
	log *logger.Logger

	db    *database.DB // nil without DATABASE_URL
	redis *redis.Client

	remote  *marketdata.YahooClient
	repo    *marketdata.PriceRepository // nil without DATABASE_URL
	history contracts.HistoryFetcher    // what the engine reads

	benchmark *benchmark.Lookup
	batch     *batch.Service
	portfolio *portfolio.Analyzer
}

// newApp loads the configuration and wires the engine.
// SSOT: component wiring happens here only
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.repo = marketdata.NewPriceRepository(db.Pool)
		log.Info("Connected to database")
	}

	rc, err := redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc

	a.remote = marketdata.NewYahooClient(httputil.New(cfg, log), cfg.Yahoo.BaseURL, log)

	var source contracts.HistoryFetcher = a.remote
	if cfg.DataSource == config.DataSourcePostgres {
		source = marketdata.NewPostgresFetcher(a.repo)
	}
	cache := redis.NewCache(rc, cachePrefix)
	a.history = marketdata.NewCachedFetcher(source, cache, cfg.Redis.HistoryTTL, log)

	var scalars contracts.ScalarCache = benchmark.NewMemoryCache(cfg.Benchmark.TTL)
	if rc.Enabled() {
		scalars = benchmark.NewRedisCache(cache, cfg.Benchmark.TTL, log)
	}
	a.benchmark = benchmark.NewLookup(a.history, scalars, cfg.Benchmark.Symbol, log)

	fitter := volatility.NewFitter()
	a.batch = batch.NewService(a.history, a.benchmark, fitter, batch.ConfigFrom(cfg), log)
	a.portfolio = portfolio.NewAnalyzer(a.history, fitter, portfolio.ConfigFrom(cfg), log)

	log.WithFields(map[string]interface{}{
		"data_source": cfg.DataSource,
		"redis":       rc.Enabled(),
		"database":    a.db != nil,
	}).Debug("Application wired")

	return a, nil
}

// requireDB fails when the command needs the price table
func (a *app) requireDB() error {
	if a.db == nil {
		return fmt.Errorf("DATABASE_URL is required for this command")
	}
	return nil
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
