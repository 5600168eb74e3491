package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data source identifiers
const (
	DataSourceYahoo    = "yahoo"
	DataSourcePostgres = "postgres"
)

// Config holds all configuration for the application
// SSOT: environment variables are read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Market data
	DataSource string // yahoo, postgres
	Yahoo      YahooConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Simulation engine
	Simulation SimulationConfig

	// Benchmark volatility index
	Benchmark BenchmarkConfig

	// Portfolio risk
	Portfolio PortfolioConfig

	// Scheduler
	SchedulerEnabled     bool
	BenchmarkRefreshCron string
	Sync                 SyncConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// YahooConfig holds the Yahoo chart API configuration
type YahooConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool

	HistoryTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SimulationConfig holds batch simulation settings
type SimulationConfig struct {
	MaxWorkers      int    // optimized strategy pool size
	PerModelWorkers int    // per-model strategy pool size
	ForecastPaths   int    // simulation forecast paths per fitted model
	Seed            uint64 // 0 = random per request
	HistoryPeriod   string
}

// BenchmarkConfig holds the benchmark volatility lookup settings
type BenchmarkConfig struct {
	Symbol string
	TTL    time.Duration
}

// PortfolioConfig holds portfolio risk settings
type PortfolioConfig struct {
	MarketSymbol  string
	HistoryPeriod string
}

// SyncConfig holds the scheduled price sync settings
type SyncConfig struct {
	Symbols []string
	Cron    string
	Workers int
	Period  string
}

// Load reads configuration from environment variables
// SSOT: the only caller of os.Getenv
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DataSource: strings.ToLower(getEnv("DATA_SOURCE", DataSourceYahoo)),
		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			RateLimit: getEnvAsFloat("YAHOO_RATE_LIMIT", 5),
			Timeout:   getEnvAsDuration("HTTP_TIMEOUT", "15s"),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			Enabled:    getEnvAsBool("REDIS_ENABLED", false),
			HistoryTTL: getEnvAsDuration("CACHE_HISTORY_TTL", "1h"),
		},

		Simulation: SimulationConfig{
			MaxWorkers:      getEnvAsInt("SIM_MAX_WORKERS", 6),
			PerModelWorkers: getEnvAsInt("SIM_PERMODEL_WORKERS", 8),
			ForecastPaths:   getEnvAsInt("SIM_FORECAST_PATHS", 1000),
			Seed:            getEnvAsUint64("SIM_SEED", 0),
			HistoryPeriod:   getEnv("HISTORY_PERIOD_SIM", "5y"),
		},

		Benchmark: BenchmarkConfig{
			Symbol: getEnv("BENCHMARK_SYMBOL", "^INDIAVIX"),
			TTL:    getEnvAsDuration("BENCHMARK_TTL", "24h"),
		},

		Portfolio: PortfolioConfig{
			MarketSymbol:  getEnv("MARKET_BENCHMARK", "^NSEI"),
			HistoryPeriod: getEnv("HISTORY_PERIOD_PORTFOLIO", "2y"),
		},

		SchedulerEnabled:     getEnvAsBool("SCHEDULER_ENABLED", false),
		BenchmarkRefreshCron: getEnv("BENCHMARK_REFRESH_CRON", "0 0 9 * * *"),
		Sync: SyncConfig{
			Symbols: getEnvAsList("SYNC_SYMBOLS"),
			Cron:    getEnv("SYNC_CRON", "0 30 16 * * 1-5"),
			Workers: getEnvAsInt("SYNC_WORKERS", 4),
			Period:  getEnv("SYNC_PERIOD", "5y"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.DataSource {
	case DataSourceYahoo:
	case DataSourcePostgres:
		// The price table lives in Postgres
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: yahoo, postgres")
	}

	if c.Simulation.MaxWorkers < 1 || c.Simulation.PerModelWorkers < 1 {
		return fmt.Errorf("SIM_MAX_WORKERS and SIM_PERMODEL_WORKERS must be positive")
	}
	if c.Simulation.ForecastPaths < 1 {
		return fmt.Errorf("SIM_FORECAST_PATHS must be positive")
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("SYNC_WORKERS must be positive")
	}
	if c.Benchmark.TTL <= 0 {
		return fmt.Errorf("BENCHMARK_TTL must be positive")
	}

	return nil
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
