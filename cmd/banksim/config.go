package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/report/csvreport"
	"github.com/AntonStoeckl/concurrent-banking-go/report/postgresreport"
	"github.com/AntonStoeckl/concurrent-banking-go/scenario"
)

const (
	defaultCurrency = "GBP"

	envCurrency     = "BANKSIM_CURRENCY"
	envCritDelay    = "BANKSIM_CRIT_DELAY"
	envCallTimeout  = "BANKSIM_CALL_TIMEOUT"
	envPostgresDSN  = "BANKSIM_PG_DSN"
	envDBAdapter    = "BANKSIM_DB_ADAPTER"
	envOTLPEndpoint = "BANKSIM_OTLP_ENDPOINT"
)

// Config holds all command configuration.
type Config struct {
	Scenarios []scenario.Scenario
	Methods   []scenario.Method
	Seed      uint64

	Account  account.Config
	Currency string

	CSVPath      string
	JSONPath     string
	PostgresDSN  string
	DBAdapter    postgresreport.Adapter
	OTLPEndpoint string
	LogLevel     slog.Level
}

// parseFlags parses args with defaults taken from getenv.
func parseFlags(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	defaults := account.DefaultConfig()

	critDelay, err := envDuration(getenv, envCritDelay, defaults.CriticalSectionDelay)
	if err != nil {
		return Config{}, err
	}

	callTimeout, err := envDuration(getenv, envCallTimeout, defaults.CallTimeout)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("banksim", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		scenarioName = fs.String("scenario", "all", "Scenario to run: race, hotspot, scalability or all")
		methodName   = fs.String("method", "all", "Account model: locking, actor or all")
		users        = fs.Int("users", 0, "Concurrent users per scenario (0 keeps the scenario default)")
		ops          = fs.Int("ops", 0, "Operations per user (0 keeps the scenario default)")
		accounts     = fs.Int("accounts", 0, "Accounts in the scalability scenario (0 keeps the default)")
		seed         = fs.Uint64("seed", 0, "Workload seed (0 picks one from the clock)")
		delay        = fs.Duration("delay", critDelay, "Artificial critical-section delay")
		timeout      = fs.Duration("timeout", callTimeout, "Actor call timeout (0 waits forever)")
		warnActors   = fs.Int("warn-actors", defaults.ActorWarnThreshold, "Actor count from which a warning is logged (0 disables)")
		currency     = fs.String("currency", envOr(getenv, envCurrency, defaultCurrency), "Currency code for display and reports")
		csvPath      = fs.String("csv", csvreport.DefaultPath, "CSV report path (empty disables)")
		jsonPath     = fs.String("json", "", "JSON-lines report path (empty disables)")
		pgDSN        = fs.String("pg-dsn", getenv(envPostgresDSN), "PostgreSQL DSN of the report table (empty disables)")
		dbAdapter    = fs.String("db-adapter", getenv(envDBAdapter), "PostgreSQL adapter: pgx, sql or sqlx")
		otlpEndpoint = fs.String("otlp-endpoint", getenv(envOTLPEndpoint), "OpenTelemetry collector gRPC endpoint (empty disables)")
		logLevel     = fs.String("log-level", "info", "Log level: debug, info, warn or error")
	)

	if err = fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *users < 0 || *ops < 0 || *accounts < 0 {
		return Config{}, errors.New("users, ops and accounts must not be negative")
	}

	if *delay < 0 {
		return Config{}, fmt.Errorf("delay must not be negative, got %s", *delay)
	}

	scenarios, err := selectScenarios(*scenarioName, *users, *ops, *accounts)
	if err != nil {
		return Config{}, err
	}

	methods, err := scenario.ParseMethod(*methodName)
	if err != nil {
		return Config{}, err
	}

	adapter, err := postgresreport.ParseAdapter(strings.ToLower(*dbAdapter))
	if err != nil {
		return Config{}, err
	}

	var level slog.Level
	if err = level.UnmarshalText([]byte(*logLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}

	accountConfig := defaults
	accountConfig.CriticalSectionDelay = *delay
	accountConfig.CallTimeout = *timeout
	accountConfig.ActorWarnThreshold = *warnActors

	return Config{
		Scenarios:    scenarios,
		Methods:      methods,
		Seed:         *seed,
		Account:      accountConfig,
		Currency:     strings.ToUpper(*currency),
		CSVPath:      *csvPath,
		JSONPath:     *jsonPath,
		PostgresDSN:  *pgDSN,
		DBAdapter:    adapter,
		OTLPEndpoint: *otlpEndpoint,
		LogLevel:     level,
	}, nil
}

// selectScenarios resolves name and applies the size overrides. The account override only
// applies to the scalability scenario; the others are defined by their account count.
func selectScenarios(name string, users, ops, accounts int) ([]scenario.Scenario, error) {
	var selected []scenario.Scenario

	if strings.EqualFold(strings.TrimSpace(name), "all") || name == "" {
		selected = scenario.Predefined()
	} else {
		sc, err := scenario.Lookup(name)
		if err != nil {
			return nil, err
		}
		selected = []scenario.Scenario{sc}
	}

	for i := range selected {
		if users > 0 {
			selected[i].Users = users
		}
		if ops > 0 {
			selected[i].OpsPerUser = ops
		}
		if accounts > 0 && selected[i].Kind == scenario.KindScalability {
			selected[i].Accounts = accounts
		}
	}

	return selected, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if value := getenv(key); value != "" {
		return value
	}

	return fallback
}

func envDuration(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}

	return d, nil
}
