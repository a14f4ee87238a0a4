package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/report"
	"github.com/AntonStoeckl/concurrent-banking-go/scenario"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Getenv, os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		stop()
		log.Fatalf("banksim failed: %v", err)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout io.Writer) error {
	cfg, err := parseFlags(args, getenv, os.Stderr)
	if err != nil {
		return err
	}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	tel, err := setupTelemetry(ctx, cfg.OTLPEndpoint, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Printf("Error during telemetry shutdown: %v", shutdownErr)
		}
	}()

	writers, closeReports, err := openReports(ctx, cfg, tel)
	if err != nil {
		return err
	}
	defer closeReports()

	runner, err := scenario.NewRunner(cfg.Account,
		scenario.WithSeed(cfg.Seed),
		scenario.WithContextualLogger(tel.Logger),
		scenario.WithMetrics(tel.Metrics),
		scenario.WithTracing(tel.Tracing),
	)
	if err != nil {
		return err
	}

	log.Printf("Observability: metrics=%v, tracing=%v, seed=%d",
		tel.Metrics != nil, tel.Tracing != nil, cfg.Seed)

	printBanner(stdout, cfg)

	return runAll(ctx, runner, cfg, writers, stdout)
}

func runAll(ctx context.Context, runner *scenario.Runner, cfg Config, writers report.Writer, stdout io.Writer) error {
	symbol := money.CurrencySymbol(cfg.Currency)

	for _, sc := range cfg.Scenarios {
		printScenarioHeader(stdout, sc)

		for _, m := range cfg.Methods {
			fmt.Fprintf(stdout, "\n[%s]\n-> Simulation in progress... Please wait.\n", m.Title())

			result, err := runner.Run(ctx, sc, m)
			if err != nil {
				return err
			}

			printResultsTable(stdout, result, symbol)

			if err = writers.Write(ctx, report.NewRow(result, cfg.Currency)); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}
	}

	if cfg.CSVPath != "" {
		fmt.Fprintf(stdout, "\nCSV updated → %s\n", cfg.CSVPath)
	}

	return nil
}
