package main

import (
	"context"
	"fmt"
	"log"

	"github.com/AntonStoeckl/concurrent-banking-go/report"
	"github.com/AntonStoeckl/concurrent-banking-go/report/csvreport"
	"github.com/AntonStoeckl/concurrent-banking-go/report/jsonreport"
	"github.com/AntonStoeckl/concurrent-banking-go/report/postgresreport"
)

// openReports builds the configured report sinks. The returned close function releases the database, if any.
func openReports(ctx context.Context, cfg Config, tel telemetry) (report.MultiWriter, func(), error) {
	var writers report.MultiWriter
	closeFn := func() {}

	if cfg.CSVPath != "" {
		writers = append(writers, csvreport.New(cfg.CSVPath))
	}

	if cfg.JSONPath != "" {
		writers = append(writers, jsonreport.New(cfg.JSONPath))
	}

	if cfg.PostgresDSN != "" {
		log.Printf("🔧 USING DATABASE ADAPTER: %s", cfg.DBAdapter)

		options := []postgresreport.Option{postgresreport.WithMetrics(tel.Metrics)}
		if tel.Logger != nil {
			options = append(options, postgresreport.WithContextualLogger(tel.Logger))
		}

		store, closeDB, err := postgresreport.Open(ctx, cfg.DBAdapter, cfg.PostgresDSN, options...)
		if err != nil {
			return nil, closeFn, fmt.Errorf("opening report database: %w", err)
		}

		if err = store.EnsureSchema(ctx); err != nil {
			closeDB()
			return nil, closeFn, fmt.Errorf("creating report table: %w", err)
		}

		writers = append(writers, store)
		closeFn = closeDB
	}

	return writers, closeFn, nil
}
