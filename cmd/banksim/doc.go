// Command banksim runs the predefined banking scenarios against both account models and reports the results.
//
// Usage:
//
//	banksim [-scenario race|hotspot|scalability|all] [-method locking|actor|all] [flags]
//
// Every run prints a results table and appends one row per scenario and method to the configured report sinks:
// a CSV file (default reports/sim_results.csv), an optional JSON-lines file and an optional PostgreSQL table.
//
// Environment variables provide defaults for the flags of the same meaning:
//
//	BANKSIM_CURRENCY       currency code for display and reports (GBP)
//	BANKSIM_CRIT_DELAY     critical-section delay, e.g. 1ms
//	BANKSIM_CALL_TIMEOUT   actor call timeout, e.g. 5s
//	BANKSIM_PG_DSN         PostgreSQL DSN of the report table
//	BANKSIM_DB_ADAPTER     pgx, sql or sqlx
//	BANKSIM_OTLP_ENDPOINT  OpenTelemetry collector gRPC endpoint, e.g. localhost:4317
package main
