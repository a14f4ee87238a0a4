package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/scenario"
)

const labelWidth = 28

var printer = message.NewPrinter(language.English)

func printBanner(w io.Writer, cfg Config) {
	symbol := money.CurrencySymbol(cfg.Currency)

	fmt.Fprintln(w, "== Thread-Safe Banking Simulator ==")
	fmt.Fprintf(w, "Currency: %s (%s)\n", cfg.Currency, symbol)
	fmt.Fprintf(w, "Starting balance per account: %s\n", money.MustParse(scenario.OpeningBalance).Format(symbol))
	fmt.Fprintf(w, "Critical-section delay: %.2f ms\n", float64(cfg.Account.CriticalSectionDelay.Microseconds())/1000)
}

func printScenarioHeader(w io.Writer, sc scenario.Scenario) {
	fmt.Fprintf(w, "\n--- %s ---\n", sc.Title)
	fmt.Fprintln(w, sc.Describe())
}

func printResultsTable(w io.Writer, result scenario.Result, symbol string) {
	m := result.Metrics
	rule := "  " + strings.Repeat("=", 45)

	fmt.Fprintln(w, "\n  --- Simulation Results ---")
	fmt.Fprintln(w, rule)
	printLine(w, "Succeeded / Attempted Ops", printer.Sprintf("%d/%d", m.Succeeded, m.Attempted),
		"(Successful ops vs. total attempted. Failures can occur, e.g., due to insufficient funds.)")
	printLine(w, "Failures by reason", printer.Sprintf("insufficient %d, invalid %d, same account %d, other %d",
		m.Failed.ByReason.InsufficientFunds, m.Failed.ByReason.InvalidAmount,
		m.Failed.ByReason.SameAccount, m.Failed.ByReason.Other), "")
	printLine(w, "Throughput (Ops/Sec)", printer.Sprintf("%d", int64(math.Round(m.OpsPerSec))),
		"(Measures system performance under load. Higher is better.)")
	printLine(w, "Latency avg / p95 (ms)", fmt.Sprintf("%.3f / %.3f", m.AvgLatencyMs, m.P95LatencyMs), "")
	printLine(w, "Total Money Drift", m.TotalDrift.Format(symbol), result.Scenario.DriftExplanation(symbol))
	fmt.Fprintln(w, rule)
}

func printLine(w io.Writer, label, value, note string) {
	fmt.Fprintf(w, "  %-*s: %s\n", labelWidth, label, value)

	if note != "" {
		fmt.Fprintf(w, "  %-*s  %s\n", labelWidth+2, "", note)
	}
}
