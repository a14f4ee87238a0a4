// Package report turns scenario results into flat report rows and fans them out to writers.
//
// A Row carries the scenario, the method, the workload sizes, every RunMetrics counter and the
// drift of one run, identified by a random run ID. Sub-packages persist rows as CSV, JSON lines
// or Postgres table rows.
package report
