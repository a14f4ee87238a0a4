package simulator

import (
	"math"
	"slices"
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

// Failure reasons a failed operation is counted under.
const (
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonInvalidAmount     = "invalid_amount"
	ReasonSameAccount       = "same_account"
	ReasonOther             = "other"
)

// RunMetrics is the outcome of one run. It is not modified after Run returns.
type RunMetrics struct {
	Attempted    int         `json:"attempted"`
	Succeeded    int         `json:"succeeded"`
	Failed       Failures    `json:"failed"`
	OpsPerSec    float64     `json:"ops_per_sec"`
	AvgLatencyMs float64     `json:"avg_latency_ms"`
	P95LatencyMs float64     `json:"p95_latency_ms"`
	TotalDrift   money.Money `json:"total_drift"`

	InitialTotal money.Money     `json:"initial_total"`
	FinalTotal   money.Money     `json:"final_total"`
	Elapsed      time.Duration   `json:"-"`
	Latencies    []time.Duration `json:"-"`
}

// Failures counts failed operations in total and per reason.
type Failures struct {
	Total    int      `json:"total"`
	ByReason ByReason `json:"by_reason"`
}

// ByReason holds one counter per failure reason.
type ByReason struct {
	InsufficientFunds int `json:"insufficient_funds"`
	InvalidAmount     int `json:"invalid_amount"`
	SameAccount       int `json:"same_account"`
	Other             int `json:"other"`
}

// Count returns the counter for reason, or 0 for an unknown reason.
func (b ByReason) Count(reason string) int {
	switch reason {
	case ReasonInsufficientFunds:
		return b.InsufficientFunds
	case ReasonInvalidAmount:
		return b.InvalidAmount
	case ReasonSameAccount:
		return b.SameAccount
	case ReasonOther:
		return b.Other
	default:
		return 0
	}
}

func (b *ByReason) add(reason string) {
	switch reason {
	case ReasonInsufficientFunds:
		b.InsufficientFunds++
	case ReasonInvalidAmount:
		b.InvalidAmount++
	case ReasonSameAccount:
		b.SameAccount++
	default:
		b.Other++
	}
}

// tally is owned by exactly one worker until the run joins.
type tally struct {
	attempted int
	succeeded int
	failed    Failures
	latencies []time.Duration
}

func (t *tally) record(latency time.Duration, reason string) {
	t.attempted++
	t.latencies = append(t.latencies, latency)

	if reason == "" {
		t.succeeded++
		return
	}

	t.failed.Total++
	t.failed.ByReason.add(reason)
}

func (t *tally) merge(other *tally) {
	t.attempted += other.attempted
	t.succeeded += other.succeeded
	t.failed.Total += other.failed.Total
	t.failed.ByReason.InsufficientFunds += other.failed.ByReason.InsufficientFunds
	t.failed.ByReason.InvalidAmount += other.failed.ByReason.InvalidAmount
	t.failed.ByReason.SameAccount += other.failed.ByReason.SameAccount
	t.failed.ByReason.Other += other.failed.ByReason.Other
	t.latencies = append(t.latencies, other.latencies...)
}

func summarize(t *tally, elapsed time.Duration, initial, final money.Money) RunMetrics {
	elapsed = max(elapsed, time.Nanosecond)

	return RunMetrics{
		Attempted:    t.attempted,
		Succeeded:    t.succeeded,
		Failed:       t.failed,
		OpsPerSec:    float64(t.succeeded) / elapsed.Seconds(),
		AvgLatencyMs: roundMillis(average(t.latencies)),
		P95LatencyMs: roundMillis(percentile(t.latencies, 0.95)),
		TotalDrift:   final.Sub(initial),
		InitialTotal: initial,
		FinalTotal:   final,
		Elapsed:      elapsed,
		Latencies:    t.latencies,
	}
}

func average(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	return sum / time.Duration(len(latencies))
}

// percentile returns the sample at rank ceil(p*(n-1)) of the sorted latencies.
func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	index := int(math.Ceil(p * float64(len(sorted)-1)))
	index = min(max(index, 0), len(sorted)-1)

	return sorted[index]
}

func roundMillis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)

	return math.Round(ms*1000) / 1000
}
