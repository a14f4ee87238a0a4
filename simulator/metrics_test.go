package simulator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

func Test_Percentile_UsesCeilRank(t *testing.T) {
	latencies := make([]time.Duration, 0, 10)
	for i := 10; i >= 1; i-- {
		latencies = append(latencies, time.Duration(i)*time.Millisecond)
	}

	// ceil(0.95 * 9) = 9, the largest of ten samples
	assert.Equal(t, 10*time.Millisecond, percentile(latencies, 0.95))

	// ceil(0.95 * 30) = 29 of 31 samples
	latencies = latencies[:0]
	for i := 0; i <= 30; i++ {
		latencies = append(latencies, time.Duration(i)*time.Millisecond)
	}
	assert.Equal(t, 29*time.Millisecond, percentile(latencies, 0.95))

	assert.Equal(t, time.Duration(0), percentile(nil, 0.95))
	assert.Equal(t, 7*time.Millisecond, percentile([]time.Duration{7 * time.Millisecond}, 0.95))
}

func Test_Percentile_DoesNotReorderInput(t *testing.T) {
	latencies := []time.Duration{3, 1, 2}

	_ = percentile(latencies, 0.95)

	assert.Equal(t, []time.Duration{3, 1, 2}, latencies)
}

func Test_Summarize_DerivesRunMetrics(t *testing.T) {
	// arrange
	workerA := &tally{}
	workerA.record(2*time.Millisecond, "")
	workerA.record(4*time.Millisecond, ReasonInsufficientFunds)

	workerB := &tally{}
	workerB.record(6*time.Millisecond, "")
	workerB.record(8*time.Millisecond, ReasonOther)

	total := &tally{}
	total.merge(workerA)
	total.merge(workerB)

	// act
	metrics := summarize(total, 2*time.Second, money.MustParse("100.00"), money.MustParse("112.50"))

	// assert
	assert.Equal(t, 4, metrics.Attempted)
	assert.Equal(t, 2, metrics.Succeeded)
	assert.Equal(t, 2, metrics.Failed.Total)
	assert.Equal(t, 1, metrics.Failed.ByReason.InsufficientFunds)
	assert.Equal(t, 1, metrics.Failed.ByReason.Count(ReasonOther))
	assert.InDelta(t, 1.0, metrics.OpsPerSec, 1e-9)
	assert.InDelta(t, 5.0, metrics.AvgLatencyMs, 1e-9)
	assert.InDelta(t, 8.0, metrics.P95LatencyMs, 1e-9)
	assert.Equal(t, "12.50", metrics.TotalDrift.String())
	assert.Len(t, metrics.Latencies, 4)
}

func Test_RunMetrics_JSONShape(t *testing.T) {
	metrics := RunMetrics{
		Attempted: 3,
		Succeeded: 2,
		Failed: Failures{
			Total:    1,
			ByReason: ByReason{SameAccount: 1},
		},
		TotalDrift: money.MustParse("0"),
	}

	encoded, err := json.Marshal(metrics)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, "0.00", decoded["total_drift"])
	assert.Equal(t, float64(3), decoded["attempted"])
	failed := decoded["failed"].(map[string]any)
	assert.Equal(t, float64(1), failed["total"])
	assert.Equal(t, map[string]any{
		"insufficient_funds": float64(0),
		"invalid_amount":     float64(0),
		"same_account":       float64(1),
		"other":              float64(0),
	}, failed["by_reason"])
	assert.Contains(t, decoded, "ops_per_sec")
	assert.Contains(t, decoded, "avg_latency_ms")
	assert.Contains(t, decoded, "p95_latency_ms")
}

func Test_Planner_SequenceIsReproducibleFromSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42

	first := newPlanner(cfg, 3, 5)
	second := newPlanner(cfg, 3, 5)
	otherWorker := newPlanner(cfg, 4, 5)

	differs := false
	for range 200 {
		a, b, c := first.next(), second.next(), otherWorker.next()

		assert.Equal(t, a.operation, b.operation)
		assert.Equal(t, a.from, b.from)
		assert.Equal(t, a.to, b.to)
		assert.True(t, a.amount.Equal(b.amount))

		if a.operation != c.operation || a.from != c.from || !a.amount.Equal(c.amount) {
			differs = true
		}
	}

	assert.True(t, differs, "different workers should draw different sequences")
}

func Test_Planner_RespectsProbabilityAndBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAmountCents = 100
	cfg.MaxAmountCents = 200

	cfg.TransferProb = 1
	transfers := newPlanner(cfg, 0, 3)
	for range 500 {
		next := transfers.next()

		assert.Equal(t, account.OperationTransfer, next.operation)
		assert.NotEqual(t, next.from, next.to)
		assert.GreaterOrEqual(t, next.amount.Cents(), int64(100))
		assert.LessOrEqual(t, next.amount.Cents(), int64(200))
	}

	cfg.TransferProb = 0
	mixed := newPlanner(cfg, 0, 3)
	seen := map[string]int{}
	for range 500 {
		seen[mixed.next().operation]++
	}
	assert.Zero(t, seen[account.OperationTransfer])
	assert.Positive(t, seen[account.OperationDeposit])
	assert.Positive(t, seen[account.OperationWithdraw])

	cfg.TransferProb = 1
	single := newPlanner(cfg, 0, 1)
	for range 100 {
		assert.NotEqual(t, account.OperationTransfer, single.next().operation)
	}
}
