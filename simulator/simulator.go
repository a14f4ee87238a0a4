package simulator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

const (
	metricOperationDuration = "simulator_operation_duration_seconds"
	spanRun                 = "simulator.run"
)

// Simulator runs workloads against a fixed set of accounts.
type Simulator struct {
	accounts []account.Account
	cfg      Config

	retryOptions []RetryOption

	logger           account.ContextualLogger
	metricsCollector account.MetricsCollector
	tracingCollector account.TracingCollector
}

// New creates a Simulator. It fails with ErrInvalidConfig for an empty account set
// or a configuration that does not pass Config.Validate.
func New(accounts []account.Account, cfg Config, options ...Option) (*Simulator, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: at least one account is required", ErrInvalidConfig)
	}

	for i, acc := range accounts {
		if acc == nil {
			return nil, fmt.Errorf("%w: account %d is nil", ErrInvalidConfig, i)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		accounts: accounts,
		cfg:      cfg,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Config returns the workload configuration.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Run executes one workload and returns its metrics.
//
// Account failures are counted and never abort the run. Run fails only when a balance snapshot
// cannot be taken or ctx is canceled.
func (s *Simulator) Run(ctx context.Context) (metrics RunMetrics, err error) {
	ctx, span := s.startSpan(ctx)
	defer func() { s.finishSpan(span, metrics, err) }()

	initial, err := s.totalBalance(ctx)
	if err != nil {
		return RunMetrics{}, fmt.Errorf("initial balance snapshot: %w", err)
	}

	tallies := make([]tally, s.cfg.Workers)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for worker := range s.cfg.Workers {
		g.Go(func() error {
			return s.work(gctx, worker, &tallies[worker])
		})
	}

	if err = g.Wait(); err != nil {
		return RunMetrics{}, fmt.Errorf("simulation aborted: %w", err)
	}

	elapsed := time.Since(start)

	final, err := s.totalBalance(ctx)
	if err != nil {
		return RunMetrics{}, fmt.Errorf("final balance snapshot: %w", err)
	}

	total := &tally{}
	for i := range tallies {
		total.merge(&tallies[i])
	}

	metrics = summarize(total, elapsed, initial, final)
	s.logSummary(ctx, metrics)

	return metrics, nil
}

func (s *Simulator) work(ctx context.Context, worker int, t *tally) error {
	p := newPlanner(s.cfg, worker, len(s.accounts))
	t.latencies = make([]time.Duration, 0, s.cfg.OpsPerWorker)

	for range s.cfg.OpsPerWorker {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := p.next()

		start := time.Now()
		err := s.execute(ctx, next)
		latency := time.Since(start)

		reason := Classify(err)
		t.record(latency, reason)

		account.RecordDuration(ctx, s.metricsCollector, metricOperationDuration, latency, map[string]string{
			"operation": next.operation,
			"status":    account.StatusOf(err),
		})
	}

	return nil
}

func (s *Simulator) execute(ctx context.Context, next step) error {
	from := s.accounts[next.from]

	switch next.operation {
	case account.OperationTransfer:
		return from.TransferTo(ctx, s.accounts[next.to], next.amount)
	case account.OperationDeposit:
		return from.Deposit(ctx, next.amount)
	default:
		return from.Withdraw(ctx, next.amount)
	}
}

// Classify maps an operation error to its failure reason. A nil error yields "".
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, account.ErrCompensationFailed):
		return ReasonOther
	case errors.Is(err, account.ErrInsufficientFunds):
		return ReasonInsufficientFunds
	case errors.Is(err, account.ErrInvalidAmount):
		return ReasonInvalidAmount
	case errors.Is(err, account.ErrSameAccountTransfer):
		return ReasonSameAccount
	default:
		return ReasonOther
	}
}

// totalBalance sums all balances, retrying reads that time out.
func (s *Simulator) totalBalance(ctx context.Context) (money.Money, error) {
	total := money.Zero()

	for _, acc := range s.accounts {
		var balance money.Money

		_, err := RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
			b, err := acc.Balance(ctx)
			if err != nil {
				return err
			}

			balance = b

			return nil
		}, s.retryOptions...)
		if err != nil {
			return money.Money{}, fmt.Errorf("reading balance of %s: %w", acc.ID(), err)
		}

		total = total.Add(balance)
	}

	return total, nil
}

func (s *Simulator) startSpan(ctx context.Context) (context.Context, account.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanRun, map[string]string{
		"accounts":       strconv.Itoa(len(s.accounts)),
		"workers":        strconv.Itoa(s.cfg.Workers),
		"ops_per_worker": strconv.Itoa(s.cfg.OpsPerWorker),
		"transfer_prob":  strconv.FormatFloat(s.cfg.TransferProb, 'f', -1, 64),
	})
}

func (s *Simulator) finishSpan(span account.SpanContext, metrics RunMetrics, err error) {
	if s.tracingCollector == nil || span == nil {
		return
	}

	if err != nil {
		s.tracingCollector.FinishSpan(span, account.StatusError, map[string]string{
			"error_type": account.ErrorType(err),
		})
		return
	}

	s.tracingCollector.FinishSpan(span, account.StatusSuccess, map[string]string{
		"attempted":   strconv.Itoa(metrics.Attempted),
		"succeeded":   strconv.Itoa(metrics.Succeeded),
		"total_drift": metrics.TotalDrift.String(),
	})
}

func (s *Simulator) logSummary(ctx context.Context, metrics RunMetrics) {
	if s.logger == nil {
		return
	}

	s.logger.InfoContext(ctx, "simulation run completed",
		"accounts", len(s.accounts),
		"workers", s.cfg.Workers,
		"attempted", metrics.Attempted,
		"succeeded", metrics.Succeeded,
		"failed", metrics.Failed.Total,
		"ops_per_sec", metrics.OpsPerSec,
		"p95_latency_ms", metrics.P95LatencyMs,
		"total_drift", metrics.TotalDrift.String(),
	)

	if s.cfg.TransferProb == 1 && !metrics.TotalDrift.IsZero() {
		s.logger.ErrorContext(ctx, "money was created or destroyed in a transfer-only run",
			"total_drift", metrics.TotalDrift.String(),
		)
	}
}
