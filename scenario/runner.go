package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/simulator"
)

// Result is the outcome of running one scenario with one method.
type Result struct {
	Scenario      Scenario
	Method        Method
	AccountConfig account.Config
	StartedAt     time.Time
	Metrics       simulator.RunMetrics
}

// Runner runs scenarios with a fixed account configuration.
type Runner struct {
	accountConfig account.Config
	seed          uint64

	logger           account.ContextualLogger
	metricsCollector account.MetricsCollector
	tracingCollector account.TracingCollector
}

// Option defines a functional option for configuring a Runner.
type Option func(*Runner) error

// WithSeed sets the seed of every simulated workload.
func WithSeed(seed uint64) Option {
	return func(r *Runner) error {
		r.seed = seed
		return nil
	}
}

// WithContextualLogger sets the logger passed to accounts and the simulator.
func WithContextualLogger(logger account.ContextualLogger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector passed to accounts and the simulator.
func WithMetrics(collector account.MetricsCollector) Option {
	return func(r *Runner) error {
		r.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector passed to the simulator.
func WithTracing(collector account.TracingCollector) Option {
	return func(r *Runner) error {
		r.tracingCollector = collector
		return nil
	}
}

// NewRunner creates a Runner.
func NewRunner(cfg account.Config, options ...Option) (*Runner, error) {
	r := &Runner{accountConfig: cfg}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Run creates fresh accounts for sc, simulates its workload with method m and
// stops the accounts again, whatever the outcome.
func (r *Runner) Run(ctx context.Context, sc Scenario, m Method) (Result, error) {
	accounts, err := NewAccounts(ctx, m, sc.Accounts, money.MustParse(OpeningBalance), r.accountConfig, Observability{
		Logger:  r.logger,
		Metrics: r.metricsCollector,
	})
	if err != nil {
		return Result{}, fmt.Errorf("creating %s accounts for %s: %w", m, sc.Kind, err)
	}
	defer StopAll(accounts)

	options := []simulator.Option{
		simulator.WithMetrics(r.metricsCollector),
		simulator.WithTracing(r.tracingCollector),
	}
	if r.logger != nil {
		options = append(options, simulator.WithContextualLogger(r.logger))
	}

	sim, err := simulator.New(accounts, sc.SimulatorConfig(r.seed), options...)
	if err != nil {
		return Result{}, err
	}

	startedAt := time.Now().UTC()

	metrics, err := sim.Run(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("running %s with %s: %w", sc.Kind, m, err)
	}

	return Result{
		Scenario:      sc,
		Method:        m,
		AccountConfig: r.accountConfig,
		StartedAt:     startedAt,
		Metrics:       metrics,
	}, nil
}
