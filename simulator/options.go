package simulator

import "github.com/AntonStoeckl/concurrent-banking-go/account"

// Option defines a functional option for configuring a Simulator.
type Option func(*Simulator) error

// WithContextualLogger sets the logger receiving run summaries.
func WithContextualLogger(logger account.ContextualLogger) Option {
	return func(s *Simulator) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the collector receiving per-operation durations.
func WithMetrics(collector account.MetricsCollector) Option {
	return func(s *Simulator) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the collector receiving one span per run.
func WithTracing(collector account.TracingCollector) Option {
	return func(s *Simulator) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithBalanceRetry configures how balance snapshots retry actor timeouts.
func WithBalanceRetry(options ...RetryOption) Option {
	return func(s *Simulator) error {
		probe := &retryConfig{}
		for _, option := range options {
			if err := option(probe); err != nil {
				return err
			}
		}

		s.retryOptions = append(s.retryOptions, options...)

		return nil
	}
}
