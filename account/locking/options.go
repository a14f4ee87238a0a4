package locking

import "github.com/AntonStoeckl/concurrent-banking-go/account"

// Option defines a functional option for configuring an Account.
type Option func(*Account) error

// WithContextualLogger sets the contextual logger. Failed operations are logged at debug level.
func WithContextualLogger(logger account.ContextualLogger) Option {
	return func(a *Account) error {
		a.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector. It receives lock wait durations and operation counters.
func WithMetrics(collector account.MetricsCollector) Option {
	return func(a *Account) error {
		a.metricsCollector = collector
		return nil
	}
}
