package actor

import "github.com/AntonStoeckl/concurrent-banking-go/account"

// Option defines a functional option for configuring an Account.
type Option func(*Account) error

// WithContextualLogger sets the contextual logger.
func WithContextualLogger(logger account.ContextualLogger) Option {
	return func(a *Account) error {
		a.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector account.MetricsCollector) Option {
	return func(a *Account) error {
		a.metricsCollector = collector
		return nil
	}
}
