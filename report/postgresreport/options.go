package postgresreport

import (
	"fmt"
	"regexp"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTableName sets the table rows are stored in.
func WithTableName(tableName string) Option {
	return func(s *Store) error {
		if !tableNamePattern.MatchString(tableName) {
			return fmt.Errorf("%w: %q", ErrInvalidTableName, tableName)
		}

		s.tableName = tableName

		return nil
	}
}

// WithContextualLogger sets the logger. SQL is logged at debug level, failures at error level.
func WithContextualLogger(logger account.ContextualLogger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the collector receiving statement durations.
func WithMetrics(collector account.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}
