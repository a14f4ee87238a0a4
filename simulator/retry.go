package simulator

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
)

const (
	defaultMaxAttempts  = 5
	defaultBaseDelay    = time.Millisecond
	defaultJitterFactor = 0.3

	metricBalanceRetries         = "simulator_balance_retries_total"
	metricBalanceRetryDelay      = "simulator_balance_retry_delay_seconds"
	metricBalanceRetriesExceeded = "simulator_balance_max_retries_reached_total"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithRetryMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// RetryMetadata describes how a retried call went.
type RetryMetadata struct {
	Attempts      int
	TotalDelay    time.Duration
	LastErrorType string
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector account.MetricsCollector
}

// RetryWithExponentialBackoff executes fn and retries it while it fails with account.ErrTimeout,
// up to maxAttempts times.
//
// Retry schedule (default): 0 ms, 1 ms, 2 ms, 4 ms, 8 ms (with 30% jitter).
// Every other error fails fast.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetadata, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetadata{}, err
		}
	}

	var meta RetryMetadata
	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			account.RecordDuration(ctx, config.metricsCollector, metricBalanceRetryDelay, backoffDelay, map[string]string{
				"attempt_number": strconv.Itoa(attempt),
			})

			select {
			case <-time.After(backoffDelay):
				meta.TotalDelay += backoffDelay
			case <-ctx.Done():
				meta.LastErrorType = account.ErrorType(ctx.Err())
				return meta, ctx.Err()
			}
		}

		meta.Attempts++

		lastErr = fn(ctx)
		meta.LastErrorType = account.ErrorType(lastErr)

		if lastErr == nil {
			return meta, nil
		}

		if !isRetryableError(lastErr) {
			return meta, lastErr
		}

		if attempt < config.maxAttempts-1 {
			account.IncrementCounter(ctx, config.metricsCollector, metricBalanceRetries, map[string]string{
				"attempt_number": strconv.Itoa(attempt + 1),
				"error_type":     meta.LastErrorType,
			})
		}
	}

	account.IncrementCounter(ctx, config.metricsCollector, metricBalanceRetriesExceeded, map[string]string{
		"final_error_type": meta.LastErrorType,
	})

	return meta, lastErr
}

// isRetryableError reports whether err is worth retrying. Only actor reply timeouts are,
// because the worker is merely slow, not failing.
func isRetryableError(err error) bool {
	return errors.Is(err, account.ErrTimeout)
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, baseDelay*8, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the backoff delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryMetrics sets the metrics collector for retry instrumentation.
func WithRetryMetrics(collector account.MetricsCollector) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		config.metricsCollector = collector

		return nil
	}
}
