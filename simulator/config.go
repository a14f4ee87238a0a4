package simulator

import (
	"errors"
	"fmt"
	"math"
)

const (
	defaultWorkers        = 16
	defaultOpsPerWorker   = 1000
	defaultMinAmountCents = 1
	defaultMaxAmountCents = 5000
)

// ErrInvalidConfig is returned when a simulator is created with a malformed configuration.
var ErrInvalidConfig = errors.New("invalid simulator config")

// Config describes one workload.
type Config struct {
	// Workers is the number of concurrent workers, one goroutine each.
	Workers int

	// OpsPerWorker is the number of operations every worker performs.
	OpsPerWorker int

	// TransferProb is the probability in [0,1] that an operation is a transfer.
	// Transfers need at least two accounts; otherwise a deposit or withdrawal is performed.
	TransferProb float64

	// Seed feeds the per-worker generators.
	Seed uint64

	// MinAmountCents and MaxAmountCents bound the randomly drawn amounts, inclusive.
	MinAmountCents int64
	MaxAmountCents int64
}

// DefaultConfig returns a mixed workload drawing amounts between 0.01 and 50.00.
func DefaultConfig() Config {
	return Config{
		Workers:        defaultWorkers,
		OpsPerWorker:   defaultOpsPerWorker,
		TransferProb:   0.5,
		MinAmountCents: defaultMinAmountCents,
		MaxAmountCents: defaultMaxAmountCents,
	}
}

// Validate returns an error wrapping ErrInvalidConfig when the configuration cannot be run.
func (c Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.OpsPerWorker <= 0:
		return fmt.Errorf("%w: ops per worker must be positive, got %d", ErrInvalidConfig, c.OpsPerWorker)
	case math.IsNaN(c.TransferProb) || c.TransferProb < 0 || c.TransferProb > 1:
		return fmt.Errorf("%w: transfer probability must be within [0,1], got %v", ErrInvalidConfig, c.TransferProb)
	case c.MinAmountCents <= 0:
		return fmt.Errorf("%w: minimum amount must be positive, got %d cents", ErrInvalidConfig, c.MinAmountCents)
	case c.MaxAmountCents < c.MinAmountCents:
		return fmt.Errorf("%w: maximum amount %d cents is below minimum %d cents",
			ErrInvalidConfig, c.MaxAmountCents, c.MinAmountCents)
	}

	return nil
}
