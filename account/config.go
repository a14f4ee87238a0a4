package account

import (
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

const (
	defaultCriticalSectionDelay = time.Millisecond
	defaultCallTimeout          = 5 * time.Second
	defaultActorWarnThreshold   = 300
)

// Config carries the tunables read by account logic. It is passed in at construction
// and never read from global state.
type Config struct {
	// Limits bounds every deposit, withdrawal and transfer amount.
	Limits money.Limits

	// CriticalSectionDelay is slept inside the critical section to widen the interleaving window.
	// Zero disables it.
	CriticalSectionDelay time.Duration

	// CallTimeout bounds how long a caller waits for an actor reply.
	CallTimeout time.Duration

	// ActorWarnThreshold is the actor count from which creating more actors is logged as a warning.
	ActorWarnThreshold int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Limits:               money.DefaultLimits(),
		CriticalSectionDelay: defaultCriticalSectionDelay,
		CallTimeout:          defaultCallTimeout,
		ActorWarnThreshold:   defaultActorWarnThreshold,
	}
}

// Validator returns a money validator for the configured limits.
func (c Config) Validator() money.Validator {
	return money.NewValidator(c.Limits)
}

// Pause sleeps for the configured critical-section delay, if any.
func (c Config) Pause() {
	if c.CriticalSectionDelay > 0 {
		time.Sleep(c.CriticalSectionDelay)
	}
}
