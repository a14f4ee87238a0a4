package actor

import (
	"context"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
)

// WarnManyActors logs a warning when creating n actor accounts reaches threshold,
// since every actor owns a goroutine. It reports whether the warning applied.
// A non-positive threshold disables the check.
func WarnManyActors(ctx context.Context, logger account.ContextualLogger, n, threshold int) bool {
	if threshold <= 0 || n < threshold {
		return false
	}

	if logger != nil {
		logger.WarnContext(ctx, "creating many actor accounts, each owns a goroutine",
			"actors", n,
			"threshold", threshold,
		)
	}

	return true
}
