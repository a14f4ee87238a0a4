package locking

import (
	"context"
	"slices"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

// ConsistentTotal returns the combined balance of accounts as of a single instant.
// It holds every lock at once, acquired in the canonical order used by transfers.
func ConsistentTotal(ctx context.Context, accounts ...*Account) money.Money {
	ordered := slices.Clone(accounts)
	slices.SortFunc(ordered, func(x, y *Account) int {
		switch {
		case x == y:
			return 0
		case x.precedes(y):
			return -1
		default:
			return 1
		}
	})
	ordered = slices.Compact(ordered)

	for _, acc := range ordered {
		acc.lock(ctx, account.OperationBalance)
	}

	total := money.Zero()
	for _, acc := range ordered {
		total = total.Add(acc.balance)
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		ordered[i].mu.Unlock()
	}

	return total
}
