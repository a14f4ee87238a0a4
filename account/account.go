package account

import (
	"context"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

// Account is the capability set the simulator consumes from any concurrency model.
type Account interface {
	// ID returns the immutable identifier assigned at construction.
	ID() string

	// Balance returns the current balance.
	Balance(ctx context.Context) (money.Money, error)

	// Deposit adds amount. Fails with ErrInvalidAmount.
	Deposit(ctx context.Context, amount money.Money) error

	// Withdraw removes amount. Fails with ErrInvalidAmount or ErrInsufficientFunds.
	Withdraw(ctx context.Context, amount money.Money) error

	// TransferTo moves amount from this account to other.
	// Fails with ErrInvalidAmount, ErrInsufficientFunds or ErrSameAccountTransfer.
	TransferTo(ctx context.Context, other Account, amount money.Money) error
}

// Stopper is implemented by accounts that own background resources which must be released.
type Stopper interface {
	Stop()
}

// StopAll stops every account that implements Stopper and ignores the others.
func StopAll(accounts []Account) {
	for _, acc := range accounts {
		if stopper, ok := acc.(Stopper); ok {
			stopper.Stop()
		}
	}
}

// TotalBalance sums the balances of all accounts.
func TotalBalance(ctx context.Context, accounts []Account) (money.Money, error) {
	total := money.Zero()

	for _, acc := range accounts {
		balance, err := acc.Balance(ctx)
		if err != nil {
			return money.Money{}, err
		}

		total = total.Add(balance)
	}

	return total, nil
}
