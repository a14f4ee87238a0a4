package locking

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

const (
	metricLockWait   = "account_lock_wait_seconds"
	metricOperations = "account_operations_total"
)

// sequence hands out construction sequence numbers used as the lock-ordering tie breaker.
var sequence atomic.Uint64

// Account is an account protected by a mutex.
type Account struct {
	id        string
	seq       uint64
	cfg       account.Config
	validator money.Validator

	mu      sync.Mutex
	balance money.Money

	logger           account.ContextualLogger
	metricsCollector account.MetricsCollector
}

// NewAccount creates an account with the given identifier and opening balance.
// The opening balance must not be negative.
func NewAccount(id string, opening money.Money, cfg account.Config, options ...Option) (*Account, error) {
	if opening.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance %s is negative", account.ErrInvalidAmount, opening)
	}

	a := &Account{
		id:        id,
		seq:       sequence.Add(1),
		cfg:       cfg,
		validator: cfg.Validator(),
		balance:   opening,
	}

	for _, option := range options {
		if err := option(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// ID returns the account identifier.
func (a *Account) ID() string {
	return a.id
}

// String implements fmt.Stringer.
func (a *Account) String() string {
	return fmt.Sprintf("locking.Account(%s)", a.id)
}

// Balance returns a copy of the current balance.
func (a *Account) Balance(ctx context.Context) (money.Money, error) {
	a.lock(ctx, account.OperationBalance)
	defer a.mu.Unlock()

	return a.balance, nil
}

// Deposit adds amount to the balance. The amount is validated before the lock is acquired.
func (a *Account) Deposit(ctx context.Context, amount money.Money) (err error) {
	defer func() { a.observe(ctx, account.OperationDeposit, err) }()

	amt, err := a.validator.ValidateInLimits(amount)
	if err != nil {
		return err
	}

	a.lock(ctx, account.OperationDeposit)
	defer a.mu.Unlock()

	a.cfg.Pause()
	a.credit(amt)

	return nil
}

// Withdraw removes amount from the balance or fails with account.ErrInsufficientFunds.
func (a *Account) Withdraw(ctx context.Context, amount money.Money) (err error) {
	defer func() { a.observe(ctx, account.OperationWithdraw, err) }()

	amt, err := a.validator.ValidateInLimits(amount)
	if err != nil {
		return err
	}

	a.lock(ctx, account.OperationWithdraw)
	defer a.mu.Unlock()

	if err = a.checkFunds(amt); err != nil {
		return err
	}

	a.cfg.Pause()
	a.debit(amt)

	return nil
}

// TransferTo atomically moves amount to other, which must also be a *locking.Account.
// Both locks are taken in canonical order and released on every exit path.
func (a *Account) TransferTo(ctx context.Context, other account.Account, amount money.Money) (err error) {
	defer func() { a.observe(ctx, account.OperationTransfer, err) }()

	dst, ok := other.(*Account)
	if ok && dst == a {
		return fmt.Errorf("%w: %s", account.ErrSameAccountTransfer, a.id)
	}

	if !ok || dst == nil {
		return fmt.Errorf("%w: cannot transfer from %s to %T", account.ErrIncompatibleAccount, a, other)
	}

	amt, err := a.validator.ValidateInLimits(amount)
	if err != nil {
		return err
	}

	first, second := a, dst
	if dst.precedes(a) {
		first, second = dst, a
	}

	first.lock(ctx, account.OperationTransfer)
	defer first.mu.Unlock()

	second.lock(ctx, account.OperationTransfer)
	defer second.mu.Unlock()

	if err = a.checkFunds(amt); err != nil {
		return err
	}

	a.cfg.Pause()
	a.debit(amt)
	dst.credit(amt)

	return nil
}

// precedes reports whether a comes before other in the canonical lock order.
func (a *Account) precedes(other *Account) bool {
	if a.id != other.id {
		return a.id < other.id
	}

	return a.seq < other.seq
}

// lock acquires the mutex and records how long the caller waited for it.
func (a *Account) lock(ctx context.Context, operation string) {
	if a.metricsCollector == nil {
		a.mu.Lock()
		return
	}

	start := time.Now()
	a.mu.Lock()
	account.RecordDuration(ctx, a.metricsCollector, metricLockWait, time.Since(start), map[string]string{
		"operation": operation,
	})
}

// checkFunds requires the lock to be held.
func (a *Account) checkFunds(amount money.Money) error {
	if a.balance.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s, requested %s", account.ErrInsufficientFunds, a.id, a.balance, amount)
	}

	return nil
}

// credit requires the lock to be held.
func (a *Account) credit(amount money.Money) {
	a.balance = a.balance.Add(amount)
}

// debit requires the lock to be held.
func (a *Account) debit(amount money.Money) {
	a.balance = a.balance.Sub(amount)
}

func (a *Account) observe(ctx context.Context, operation string, err error) {
	if a.metricsCollector != nil {
		account.IncrementCounter(ctx, a.metricsCollector, metricOperations, map[string]string{
			"model":     account.ModelLocking,
			"operation": operation,
			"status":    account.StatusOf(err),
		})
	}

	if err != nil && a.logger != nil {
		a.logger.DebugContext(ctx, "account operation failed",
			"account", a.id,
			"operation", operation,
			"error_type", account.ErrorType(err),
			"error", err.Error(),
		)
	}
}

var _ account.Account = (*Account)(nil)
