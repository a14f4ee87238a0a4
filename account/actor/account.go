package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

const (
	metricCallDuration     = "actor_call_duration_seconds"
	metricCallTimeouts     = "actor_call_timeouts_total"
	metricSagaCompensation = "actor_saga_compensations_total"
	metricMailboxDepth     = "actor_mailbox_depth"
	metricOperations       = "account_operations_total"
)

// Account is an account whose state is owned by a single worker goroutine.
type Account struct {
	id        string
	cfg       account.Config
	validator money.Validator

	// balance is only touched by the worker goroutine.
	balance money.Money

	mailbox  *mailbox
	done     chan struct{}
	stopOnce sync.Once

	logger           account.ContextualLogger
	metricsCollector account.MetricsCollector
}

// NewAccount creates an account and starts its worker goroutine.
// The opening balance must not be negative.
func NewAccount(id string, opening money.Money, cfg account.Config, options ...Option) (*Account, error) {
	if opening.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance %s is negative", account.ErrInvalidAmount, opening)
	}

	a := &Account{
		id:        id,
		cfg:       cfg,
		validator: cfg.Validator(),
		balance:   opening,
		mailbox:   newMailbox(),
		done:      make(chan struct{}),
	}

	for _, option := range options {
		if err := option(a); err != nil {
			return nil, err
		}
	}

	go a.run()

	return a, nil
}

// ID returns the account identifier.
func (a *Account) ID() string {
	return a.id
}

// String implements fmt.Stringer.
func (a *Account) String() string {
	return fmt.Sprintf("actor.Account(%s)", a.id)
}

// Balance asks the worker for the current balance.
func (a *Account) Balance(ctx context.Context) (money.Money, error) {
	return a.call(ctx, opBalance, money.Money{})
}

// Deposit asks the worker to add amount.
func (a *Account) Deposit(ctx context.Context, amount money.Money) (err error) {
	defer func() { a.observe(ctx, account.OperationDeposit, err) }()

	_, err = a.call(ctx, opDeposit, amount)

	return err
}

// Withdraw asks the worker to remove amount.
func (a *Account) Withdraw(ctx context.Context, amount money.Money) (err error) {
	defer func() { a.observe(ctx, account.OperationWithdraw, err) }()

	_, err = a.call(ctx, opWithdraw, amount)

	return err
}

// TransferTo moves amount to other as a compensating saga. other may be any account.Account.
//
// The source is debited first. If the destination rejects the deposit, the source is refunded
// and the destination's error is returned. If the refund fails as well, the returned error
// joins both failures with account.ErrCompensationFailed.
func (a *Account) TransferTo(ctx context.Context, other account.Account, amount money.Money) (err error) {
	defer func() { a.observe(ctx, account.OperationTransfer, err) }()

	dst, ok := other.(*Account)
	if ok && dst == a {
		return fmt.Errorf("%w: %s", account.ErrSameAccountTransfer, a.id)
	}

	if other == nil || (ok && dst == nil) {
		return fmt.Errorf("%w: cannot transfer from %s to nil %T", account.ErrIncompatibleAccount, a, other)
	}

	amt, err := a.validator.ValidateInLimits(amount)
	if err != nil {
		return err
	}

	if err = a.Withdraw(ctx, amt); err != nil {
		return err
	}

	depositErr := other.Deposit(ctx, amt)
	if depositErr == nil {
		return nil
	}

	// The refund must not be skipped because the caller gave up.
	refundErr := a.Deposit(context.WithoutCancel(ctx), amt)
	a.recordCompensation(ctx, refundErr)

	if refundErr != nil {
		if a.logger != nil {
			a.logger.ErrorContext(ctx, "transfer compensation failed",
				"from", a.id,
				"to", other.ID(),
				"amount", amt.String(),
				"error", refundErr.Error(),
			)
		}

		return errors.Join(
			depositErr,
			fmt.Errorf("%w: refund of %s to %s: %w", account.ErrCompensationFailed, amt, a.id, refundErr),
		)
	}

	return depositErr
}

// Stop shuts the worker down after it has processed every message enqueued before the call.
// Calls made afterwards fail with account.ErrAccountStopped. Stop is idempotent.
func (a *Account) Stop() {
	a.stopOnce.Do(func() {
		a.mailbox.close()
	})
}

// Done is closed once the worker goroutine has exited.
func (a *Account) Done() <-chan struct{} {
	return a.done
}

// call sends one message and waits for its reply.
//
// A call that gives up because of its timeout or ctx only does so while the message is still
// queued; the worker then skips it, so ErrTimeout and ctx errors mean the operation was not applied.
// Once the worker has claimed the message the call waits for its outcome.
func (a *Account) call(ctx context.Context, op operation, amount money.Money) (money.Money, error) {
	if err := ctx.Err(); err != nil {
		return money.Money{}, err
	}

	start := time.Now()
	replies := make(chan reply, 1)
	msg := newMessage(op, amount, replies)

	depth, ok := a.mailbox.push(msg)
	if !ok {
		return money.Money{}, fmt.Errorf("%w: %s", account.ErrAccountStopped, a.id)
	}

	labels := map[string]string{"operation": string(op)}
	account.RecordValue(ctx, a.metricsCollector, metricMailboxDepth, float64(depth), labels)

	var timeout <-chan time.Time
	if a.cfg.CallTimeout > 0 {
		timer := time.NewTimer(a.cfg.CallTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-replies:
		return a.replied(ctx, op, start, r)

	case <-timeout:
		if msg.abandon() {
			account.IncrementCounter(ctx, a.metricsCollector, metricCallTimeouts, labels)

			return money.Money{}, fmt.Errorf("%w: %s %s after %s", account.ErrTimeout, a.id, op, a.cfg.CallTimeout)
		}

	case <-ctx.Done():
		if msg.abandon() {
			return money.Money{}, ctx.Err()
		}
	}

	// The worker is already handling the message.
	return a.replied(ctx, op, start, <-replies)
}

func (a *Account) replied(ctx context.Context, op operation, start time.Time, r reply) (money.Money, error) {
	account.RecordDuration(ctx, a.metricsCollector, metricCallDuration, time.Since(start), map[string]string{
		"operation": string(op),
		"status":    account.StatusOf(r.err),
	})

	return r.balance, r.err
}

func (a *Account) run() {
	defer close(a.done)

	for {
		msg := a.mailbox.pop()
		if msg.op == opStop {
			return
		}

		// Abandoned by a caller that timed out or was canceled.
		if !msg.claim() {
			continue
		}

		// replies is buffered, so this never blocks.
		msg.reply <- a.handle(msg)
	}
}

func (a *Account) handle(msg message) (r reply) {
	defer func() {
		if p := recover(); p != nil {
			r = reply{err: fmt.Errorf("actor %s: %s handler panicked: %v", a.id, msg.op, p)}
		}
	}()

	switch msg.op {
	case opBalance:
		return reply{balance: a.balance}

	case opDeposit:
		amt, err := a.validator.ValidateInLimits(msg.amount)
		if err != nil {
			return reply{err: err}
		}

		a.cfg.Pause()
		a.balance = a.balance.Add(amt)

		return reply{}

	case opWithdraw:
		amt, err := a.validator.ValidateInLimits(msg.amount)
		if err != nil {
			return reply{err: err}
		}

		if a.balance.LessThan(amt) {
			return reply{err: fmt.Errorf("%w: %s holds %s, requested %s",
				account.ErrInsufficientFunds, a.id, a.balance, amt)}
		}

		a.cfg.Pause()
		a.balance = a.balance.Sub(amt)

		return reply{}

	default:
		return reply{err: fmt.Errorf("%w: %q", account.ErrUnknownOperation, msg.op)}
	}
}

func (a *Account) recordCompensation(ctx context.Context, refundErr error) {
	account.IncrementCounter(ctx, a.metricsCollector, metricSagaCompensation, map[string]string{
		"status": account.StatusOf(refundErr),
	})
}

func (a *Account) observe(ctx context.Context, operation string, err error) {
	account.IncrementCounter(ctx, a.metricsCollector, metricOperations, map[string]string{
		"model":     account.ModelActor,
		"operation": operation,
		"status":    account.StatusOf(err),
	})

	if err != nil && a.logger != nil {
		a.logger.DebugContext(ctx, "account operation failed",
			"account", a.id,
			"operation", operation,
			"error_type", account.ErrorType(err),
			"error", err.Error(),
		)
	}
}

var (
	_ account.Account = (*Account)(nil)
	_ account.Stopper = (*Account)(nil)
)
