package account

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

var (
	// ErrInvalidAmount is returned for non-positive amounts or amounts outside the configured limits.
	ErrInvalidAmount = money.ErrInvalidAmount

	// ErrInsufficientFunds is returned when a withdrawal or transfer exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccountTransfer is returned when the transfer target is the source account.
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")

	// ErrTimeout is returned when an actor does not reply within the configured call timeout.
	ErrTimeout = errors.New("account call timed out")

	// ErrUnknownOperation is returned when an actor receives a message it does not recognize.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrAccountStopped is returned for calls issued after an actor account was stopped.
	ErrAccountStopped = errors.New("account stopped")

	// ErrIncompatibleAccount is returned when a transfer mixes account models that cannot cooperate.
	ErrIncompatibleAccount = errors.New("incompatible account model")

	// ErrCompensationFailed is joined to the original error when a saga could not refund the source.
	ErrCompensationFailed = errors.New("transfer compensation failed")
)

// ErrorType returns a stable label for err, used in metrics and logs.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrCompensationFailed):
		return "compensation_failed"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrSameAccountTransfer):
		return "same_account"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrAccountStopped):
		return "stopped"
	case errors.Is(err, ErrIncompatibleAccount):
		return "incompatible_account"
	case errors.Is(err, ErrUnknownOperation):
		return "unknown_operation"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}
