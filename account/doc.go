// Package account defines the capability set shared by every account concurrency model.
//
// Two realizations live in sub-packages:
//   - locking: pessimistic locking with canonical lock ordering for transfers
//   - actor: one worker goroutine per account draining a private FIFO mailbox,
//     with saga-style transfers and compensation
//
// Both are driven through the Account interface, which is all the simulator depends on.
//
// Failures are reported as sentinel errors that callers classify with errors.Is:
//
//	err := from.TransferTo(ctx, to, amount)
//	switch {
//	case errors.Is(err, account.ErrInsufficientFunds):
//		// business outcome, not a defect
//	case errors.Is(err, account.ErrTimeout):
//		// actor did not reply in time
//	}
package account
