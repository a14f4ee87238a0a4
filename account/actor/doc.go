// Package actor implements account.Account with message passing.
//
// Each account owns private state and a single worker goroutine that drains an unbounded FIFO
// mailbox one message at a time. Callers never touch the balance: they enqueue a message with a
// one-shot reply channel and wait for the reply. A caller gives up on its timeout or on context
// cancellation only while the message is still queued, and the worker then discards it, so a
// failed call has no effect. Once the worker has taken a message the caller waits for its outcome.
//
// Transfers run as a saga in the caller's goroutine: withdraw from the source, deposit into the
// destination, and refund the source if the deposit fails. No two workers ever wait on each other.
//
// Accounts must be stopped with Stop to release their worker goroutine.
package actor
