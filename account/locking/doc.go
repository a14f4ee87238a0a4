// Package locking implements account.Account with pessimistic locking.
//
// Every account owns a mutex guarding its balance. Single-account operations hold only
// their own lock. A transfer holds both locks, always acquired in a canonical order derived
// from the immutable (ID, construction sequence) pair of the two accounts, so no cycle of
// waiting goroutines can form regardless of which side a caller names as source.
//
// The mutex is not reentrant. Code that already holds a lock mutates balances through
// helpers that assume the lock is held and never acquires it again.
package locking
