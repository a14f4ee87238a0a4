// Package simulator drives concurrent workloads against any account.Account realization and
// aggregates the outcomes into RunMetrics.
//
// A run snapshots the total balance, starts one goroutine per configured worker, lets every worker
// perform its fixed number of randomly chosen operations, then snapshots the total again. The
// difference is the drift: exactly 0.00 for transfer-only workloads on a correct account model, and
// non-negative otherwise because failed withdrawals never remove funds.
//
// Each worker draws its operations from its own generator seeded with (Seed, worker index), so the
// sequence of chosen operations is reproducible while interleaving and outcomes are not.
package simulator
