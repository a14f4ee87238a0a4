package simulator

import (
	"math/rand/v2"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

type step struct {
	operation string
	from      int
	to        int
	amount    money.Money
}

// planner chooses the operations of one worker.
type planner struct {
	rng      *rand.Rand
	accounts int
	cfg      Config
}

func newPlanner(cfg Config, worker, accounts int) *planner {
	return &planner{
		rng:      rand.New(rand.NewPCG(cfg.Seed, uint64(worker))), //nolint:gosec // Reproducible, not secret
		accounts: accounts,
		cfg:      cfg,
	}
}

func (p *planner) next() step {
	if p.rng.Float64() < p.cfg.TransferProb && p.accounts >= 2 {
		from := p.rng.IntN(p.accounts)
		to := p.rng.IntN(p.accounts - 1)
		if to >= from {
			to++
		}

		return step{operation: account.OperationTransfer, from: from, to: to, amount: p.amount()}
	}

	target := p.rng.IntN(p.accounts)
	amount := p.amount()

	if p.rng.Float64() < 0.5 {
		return step{operation: account.OperationDeposit, from: target, to: target, amount: amount}
	}

	return step{operation: account.OperationWithdraw, from: target, to: target, amount: amount}
}

func (p *planner) amount() money.Money {
	span := p.cfg.MaxAmountCents - p.cfg.MinAmountCents + 1

	return money.FromCents(p.cfg.MinAmountCents + p.rng.Int64N(span))
}
