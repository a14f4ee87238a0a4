package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/account/actor"
	"github.com/AntonStoeckl/concurrent-banking-go/account/locking"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

// Method selects the account concurrency model.
type Method string

const (
	MethodLocking Method = account.ModelLocking
	MethodActor   Method = account.ModelActor
)

// Methods returns every method in display order.
func Methods() []Method {
	return []Method{MethodLocking, MethodActor}
}

// ParseMethod accepts a method name, or "all" for every method.
func ParseMethod(name string) ([]Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(name))) {
	case MethodLocking:
		return []Method{MethodLocking}, nil
	case MethodActor:
		return []Method{MethodActor}, nil
	case "all", "":
		return Methods(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Title is the human-readable name of m.
func (m Method) Title() string {
	switch m {
	case MethodLocking:
		return "Method A: Pessimistic Locking"
	case MethodActor:
		return "Method B: Actor Message-Passing"
	default:
		return string(m)
	}
}

// AccountID returns the identifier of the i-th account, starting at 1.
// The zero padding keeps lexical order equal to numeric order.
func AccountID(i int) string {
	return fmt.Sprintf("ACC-%04d", i)
}

// Observability bundles the collectors handed to every account a factory creates.
type Observability struct {
	Logger  account.ContextualLogger
	Metrics account.MetricsCollector
}

// NewAccounts creates n accounts of method m, each opened with opening.
// On failure every account created so far is stopped.
func NewAccounts(
	ctx context.Context,
	m Method,
	n int,
	opening money.Money,
	cfg account.Config,
	obs Observability,
) ([]account.Account, error) {
	if m == MethodActor {
		actor.WarnManyActors(ctx, obs.Logger, n, cfg.ActorWarnThreshold)
	}

	accounts := make([]account.Account, 0, n)

	for i := 1; i <= n; i++ {
		acc, err := newAccount(m, AccountID(i), opening, cfg, obs)
		if err != nil {
			StopAll(accounts)
			return nil, err
		}

		accounts = append(accounts, acc)
	}

	return accounts, nil
}

func newAccount(m Method, id string, opening money.Money, cfg account.Config, obs Observability) (account.Account, error) {
	switch m {
	case MethodLocking:
		options := []locking.Option{locking.WithMetrics(obs.Metrics)}
		if obs.Logger != nil {
			options = append(options, locking.WithContextualLogger(obs.Logger))
		}

		return locking.NewAccount(id, opening, cfg, options...)

	case MethodActor:
		options := []actor.Option{actor.WithMetrics(obs.Metrics)}
		if obs.Logger != nil {
			options = append(options, actor.WithContextualLogger(obs.Logger))
		}

		return actor.NewAccount(id, opening, cfg, options...)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
}

// StopAll stops every resource-owning account and waits until its worker has exited.
func StopAll(accounts []account.Account) {
	account.StopAll(accounts)

	for _, acc := range accounts {
		if waiter, ok := acc.(interface{ Done() <-chan struct{} }); ok {
			<-waiter.Done()
		}
	}
}
