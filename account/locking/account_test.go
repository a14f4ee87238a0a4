package locking_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/account/locking"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/testutil/observability/testdoubles"
)

func testConfig() account.Config {
	cfg := account.DefaultConfig()
	cfg.CriticalSectionDelay = 0

	return cfg
}

func givenAccount(t *testing.T, id, opening string, options ...locking.Option) *locking.Account {
	t.Helper()

	acc, err := locking.NewAccount(id, money.MustParse(opening), testConfig(), options...)
	require.NoError(t, err, "creating the account failed")

	return acc
}

func balanceOf(t *testing.T, acc account.Account) string {
	t.Helper()

	balance, err := acc.Balance(context.Background())
	require.NoError(t, err)

	return balance.String()
}

func Test_TransferTo_MovesFundsBetweenAccounts(t *testing.T) {
	// arrange
	ctx := context.Background()
	source := givenAccount(t, "ACC-0001", "200.00")
	destination := givenAccount(t, "ACC-0002", "50.00")

	// act
	err := source.TransferTo(ctx, destination, money.MustParse("75.00"))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "125.00", balanceOf(t, source))
	assert.Equal(t, "125.00", balanceOf(t, destination))
}

func Test_TransferTo_WorksInBothLockOrderDirections(t *testing.T) {
	// arrange
	ctx := context.Background()
	low := givenAccount(t, "ACC-0001", "10.00")
	high := givenAccount(t, "ACC-0002", "10.00")

	// act
	errUp := low.TransferTo(ctx, high, money.MustParse("4.00"))
	errDown := high.TransferTo(ctx, low, money.MustParse("1.50"))

	// assert
	assert.NoError(t, errUp)
	assert.NoError(t, errDown)
	assert.Equal(t, "7.50", balanceOf(t, low))
	assert.Equal(t, "12.50", balanceOf(t, high))
}

func Test_Deposit_And_Withdraw_RejectInvalidAndExcessiveAmounts(t *testing.T) {
	// arrange
	ctx := context.Background()
	acc := givenAccount(t, "ACC-0001", "100.00")

	// act
	errDeposit := acc.Deposit(ctx, money.MustParse("-10.00"))
	errWithdraw := acc.Withdraw(ctx, money.MustParse("100.01"))

	// assert
	assert.ErrorIs(t, errDeposit, account.ErrInvalidAmount)
	assert.ErrorIs(t, errWithdraw, account.ErrInsufficientFunds)
	assert.Equal(t, "100.00", balanceOf(t, acc))
}

func Test_Deposit_AddsExactAmount(t *testing.T) {
	ctx := context.Background()
	acc := givenAccount(t, "ACC-0001", "0.00")
	expected := money.Zero()

	for _, raw := range []string{"0.01", "0.10", "19.99", "1000000.00", "33.33"} {
		amount := money.MustParse(raw)

		require.NoError(t, acc.Deposit(ctx, amount))
		expected = expected.Add(amount)

		assert.Equal(t, expected.String(), balanceOf(t, acc))
	}
}

func Test_Withdraw_FailsExactlyWhenAmountExceedsBalance(t *testing.T) {
	ctx := context.Background()
	acc := givenAccount(t, "ACC-0001", "10.00")

	assert.NoError(t, acc.Withdraw(ctx, money.MustParse("9.99")))
	assert.Equal(t, "0.01", balanceOf(t, acc))

	assert.ErrorIs(t, acc.Withdraw(ctx, money.MustParse("0.02")), account.ErrInsufficientFunds)
	assert.Equal(t, "0.01", balanceOf(t, acc))

	assert.NoError(t, acc.Withdraw(ctx, money.MustParse("0.01")))
	assert.Equal(t, "0.00", balanceOf(t, acc))
}

func Test_TransferTo_SameAccount_Fails(t *testing.T) {
	acc := givenAccount(t, "ACC-0001", "10.00")

	err := acc.TransferTo(context.Background(), acc, money.MustParse("1.00"))

	assert.ErrorIs(t, err, account.ErrSameAccountTransfer)
	assert.Equal(t, "10.00", balanceOf(t, acc))
}

func Test_TransferTo_SameAccountCheckedBeforeAmount(t *testing.T) {
	acc := givenAccount(t, "ACC-0001", "10.00")

	err := acc.TransferTo(context.Background(), acc, money.MustParse("-1.00"))

	assert.ErrorIs(t, err, account.ErrSameAccountTransfer)
}

func Test_TransferTo_InsufficientFunds_LeavesBothUnchanged(t *testing.T) {
	ctx := context.Background()
	source := givenAccount(t, "ACC-0002", "5.00")
	destination := givenAccount(t, "ACC-0001", "5.00")

	err := source.TransferTo(ctx, destination, money.MustParse("5.01"))

	assert.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Equal(t, "5.00", balanceOf(t, source))
	assert.Equal(t, "5.00", balanceOf(t, destination))
}

type foreignAccount struct {
	account.Account
}

func Test_TransferTo_ForeignAccountModel_Fails(t *testing.T) {
	acc := givenAccount(t, "ACC-0001", "10.00")

	err := acc.TransferTo(context.Background(), foreignAccount{}, money.MustParse("1.00"))

	assert.ErrorIs(t, err, account.ErrIncompatibleAccount)
	assert.Equal(t, "10.00", balanceOf(t, acc))
}

func Test_NewAccount_RejectsNegativeOpeningBalance(t *testing.T) {
	_, err := locking.NewAccount("ACC-0001", money.MustParse("-0.01"), testConfig())

	assert.ErrorIs(t, err, account.ErrInvalidAmount)
}

func Test_ConcurrentTransfers_PreserveCombinedBalance(t *testing.T) {
	// setup
	ctx := context.Background()
	cfg := testConfig()
	cfg.CriticalSectionDelay = 50 * time.Microsecond

	a, err := locking.NewAccount("ACC-0001", money.MustParse("1000.00"), cfg)
	require.NoError(t, err)
	b, err := locking.NewAccount("ACC-0002", money.MustParse("1000.00"), cfg)
	require.NoError(t, err)

	expectedTotal := money.MustParse("2000.00")

	// arrange
	var stop atomic.Bool
	var violations atomic.Int64

	observerDone := make(chan struct{})
	go func() {
		defer close(observerDone)
		for !stop.Load() {
			if !locking.ConsistentTotal(ctx, a, b).Equal(expectedTotal) {
				violations.Add(1)
			}
			for _, acc := range []*locking.Account{a, b} {
				if balance, _ := acc.Balance(ctx); balance.IsNegative() {
					violations.Add(1)
				}
			}
		}
	}()

	// act
	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, 42)) //nolint:gosec // Weak random OK for tests
			for i := 0; i < 200; i++ {
				amount := money.FromCents(rng.Int64N(20000) + 1)
				if rng.IntN(2) == 0 {
					_ = a.TransferTo(ctx, b, amount)
				} else {
					_ = b.TransferTo(ctx, a, amount)
				}
			}
		}(uint64(worker))
	}
	wg.Wait()
	stop.Store(true)
	<-observerDone

	// assert
	assert.Zero(t, violations.Load(), "combined balance changed or an account went negative")
	assert.Equal(t, expectedTotal.String(), locking.ConsistentTotal(ctx, a, b).String())
}

func Test_BidirectionalTransfers_DoNotDeadlock(t *testing.T) {
	// setup
	ctx := context.Background()
	cfg := testConfig()
	cfg.CriticalSectionDelay = 100 * time.Microsecond

	a, err := locking.NewAccount("ACC-0001", money.MustParse("500.00"), cfg)
	require.NoError(t, err)
	b, err := locking.NewAccount("ACC-0002", money.MustParse("500.00"), cfg)
	require.NoError(t, err)

	deadline := time.Now().Add(300 * time.Millisecond)

	// act
	done := make(chan struct{})
	go func() {
		defer close(done)

		var wg sync.WaitGroup
		for worker := 0; worker < 16; worker++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				from, to := a, b
				if worker%2 == 1 {
					from, to = b, a
				}
				for time.Now().Before(deadline) {
					_ = from.TransferTo(ctx, to, money.MustParse("1.00"))
				}
			}(worker)
		}
		wg.Wait()
	}()

	// assert
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("bidirectional transfers did not complete, probable deadlock")
	}

	assert.Equal(t, "1000.00", locking.ConsistentTotal(ctx, a, b).String())
}

func Test_AccountsWithEqualIDs_StillOrderDeterministically(t *testing.T) {
	ctx := context.Background()
	a := givenAccount(t, "DUP", "100.00")
	b := givenAccount(t, "DUP", "100.00")

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() { defer wg.Done(); _ = a.TransferTo(ctx, b, money.MustParse("1.00")) }()
			go func() { defer wg.Done(); _ = b.TransferTo(ctx, a, money.MustParse("1.00")) }()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("transfers between equally named accounts deadlocked")
	}

	assert.Equal(t, "200.00", locking.ConsistentTotal(ctx, a, b, a).String())
}

func Test_Observability_RecordsLockWaitAndFailures(t *testing.T) {
	// setup
	ctx := context.Background()
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	loggerSpy := testdoubles.NewContextualLoggerSpy(true)

	acc := givenAccount(t, "ACC-0001", "1.00",
		locking.WithMetrics(metricsSpy),
		locking.WithContextualLogger(loggerSpy),
	)

	// act
	require.NoError(t, acc.Deposit(ctx, money.MustParse("1.00")))
	_ = acc.Withdraw(ctx, money.MustParse("5.00"))

	// assert
	assert.True(t, metricsSpy.HasDurationRecord("account_lock_wait_seconds"))
	assert.Equal(t, 1, metricsSpy.CountCounterRecords("account_operations_total", map[string]string{
		"operation": account.OperationDeposit,
		"status":    account.StatusSuccess,
	}))
	assert.Equal(t, 1, metricsSpy.CountCounterRecords("account_operations_total", map[string]string{
		"operation": account.OperationWithdraw,
		"status":    account.StatusError,
	}))
	assert.True(t, loggerSpy.HasLog("debug", "account operation failed"))
}
