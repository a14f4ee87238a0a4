// Package pgtest opens report stores against a real PostgreSQL database for integration tests.
//
// Tests are skipped unless BANKSIM_TEST_POSTGRES_DSN is set. BANKSIM_TEST_DB_ADAPTER restricts
// the run to one adapter (pgx, sql or sqlx); by default every adapter is exercised.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-banking-go/report/postgresreport"
)

const (
	envDSN     = "BANKSIM_TEST_POSTGRES_DSN"
	envAdapter = "BANKSIM_TEST_DB_ADAPTER"
)

// DSN returns the test database DSN or skips t.
func DSN(t testing.TB) string {
	t.Helper()

	dsn := os.Getenv(envDSN)
	if dsn == "" {
		t.Skipf("%s not set", envDSN)
	}

	return dsn
}

// Adapters returns the adapters a test should run against.
func Adapters(t testing.TB) []postgresreport.Adapter {
	t.Helper()

	fromEnv := strings.ToLower(os.Getenv(envAdapter))
	if fromEnv == "" {
		return []postgresreport.Adapter{
			postgresreport.AdapterPGX,
			postgresreport.AdapterSQL,
			postgresreport.AdapterSQLX,
		}
	}

	adapter, err := postgresreport.ParseAdapter(fromEnv)
	require.NoError(t, err, "unsupported adapter in %s", envAdapter)

	return []postgresreport.Adapter{adapter}
}

// GivenStore opens a store with adapter on a fresh table that is dropped when t ends.
func GivenStore(t testing.TB, adapter postgresreport.Adapter, options ...postgresreport.Option) postgresreport.Store {
	t.Helper()

	ctx := context.Background()
	dsn := DSN(t)
	table := fmt.Sprintf("simulation_runs_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:16])

	store, closeDB, err := postgresreport.Open(ctx, adapter, dsn, append(options, postgresreport.WithTableName(table))...)
	require.NoError(t, err, "error opening report store in test setup")

	require.NoError(t, store.EnsureSchema(ctx), "error creating report table in test setup")

	t.Cleanup(func() {
		closeDB()
		dropTable(t, dsn, table)
	})

	return store
}

func dropTable(t testing.TB, dsn, table string) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Logf("error connecting for cleanup: %v", err)
		return
	}
	defer pool.Close()

	if _, err = pool.Exec(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		t.Logf("error dropping table %s: %v", table, err)
	}
}
