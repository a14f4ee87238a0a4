// Package postgresreport stores report rows in a PostgreSQL table.
//
// The store runs on pgxpool.Pool, database/sql (lib/pq driver) or sqlx. All SQL is built with goqu,
// except the table DDL. Failure counters per reason are kept in a jsonb column.
//
// Typical use:
//
//	store, closeDB, err := postgresreport.Open(ctx, postgresreport.AdapterPGX, dsn)
//	if err != nil { ... }
//	defer closeDB()
//
//	if err := store.EnsureSchema(ctx); err != nil { ... }
//	err = store.Write(ctx, row)
package postgresreport
