package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a SQLAdapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query runs a query on the database.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return queryStd(ctx, s.db, query)
}

// Exec runs a statement on the database.
func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return execStd(ctx, s.db, query)
}

// Ping verifies the connection.
func (s *SQLAdapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a SQLXAdapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query runs a query on the database.
func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return queryStd(ctx, s.db, query)
}

// Exec runs a statement on the database.
func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return execStd(ctx, s.db, query)
}

// Ping verifies the connection.
func (s *SQLXAdapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type stdQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func queryStd(ctx context.Context, db stdQueryer, query string) (DBRows, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func execStd(ctx context.Context, db stdQueryer, query string) (DBResult, error) {
	result, err := db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}
