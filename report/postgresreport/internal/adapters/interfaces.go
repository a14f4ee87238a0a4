package adapters

import (
	"context"
	"database/sql"
)

// DBAdapter is the subset of database access the report store needs.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
	Ping(ctx context.Context) error
}

// DBRows iterates query results.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports what an Exec changed.
type DBResult interface {
	RowsAffected() (int64, error)
}

type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool             { return s.rows.Next() }
func (s *stdRows) Scan(dest ...any) error { return s.rows.Scan(dest...) }
func (s *stdRows) Err() error             { return s.rows.Err() }
func (s *stdRows) Close() error           { return s.rows.Close() }

type stdResult struct {
	result sql.Result
}

func (s *stdResult) RowsAffected() (int64, error) { return s.result.RowsAffected() }
