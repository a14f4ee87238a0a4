package postgresreport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// Adapter names a database driver stack Open can use.
type Adapter string

// Supported adapters.
const (
	AdapterPGX  Adapter = "pgx"
	AdapterSQL  Adapter = "sql"
	AdapterSQLX Adapter = "sqlx"
)

const (
	defaultMaxConnections    = 4
	defaultMinConnections    = 1
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

// ParseAdapter resolves an adapter name. The empty name selects AdapterPGX.
func ParseAdapter(name string) (Adapter, error) {
	switch Adapter(name) {
	case "", AdapterPGX:
		return AdapterPGX, nil
	case AdapterSQL:
		return AdapterSQL, nil
	case AdapterSQLX:
		return AdapterSQLX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAdapter, name)
	}
}

// Open connects to dsn with the given adapter, pings the database and returns a Store on it.
// The returned close function releases the connection pool.
func Open(ctx context.Context, adapter Adapter, dsn string, options ...Option) (Store, func(), error) {
	switch adapter {
	case AdapterPGX:
		pool, err := openPGXPool(ctx, dsn)
		if err != nil {
			return Store{}, nil, err
		}

		store, err := NewStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return Store{}, nil, err
		}

		return store, pool.Close, nil

	case AdapterSQL:
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return Store{}, nil, err
		}

		configureSQLPool(db)

		if err = db.PingContext(ctx); err != nil {
			return Store{}, nil, errors.Join(err, db.Close())
		}

		store, err := NewStoreFromSQLDB(db, options...)
		if err != nil {
			return Store{}, nil, errors.Join(err, db.Close())
		}

		return store, func() { _ = db.Close() }, nil

	case AdapterSQLX:
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			return Store{}, nil, err
		}

		configureSQLPool(db.DB)

		store, err := NewStoreFromSQLX(db, options...)
		if err != nil {
			return Store{}, nil, errors.Join(err, db.Close())
		}

		return store, func() { _ = db.Close() }, nil

	default:
		return Store{}, nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, adapter)
	}
}

func openPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func configureSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxConnections)
	db.SetMaxIdleConns(defaultMinConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
