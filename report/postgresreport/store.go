package postgresreport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/concurrent-banking-go/account"
	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/report"
	"github.com/AntonStoeckl/concurrent-banking-go/report/postgresreport/internal/adapters"
)

const (
	defaultTableName = "simulation_runs"
	dialectPostgres  = "postgres"

	colRunID        = "run_id"
	colRunAt        = "run_at"
	colScenario     = "scenario"
	colMethod       = "method"
	colNumAccounts  = "num_accounts"
	colUsers        = "users"
	colOpsPerUser   = "ops_per_user"
	colAttempted    = "attempted"
	colSucceeded    = "succeeded"
	colFailed       = "failed"
	colByReason     = "by_reason"
	colOpsPerSec    = "ops_per_sec"
	colAvgLatency   = "avg_latency_ms"
	colP95Latency   = "p95_latency_ms"
	colTotalDrift   = "total_drift"
	colCurrency     = "currency"
	colCritDelayMs  = "crit_delay_ms"
	colTransferOnly = "transfer_only"

	metricStatementDuration = "report_store_statement_duration_seconds"

	logMsgStatementFailed = "report store statement failed"
	logMsgStatementRan    = "report store statement executed"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store persists report rows in one table.
type Store struct {
	db        adapters.DBAdapter
	tableName string

	logger           account.ContextualLogger
	metricsCollector account.MetricsCollector
}

// Filter narrows Query results. The zero value selects everything.
type Filter struct {
	Scenario            string
	Method              string
	OnlyDriftViolations bool
	Limit               uint
}

// NewStoreFromPGXPool creates a Store on a pgx pool.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a Store on a database/sql handle.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a Store on a sqlx handle.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// TableName returns the table the store writes to.
func (s Store) TableName() string {
	return s.tableName
}

// EnsureSchema creates the table if it does not exist yet.
func (s Store) EnsureSchema(ctx context.Context) error {
	_, err := s.exec(ctx, "ensure_schema", s.schemaDDL())

	return err
}

// Write inserts row.
func (s Store) Write(ctx context.Context, row report.Row) error {
	query, err := s.buildInsertQuery(row)
	if err != nil {
		return err
	}

	rowsAffected, err := s.exec(ctx, "insert", query)
	if err != nil {
		return errors.Join(ErrWritingRowFailed, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%w: %d rows affected", ErrWritingRowFailed, rowsAffected)
	}

	return nil
}

// Query returns the stored rows matching filter, newest first.
func (s Store) Query(ctx context.Context, filter Filter) ([]report.Row, error) {
	query, err := s.buildSelectQuery(filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.db.Query(ctx, query)
	s.observe(ctx, "select", query, time.Since(start), err)
	if err != nil {
		return nil, errors.Join(ErrQueryingRowsFailed, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to close report rows", "error", closeErr.Error())
		}
	}()

	result := make([]report.Row, 0)
	for rows.Next() {
		row, scanErr := scanRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryingRowsFailed, err)
	}

	return result, nil
}

// Ping verifies the database is reachable.
func (s Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s Store) schemaDDL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
	%s uuid PRIMARY KEY,
	%s timestamptz NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s bigint NOT NULL,
	%s bigint NOT NULL,
	%s bigint NOT NULL,
	%s bigint NOT NULL,
	%s bigint NOT NULL,
	%s bigint NOT NULL,
	%s jsonb NOT NULL,
	%s double precision NOT NULL,
	%s double precision NOT NULL,
	%s double precision NOT NULL,
	%s numeric(20,2) NOT NULL,
	%s text NOT NULL,
	%s double precision NOT NULL,
	%s boolean NOT NULL
)`,
		s.tableName,
		colRunID, colRunAt, colScenario, colMethod, colNumAccounts, colUsers, colOpsPerUser,
		colAttempted, colSucceeded, colFailed, colByReason,
		colOpsPerSec, colAvgLatency, colP95Latency,
		colTotalDrift, colCurrency, colCritDelayMs, colTransferOnly,
	)
}

func (s Store) buildInsertQuery(row report.Row) (string, error) {
	byReason, err := json.Marshal(row.ByReason())
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			colRunID:        row.RunID.String(),
			colRunAt:        row.Timestamp.UTC(),
			colScenario:     row.Scenario,
			colMethod:       row.Method,
			colNumAccounts:  row.NumAccounts,
			colUsers:        row.Users,
			colOpsPerUser:   row.OpsPerUser,
			colAttempted:    row.Attempted,
			colSucceeded:    row.Succeeded,
			colFailed:       row.Failed,
			colByReason:     goqu.L("?::jsonb", string(byReason)),
			colOpsPerSec:    row.OpsPerSec,
			colAvgLatency:   row.AvgLatencyMs,
			colP95Latency:   row.P95LatencyMs,
			colTotalDrift:   goqu.L("?::numeric", row.TotalDrift.String()),
			colCurrency:     row.Currency,
			colCritDelayMs:  row.CritDelayMs,
			colTransferOnly: row.TransferOnly,
		})

	query, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return query, nil
}

func (s Store) buildSelectQuery(filter Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(
			goqu.L(colRunID+"::text"),
			goqu.C(colRunAt),
			goqu.C(colScenario),
			goqu.C(colMethod),
			goqu.C(colNumAccounts),
			goqu.C(colUsers),
			goqu.C(colOpsPerUser),
			goqu.C(colAttempted),
			goqu.C(colSucceeded),
			goqu.C(colFailed),
			goqu.L(colByReason+"::text"),
			goqu.C(colOpsPerSec),
			goqu.C(colAvgLatency),
			goqu.C(colP95Latency),
			goqu.L(colTotalDrift+"::text"),
			goqu.C(colCurrency),
			goqu.C(colCritDelayMs),
			goqu.C(colTransferOnly),
		).
		Order(goqu.I(colRunAt).Desc(), goqu.I(colRunID).Asc())

	if filter.Scenario != "" {
		selectStmt = selectStmt.Where(goqu.Ex{colScenario: filter.Scenario})
	}

	if filter.Method != "" {
		selectStmt = selectStmt.Where(goqu.Ex{colMethod: filter.Method})
	}

	if filter.OnlyDriftViolations {
		selectStmt = selectStmt.Where(
			goqu.C(colTransferOnly).IsTrue(),
			goqu.C(colTotalDrift).Neq(0),
		)
	}

	if filter.Limit > 0 {
		selectStmt = selectStmt.Limit(filter.Limit)
	}

	query, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return query, nil
}

func scanRow(rows adapters.DBRows) (report.Row, error) {
	var (
		row        report.Row
		runID      string
		byReason   string
		totalDrift string
	)

	err := rows.Scan(
		&runID, &row.Timestamp, &row.Scenario, &row.Method,
		&row.NumAccounts, &row.Users, &row.OpsPerUser,
		&row.Attempted, &row.Succeeded, &row.Failed, &byReason,
		&row.OpsPerSec, &row.AvgLatencyMs, &row.P95LatencyMs,
		&totalDrift, &row.Currency, &row.CritDelayMs, &row.TransferOnly,
	)
	if err != nil {
		return report.Row{}, errors.Join(ErrScanningRowFailed, err)
	}

	if row.RunID, err = uuid.Parse(runID); err != nil {
		return report.Row{}, errors.Join(ErrScanningRowFailed, err)
	}

	if row.TotalDrift, err = money.Normalize(totalDrift); err != nil {
		return report.Row{}, errors.Join(ErrScanningRowFailed, err)
	}

	reasons := map[string]int{}
	if err = json.UnmarshalFromString(byReason, &reasons); err != nil {
		return report.Row{}, errors.Join(ErrScanningRowFailed, err)
	}

	row.FailedInsufficient = reasons["insufficient_funds"]
	row.FailedInvalid = reasons["invalid_amount"]
	row.FailedSameAccount = reasons["same_account"]
	row.FailedOther = reasons["other"]
	row.Timestamp = row.Timestamp.UTC()

	return row, nil
}

func (s Store) exec(ctx context.Context, statement, query string) (int64, error) {
	start := time.Now()
	result, err := s.db.Exec(ctx, query)
	s.observe(ctx, statement, query, time.Since(start), err)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (s Store) observe(ctx context.Context, statement, query string, duration time.Duration, err error) {
	account.RecordDuration(ctx, s.metricsCollector, metricStatementDuration, duration, map[string]string{
		"statement": statement,
		"status":    account.StatusOf(err),
	})

	if s.logger == nil {
		return
	}

	if err != nil {
		s.logger.ErrorContext(ctx, logMsgStatementFailed,
			"statement", statement,
			"error", err.Error(),
			"query", query,
		)
		return
	}

	s.logger.DebugContext(ctx, logMsgStatementRan,
		"statement", statement,
		"duration_ms", float64(duration.Microseconds())/1000,
		"query", query,
	)
}

var _ report.Writer = Store{}
