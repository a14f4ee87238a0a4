package postgresreport

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrInvalidTableName is returned for a table name that is not a plain lower-case identifier.
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrUnknownAdapter is returned by Open for an adapter name it does not know.
	ErrUnknownAdapter = errors.New("unknown database adapter")

	// ErrBuildingQueryFailed is returned when goqu cannot render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrWritingRowFailed is returned when an insert fails or affects no row.
	ErrWritingRowFailed = errors.New("writing report row failed")

	// ErrQueryingRowsFailed is returned when a select fails.
	ErrQueryingRowsFailed = errors.New("querying report rows failed")

	// ErrScanningRowFailed is returned when a selected row cannot be decoded.
	ErrScanningRowFailed = errors.New("scanning report row failed")
)
