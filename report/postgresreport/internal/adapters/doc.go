// Package adapters lets the report store run on pgxpool.Pool, sql.DB or sqlx.DB through one
// DBAdapter interface.
package adapters
