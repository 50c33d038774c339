package dbutils

import (
	"context"
	"database/sql"
	"fmt"
)

// The subset of *sql.DB / *sql.Conn used by the benchmarks. The runner is given a single pinned
// *sql.Conn so every statement goes over the same session.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Executes each statement in order, stopping at the first failure
func ExecAll(ctx context.Context, db DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

// Returns the number of rows in table
func CountRows(ctx context.Context, db DB, table string) (int, error) {
	var n int
	row := db.QueryRowContext(ctx, "select count(*) from "+table)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return n, nil
}

// Executes the statements in a single transaction, rolling back on the first failure
func ExecTx(ctx context.Context, db DB, statements []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
