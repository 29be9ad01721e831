// Package dbx is the database/sql glue the SQL repositories share: the
// query surface a repository needs and the transaction wrapper the message
// store appends through.
package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is what a repository runs its statements against, so the same code
// works on a pool and inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner opens transactions; *sql.DB and *sql.Conn implement it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn in one transaction on db. A nil error from fn commits; an
// error or a panic rolls back, and the panic is re-raised afterwards. A failed
// rollback is joined to fn's error.
func WithTx(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		finished = true
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}

	finished = true
	return tx.Commit()
}

// WithLockedTx is WithTx preceded by lockStmt (for example a Postgres
// "LOCK TABLE ... IN EXCLUSIVE MODE"), so writers that read-then-insert
// are serialized. An empty lockStmt skips the lock; SQLite writers are
// already serialized by its single connection.
func WithLockedTx(ctx context.Context, db TxBeginner, lockStmt string, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		if lockStmt != "" {
			if _, err := tx.ExecContext(ctx, lockStmt); err != nil {
				return err
			}
		}
		return fn(ctx, tx)
	})
}
