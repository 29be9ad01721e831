package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/dbx"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/google/uuid"
)

type queries struct {
	// lock serializes appenders so created_at follows seq; empty when the
	// database already serializes writers.
	lock   string
	last   string
	insert string
	list   string
	delete string
}

var postgresQueries = queries{
	lock: `LOCK TABLE messages IN EXCLUSIVE MODE`,
	last: `SELECT created_at FROM messages
		 ORDER BY seq DESC LIMIT 1`,
	insert: `INSERT INTO messages (id, from_user, to_user, subject, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
	list: `SELECT seq, id, from_user, to_user, subject, body, created_at FROM messages
		 WHERE to_user = $1
		 ORDER BY seq DESC`,
	delete: `DELETE FROM messages
		 WHERE id = $1 AND to_user = $2`,
}

var sqliteQueries = queries{
	last: `SELECT created_at FROM messages
		 ORDER BY seq DESC LIMIT 1`,
	insert: `INSERT INTO messages (id, from_user, to_user, subject, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	list: `SELECT seq, id, from_user, to_user, subject, body, created_at FROM messages
		 WHERE to_user = ?
		 ORDER BY seq DESC`,
	delete: `DELETE FROM messages
		 WHERE id = ? AND to_user = ?`,
}

// SQLRepository implements Repository over database/sql. Ordering comes
// from the auto-incremented seq column.
type SQLRepository struct {
	db  *sql.DB
	q   queries
	now func() time.Time
}

func NewPostgresRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries, now: time.Now}
}

func NewSQLiteRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries, now: time.Now}
}

func (r *SQLRepository) Append(ctx context.Context, from, to, subject, body string) (string, error) {
	id := uuid.NewString()

	err := dbx.WithLockedTx(ctx, r.db, r.q.lock, func(ctx context.Context, tx dbx.DBTX) error {
		created := r.now().UTC()

		var last time.Time
		err := tx.QueryRowContext(ctx, r.q.last).Scan(&last)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		case created.Before(last):
			created = last
		}

		_, err = tx.ExecContext(ctx, r.q.insert, id, from, to, subject, body, created)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) ListFor(ctx context.Context, username string) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Seq, &m.ID, &m.From, &m.To, &m.Subject, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) DeleteByOwner(ctx context.Context, username, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q.delete, id, username)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
