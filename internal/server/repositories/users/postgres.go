package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"github.com/dmitrijs2005/gophmail/internal/dbx"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
)

type queries struct {
	exists string
	create string
	get    string
}

var postgresQueries = queries{
	exists: `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`,
	create: `INSERT INTO users (username, password, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING`,
	get: `SELECT username, password, created_at FROM users
		 WHERE username = $1`,
}

var sqliteQueries = queries{
	exists: `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`,
	create: `INSERT INTO users (username, password, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (username) DO NOTHING`,
	get: `SELECT username, password, created_at FROM users
		 WHERE username = ?`,
}

// SQLRepository implements Repository over database/sql. The username
// column carries a UNIQUE constraint, so duplicate signups are resolved by
// the database.
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

// NewPostgresRepository binds the repository to a pgx-backed handle.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}

// NewSQLiteRepository binds the repository to a modernc sqlite handle.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

func (r *SQLRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, r.q.exists, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, r.q.create, user.Username, user.Password, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, r.q.get, username).Scan(&user.Username, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
