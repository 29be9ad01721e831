package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophmail/internal/server/migrations"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DefaultSQLiteDSN is a file database next to the working directory with a
// busy timeout so concurrent writers wait instead of failing.
const DefaultSQLiteDSN = "file:messages.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// SQLRepositoryManager serves repositories backed by one *sql.DB.
type SQLRepositoryManager struct {
	db       *sql.DB
	dialect  string
	users    *users.SQLRepository
	messages *messages.SQLRepository
}

// NewSQLRepositoryManager wraps an already opened database. dialect is one
// of migrations.DialectPostgres or migrations.DialectSQLite.
func NewSQLRepositoryManager(db *sql.DB, dialect string) (*SQLRepositoryManager, error) {
	m := &SQLRepositoryManager{db: db, dialect: dialect}
	switch dialect {
	case migrations.DialectPostgres:
		m.users = users.NewPostgresRepository(db)
		m.messages = messages.NewPostgresRepository(db)
	case migrations.DialectSQLite:
		m.users = users.NewSQLiteRepository(db)
		m.messages = messages.NewSQLiteRepository(db)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return m, nil
}

// NewPostgresRepositoryManager opens dsn with the pgx driver and checks the
// connection.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*SQLRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return pingAndWrap(ctx, db, migrations.DialectPostgres)
}

// NewSQLiteRepositoryManager opens dsn with the modernc sqlite driver. A
// single connection is used so writes are serialized in-process.
func NewSQLiteRepositoryManager(ctx context.Context, dsn string) (*SQLRepositoryManager, error) {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return pingAndWrap(ctx, db, migrations.DialectSQLite)
}

func pingAndWrap(ctx context.Context, db *sql.DB, dialect string) (*SQLRepositoryManager, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", dialect, err)
	}
	return NewSQLRepositoryManager(db, dialect)
}

// RunMigrations applies the embedded schema for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	return migrateUp(ctx, m.db, m.dialect)
}

func (m *SQLRepositoryManager) Users() users.Repository { return m.users }

func (m *SQLRepositoryManager) Messages() messages.Repository { return m.messages }

// DB exposes the underlying handle.
func (m *SQLRepositoryManager) DB() *sql.DB { return m.db }

func (m *SQLRepositoryManager) Close() error { return m.db.Close() }
