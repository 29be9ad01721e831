// Package migrations embeds the schema for each supported SQL dialect and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var gooseDialects = map[string]string{
	DialectPostgres: "pgx",
	DialectSQLite:   "sqlite3",
}

// goose keeps its base FS and dialect in package globals.
var mu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// FS returns the migration files for dialect.
func FS(dialect string) (fs.FS, error) {
	if _, ok := gooseDialects[dialect]; !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return fs.Sub(files, dialect)
}

// Up applies all pending migrations for dialect to db.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	sub, err := FS(dialect)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(sub)
	if err := goose.SetDialect(gooseDialects[dialect]); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}
