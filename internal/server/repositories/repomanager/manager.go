// Package repomanager selects a storage backend and vends the repositories
// bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophmail/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/users"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// RepositoryManager owns the storage handle behind the repositories.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Messages() messages.Repository
	Close() error
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendMemory, BackendSQLite, BackendPostgres}
}

// New opens the backend named by backend. dsn is ignored for memory.
func New(ctx context.Context, backend, dsn string) (RepositoryManager, error) {
	switch backend {
	case BackendMemory:
		return NewInMemoryRepositoryManager(), nil
	case BackendSQLite:
		return NewSQLiteRepositoryManager(ctx, dsn)
	case BackendPostgres:
		return NewPostgresRepositoryManager(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
