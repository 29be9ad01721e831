package users

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"github.com/dmitrijs2005/gophmail/internal/server/migrations"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db, migrations.DialectSQLite))
	return NewSQLiteRepository(db)
}

func backends() map[string]func(t *testing.T) Repository {
	return map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewInMemoryRepository() },
		"sqlite": newSQLiteRepo,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			ok, err := repo.Exists(ctx, "fish")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, repo.Create(ctx, &models.User{Username: "fish", Password: "abcd"}))

			ok, err = repo.Exists(ctx, "fish")
			require.NoError(t, err)
			assert.True(t, ok)

			u, err := repo.GetByUsername(ctx, "fish")
			require.NoError(t, err)
			assert.Equal(t, "fish", u.Username)
			assert.Equal(t, "abcd", u.Password)
			assert.False(t, u.CreatedAt.IsZero())
		})
	}
}

func TestRepository_CreateDuplicate(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			require.NoError(t, repo.Create(ctx, &models.User{Username: "fish", Password: "abcd"}))
			err := repo.Create(ctx, &models.User{Username: "fish", Password: "other"})
			assert.ErrorIs(t, err, common.ErrorAlreadyExists)

			u, err := repo.GetByUsername(ctx, "fish")
			require.NoError(t, err)
			assert.Equal(t, "abcd", u.Password, "existing credential must be kept")
		})
	}
}

func TestRepository_GetUnknown(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			_, err := newRepo(t).GetByUsername(context.Background(), "ghost")
			assert.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}

func TestRepository_ConcurrentCreateSameUsername(t *testing.T) {
	for name, newRepo := range backends() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			const n = 16
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				success int
				exists  int
			)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := repo.Create(ctx, &models.User{Username: "race", Password: "pw"})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						success++
					case assert.ErrorIs(t, err, common.ErrorAlreadyExists):
						exists++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, success)
			assert.Equal(t, n-1, exists)
		})
	}
}
