// Package users stores registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophmail/internal/server/models"
)

// Repository is the account storage used by the credential store.
//
// Create must be atomic with respect to concurrent calls for the same
// username: exactly one of them succeeds, the others get
// common.ErrorAlreadyExists. GetByUsername returns common.ErrorNotFound for
// unknown users.
type Repository interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
