// Package credentials answers "does this user exist" and "is this the right
// password" on top of the account repository and a password scheme.
package credentials

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/dmitrijs2005/gophmail/internal/server/passwords"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/users"
)

type Store struct {
	users  users.Repository
	hasher passwords.Hasher
}

func NewStore(repo users.Repository, hasher passwords.Hasher) *Store {
	return &Store{users: repo, hasher: hasher}
}

func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	return s.users.Exists(ctx, username)
}

// CreateUser stores a new account. It returns common.ErrorAlreadyExists when
// the username is taken.
func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	encoded, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.users.Create(ctx, &models.User{Username: username, Password: encoded})
}

// VerifyCredentials reports whether username exists and password matches
// its stored credential. An unknown user is (false, nil).
func (s *Store) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.hasher.Verify(u.Password, password), nil
}
