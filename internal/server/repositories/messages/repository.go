// Package messages stores mailbox entries keyed by recipient.
package messages

import (
	"context"

	"github.com/dmitrijs2005/gophmail/internal/server/models"
)

// Repository is the message storage used by the mail service.
//
// Append does not check that the recipient exists; callers must. ListFor
// returns the newest message first and an empty slice for users with no
// mail. DeleteByOwner removes a message only when username is its
// recipient and reports whether anything was removed.
type Repository interface {
	Append(ctx context.Context, from, to, subject, body string) (string, error)
	ListFor(ctx context.Context, username string) ([]models.Message, error)
	DeleteByOwner(ctx context.Context, username, id string) (bool, error)
}
