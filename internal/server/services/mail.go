// Package services contains the server-side command layer. MailService
// implements signup, login, logout and the mailbox operations on top of the
// credential store, the message repository and the session table.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"github.com/dmitrijs2005/gophmail/internal/logging"
	"github.com/dmitrijs2005/gophmail/internal/server/metrics"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophmail/internal/server/sessions"
)

// CredentialStore is the account side of the service; *credentials.Store
// implements it.
type CredentialStore interface {
	UserExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, username, password string) error
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)
}

// Session is what a successful login hands back to the caller.
type Session struct {
	Token    string
	Username string
}

// MailService never holds more than one store's lock at a time: every call
// below goes to one store and returns before the next one starts.
type MailService struct {
	creds    CredentialStore
	messages messages.Repository
	sessions *sessions.Table
	logger   logging.Logger
}

func NewMailService(creds CredentialStore, msgs messages.Repository, table *sessions.Table, logger logging.Logger) *MailService {
	return &MailService{
		creds:    creds,
		messages: msgs,
		sessions: table,
		logger:   logger.With("module", "mail"),
	}
}

// Signup registers username. A taken name yields common.ErrorAlreadyExists.
func (s *MailService) Signup(ctx context.Context, username, password string) error {
	if err := validateUsername("username", username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	if err := s.creds.CreateUser(ctx, username, password); err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			metrics.Signups.WithLabelValues(metrics.ResultFailure).Inc()
			return common.ErrorAlreadyExists
		case errors.Is(err, common.ErrorMalformedInput):
			metrics.Signups.WithLabelValues(metrics.ResultFailure).Inc()
			return err
		}
		metrics.Signups.WithLabelValues(metrics.ResultError).Inc()
		return s.internal(ctx, "create user", err)
	}

	metrics.Signups.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info(ctx, "user created", "username", username)
	return nil
}

// Login checks the credentials and opens a session. Unknown users get
// common.ErrorNotFound, a wrong password common.ErrorUnauthorized.
func (s *MailService) Login(ctx context.Context, username, password string) (*Session, error) {
	if err := validateUsername("username", username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.creds.UserExists(ctx, username)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		return nil, s.internal(ctx, "lookup user", err)
	}
	if !exists {
		metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, common.ErrorNotFound
	}

	ok, err := s.creds.VerifyCredentials(ctx, username, password)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		return nil, s.internal(ctx, "verify credentials", err)
	}
	if !ok {
		metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, common.ErrorUnauthorized
	}

	token, err := s.sessions.Issue(username)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		return nil, s.internal(ctx, "issue session", err)
	}

	metrics.Logins.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	s.logger.Info(ctx, "user logged in", "username", username)

	return &Session{Token: token, Username: username}, nil
}

// Authenticate resolves a bearer token to its username.
func (s *MailService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthenticated
	}
	username, ok := s.sessions.Lookup(token)
	if !ok {
		return "", common.ErrorUnauthenticated
	}
	return username, nil
}

// Logout revokes token. Revoking an unknown token is
// common.ErrorUnauthenticated.
func (s *MailService) Logout(ctx context.Context, token string) error {
	if token == "" || !s.sessions.Revoke(token) {
		return common.ErrorUnauthenticated
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	return nil
}

// ListInbox returns username's messages, newest first.
func (s *MailService) ListInbox(ctx context.Context, username string) ([]models.Message, error) {
	list, err := s.messages.ListFor(ctx, username)
	if err != nil {
		return nil, s.internal(ctx, "list inbox", err)
	}
	return list, nil
}

// SendMessage delivers a message from the authenticated user to an existing
// recipient and returns its id.
func (s *MailService) SendMessage(ctx context.Context, from, to, subject, body string) (string, error) {
	if err := validateMessage(to, subject, body); err != nil {
		return "", err
	}

	exists, err := s.creds.UserExists(ctx, to)
	if err != nil {
		return "", s.internal(ctx, "lookup recipient", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: recipient %q", common.ErrorNotFound, to)
	}

	id, err := s.messages.Append(ctx, from, to, subject, body)
	if err != nil {
		return "", s.internal(ctx, "append message", err)
	}

	metrics.MessagesSent.Inc()
	s.logger.Debug(ctx, "message sent", "id", id, "from", from, "to", to)
	return id, nil
}

// DeleteMessage removes message id from username's inbox. Absent messages
// and messages owned by someone else are both common.ErrorNotFound.
func (s *MailService) DeleteMessage(ctx context.Context, username, id string) error {
	if id == "" {
		return fmt.Errorf("%w: message id is required", common.ErrorMalformedInput)
	}

	ok, err := s.messages.DeleteByOwner(ctx, username, id)
	if err != nil {
		return s.internal(ctx, "delete message", err)
	}
	if !ok {
		return common.ErrorNotFound
	}

	metrics.MessagesDeleted.Inc()
	return nil
}

func (s *MailService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
