package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophmail/internal/client/api"
	"github.com/dmitrijs2005/gophmail/internal/common"
)

// askField, askPassword and askBody are the prompt helpers, swapped out in
// tests.
var (
	askField    = PromptField
	askPassword = PromptPassword
	askBody     = PromptBody
)

var errNotLoggedIn = errors.New("not logged in")

func (a *App) readCredentials() (string, string, error) {
	username, err := askField(a.reader, "Username", a.out)
	if err != nil {
		return "", "", err
	}

	pw, err := askPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)

	return username, string(pw), nil
}

// report prints err for the user. An expired session is dropped locally.
func (a *App) report(action string, err error) error {
	switch {
	case errors.Is(err, errNotLoggedIn):
		printlnFn("Please log in first.")
	case errors.Is(err, common.ErrorUnauthenticated):
		a.session = nil
		printlnFn("Session expired, please log in again.")
	case errors.Is(err, api.ErrUnavailable):
		printlnFn(action + " failed: server unavailable")
	default:
		printlnFn(fmt.Sprintf("%s failed: %v", action, err))
	}
	return err
}

func (a *App) requireSession(action string) error {
	if a.session == nil {
		return a.report(action, errNotLoggedIn)
	}
	return nil
}

// Signup prompts for a username and password and creates the account.
func (a *App) Signup(ctx context.Context) error {
	username, password, err := a.readCredentials()
	if err != nil {
		return a.report("Signup", err)
	}

	if err := a.api.Signup(ctx, username, password); err != nil {
		return a.report("Signup", err)
	}

	printlnFn("User created. You can log in now.")
	return nil
}

// Login prompts for credentials and keeps the returned session. An existing
// session is logged out first.
func (a *App) Login(ctx context.Context) error {
	username, password, err := a.readCredentials()
	if err != nil {
		return a.report("Login", err)
	}

	if a.session != nil {
		_ = a.api.Logout(ctx, a.session.Token)
		a.session = nil
	}

	s, err := a.api.Login(ctx, username, password)
	if err != nil {
		return a.report("Login", err)
	}

	a.session = s
	printlnFn("Logged in as " + s.Username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.requireSession("Logout"); err != nil {
		return err
	}

	err := a.api.Logout(ctx, a.session.Token)
	a.session = nil
	if err != nil && !errors.Is(err, common.ErrorUnauthenticated) {
		return a.report("Logout", err)
	}

	printlnFn("Logged out.")
	return nil
}

// Inbox prints the received messages, newest first.
func (a *App) Inbox(ctx context.Context) error {
	if err := a.requireSession("Inbox"); err != nil {
		return err
	}

	list, err := a.api.ListInbox(ctx, a.session.Token)
	if err != nil {
		return a.report("Inbox", err)
	}

	if len(list) == 0 {
		printlnFn("No messages.")
		return nil
	}
	for _, m := range list {
		printlnFn(fmt.Sprintf("[%s] %s from %s: %s",
			m.ID, m.CreatedAt.Local().Format("2006-01-02 15:04"), m.From, m.Subject))
		if m.Body != "" {
			printlnFn(m.Body)
		}
		printlnFn()
	}
	return nil
}

// Send prompts for recipient, subject and body and sends the message.
func (a *App) Send(ctx context.Context) error {
	if err := a.requireSession("Send"); err != nil {
		return err
	}

	to, err := askField(a.reader, "To", a.out)
	if err != nil {
		return a.report("Send", err)
	}
	subject, err := askField(a.reader, "Subject", a.out)
	if err != nil {
		return a.report("Send", err)
	}
	body, err := askBody(a.reader, "Body", a.out)
	if err != nil {
		return a.report("Send", err)
	}

	id, err := a.api.SendMessage(ctx, a.session.Token, to, subject, body)
	if err != nil {
		return a.report("Send", err)
	}

	printlnFn("Message sent, id " + id)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.requireSession("Delete"); err != nil {
		return err
	}

	if err := a.api.DeleteMessage(ctx, a.session.Token, id); err != nil {
		return a.report("Delete", err)
	}

	printlnFn("Deleted.")
	return nil
}
