package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophmail/internal/client/api"
	"github.com/dmitrijs2005/gophmail/internal/client/config"
)

// MailAPI is the server surface the commands use; *api.Client implements it.
type MailAPI interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*api.Session, error)
	Logout(ctx context.Context, token string) error
	ListInbox(ctx context.Context, token string) ([]api.Message, error)
	SendMessage(ctx context.Context, token, to, subject, body string) (string, error)
	DeleteMessage(ctx context.Context, token, id string) error
}

type App struct {
	config  *config.Config
	api     MailAPI
	reader  *bufio.Reader
	out     io.Writer
	session *api.Session
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.session.Username)
}

// Run starts the REPL and blocks until the user exits. A session still open
// at that point is logged out.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to GophMail CLI (type 'help' for commands)")
	printlnFn("Server:", a.config.ServerURL)

	runREPL(ctx, a, a.getStatus, a.reader)

	if a.isLoggedIn() {
		_ = a.Logout(ctx)
	}
}
