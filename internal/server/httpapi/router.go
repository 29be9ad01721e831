// Package httpapi exposes the mail service as a JSON-over-HTTP API and
// serves the browser front-end.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/logging"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/dmitrijs2005/gophmail/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MailService is the command layer the handlers call into;
// *services.MailService implements it.
type MailService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
	ListInbox(ctx context.Context, username string) ([]models.Message, error)
	SendMessage(ctx context.Context, from, to, subject, body string) (string, error)
	DeleteMessage(ctx context.Context, username, id string) error
}

// Options tunes the router. Zero values fall back to defaults.
type Options struct {
	StaticDir      string
	MaxBodyBytes   int64
	AllowedOrigins []string
}

const defaultMaxBodyBytes = 64 * 1024

// NewRouter wires middleware, the API routes, /health, /metrics and the
// static front-end.
func NewRouter(svc MailService, logger logging.Logger, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	h := &Handler{svc: svc, logger: logger.With("module", "http")}

	r := chi.NewRouter()

	r.Use(Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(MaxBodySize(opts.MaxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/createusr", h.Signup)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Post("/logout", h.Logout)
			r.Post("/getmsgs", h.ListInbox)
			r.Post("/createmsg", h.SendMessage)
			r.Post("/delmsg", h.DeleteMessage)
		})
	})

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}

// NewServer wraps handler in an http.Server with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
