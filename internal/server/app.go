// Package server assembles the mail server from its configuration: storage
// backend, credential store, session table, mail service and the HTTP and
// gRPC dispatchers, and runs them until the process is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophmail/internal/logging"
	"github.com/dmitrijs2005/gophmail/internal/server/config"
	"github.com/dmitrijs2005/gophmail/internal/server/credentials"
	"github.com/dmitrijs2005/gophmail/internal/server/httpapi"
	"github.com/dmitrijs2005/gophmail/internal/server/passwords"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophmail/internal/server/services"
	"github.com/dmitrijs2005/gophmail/internal/server/sessions"

	gs "github.com/dmitrijs2005/gophmail/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	sessions *sessions.Table
	service  *services.MailService
}

// NewApp opens storage, applies migrations and builds the mail service.
// Log output goes to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger, err := logging.New(c.LogLevel, c.LogFormat, w)
	if err != nil {
		return nil, err
	}

	hasher, err := passwords.New(c.PasswordScheme)
	if err != nil {
		return nil, err
	}
	if c.PasswordScheme == passwords.SchemePlain {
		logger.Warn(ctx, "passwords are stored in plaintext")
	}

	rm, err := repomanager.New(ctx, c.StorageBackend, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	table := sessions.NewTable()
	store := credentials.NewStore(rm.Users(), hasher)
	svc := services.NewMailService(store, rm.Messages(), table, logger)

	return &App{config: c, logger: logger, repos: rm, sessions: table, service: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run binds the configured addresses and serves until ctx is cancelled or
// a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	httpLis, err := net.Listen("tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		_ = app.repos.Close()
		return fmt.Errorf("http listen: %w", err)
	}

	var grpcLis net.Listener
	if app.config.EndpointAddrGRPC != "" {
		grpcLis, err = net.Listen("tcp", app.config.EndpointAddrGRPC)
		if err != nil {
			_ = httpLis.Close()
			_ = app.repos.Close()
			return fmt.Errorf("grpc listen: %w", err)
		}
	}

	return app.Serve(ctx, httpLis, grpcLis)
}

// Serve runs the HTTP API on httpLis and, when grpcLis is not nil, the gRPC
// API on grpcLis. It returns once both have stopped and storage is closed.
// A failing server cancels the other one.
func (app *App) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"storage", app.config.StorageBackend,
		"password_scheme", app.config.PasswordScheme,
	)

	router := httpapi.NewRouter(app.service, app.logger, httpapi.Options{
		StaticDir:      app.config.StaticDir,
		MaxBodyBytes:   app.config.MaxBodyBytes,
		AllowedOrigins: app.config.AllowedOrigins,
	})
	srv := httpapi.NewServer(httpLis.Addr().String(), router)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.logger.Info(ctx, "Starting HTTP server", "address", httpLis.Addr().String())
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err)
			fail(err)
		}
	}()

	if grpcLis != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := gs.NewGRPCServer(grpcLis.Addr().String(), app.logger, app.service)
			if err := s.Serve(ctx, grpcLis); err != nil {
				app.logger.Error(ctx, "grpc server error", "error", err)
				fail(err)
			}
		}()
	}

	<-ctx.Done()
	app.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Warn(ctx, "http shutdown", "error", err)
		_ = srv.Close()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	app.logger.Info(ctx, "App stopped", "sessions_dropped", app.sessions.Len())

	return errors.Join(errs...)
}
