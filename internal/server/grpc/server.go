// Package grpc exposes the mail service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophmail/internal/logging"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/dmitrijs2005/gophmail/internal/server/services"
	"google.golang.org/grpc"
)

// MailService is the command layer behind the gRPC handlers.
type MailService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
	ListInbox(ctx context.Context, username string) ([]models.Message, error)
	SendMessage(ctx context.Context, from, to, subject, body string) (string, error)
	DeleteMessage(ctx context.Context, username, id string) error
}

type GRPCServer struct {
	address string
	svc     MailService
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, svc MailService) *GRPCServer {
	return &GRPCServer{
		address: address,
		svc:     svc,
		logger:  l.With("module", "grpc_server"),
	}
}

// NewServer builds a grpc.Server with the session interceptor and the
// Mailbox service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.sessionInterceptor))
	srv := grpc.NewServer(opts...)
	RegisterMailboxServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
