package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"github.com/dmitrijs2005/gophmail/internal/server/sessions"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	usernameKey ctxKey = "username"
	tokenKey    ctxKey = "token"
)

var protectedMethods = map[string]bool{
	FullMethod(MethodLogout):        true,
	FullMethod(MethodListInbox):     true,
	FullMethod(MethodSendMessage):   true,
	FullMethod(MethodDeleteMessage): true,
}

func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || !sessions.WellFormed(token) {
		return nil, status.Error(codes.Unauthenticated, "missing or malformed authorization header")
	}

	username, err := s.svc.Authenticate(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "session expired")
	}

	ctx = context.WithValue(ctx, usernameKey, username)
	ctx = context.WithValue(ctx, tokenKey, token)
	return handler(ctx, req)
}

func usernameFrom(ctx context.Context) string {
	s, _ := ctx.Value(usernameKey).(string)
	return s
}

func tokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey).(string)
	return s
}
