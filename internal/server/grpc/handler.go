package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username, password, err := credentialsFrom(req)
	if err != nil {
		return nil, err
	}

	if err := s.svc.Signup(ctx, username, password); err != nil {
		return nil, toStatus(err, "")
	}

	s.logger.Info(ctx, "Registered", "username", username)
	return structpb.NewStruct(map[string]any{"status": "user created."})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username, password, err := credentialsFrom(req)
	if err != nil {
		return nil, err
	}

	sess, err := s.svc.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "incorrect password")
		}
		return nil, toStatus(err, "user not found")
	}

	return structpb.NewStruct(map[string]any{
		"success":  true,
		"token":    sess.Token,
		"username": sess.Username,
	})
}

func (s *GRPCServer) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.svc.Logout(ctx, tokenFrom(ctx)); err != nil {
		return nil, toStatus(err, "")
	}
	return structpb.NewStruct(map[string]any{"status": "logged out."})
}

func (s *GRPCServer) ListInbox(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.svc.ListInbox(ctx, usernameFrom(ctx))
	if err != nil {
		return nil, toStatus(err, "")
	}

	items := make([]any, 0, len(list))
	for _, m := range list {
		items = append(items, map[string]any{
			"id":         m.ID,
			"from":       m.From,
			"to":         m.To,
			"subject":    m.Subject,
			"body":       m.Body,
			"created_at": m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return structpb.NewStruct(map[string]any{"messages": items})
}

func (s *GRPCServer) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	to, ok := stringField(req, "to")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "recipient is required")
	}
	subject, err := optionalStringField(req, "subject")
	if err != nil {
		return nil, err
	}
	body, err := optionalStringField(req, "body")
	if err != nil {
		return nil, err
	}

	id, err := s.svc.SendMessage(ctx, usernameFrom(ctx), to, subject, body)
	if err != nil {
		return nil, toStatus(err, "recipient does not exist")
	}
	return structpb.NewStruct(map[string]any{"status": "message sent.", "id": id})
}

func (s *GRPCServer) DeleteMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, ok := stringField(req, "id")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "message id is required")
	}

	if err := s.svc.DeleteMessage(ctx, usernameFrom(ctx), id); err != nil {
		return nil, toStatus(err, "message not found")
	}
	return structpb.NewStruct(map[string]any{"status": "Success"})
}

func credentialsFrom(req *structpb.Struct) (string, string, error) {
	username, okU := stringField(req, "username")
	password, okP := stringField(req, "password")
	if !okU || !okP {
		return "", "", status.Error(codes.InvalidArgument, "username and password are required")
	}
	return username, password, nil
}

// stringField returns req[name] when it is present and holds a string.
func stringField(req *structpb.Struct, name string) (string, bool) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", false
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return sv.StringValue, true
}

// optionalStringField returns "" for an absent field and InvalidArgument for
// a field that is present but not a string.
func optionalStringField(req *structpb.Struct, name string) (string, error) {
	if _, present := req.GetFields()[name]; !present {
		return "", nil
	}
	v, ok := stringField(req, name)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	return v, nil
}

func toStatus(err error, notFound string) error {
	switch {
	case errors.Is(err, common.ErrorMalformedInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		if notFound == "" {
			notFound = "not found"
		}
		return status.Error(codes.NotFound, notFound)
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "user exists.")
	case errors.Is(err, common.ErrorUnauthenticated):
		return status.Error(codes.Unauthenticated, "session expired")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
