package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophmail.Mailbox"

const (
	MethodSignup        = "Signup"
	MethodLogin         = "Login"
	MethodLogout        = "Logout"
	MethodListInbox     = "ListInbox"
	MethodSendMessage   = "SendMessage"
	MethodDeleteMessage = "DeleteMessage"
)

// FullMethod returns "/gophmail.Mailbox/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// MailboxServer is the server API of the Mailbox service. Requests and
// responses are google.protobuf.Struct values carrying the same fields as
// the HTTP API bodies.
type MailboxServer interface {
	Signup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListInbox(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type mailboxMethod func(MailboxServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call mailboxMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MailboxServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MailboxServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MailboxServiceDesc describes the Mailbox service for grpc.Server.RegisterService.
var MailboxServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MailboxServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodSignup, Handler: unaryHandler(MethodSignup, MailboxServer.Signup)},
		{MethodName: MethodLogin, Handler: unaryHandler(MethodLogin, MailboxServer.Login)},
		{MethodName: MethodLogout, Handler: unaryHandler(MethodLogout, MailboxServer.Logout)},
		{MethodName: MethodListInbox, Handler: unaryHandler(MethodListInbox, MailboxServer.ListInbox)},
		{MethodName: MethodSendMessage, Handler: unaryHandler(MethodSendMessage, MailboxServer.SendMessage)},
		{MethodName: MethodDeleteMessage, Handler: unaryHandler(MethodDeleteMessage, MailboxServer.DeleteMessage)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophmail/mailbox",
}

// RegisterMailboxServer registers srv on s.
func RegisterMailboxServer(s grpc.ServiceRegistrar, srv MailboxServer) {
	s.RegisterService(&MailboxServiceDesc, srv)
}

// MailboxClient calls the Mailbox service over cc.
type MailboxClient struct {
	cc grpc.ClientConnInterface
}

func NewMailboxClient(cc grpc.ClientConnInterface) *MailboxClient {
	return &MailboxClient{cc: cc}
}

// Call invokes method with in and returns the decoded response.
func (c *MailboxClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
