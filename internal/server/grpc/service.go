package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "expensekeeper.session.v1.SessionVerifier"

const (
	VerifyFullMethod = "/" + ServiceName + "/Verify"
	WhoAmIFullMethod = "/" + ServiceName + "/WhoAmI"
)

// SessionVerifierServer answers "is this session valid" for internal callers.
// Messages are protobuf well-known types, so no generated code is needed.
type SessionVerifierServer interface {
	Verify(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// SessionVerifierServiceDesc describes the service for grpc.Server.RegisterService.
var SessionVerifierServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionVerifierServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Verify", Handler: verifyHandler},
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "expensekeeper/session/v1/session.proto",
}

func verifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionVerifierServer).Verify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VerifyFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionVerifierServer).Verify(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func whoAmIHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionVerifierServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WhoAmIFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionVerifierServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// SessionVerifierClient calls SessionVerifier over an existing connection.
type SessionVerifierClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionVerifierClient(cc grpc.ClientConnInterface) *SessionVerifierClient {
	return &SessionVerifierClient{cc: cc}
}

func (c *SessionVerifierClient) Verify(ctx context.Context, token string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, VerifyFullMethod, wrapperspb.String(token), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WhoAmI sends the token in the access_token metadata key.
func (c *SessionVerifierClient) WhoAmI(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WhoAmIFullMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
