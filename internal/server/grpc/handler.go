package grpc

import (
	"context"

	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Verify(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {

	claims, err := s.verifier.Verify(req.GetValue())
	if err != nil {
		s.logger.Info(ctx, "verify rejected", "reason", err.Error())
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	return claimsStruct(claims)
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	return claimsStruct(claims)
}

func claimsStruct(c *auth.Claims) (*structpb.Struct, error) {
	fields := map[string]any{
		"sub":        c.Subject,
		"email_hash": c.EmailHash,
		"role":       string(c.Role),
	}
	if c.ExpiresAt != nil {
		fields["exp"] = float64(c.ExpiresAt.Unix())
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
