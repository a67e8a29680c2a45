package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophadmin/internal/common"
	"github.com/dmitrijs2005/gophadmin/internal/server/metrics"
	"github.com/dmitrijs2005/gophadmin/internal/server/services"
	"github.com/dmitrijs2005/gophadmin/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const transport = "grpc"

// authServer is the HandlerType of the hand-written service description.
type authServer interface {
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(s *GRPCServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func methodHandler(fullMethod string, fn unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(*GRPCServer)
		if interceptor == nil {
			return fn(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return fn(s, ctx, req.(*structpb.Struct))
		})
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: common.AuthServiceName,
	HandlerType: (*authServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: methodHandler(common.MethodLogin, (*GRPCServer).Login)},
		{MethodName: "GetProfile", Handler: methodHandler(common.MethodGetProfile, (*GRPCServer).GetProfile)},
		{MethodName: "RefreshToken", Handler: methodHandler(common.MethodRefreshToken, (*GRPCServer).RefreshToken)},
		{MethodName: "Logout", Handler: methodHandler(common.MethodLogout, (*GRPCServer).Logout)},
		{MethodName: "Ping", Handler: methodHandler(common.MethodPing, (*GRPCServer).Ping)},
	},
	Streams: []grpc.StreamDesc{},
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req wire.LoginRequest
	if err := wire.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	tokens, user, err := s.users.Login(ctx, req.Email, []byte(req.Password))
	metrics.Observe(s.metrics.Logins, transport, err, services.IsUnauthorized)
	if err != nil {
		s.logger.Info(ctx, "Login rejected", "email", req.Email, "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Login accepted", "user_id", user.ID)
	return encode(wire.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user.Wire(),
	})
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, _ := ctx.Value(UserIDKey).(string)

	user, err := s.users.ProfileByID(ctx, userID)
	metrics.Observe(s.metrics.Profiles, transport, err, services.IsUnauthorized)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(user.Wire())
}

func (s *GRPCServer) RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req wire.TokenRequest
	if err := wire.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	metrics.Observe(s.metrics.Refreshes, transport, err, services.IsUnauthorized)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(wire.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *GRPCServer) Logout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req wire.TokenRequest
	if err := wire.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	err := s.users.Logout(ctx, req.RefreshToken)
	metrics.Observe(s.metrics.Logouts, transport, err, services.IsUnauthorized)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(wire.Empty{})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(wire.PingResponse{Status: "OK"})
}

func encode(v any) (*structpb.Struct, error) {
	out, err := wire.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case services.IsUnauthorized(err):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
