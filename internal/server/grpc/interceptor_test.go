package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/common"
	"github.com/dmitrijs2005/gophadmin/internal/server/auth"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(token string) context.Context {
	md := metadata.New(map[string]string{common.AccessTokenHeaderName: token})
	return metadata.NewIncomingContext(context.Background(), md)
}

var profileInfo = &grpc.UnaryServerInfo{FullMethod: common.MethodGetProfile}

func TestInterceptor_PublicMethodsSkipToken(t *testing.T) {
	s := newTestServer("secret", &fakeUser{})

	for _, m := range []string{common.MethodLogin, common.MethodLogout, common.MethodRefreshToken, common.MethodPing} {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: m}, h)
		require.NoError(t, err, m)
		require.True(t, called, m)
		require.Equal(t, "ok", resp)
	}
}

func TestInterceptor_Rejections(t *testing.T) {
	secret := "secret"
	expired, err := auth.GenerateToken("u1", []byte(secret), -time.Second)
	require.NoError(t, err)

	tests := []struct {
		name    string
		ctx     context.Context
		message string
	}{
		{"missing", context.Background(), "missing token"},
		{"empty", withToken(""), "missing token"},
		{"invalid", withToken("not-a-valid-jwt"), common.ErrInvalidToken.Error()},
		{"expired", withToken(expired), common.ErrTokenExpired.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(secret, &fakeUser{})
			h := func(ctx context.Context, req any) (any, error) {
				t.Fatal("handler should not be called")
				return nil, nil
			}

			_, err := s.accessTokenInterceptor(tt.ctx, nil, profileInfo, h)
			require.Equal(t, codes.Unauthenticated, status.Code(err))
			require.Equal(t, tt.message, status.Convert(err).Message())
		})
	}
}

func TestInterceptor_ValidToken_SetsUserID(t *testing.T) {
	secret := "super-secret"
	s := newTestServer(secret, &fakeUser{})

	token, err := auth.GenerateToken("user-123", []byte(secret), time.Hour)
	require.NoError(t, err)

	var got any
	h := func(ctx context.Context, req any) (any, error) {
		got = ctx.Value(UserIDKey)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(withToken(token), nil, profileInfo, h)
	require.NoError(t, err)
	require.Equal(t, "ok", resp)
	require.Equal(t, "user-123", got)
}
