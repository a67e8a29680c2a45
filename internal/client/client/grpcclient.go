package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/common"
	"github.com/dmitrijs2005/gophadmin/internal/wire"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// invoker is the subset of *grpc.ClientConn the client needs; tests swap it.
type invoker interface {
	Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          invoker
	tokens      TokenStore
	timeout     time.Duration

	// refreshMu keeps concurrent calls from rotating the refresh token twice.
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method == common.MethodLogin || method == common.MethodRefreshToken {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	pair := currentTokens(ctx, s.tokens)
	err := invoker(withAccessToken(ctx, pair.AccessToken), method, req, reply, cc, opts...)
	if !isTokenExpired(err) || pair.RefreshToken == "" {
		return err
	}

	fresh, rerr := s.refresh(ctx, pair)
	if rerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, fresh.AccessToken), method, req, reply, cc, opts...)
}

func isTokenExpired(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// refresh rotates the pair once. When another call already rotated it while
// this one waited for the lock, the stored pair is reused.
func (s *GRPCClient) refresh(ctx context.Context, stale models.CredentialPair) (models.CredentialPair, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if current := currentTokens(ctx, s.tokens); current.Complete() && current.AccessToken != stale.AccessToken {
		return current, nil
	}

	var resp wire.TokenResponse
	if err := s.invoke(ctx, common.MethodRefreshToken, wire.TokenRequest{RefreshToken: stale.RefreshToken}, &resp); err != nil {
		return models.CredentialPair{}, err
	}

	pair := models.CredentialPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := s.tokens.Set(ctx, pair); err != nil {
		return models.CredentialPair{}, err
	}
	return pair, nil
}

// NewGRPCClient dials endpointURL lazily; no connection is made until the
// first call.
func NewGRPCClient(endpointURL string, tokens TokenStore, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, tokens: tokens, timeout: timeout}

	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	in, err := wire.ToStruct(req)
	if err != nil {
		return err
	}
	out := &structpb.Struct{}
	if err := s.cc.Invoke(ctx, method, in, out); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	if err := wire.FromStruct(out, resp); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp wire.LoginResponse
	err := s.invoke(ctx, common.MethodLogin, wire.LoginRequest{Email: req.Identifier, Password: string(req.Secret)}, &resp)
	if err != nil {
		return nil, s.mapError(err)
	}

	return persistLogin(ctx, s.tokens, &resp)
}

func (s *GRPCClient) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var resp wire.Profile
	if err := s.invoke(ctx, common.MethodGetProfile, wire.Empty{}, &resp); err != nil {
		return nil, s.mapError(err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", ErrMalformedResponse)
	}
	return profileFromWire(&resp), nil
}

func (s *GRPCClient) Logout(ctx context.Context, refreshToken string) error {
	if err := s.invoke(ctx, common.MethodLogout, wire.TokenRequest{RefreshToken: refreshToken}, nil); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp wire.PingResponse
	if err := s.invoke(ctx, common.MethodPing, wire.Empty{}, &resp); err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
