package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/wire"
)

// Client is the admin auth API as seen by the console.
type Client interface {
	// Login authenticates and persists the returned credential pair into
	// the TokenStore before returning.
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	// Logout revokes refreshToken on the server. An empty token is sent
	// as-is; the server treats it as a no-op.
	Logout(ctx context.Context, refreshToken string) error
	Ping(ctx context.Context) error
	Close() error
}

// TokenStore is where the client reads and persists the credential pair.
type TokenStore interface {
	Get(ctx context.Context) (models.CredentialPair, bool, error)
	Set(ctx context.Context, pair models.CredentialPair) error
}

// Transport names accepted by New.
const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

// New builds the client for the named transport.
func New(transport, addr string, tokens TokenStore, timeout time.Duration) (Client, error) {
	switch transport {
	case TransportGRPC:
		return NewGRPCClient(addr, tokens, timeout)
	case TransportHTTP:
		return NewHTTPClient(addr, tokens, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

func profileFromWire(p *wire.Profile) *models.UserProfile {
	if p == nil {
		return nil
	}
	return &models.UserProfile{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
		Active:    p.Active,
	}
}

// persistLogin stores the pair from a login reply and converts the rest.
func persistLogin(ctx context.Context, tokens TokenStore, resp *wire.LoginResponse) (*models.LoginResponse, error) {
	pair := models.CredentialPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if !pair.Complete() {
		return nil, fmt.Errorf("%w: login reply without tokens", ErrMalformedResponse)
	}
	if err := tokens.Set(ctx, pair); err != nil {
		return nil, fmt.Errorf("persist credentials: %w", err)
	}
	return &models.LoginResponse{User: profileFromWire(resp.User)}, nil
}

func currentTokens(ctx context.Context, tokens TokenStore) models.CredentialPair {
	pair, ok, err := tokens.Get(ctx)
	if err != nil || !ok {
		return models.CredentialPair{}
	}
	return pair
}
