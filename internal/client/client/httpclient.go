package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/common"
	"github.com/dmitrijs2005/gophadmin/internal/wire"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusError is a non-2xx reply of the REST API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore

	refreshMu sync.Mutex
}

// NewHTTPClient targets baseURL; a bare host:port gets the http scheme.
func NewHTTPClient(baseURL string, tokens TokenStore, timeout time.Duration) *HTTPClient {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tokens:  tokens,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, route, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e wire.ErrorResponse
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(b, &e) != nil {
			e.Error = strings.TrimSpace(string(b))
		}
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// doAuthorized attaches the stored access token and retries once after a
// token refresh when the server reports it expired.
func (c *HTTPClient) doAuthorized(ctx context.Context, method, route string, body, out any) error {
	pair := currentTokens(ctx, c.tokens)

	err := c.do(ctx, method, route, pair.AccessToken, body, out)
	if !isHTTPTokenExpired(err) || pair.RefreshToken == "" {
		return err
	}

	fresh, rerr := c.refresh(ctx, pair)
	if rerr != nil {
		return err
	}
	return c.do(ctx, method, route, fresh.AccessToken, body, out)
}

func isHTTPTokenExpired(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized && se.Message == common.ErrTokenExpired.Error()
}

func (c *HTTPClient) refresh(ctx context.Context, stale models.CredentialPair) (models.CredentialPair, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := currentTokens(ctx, c.tokens); current.Complete() && current.AccessToken != stale.AccessToken {
		return current, nil
	}

	var resp wire.TokenResponse
	if err := c.do(ctx, http.MethodPost, common.RouteRefresh, "", wire.TokenRequest{RefreshToken: stale.RefreshToken}, &resp); err != nil {
		return models.CredentialPair{}, err
	}

	pair := models.CredentialPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := c.tokens.Set(ctx, pair); err != nil {
		return models.CredentialPair{}, err
	}
	return pair, nil
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp wire.LoginResponse
	body := wire.LoginRequest{Email: req.Identifier, Password: string(req.Secret)}
	if err := c.do(ctx, http.MethodPost, common.RouteLogin, "", body, &resp); err != nil {
		return nil, c.mapError(err)
	}
	return persistLogin(ctx, c.tokens, &resp)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var resp wire.Profile
	if err := c.doAuthorized(ctx, http.MethodGet, common.RouteProfile, nil, &resp); err != nil {
		return nil, c.mapError(err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", ErrMalformedResponse)
	}
	return profileFromWire(&resp), nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	err := c.doAuthorized(ctx, http.MethodPost, common.RouteLogout, wire.TokenRequest{RefreshToken: refreshToken}, nil)
	return c.mapError(err)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp wire.PingResponse
	if err := c.do(ctx, http.MethodGet, common.RoutePing, "", nil, &resp); err != nil {
		return c.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMalformedResponse) {
		return err
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		// 403 is not a rejected session: the account may merely lack access.
		case se.Code == http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrUnauthorized, se)
		case se.Code == http.StatusTooManyRequests || se.Code >= 500:
			return fmt.Errorf("%w: %v", ErrUnavailable, se)
		default:
			return fmt.Errorf("http error: %w", se)
		}
	}

	// Transport failures: refused connections, timeouts, cancelled contexts.
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
