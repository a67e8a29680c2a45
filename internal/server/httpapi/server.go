// Package httpapi serves the admin auth API as JSON over HTTP, next to the
// Prometheus /metrics endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/common"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/dmitrijs2005/gophadmin/internal/server/auth"
	"github.com/dmitrijs2005/gophadmin/internal/server/metrics"
	"github.com/dmitrijs2005/gophadmin/internal/server/models"
	"github.com/dmitrijs2005/gophadmin/internal/server/services"
	"github.com/dmitrijs2005/gophadmin/internal/wire"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	transport       = "http"
	maxBodyBytes    = 1 << 16
	shutdownTimeout = 5 * time.Second
)

// UserService is the business logic behind the handlers.
type UserService interface {
	Login(ctx context.Context, email string, password []byte) (*services.TokenPair, *models.User, error)
	ProfileByID(ctx context.Context, userID string) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

type Server struct {
	address   string
	users     UserService
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us UserService, m *metrics.Metrics, secretKey string) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// Handler returns the routed API wrapped in tracing middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+common.RouteLogin, s.login)
	mux.HandleFunc("POST "+common.RouteRefresh, s.refresh)
	mux.HandleFunc("POST "+common.RouteLogout, s.logout)
	mux.HandleFunc("GET "+common.RouteProfile, s.requireToken(s.profile))
	mux.HandleFunc("GET "+common.RoutePing, s.ping)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return otelhttp.NewHandler(mux, "gophadmin.devserver")
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type ctxKey string

const userIDKey ctxKey = "userID"

// requireToken checks the Bearer access token. An expired token is answered
// with 401 "token expired" so clients know to refresh.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
				return
			}
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req wire.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	tokens, user, err := s.users.Login(r.Context(), req.Email, []byte(req.Password))
	metrics.Observe(s.metrics.Logins, transport, err, services.IsUnauthorized)
	if err != nil {
		s.logger.Info(r.Context(), "Login rejected", "email", req.Email, "error", err)
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Login accepted", "user_id", user.ID)
	writeJSON(w, http.StatusOK, wire.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user.Wire(),
	})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)

	user, err := s.users.ProfileByID(r.Context(), userID)
	metrics.Observe(s.metrics.Profiles, transport, err, services.IsUnauthorized)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Wire())
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req wire.TokenRequest
	if !decode(w, r, &req) {
		return
	}

	tokens, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	metrics.Observe(s.metrics.Refreshes, transport, err, services.IsUnauthorized)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req wire.TokenRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.users.Logout(r.Context(), req.RefreshToken)
	metrics.Observe(s.metrics.Logouts, transport, err, services.IsUnauthorized)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.Empty{})
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, wire.PingResponse{Status: "OK"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrorInactiveUser):
		writeError(w, http.StatusForbidden, err.Error())
	case services.IsUnauthorized(err):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, wire.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
