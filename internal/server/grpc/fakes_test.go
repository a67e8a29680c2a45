package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/dmitrijs2005/gophadmin/internal/server/metrics"
	"github.com/dmitrijs2005/gophadmin/internal/server/models"
	"github.com/dmitrijs2005/gophadmin/internal/server/services"
)

type fakeUser struct {
	loginResp *services.TokenPair
	loginUser *models.User
	loginErr  error

	profile    *models.User
	profileErr error

	refreshResp *services.TokenPair
	refreshErr  error

	logoutErr error

	LastEmail    string
	LastPassword string
	LastUserID   string
	LastToken    string
}

func (f *fakeUser) Login(_ context.Context, email string, password []byte) (*services.TokenPair, *models.User, error) {
	f.LastEmail, f.LastPassword = email, string(password)
	return f.loginResp, f.loginUser, f.loginErr
}

func (f *fakeUser) ProfileByID(_ context.Context, userID string) (*models.User, error) {
	f.LastUserID = userID
	return f.profile, f.profileErr
}

func (f *fakeUser) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	f.LastToken = token
	return f.refreshResp, f.refreshErr
}

func (f *fakeUser) Logout(_ context.Context, token string) error {
	f.LastToken = token
	return f.logoutErr
}

var admin = &models.User{ID: "u1", Email: "admin@example.com", FirstName: "admin", Role: "admin", Active: true, PasswordHash: []byte("hash")}

func newTestServer(secret string, us UserService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.NewNop(), us, metrics.New(), secret)
}
