package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gophadmin/internal/client/client"
	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.AuthErrorKind
	}{
		{"nil", nil, models.Transient},
		{"transport unauthorized", fmt.Errorf("get profile: %w", client.ErrUnauthorized), models.Unauthorized},
		{"common unauthorized", common.ErrorUnauthorized, models.Unauthorized},
		{"status text", errors.New("request failed with status 401"), models.Unauthorized},
		{"mixed case", errors.New("Unauthorized: token revoked"), models.Unauthorized},
		{"authentication failed", errors.New("Authentication failed for user"), models.Unauthorized},
		{"unavailable", fmt.Errorf("%w: connection refused", client.ErrUnavailable), models.Transient},
		{"deadline", context.DeadlineExceeded, models.Transient},
		{"server error", errors.New("500 internal server error"), models.Transient},
		{"forbidden", errors.New("http error: 403 Forbidden: account suspended by policy"), models.Transient},
		{"permission denied", errors.New("rpc error: code = PermissionDenied desc = read only"), models.Transient},
		{"malformed", client.ErrMalformedResponse, models.Transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	assert.ErrorIs(t, ErrMalformedLoginResponse, ErrLoginRejected)
	assert.ErrorIs(t, ErrCredentialsNotPersisted, ErrLoginRejected)
	assert.NotErrorIs(t, ErrLogoutFailed, ErrLoginRejected)
}
