package auth

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophadmin/internal/client/client"
	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/common"
)

var unauthorizedMarkers = []string{"401", "unauthorized", "authentication failed"}

// Classify decides whether a failed verification means the session itself
// was rejected. Transport errors mapped to client.ErrUnauthorized are
// authoritative; the text markers catch errors from other API
// implementations. Everything else, including timeouts, is Transient.
func Classify(err error) models.AuthErrorKind {
	if err == nil {
		return models.Transient
	}
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, common.ErrorUnauthorized) {
		return models.Unauthorized
	}
	if errors.Is(err, client.ErrUnavailable) {
		return models.Transient
	}

	msg := strings.ToLower(err.Error())
	for _, m := range unauthorizedMarkers {
		if strings.Contains(msg, m) {
			return models.Unauthorized
		}
	}
	return models.Transient
}
