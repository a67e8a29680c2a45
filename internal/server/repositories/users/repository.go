// Package users declares the server-side repository contract for admin
// accounts and its SQLite implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophadmin/internal/server/models"
)

type Repository interface {
	// Create inserts user, assigning an id when it has none.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail matches case-insensitively and returns
	// common.ErrorNotFound when there is no such user.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
