package repositories

import (
	"context"

	"tokoadmin/internal/models"
)

// UserRepository is the directory of back-office users referenced by products.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// NamesByID resolves display names for many users at once. Unknown ids
	// are absent from the result.
	NamesByID(ctx context.Context, ids []string) (map[string]string, error)
}
