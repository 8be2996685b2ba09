package repository

import (
	"context"
	"errors"

	"github.com/haoyun/account-service/internal/domain/entity"
)

// ErrNotFound is returned when no row matches a lookup or update target.
// Any other repository error means the store itself failed.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// GetByUsername returns the first row matching the username.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// GetByUUID returns the row with the given uuid.
	GetByUUID(ctx context.Context, uuid string) (*entity.User, error)
	// Create inserts one row with all seven columns.
	Create(ctx context.Context, u *entity.User) error
	// UpdateByUUID overwrites the six mutable columns of the row keyed by
	// uuid and returns the freshly re-read row, so the result reflects
	// storage state rather than the caller's input echoed back.
	UpdateByUUID(ctx context.Context, u *entity.User) (*entity.User, error)
}
