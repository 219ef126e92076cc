package ports

import (
	"context"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// UserRepository persists identities. Mutations that carry an invariant are
// single atomic operations at the storage boundary.
type UserRepository interface {
	// Create stores a new identity; a colliding email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail matches the normalized email and includes the password hash.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns the identity without its password hash.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, q domain.ListQuery) ([]*domain.User, int64, error)

	// AddFavorite appends productID unless already present and reports whether
	// the set changed.
	AddFavorite(ctx context.Context, userID, productID string) (bool, error)
	// RemoveFavorite drops productID if present and reports whether the set changed.
	RemoveFavorite(ctx context.Context, userID, productID string) (bool, error)

	// DeleteGuarded deletes the identity unless it is the last admin, in which
	// case it fails with domain.ErrLastAdmin. Check and delete are atomic.
	DeleteGuarded(ctx context.Context, id string) error
	// SetRoleGuarded changes the role with the same last-admin guarantee.
	SetRoleGuarded(ctx context.Context, id string, role domain.Role) (*domain.User, error)
}
