package ports

import (
	"context"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// ListInput carries raw paging input for admin listings.
type ListInput struct {
	Page  int
	Limit int
	Query string
}

// AdminService is the administrator console. Callers must have passed the
// role gate; the service re-checks it.
type AdminService interface {
	ListUsers(ctx context.Context, actor *domain.User, in ListInput) (*domain.Page[*domain.User], error)
	GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error)
	DeleteUser(ctx context.Context, actor *domain.User, id string) error
	ChangeRole(ctx context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error)

	ListProducts(ctx context.Context, actor *domain.User, in ListInput) (*domain.Page[*domain.Product], error)
	UpdateProduct(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor *domain.User, id string) error

	// EnsureAdmin creates or promotes the bootstrap administrator.
	EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
}
