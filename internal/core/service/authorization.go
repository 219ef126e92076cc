package service

import (
	"context"
	"fmt"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

// RequireAdmin is the role gate: it admits only verified administrators.
func RequireAdmin(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// OwnershipGate admits a mutation only when the actor created the product.
// Administrators get no bypass here; they use the admin surface instead.
type OwnershipGate struct {
	products ports.ProductRepository
}

func NewOwnershipGate(products ports.ProductRepository) *OwnershipGate {
	return &OwnershipGate{products: products}
}

// Check returns the product when actor owns it.
func (g *OwnershipGate) Check(ctx context.Context, actor *domain.User, productID string) (*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	product, err := g.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("ownership check: %w", err)
	}
	if !product.OwnedBy(actor.ID) {
		return nil, domain.ErrForbidden
	}
	return product, nil
}
