package ports

import (
	"context"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// CreateProductInput holds the display fields of a new product.
type CreateProductInput struct {
	Title       string
	Price       float64
	Description string
	Image       string
}

// ListProductsInput carries raw paging input for the public catalogue.
type ListProductsInput struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

// ProductOwner is the public view of a product's creator.
type ProductOwner struct {
	ID   string
	Name string
}

// ProductDetail is a product plus its owner, when the owner still exists.
type ProductDetail struct {
	Product *domain.Product
	Owner   *ProductOwner
}

// ProductService covers the public catalogue and owner-scoped mutation.
type ProductService interface {
	Create(ctx context.Context, actor *domain.User, in CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, id string) (*ProductDetail, error)
	List(ctx context.Context, in ListProductsInput) (*domain.Page[*domain.Product], error)
	// UpdateOwned and DeleteOwned pass the ownership gate; role is not consulted.
	UpdateOwned(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteOwned(ctx context.Context, actor *domain.User, id string) error
}

// FavoriteService manages the caller's own favorites.
type FavoriteService interface {
	// Add reports whether the product was newly favorited.
	Add(ctx context.Context, actor *domain.User, productID string) (bool, error)
	// Remove reports whether the product had been favorited.
	Remove(ctx context.Context, actor *domain.User, productID string) (bool, error)
	List(ctx context.Context, actor *domain.User) ([]*domain.Product, error)
}
