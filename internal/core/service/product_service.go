package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

// The public catalogue pages by 10 unless the caller asks otherwise.
const publicProductPageLimit = 10

var publicProductSearchFields = []string{"title"}

type ProductService struct {
	products ports.ProductRepository
	users    ports.UserRepository
	gate     *OwnershipGate
	audit    ports.AuditRecorder
	logger   zerolog.Logger
}

func NewProductService(
	products ports.ProductRepository,
	users ports.UserRepository,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		products: products,
		users:    users,
		gate:     NewOwnershipGate(products),
		audit:    recorderOrNop(audit),
		logger:   logger,
	}
}

// Create stores a product owned by actor. The owner is never taken from input.
func (s *ProductService) Create(ctx context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title is required")
	}
	if in.Price < 0 {
		return nil, domain.Invalid("price must be at least 0")
	}

	now := time.Now().UTC()
	product, err := s.products.Create(ctx, &domain.Product{
		OwnerID:     actor.ID,
		Title:       title,
		Price:       in.Price,
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Str("product_id", product.ID).Str("owner_id", actor.ID).Msg("product created")
	return product, nil
}

// Get returns a product and, when its creator still exists, the creator's name.
func (s *ProductService) Get(ctx context.Context, id string) (*ports.ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ports.ProductDetail{Product: product}
	owner, err := s.users.FindByID(ctx, product.OwnerID)
	switch {
	case err == nil:
		detail.Owner = &ports.ProductOwner{ID: owner.ID, Name: owner.Name}
	case errors.Is(err, domain.ErrNotFound):
	default:
		s.logger.Warn().Err(err).Str("product_id", id).Msg("owner lookup failed")
	}
	return detail, nil
}

func (s *ProductService) List(ctx context.Context, in ports.ListProductsInput) (*domain.Page[*domain.Product], error) {
	limit := in.Limit
	if limit == 0 {
		limit = publicProductPageLimit
	}
	q := domain.NewListQuery(in.Page, limit, in.Search, publicProductSearchFields...).
		WithSort(domain.ParseSortOrder(in.Sort))

	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &domain.Page[*domain.Product]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *ProductService) UpdateOwned(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if _, err := s.checkOwner(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (s *ProductService) DeleteOwned(ctx context.Context, actor *domain.User, id string) error {
	if _, err := s.checkOwner(ctx, actor, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.logger.Info().Str("product_id", id).Str("owner_id", actor.ID).Msg("product deleted")
	return nil
}

func (s *ProductService) checkOwner(ctx context.Context, actor *domain.User, id string) (*domain.Product, error) {
	product, err := s.gate.Check(ctx, actor, id)
	if errors.Is(err, domain.ErrForbidden) {
		s.audit.Record(auditEvent(domain.AuditOwnershipCheck, actor.ID, id, domain.OutcomeDenied, "not the owner"))
	}
	return product, err
}

// validatePatch enforces the same bounds as product creation on the fields
// being changed.
func validatePatch(patch domain.ProductPatch) error {
	if patch.Empty() {
		return domain.Invalid("no updatable fields provided")
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return domain.Invalid("title must not be empty")
		}
		*patch.Title = trimmed
	}
	if patch.Price != nil && *patch.Price < 0 {
		return domain.Invalid("price must be at least 0")
	}
	return nil
}
