package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

// FavoriteService maintains the identity-to-product favorites set. Membership
// changes are delegated to atomic add-if-absent / remove-if-present primitives
// in the repository, so concurrent toggles cannot lose updates.
type FavoriteService struct {
	users    ports.UserRepository
	products ports.ProductRepository
	log      zerolog.Logger
}

func NewFavoriteService(users ports.UserRepository, products ports.ProductRepository, log zerolog.Logger) *FavoriteService {
	return &FavoriteService{users: users, products: products, log: log}
}

func (s *FavoriteService) Add(ctx context.Context, actor *domain.User, productID string) (bool, error) {
	if actor == nil {
		return false, domain.ErrUnauthenticated
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}

	added, err := s.users.AddFavorite(ctx, actor.ID, productID)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	s.log.Debug().Str("user_id", actor.ID).Str("product_id", productID).Bool("added", added).Msg("favorite add")
	return added, nil
}

// Remove succeeds whether or not the product was a favorite.
func (s *FavoriteService) Remove(ctx context.Context, actor *domain.User, productID string) (bool, error) {
	if actor == nil {
		return false, domain.ErrUnauthenticated
	}
	removed, err := s.users.RemoveFavorite(ctx, actor.ID, productID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	s.log.Debug().Str("user_id", actor.ID).Str("product_id", productID).Bool("removed", removed).Msg("favorite remove")
	return removed, nil
}

// List resolves the caller's favorites in stored order. Favorites whose
// product has since been deleted are skipped.
func (s *FavoriteService) List(ctx context.Context, actor *domain.User) ([]*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	ids := user.Favorites.IDs()
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	byID := make(map[string]*domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	items := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}
