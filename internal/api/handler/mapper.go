package handler

import (
	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateProductInput(req createProductRequest) ports.CreateProductInput {
	in := ports.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	return in
}

func toProductPatch(req updateProductRequest) domain.ProductPatch {
	return domain.ProductPatch{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
	}
}

// --- Domain → Response ---

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductDetailResponse(d *ports.ProductDetail) productResponse {
	resp := toProductResponse(d.Product)
	if d.Owner != nil {
		resp.Owner = &productOwnerResponse{ID: d.Owner.ID, Name: d.Owner.Name}
	}
	return resp
}

func toProductResponses(items []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		FavoritesCount: u.Favorites.Len(),
		CreatedAt:      u.CreatedAt,
	}
}

func toUserResponses(items []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(items))
	for _, u := range items {
		out = append(out, toUserResponse(u))
	}
	return out
}
