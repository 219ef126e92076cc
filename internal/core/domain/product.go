package domain

import "time"

// Product is a listable marketplace item. OwnerID is set at creation and
// never changes afterwards.
type Product struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID created the product.
func (p *Product) OwnedBy(userID string) bool {
	return p != nil && userID != "" && p.OwnerID == userID
}

// ProductPatch lists the display fields a mutation may change. Nil fields are
// left untouched.
type ProductPatch struct {
	Title       *string
	Price       *float64
	Description *string
	Image       *string
}

func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Price == nil && p.Description == nil && p.Image == nil
}

// Apply copies the set fields onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
}
