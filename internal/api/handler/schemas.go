package handler

import (
	"time"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type objectIDParam struct {
	ID string `json:"id" validate:"required,mongodb"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

// --- Products ---

type createProductRequest struct {
	Title       string   `json:"title"       validate:"required,min=2,max=150"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Description string   `json:"description" validate:"max=1000"`
	Image       string   `json:"image"       validate:"omitempty,url"`
}

type updateProductRequest struct {
	Title       *string  `json:"title"       validate:"omitempty,min=2,max=150"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Image       *string  `json:"image"       validate:"omitempty,url"`
}

type listProductsQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Search string `query:"search"`
	Sort   string `query:"sort" validate:"omitempty,oneof=asc desc"`
}

type productOwnerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productResponse struct {
	ID          string                `json:"id"`
	OwnerID     string                `json:"owner_id"`
	Title       string                `json:"title"`
	Price       float64               `json:"price"`
	Description string                `json:"description"`
	Image       string                `json:"image,omitempty"`
	Owner       *productOwnerResponse `json:"owner,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type productPageResponse struct {
	Items []productResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type favoritesResponse struct {
	Items []productResponse `json:"items"`
}

// --- Admin ---

type adminListQuery struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Query string `query:"q"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type userResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	FavoritesCount int         `json:"favorites_count"`
	CreatedAt      time.Time   `json:"created_at"`
}

type adminUsersResponse struct {
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Users []userResponse `json:"users"`
}

type adminProductsResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Products []productResponse `json:"products"`
}
