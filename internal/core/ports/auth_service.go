package ports

import (
	"context"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// RegisterInput carries the fields of a new identity.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string
	User  domain.PublicUser
}

// AuthService issues and verifies credentials.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenVerifier resolves a bearer token into the live identity it names.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
