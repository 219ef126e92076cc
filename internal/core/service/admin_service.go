package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

var (
	adminUserSearchFields    = []string{"name", "email"}
	adminProductSearchFields = []string{"title", "description"}
)

// AdminService backs the administrator console. Every operation re-applies
// the role gate, and identity removal or demotion goes through the
// repository's guarded primitives so the last administrator survives.
type AdminService struct {
	users    ports.UserRepository
	products ports.ProductRepository
	audit    ports.AuditRecorder
	cost     int
	log      zerolog.Logger
}

// AdminOption customizes an AdminService.
type AdminOption func(*AdminService)

// WithAdminBcryptCost sets the cost used when EnsureAdmin creates an identity.
func WithAdminBcryptCost(cost int) AdminOption {
	return func(s *AdminService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func NewAdminService(
	users ports.UserRepository,
	products ports.ProductRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
	opts ...AdminOption,
) *AdminService {
	s := &AdminService{users: users, products: products, audit: recorderOrNop(audit), cost: bcrypt.DefaultCost, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User, in ports.ListInput) (*domain.Page[*domain.User], error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	q := domain.NewListQuery(in.Page, in.Limit, in.Query, adminUserSearchFields...)
	users, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i, u := range users {
		users[i] = u.Sanitized()
	}
	return &domain.Page[*domain.User]{Items: users, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *AdminService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// DeleteUser removes an identity unless it is the last administrator.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	err := s.users.DeleteGuarded(ctx, id)
	switch {
	case err == nil:
		s.audit.Record(auditEvent(domain.AuditUserDelete, actor.ID, id, domain.OutcomeAllowed, ""))
		s.log.Info().Str("actor_id", actor.ID).Str("user_id", id).Msg("user deleted")
		return nil
	case errors.Is(err, domain.ErrLastAdmin):
		s.audit.Record(auditEvent(domain.AuditUserDelete, actor.ID, id, domain.OutcomeDenied, err.Error()))
		s.log.Warn().Str("actor_id", actor.ID).Str("user_id", id).Msg("refused to delete last admin")
		return err
	default:
		return fmt.Errorf("delete user: %w", err)
	}
}

// ChangeRole applies the last-admin invariant to demotion as well as deletion.
func (s *AdminService) ChangeRole(ctx context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, err
	}
	updated, err := s.users.SetRoleGuarded(ctx, id, role)
	if err != nil {
		if errors.Is(err, domain.ErrLastAdmin) {
			s.audit.Record(auditEvent(domain.AuditRoleChange, actor.ID, id, domain.OutcomeDenied, err.Error()))
			return nil, err
		}
		return nil, fmt.Errorf("change role: %w", err)
	}
	s.audit.Record(auditEvent(domain.AuditRoleChange, actor.ID, id, domain.OutcomeAllowed, "role="+role.String()))
	s.log.Info().Str("actor_id", actor.ID).Str("user_id", id).Str("role", role.String()).Msg("role changed")
	return updated.Sanitized(), nil
}

func (s *AdminService) ListProducts(ctx context.Context, actor *domain.User, in ports.ListInput) (*domain.Page[*domain.Product], error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	q := domain.NewListQuery(in.Page, in.Limit, in.Query, adminProductSearchFields...)
	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &domain.Page[*domain.Product]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// UpdateProduct mutates any product; the ownership gate does not apply here.
func (s *AdminService) UpdateProduct(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("admin update product: %w", err)
	}
	s.audit.Record(auditEvent(domain.AuditProductUpdate, actor.ID, id, domain.OutcomeAllowed, ""))
	return updated, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, actor *domain.User, id string) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("admin delete product: %w", err)
	}
	s.audit.Record(auditEvent(domain.AuditProductDelete, actor.ID, id, domain.OutcomeAllowed, ""))
	return nil
}

// EnsureAdmin makes sure email belongs to an administrator, creating the
// identity when it does not exist. Safe to call on every start.
func (s *AdminService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || len(password) < minPasswordLength {
		return nil, domain.Invalid("default admin requires an email and a password of at least %d characters", minPasswordLength)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			s.log.Info().Str("email", email).Msg("admin user already present")
			return existing.Sanitized(), nil
		}
		promoted, err := s.users.SetRoleGuarded(ctx, existing.ID, domain.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("ensure admin: promote: %w", err)
		}
		s.log.Info().Str("email", email).Msg("existing user promoted to admin")
		return promoted.Sanitized(), nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: hash password: %w", err)
	}
	if name == "" {
		name = "Admin"
	}
	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure admin: create: %w", err)
	}
	s.log.Info().Str("email", email).Msg("default admin created")
	return created.Sanitized(), nil
}
