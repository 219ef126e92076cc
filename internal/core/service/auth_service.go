package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login and bearer token verification.
type AuthService struct {
	users    ports.UserRepository
	tokens   *TokenManager
	throttle ports.LoginThrottler
	audit    ports.AuditRecorder
	cost     int
	log      zerolog.Logger

	// dummyHash is compared against when the email is unknown so both failure
	// paths spend the same bcrypt work.
	dummyHash []byte
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

func WithLoginThrottler(t ports.LoginThrottler) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

func WithAuthAudit(r ports.AuditRecorder) AuthOption {
	return func(s *AuthService) { s.audit = r }
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func NewAuthService(users ports.UserRepository, tokens *TokenManager, log zerolog.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{users: users, tokens: tokens, cost: bcrypt.DefaultCost, log: log}
	for _, opt := range opts {
		opt(s)
	}
	s.audit = recorderOrNop(s.audit)
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("marketplace-dummy-password"), s.cost)
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	switch {
	case len(name) < 2:
		return nil, domain.Invalid("name must be at least 2 characters")
	case email == "" || !strings.Contains(email, "@"):
		return nil, domain.Invalid("email must be a valid email")
	case len(in.Password) < minPasswordLength:
		return nil, domain.Invalid("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(auditEvent(domain.AuditRegister, created.ID, created.ID, domain.OutcomeAllowed, ""))
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return &ports.AuthResult{Token: token, User: created.Public()}, nil
}

// Login never reveals whether the email exists: an unknown email and a wrong
// password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
		} else if !allowed {
			s.audit.Record(auditEvent(domain.AuditLogin, "", "", domain.OutcomeDenied, "throttled"))
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, s.loginFailed(ctx, email, "")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.loginFailed(ctx, email, user.ID)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(auditEvent(domain.AuditLogin, user.ID, user.ID, domain.OutcomeAllowed, ""))
	return &ports.AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email, userID string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login failure")
		}
	}
	s.audit.Record(auditEvent(domain.AuditLogin, "", userID, domain.OutcomeFailed, "invalid credentials"))
	return domain.ErrInvalidCredentials
}

// Authenticate is the token verifier. The identity is always read live so a
// role change or deletion applies to the very next request.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrUnauthenticated)
	}

	subject, err := s.tokens.Subject(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, fmt.Errorf("%w: identity no longer exists", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user.Sanitized(), nil
}
