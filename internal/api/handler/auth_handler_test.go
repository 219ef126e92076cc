package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Token: "tok",
				User:  domain.PublicUser{ID: testUserID, Name: in.Name, Email: in.Email, Role: domain.RoleUser},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(testRequest{
		method: http.MethodPost, target: "/auth/register",
		body: `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
	})
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["token"] != "tok" {
		t.Fatalf("expected token in response")
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["id"] != testUserID || user["role"] != "user" || user["name"] != "Alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password material in response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newTestContext(testRequest{
		method: http.MethodPost, target: "/auth/register",
		body: `{"name":"Bob","email":"bob@example.com","password":"secret1"}`,
	})

	if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	bodies := []string{
		`{"name":"A","email":"a@example.com","password":"secret1"}`,
		`{"name":"Alice","email":"nope","password":"secret1"}`,
		`{"name":"Alice","email":"a@example.com","password":"123"}`,
		`{"name":`,
	}
	for _, body := range bodies {
		c, _ := newTestContext(testRequest{method: http.MethodPost, target: "/auth/register", body: body})
		if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "carol@example.com" || password != "s3cret!" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResult{Token: "token123", User: domain.PublicUser{ID: testUserID, Role: domain.RoleAdmin}}, nil
		},
	}
	c, rec := newTestContext(testRequest{
		method: http.MethodPost, target: "/auth/login",
		body: `{"email":"carol@example.com","password":"s3cret!"}`,
	})

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["token"] != "token123" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	if user := resp["user"].(map[string]any); user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, rec := newTestContext(testRequest{
		method: http.MethodPost, target: "/auth/login",
		body: `{"email":"dave@example.com","password":"badpass"}`,
	})

	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("handler should leave rendering to the error handler")
	}
}
