package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

type tokenTable map[string]*domain.User

func (t tokenTable) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := t[token]; ok {
		return u, nil
	}
	return nil, domain.ErrUnauthenticated
}

var (
	routerOnce sync.Once
	testRouter *echo.Echo
)

// router is built once: the HTTP metrics middleware registers collectors globally.
func router() *echo.Echo {
	routerOnce.Do(func() {
		testRouter = NewRouter(Deps{
			Log: zerolog.Nop(),
			Verifier: tokenTable{
				"user-token":  {ID: "65a1b2c3d4e5f60718293a4c", Role: domain.RoleUser},
				"admin-token": {ID: "65a1b2c3d4e5f60718293a4d", Role: domain.RoleAdmin},
			},
		})
	})
	return testRouter
}

func serve(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, req)
	return rec
}

func TestRouter_AccessControl(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"liveness is public", http.MethodGet, "/health", "", http.StatusOK},
		{"favorites need a token", http.MethodGet, "/favorites", "", http.StatusUnauthorized},
		{"bad token is rejected", http.MethodGet, "/favorites", "forged", http.StatusUnauthorized},
		{"product create needs a token", http.MethodPost, "/products", "", http.StatusUnauthorized},
		{"admin needs a token", http.MethodGet, "/api/admin/users", "", http.StatusUnauthorized},
		{"admin rejects plain users", http.MethodGet, "/api/admin/users", "user-token", http.StatusForbidden},
		{"admin delete rejects plain users", http.MethodDelete, "/api/admin/users/65a1b2c3d4e5f60718293a4d", "user-token", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
		{"metrics are exposed", http.MethodGet, "/metrics", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(tc.method, tc.target, tc.token)
			if rec.Code != tc.want {
				t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.target, tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_InvalidPathIDIsBadRequest(t *testing.T) {
	rec := serve(http.MethodGet, "/api/admin/users/not-an-id", "admin-token")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}
