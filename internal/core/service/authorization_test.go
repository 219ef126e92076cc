package service

import (
	"context"
	"errors"
	"testing"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(&domain.User{ID: "1", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
	if err := RequireAdmin(&domain.User{ID: "2", Role: domain.RoleUser}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := RequireAdmin(nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestOwnershipGate(t *testing.T) {
	products := newStubProductRepo()
	gate := NewOwnershipGate(products)
	pid := products.seed("owner-1", "Desk")

	p, err := gate.Check(context.Background(), &domain.User{ID: "owner-1"}, pid)
	if err != nil || p.ID != pid {
		t.Fatalf("owner rejected: %+v, %v", p, err)
	}
	if _, err := gate.Check(context.Background(), &domain.User{ID: "owner-2", Role: domain.RoleAdmin}, pid); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner admin, got %v", err)
	}
	if _, err := gate.Check(context.Background(), &domain.User{ID: "owner-1"}, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
