package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(registerRequest{Name: "A", Email: "bad", Password: "123"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, want := range []string{
		"name must be at least 2 characters",
		"email must be a valid email",
		"password must be at least 6 characters",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %q", want, err.Error())
		}
	}
}

func TestValidator_ObjectID(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(objectIDParam{ID: testProductID}); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	err := v.Validate(objectIDParam{ID: "123"})
	if err == nil || err.Error() != "id must be a valid id" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidator_OptionalUpdateFields(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(updateProductRequest{}); err != nil {
		t.Fatalf("empty update should pass schema validation: %v", err)
	}
	negative := -1.0
	if err := v.Validate(updateProductRequest{Price: &negative}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for negative price, got %v", err)
	}
}
