package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

type stubProductService struct {
	created ports.CreateProductInput
	listIn  ports.ListProductsInput
	patch   domain.ProductPatch
	actor   *domain.User
	err     error
	detail  *ports.ProductDetail
	page    *domain.Page[*domain.Product]
	deleted string
}

func (s *stubProductService) Create(_ context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error) {
	s.actor, s.created = actor, in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: testProductID, OwnerID: actor.ID, Title: in.Title, Price: in.Price}, nil
}

func (s *stubProductService) Get(context.Context, string) (*ports.ProductDetail, error) {
	return s.detail, s.err
}

func (s *stubProductService) List(_ context.Context, in ports.ListProductsInput) (*domain.Page[*domain.Product], error) {
	s.listIn = in
	return s.page, s.err
}

func (s *stubProductService) UpdateOwned(_ context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error) {
	s.actor, s.patch = actor, patch
	if s.err != nil {
		return nil, s.err
	}
	p := &domain.Product{ID: id, OwnerID: actor.ID}
	patch.Apply(p)
	return p, nil
}

func (s *stubProductService) DeleteOwned(_ context.Context, actor *domain.User, id string) error {
	s.actor, s.deleted = actor, id
	return s.err
}

var testOwner = &domain.User{ID: testUserID, Name: "Owner", Role: domain.RoleUser}

func TestProductHandler_Create(t *testing.T) {
	svc := &stubProductService{}
	c, rec := newTestContext(testRequest{
		method: http.MethodPost, target: "/products", actor: testOwner,
		body: `{"title":"Desk","price":0,"owner_id":"someone-else"}`,
	})

	if err := NewProductHandler(svc).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.actor != testOwner || svc.created.Title != "Desk" || svc.created.Price != 0 {
		t.Fatalf("unexpected service call: %+v %+v", svc.actor, svc.created)
	}
	if resp := decodeBody(t, rec); resp["owner_id"] != testUserID {
		t.Fatalf("owner must come from the verified identity, got %v", resp["owner_id"])
	}
}

func TestProductHandler_Create_Validation(t *testing.T) {
	bodies := []string{
		`{"title":"Desk"}`,
		`{"title":"D","price":1}`,
		`{"title":"Desk","price":-1}`,
		`{"title":"Desk","price":1,"image":"not a url"}`,
	}
	for _, body := range bodies {
		c, _ := newTestContext(testRequest{method: http.MethodPost, target: "/products", actor: testOwner, body: body})
		if err := NewProductHandler(&stubProductService{}).Create(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestProductHandler_Create_RequiresActor(t *testing.T) {
	c, _ := newTestContext(testRequest{method: http.MethodPost, target: "/products", body: `{"title":"Desk","price":1}`})
	if err := NewProductHandler(&stubProductService{}).Create(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestProductHandler_List(t *testing.T) {
	svc := &stubProductService{page: &domain.Page[*domain.Product]{
		Items: []*domain.Product{{ID: testProductID, Title: "Lamp", CreatedAt: time.Now()}},
		Total: 41, Page: 2, Limit: 20,
	}}
	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/products?page=2&limit=20&search=lamp&sort=asc"})

	if err := NewProductHandler(svc).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.listIn != (ports.ListProductsInput{Page: 2, Limit: 20, Search: "lamp", Sort: "asc"}) {
		t.Fatalf("unexpected list input %+v", svc.listIn)
	}
	resp := decodeBody(t, rec)
	if resp["total"] != float64(41) || resp["page"] != float64(2) {
		t.Fatalf("unexpected paging %v", resp)
	}
	if items := resp["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
}

func TestProductHandler_List_RejectsBadSort(t *testing.T) {
	c, _ := newTestContext(testRequest{method: http.MethodGet, target: "/products?sort=sideways"})
	if err := NewProductHandler(&stubProductService{}).List(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProductHandler_Get_IncludesOwner(t *testing.T) {
	svc := &stubProductService{detail: &ports.ProductDetail{
		Product: &domain.Product{ID: testProductID, OwnerID: testUserID, Title: "Lamp"},
		Owner:   &ports.ProductOwner{ID: testUserID, Name: "Owner"},
	}}
	c, rec := newTestContext(testRequest{method: http.MethodGet, target: "/products/" + testProductID, params: map[string]string{"id": testProductID}})

	if err := NewProductHandler(svc).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	owner, ok := decodeBody(t, rec)["owner"].(map[string]any)
	if !ok || owner["name"] != "Owner" {
		t.Fatalf("expected owner in response: %s", rec.Body.String())
	}
}

func TestProductHandler_Get_InvalidID(t *testing.T) {
	c, _ := newTestContext(testRequest{method: http.MethodGet, target: "/products/abc", params: map[string]string{"id": "abc"}})
	if err := NewProductHandler(&stubProductService{}).Get(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProductHandler_Update_PassesPatch(t *testing.T) {
	svc := &stubProductService{}
	c, rec := newTestContext(testRequest{
		method: http.MethodPut, target: "/products/" + testProductID, actor: testOwner,
		params: map[string]string{"id": testProductID},
		body:   `{"price":12.5}`,
	})

	if err := NewProductHandler(svc).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.patch.Price == nil || *svc.patch.Price != 12.5 || svc.patch.Title != nil {
		t.Fatalf("unexpected patch %+v", svc.patch)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProductHandler_Update_Forbidden(t *testing.T) {
	svc := &stubProductService{err: domain.ErrForbidden}
	c, _ := newTestContext(testRequest{
		method: http.MethodPut, target: "/products/" + testProductID, actor: testOwner,
		params: map[string]string{"id": testProductID},
		body:   `{"title":"Mine now"}`,
	})
	if err := NewProductHandler(svc).Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestProductHandler_Delete(t *testing.T) {
	svc := &stubProductService{}
	c, rec := newTestContext(testRequest{
		method: http.MethodDelete, target: "/products/" + testProductID, actor: testOwner,
		params: map[string]string{"id": testProductID},
	})

	if err := NewProductHandler(svc).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.deleted != testProductID || rec.Code != http.StatusOK {
		t.Fatalf("unexpected result: deleted=%s code=%d", svc.deleted, rec.Code)
	}
	if decodeBody(t, rec)["message"] != "deleted" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
