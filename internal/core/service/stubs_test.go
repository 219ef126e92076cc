package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. Each method holds the mutex for its whole body,
// which mirrors the atomicity the Mongo primitives provide.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	seq     int
	findErr error // if set, FindByID and FindByEmail return this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Favorites = u.Favorites.Clone()
	return &clone
}

func (r *stubUserRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("%024x", r.seq)
}

// seed inserts a user directly and returns its id.
func (r *stubUserRepo) seed(name, email string, role domain.Role) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID()
	r.users[id] = &domain.User{
		ID:        id,
		Name:      name,
		Email:     domain.NormalizeEmail(email),
		Role:      role,
		CreatedAt: time.Now().UTC().Add(time.Duration(r.seq) * time.Second),
	}
	return id
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == domain.NormalizeEmail(user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	clone := cloneUser(user)
	clone.ID = r.nextID()
	clone.Email = domain.NormalizeEmail(user.Email)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == domain.NormalizeEmail(email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := cloneUser(u)
	out.PasswordHash = ""
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context, q domain.ListQuery) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.User
	for _, u := range r.users {
		if q.Matches(u.Name, u.Email) {
			matched = append(matched, cloneUser(u))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, q), int64(len(matched)), nil
}

func (r *stubUserRepo) AddFavorite(_ context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	return u.Favorites.Add(productID), nil
}

func (r *stubUserRepo) RemoveFavorite(_ context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	return u.Favorites.Remove(productID), nil
}

func (r *stubUserRepo) adminCount() int {
	n := 0
	for _, u := range r.users {
		if u.Role == domain.RoleAdmin {
			n++
		}
	}
	return n
}

func (r *stubUserRepo) DeleteGuarded(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.Role == domain.RoleAdmin && r.adminCount() <= 1 {
		return domain.ErrLastAdmin
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) SetRoleGuarded(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Role == domain.RoleAdmin && role != domain.RoleAdmin && r.adminCount() <= 1 {
		return nil, domain.ErrLastAdmin
	}
	u.Role = role
	return cloneUser(u), nil
}

func (r *stubUserRepo) admins() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adminCount()
}

type stubProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	seq      int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) seed(ownerID, title string) string {
	p, _ := r.Create(context.Background(), &domain.Product{OwnerID: ownerID, Title: title, Price: 10})
	return p.ID
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *p
	clone.ID = fmt.Sprintf("p%023x", r.seq)
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC().Add(time.Duration(r.seq) * time.Second)
	}
	r.products[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	// Reverse order on purpose: callers must not rely on repository ordering.
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := r.products[ids[i]]; ok {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, q domain.ListQuery) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Product
	for _, p := range r.products {
		values := []string{p.Title}
		for _, f := range q.Fields {
			if f == "description" {
				values = append(values, p.Description)
			}
		}
		if q.Matches(values...) {
			clone := *p
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if q.Sort == domain.OldestFirst {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, q), int64(len(matched)), nil
}

func (r *stubProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	patch.Apply(p)
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func paginate[T any](items []T, q domain.ListQuery) []T {
	if q.Skip >= len(items) {
		return []T{}
	}
	end := q.Skip + q.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[q.Skip:end]
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) find(action domain.AuditAction, outcome string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.events {
		if e.Action == action && e.Outcome == outcome {
			return true
		}
	}
	return false
}
