package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
)

// fakeUserRepo enforces the same unique indexes as the users table
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*entities.User
	failErr error // returned by every call when set

	// beforeCreate runs inside Create before the uniqueness check
	beforeCreate func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entities.User{}}
}

func cloneUser(u *entities.User) *entities.User {
	cp := *u
	if u.ExternalSubject != nil {
		sub := *u.ExternalSubject
		cp.ExternalSubject = &sub
	}
	return &cp
}

func (r *fakeUserRepo) conflicts(u *entities.User) bool {
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return true
		}
		if u.ExternalSubject != nil && existing.LinkedTo(*u.ExternalSubject) {
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if _, exists := r.users[user.ID]; exists || r.conflicts(user) {
		return repositories.ErrConflict
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if _, exists := r.users[user.ID]; !exists {
		return repositories.ErrUserNotFound
	}
	if r.conflicts(user) {
		return repositories.ErrConflict
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) find(match func(*entities.User) bool) (*entities.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, false, r.failErr
	}
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) FindByExternalSubject(ctx context.Context, subject string) (*entities.User, bool, error) {
	return r.find(func(u *entities.User) bool { return u.LinkedTo(subject) })
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, bool, error) {
	return r.find(func(u *entities.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindActiveByID(ctx context.Context, id string) (*entities.User, bool, error) {
	return r.find(func(u *entities.User) bool { return u.ID == id && u.IsActive })
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*entities.User, bool, error) {
	return r.find(func(u *entities.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsActive = active
	u.UpdatedAt = at
	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *fakeUserRepo) put(u *entities.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entities.Product
	order    []string
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entities.Product{}}
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entities.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[product.ID]; exists {
		return repositories.ErrConflict
	}
	cp := *product
	r.products[product.ID] = &cp
	r.order = append(r.order, product.ID)
	return nil
}

func (r *fakeProductRepo) CreateBatch(ctx context.Context, products []*entities.Product) error {
	for _, p := range products {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entities.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[product.ID]; !exists {
		return repositories.ErrProductNotFound
	}
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (*entities.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, false, nil
	}
	cp := *p
	return &cp, true, nil
}

func (r *fakeProductRepo) ListActive(ctx context.Context) ([]*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Product
	for _, id := range r.order {
		if p := r.products[id]; p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeProductRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrProductNotFound
	}
	p.IsActive = active
	return nil
}

func (r *fakeProductRepo) SetStock(ctx context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrProductNotFound
	}
	p.StockQuantity = quantity
	return nil
}

func (r *fakeProductRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

// stepClock advances by one second each read
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}
