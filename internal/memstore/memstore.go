// Package memstore keeps the storefront collections in process memory. It
// backs DB_DRIVER=memory and the service and route tests. Documents are
// copied on the way in and out, so callers never share state with the
// store.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/repositories"
)

// Store holds every collection behind one lock.
type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	products map[primitive.ObjectID]models.Product
	carts    map[string]models.Cart
	orders   map[primitive.ObjectID]models.Order

	// txMu serialises transactions.
	txMu sync.Mutex
}

func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]models.User),
		products: make(map[primitive.ObjectID]models.Product),
		carts:    make(map[string]models.Cart),
		orders:   make(map[primitive.ObjectID]models.Order),
	}
}

func (s *Store) Users() *Users       { return &Users{s: s} }
func (s *Store) Products() *Products { return &Products{s: s} }
func (s *Store) Carts() *Carts       { return &Carts{s: s} }
func (s *Store) Orders() *Orders     { return &Orders{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// WithTransaction runs fn and restores the cart and order collections if it
// fails. Writes made outside a transaction while one is running are lost
// on rollback.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	carts := make(map[string]models.Cart, len(s.carts))
	for k, v := range s.carts {
		carts[k] = copyCart(v)
	}
	orders := make(map[primitive.ObjectID]models.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = copyOrder(v)
	}
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.carts = carts
		s.orders = orders
		s.mu.Unlock()
		return err
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repositories.ErrNotFound
	}
	return oid, nil
}

func copyItems(items []models.LineItem) []models.LineItem {
	return append([]models.LineItem{}, items...)
}

func copyCart(c models.Cart) models.Cart {
	c.CartItems = copyItems(c.CartItems)
	return c
}

func copyOrder(o models.Order) models.Order {
	o.ProductsOrdered = copyItems(o.ProductsOrdered)
	return o
}

// ── Users ────────────────────────────────────────────────────────────────────

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedOn.IsZero() {
		u.CreatedOn = time.Now().UTC()
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *Users) List(context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *Users) SetAdmin(_ context.Context, id string, admin bool) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		u.IsAdmin = admin
		return nil
	})
}

func (r *Users) UpdatePassword(_ context.Context, id, hash string) error {
	_, err := r.update(id, func(u *models.User) error {
		u.Password = hash
		return nil
	})
	return err
}

func (r *Users) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		if upd.Email != nil && *upd.Email != u.Email {
			for _, other := range r.s.users {
				if other.Email == *upd.Email {
					return repositories.ErrDuplicate
				}
			}
			u.Email = *upd.Email
		}
		if upd.FirstName != nil {
			u.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			u.LastName = *upd.LastName
		}
		if upd.MobileNo != nil {
			u.MobileNo = *upd.MobileNo
		}
		return nil
	})
}

func (r *Users) update(id string, fn func(u *models.User) error) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	r.s.users[oid] = u
	return &u, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

type Products struct{ s *Store }

func (r *Products) Create(_ context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.products {
		if existing.Name == p.Name {
			return repositories.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedOn.IsZero() {
		p.CreatedOn = time.Now().UTC()
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *Products) FindByID(_ context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *Products) List(_ context.Context, f models.ProductFilter) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(f.NameContains)
	out := []models.Product{}
	for _, p := range r.s.products {
		switch {
		case f.ActiveOnly && !p.IsActive:
		case f.Category != "" && p.ProductCategory != f.Category:
		case needle != "" && !strings.Contains(strings.ToLower(p.Name), needle):
		case f.MinPrice != nil && p.Price < *f.MinPrice:
		case f.MaxPrice != nil && p.Price > *f.MaxPrice:
		default:
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].CreatedOn.Before(out[j].CreatedOn)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *Products) Update(_ context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if upd.Name != nil && *upd.Name != p.Name {
		for _, other := range r.s.products {
			if other.Name == *upd.Name {
				return nil, repositories.ErrDuplicate
			}
		}
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	if upd.ProductCategory != nil {
		p.ProductCategory = *upd.ProductCategory
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.ImagePublicID != nil {
		p.ImagePublicID = *upd.ImagePublicID
	}
	r.s.products[oid] = p
	return &p, nil
}

func (r *Products) SetActive(_ context.Context, id string, active bool) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	prev := p
	p.IsActive = active
	r.s.products[oid] = p
	return &prev, nil
}

func (r *Products) Delete(_ context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(r.s.products, oid)
	return &p, nil
}

// ── Carts ────────────────────────────────────────────────────────────────────

type Carts struct{ s *Store }

func (r *Carts) FindByUser(_ context.Context, userID string) (*models.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c = copyCart(c)
	return &c, nil
}

func (r *Carts) Save(_ context.Context, c *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.carts[c.UserID]; ok {
		c.ID = existing.ID
	} else if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CartItems == nil {
		c.CartItems = []models.LineItem{}
	}
	r.s.carts[c.UserID] = copyCart(*c)
	return nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

type Orders struct{ s *Store }

func (r *Orders) Create(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.OrderedOn.IsZero() {
		o.OrderedOn = time.Now().UTC()
	}
	r.s.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r *Orders) FindByID(_ context.Context, id string) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

func (r *Orders) List(_ context.Context, f models.OrderFilter) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Order{}
	for _, o := range r.s.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderedOn.Equal(out[j].OrderedOn) {
			return out[i].OrderedOn.After(out[j].OrderedOn)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *Orders) Patch(_ context.Context, id string, p models.OrderPatch) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if p.ProductsOrdered != nil {
		o.ProductsOrdered = copyItems(*p.ProductsOrdered)
	}
	if p.TotalPrice != nil {
		o.TotalPrice = *p.TotalPrice
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.OrderedOn != nil {
		o.OrderedOn = p.OrderedOn.UTC()
	}
	r.s.orders[oid] = o
	o = copyOrder(o)
	return &o, nil
}

func (r *Orders) Delete(_ context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[oid]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.orders, oid)
	return nil
}
