// Package memstore keeps storefront data in process memory. It implements
// every repository in package repo plus repo.Transactor, so services can run
// without PostgreSQL.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"bakery-storefront/internal/domain"
	"bakery-storefront/internal/repo"
)

type state struct {
	products  map[int64]domain.Product
	cart      map[int64]domain.CartEntry
	addresses map[int64]domain.Address
	orders    map[int64]domain.Order
	nextID    int64
}

// ErrDuplicateCartEntry mirrors the UNIQUE (user_id, bread_id) constraint on
// cart_items.
var ErrDuplicateCartEntry = errors.New("memstore: cart already holds this bread")

// Store is safe for concurrent use. Transactions are serialized, which
// stands in for row locking.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
}

func New() *Store {
	return &Store{data: &state{
		products:  make(map[int64]domain.Product),
		cart:      make(map[int64]domain.CartEntry),
		addresses: make(map[int64]domain.Address),
		orders:    make(map[int64]domain.Order),
	}}
}

func (s *Store) Products() repo.ProductRepo  { return productRepo{s} }
func (s *Store) Carts() repo.CartRepo        { return cartRepo{s} }
func (s *Store) Addresses() repo.AddressRepo { return addressRepo{s} }
func (s *Store) Orders() repo.OrderRepo      { return orderRepo{s} }

// txn collects the writes made through one WithinTx call. Nothing reaches
// the store until fn succeeds, so other readers never see them early and a
// rollback only discards the transaction's own work.
type txn struct {
	// never called; memstore runs no SQL
	repo.DBTX
	ops []func(*state)
}

// WithinTx runs fn with a buffering transaction and applies its writes
// atomically when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repo.DBTX) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t := &txn{}
	if err := fn(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range t.ops {
		op(s.data)
	}
	return nil
}

// write buffers op when tx belongs to WithinTx and applies it at once
// otherwise.
func (s *Store) write(tx repo.DBTX, op func(*state)) {
	if t, ok := tx.(*txn); ok {
		t.ops = append(t.ops, op)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	op(s.data)
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

// AddProduct stores p, assigning an id when p.ID is zero.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	} else if p.ID > s.data.nextID {
		s.data.nextID = p.ID
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.data.products[p.ID] = p
	return p
}

// SetPrice changes the live price of a product.
func (s *Store) SetPrice(id int64, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.data.products[id]
	p.Price = mustDecimal(price)
	s.data.products[id] = p
}

func (s *Store) SetStock(id int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.data.products[id]
	p.StockQuantity = qty
	s.data.products[id] = p
}

func (s *Store) AddAddress(a domain.Address) domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.id()
	}
	s.data.addresses[a.ID] = a
	return a
}

// AddCartEntry stores a cart row for userID.
func (s *Store) AddCartEntry(userID, productID int64, qty int) domain.CartEntry {
	e := domain.CartEntry{UserID: userID, ProductID: productID, Quantity: qty}
	_ = cartRepo{s}.Create(context.Background(), &e)
	return e
}

// SetOrderStatus overwrites an order's status.
func (s *Store) SetOrderStatus(id int64, status domain.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.data.orders[id]
	o.Status = status
	s.data.orders[id] = o
}

func (s *Store) Product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.products[id]
	return p, ok
}

func (s *Store) CartEntryExists(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data.cart[id]
	return ok
}

func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.orders)
}

type productRepo struct{ s *Store }

func (r productRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) List(_ context.Context, search string) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	needle := strings.ToLower(search)
	products := []domain.Product{}
	for _, p := range r.s.data.products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	return products, nil
}

func (r productRepo) LockByIDs(_ context.Context, _ repo.DBTX, ids []int64) (map[int64]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	locked := make(map[int64]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.data.products[id]; ok {
			locked[id] = p
		}
	}
	return locked, nil
}

func (r productRepo) Create(_ context.Context, p *domain.Product) error {
	*p = r.s.AddProduct(*p)
	return nil
}

func (r productRepo) Update(_ context.Context, p *domain.Product) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.data.products[p.ID]
	if !ok {
		return false, nil
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.s.data.products[p.ID] = *p
	return true, nil
}

// Delete also drops cart rows for the bread, as ON DELETE CASCADE does.
func (r productRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.products[id]; !ok {
		return false, nil
	}
	delete(r.s.data.products, id)
	for cid, e := range r.s.data.cart {
		if e.ProductID == id {
			delete(r.s.data.cart, cid)
		}
	}
	return true, nil
}

func (r productRepo) DecrementStock(_ context.Context, tx repo.DBTX, id int64, qty int) error {
	r.s.write(tx, func(st *state) {
		p, ok := st.products[id]
		if !ok {
			return
		}
		p.StockQuantity = max(p.StockQuantity-qty, 0)
		p.UpdatedAt = time.Now().UTC()
		st.products[id] = p
	})
	return nil
}

func (r productRepo) IncrementStock(_ context.Context, tx repo.DBTX, id int64, qty int) error {
	r.s.write(tx, func(st *state) {
		p, ok := st.products[id]
		if !ok {
			return
		}
		p.StockQuantity += qty
		p.UpdatedAt = time.Now().UTC()
		st.products[id] = p
	})
	return nil
}

type cartRepo struct{ s *Store }

func (r cartRepo) withProduct(e domain.CartEntry) (domain.CartEntry, bool) {
	p, ok := r.s.data.products[e.ProductID]
	e.Product = p
	return e, ok
}

func (r cartRepo) FindByUser(_ context.Context, userID int64, ids []int64) ([]domain.CartEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var entries []domain.CartEntry
	for _, e := range r.s.data.cart {
		if e.UserID != userID || (len(want) > 0 && !want[e.ID]) {
			continue
		}
		if e, ok := r.withProduct(e); ok {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (r cartRepo) FindByID(_ context.Context, id, userID int64) (*domain.CartEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.data.cart[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	if e, ok = r.withProduct(e); !ok {
		return nil, nil
	}
	return &e, nil
}

func (r cartRepo) FindByUserAndProduct(_ context.Context, userID, productID int64) (*domain.CartEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.data.cart {
		if e.UserID == userID && e.ProductID == productID {
			if e, ok := r.withProduct(e); ok {
				return &e, nil
			}
		}
	}
	return nil, nil
}

func (r cartRepo) Create(_ context.Context, entry *domain.CartEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.data.cart {
		if e.UserID == entry.UserID && e.ProductID == entry.ProductID {
			return ErrDuplicateCartEntry
		}
	}
	entry.ID = r.s.id()
	now := time.Now().UTC()
	entry.CreatedAt, entry.UpdatedAt = now, now
	stored := *entry
	stored.Product = domain.Product{}
	r.s.data.cart[entry.ID] = stored
	return nil
}

func (r cartRepo) UpdateQuantity(_ context.Context, id, userID int64, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.data.cart[id]
	if !ok || e.UserID != userID {
		return nil
	}
	e.Quantity = qty
	e.UpdatedAt = time.Now().UTC()
	r.s.data.cart[id] = e
	return nil
}

func (r cartRepo) Delete(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.data.cart[id]; ok && e.UserID == userID {
		delete(r.s.data.cart, id)
	}
	return nil
}

func (r cartRepo) DeleteByIDs(_ context.Context, tx repo.DBTX, userID int64, ids []int64) error {
	r.s.write(tx, func(st *state) {
		for _, id := range ids {
			if e, ok := st.cart[id]; ok && e.UserID == userID {
				delete(st.cart, id)
			}
		}
	})
	return nil
}

type addressRepo struct{ s *Store }

func (r addressRepo) FindByIDAndUser(_ context.Context, id, userID int64) (*domain.Address, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.data.addresses[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return &a, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) hydrate(o domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	for i, it := range o.Items {
		if p, ok := r.s.data.products[it.ProductID]; ok {
			it.Product = p.Summary()
		}
		items[i] = it
	}
	o.Items = items
	o.ItemCount = len(items)
	return o
}

func (r orderRepo) FindByIDAndUser(_ context.Context, id, userID int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.data.orders[id]
	if !ok || o.UserID != userID {
		return nil, nil
	}
	o = r.hydrate(o)
	return &o, nil
}

func (r orderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	orders := []domain.Order{}
	for _, o := range r.s.data.orders {
		if o.UserID == userID {
			orders = append(orders, r.hydrate(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (r orderRepo) CreateOrder(_ context.Context, tx repo.DBTX, order *domain.Order) error {
	r.s.mu.Lock()
	// ids are spent even if the transaction rolls back, like a sequence
	order.ID = r.s.id()
	for i := range order.Items {
		order.Items[i].ID = r.s.id()
		order.Items[i].OrderID = order.ID
	}
	r.s.mu.Unlock()

	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	r.s.write(tx, func(st *state) {
		st.orders[stored.ID] = stored
	})
	return nil
}

func (r orderRepo) TransitionStatus(_ context.Context, tx repo.DBTX, order *domain.Order, from domain.OrderStatus) (bool, error) {
	r.s.mu.RLock()
	o, ok := r.s.data.orders[order.ID]
	r.s.mu.RUnlock()
	if !ok || o.UserID != order.UserID || o.Status != from {
		return false, nil
	}

	to, at := order.Status, order.UpdatedAt
	r.s.write(tx, func(st *state) {
		o, ok := st.orders[order.ID]
		if !ok || o.Status != from {
			return
		}
		o.Status = to
		o.UpdatedAt = at
		st.orders[order.ID] = o
	})
	return true, nil
}
