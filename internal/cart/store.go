package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ariefcatur/go-storefront.git/internal/products"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
)

const SlotKey = "cart"

// Item is one cart line. Quantity is always >= 1.
type Item struct {
	products.Ref
	Quantity int `json:"quantity"`
}

type Store struct {
	mu     sync.Mutex
	coll   storage.Collection[Item]
	logger *slog.Logger
	items  []Item
	loaded storage.LoadStatus
}

// NewStore restores the cart from kv; an unreadable slot starts empty.
func NewStore(ctx context.Context, kv storage.KV, logger *slog.Logger) *Store {
	s := &Store{coll: storage.NewCollection[Item](kv, SlotKey), logger: logger}
	res := s.coll.Load(ctx)
	if res.Recovered() {
		logger.Warn("cart slot recovered empty", slog.String("status", res.Status.String()), slog.Any("err", res.Err))
	}
	s.items = res.Items
	s.loaded = res.Status
	return s
}

// LoadStatus reports how the slot looked when the store was opened.
func (s *Store) LoadStatus() storage.LoadStatus { return s.loaded }

// Add increments an existing line or appends a new one. Quantities below 1 count as 1.
func (s *Store) Add(ctx context.Context, p products.Ref, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(p.ID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, Item{Ref: p.Clone(), Quantity: quantity})
	}
	return s.persist(ctx)
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persist(ctx)
}

// UpdateQuantity sets the quantity exactly; n <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id string, n int) error {
	if n <= 0 {
		return s.Remove(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.items[i].Quantity = n
	return s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []Item{}
	return s.persist(ctx)
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	for i, it := range s.items {
		it.Ref = it.Ref.Clone()
		out[i] = it
	}
	return out
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, it := range s.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

func (s *Store) index(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// persist keeps the in-memory change even when the write fails.
func (s *Store) persist(ctx context.Context) error {
	if err := s.coll.Save(ctx, s.items); err != nil {
		s.logger.Error("save cart", slog.Any("err", err))
		return err
	}
	return nil
}
