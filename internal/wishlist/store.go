package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ariefcatur/go-storefront.git/internal/notice"
	"github.com/ariefcatur/go-storefront.git/internal/products"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
)

const SlotKey = "wishlist"

// Item is a saved product; at most one per product id.
type Item = products.Ref

type Store struct {
	mu      sync.Mutex
	coll    storage.Collection[Item]
	notices notice.Sink
	logger  *slog.Logger
	items   []Item
	loaded  storage.LoadStatus
}

func NewStore(ctx context.Context, kv storage.KV, notices notice.Sink, logger *slog.Logger) *Store {
	if notices == nil {
		notices = notice.Discard
	}
	s := &Store{coll: storage.NewCollection[Item](kv, SlotKey), notices: notices, logger: logger}
	res := s.coll.Load(ctx)
	if res.Recovered() {
		logger.Warn("wishlist slot recovered empty", slog.String("status", res.Status.String()), slog.Any("err", res.Err))
	}
	s.items = res.Items
	s.loaded = res.Status
	return s
}

// LoadStatus reports how the slot looked when the store was opened.
func (s *Store) LoadStatus() storage.LoadStatus { return s.loaded }

// Add reports whether the item was new. Re-adding only emits an info notice.
func (s *Store) Add(ctx context.Context, item Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(item.ID) >= 0 {
		s.notices.Notify(notice.Notice{Level: notice.Info, Message: "Already in wishlist"})
		return false, nil
	}
	s.items = append(s.items, item.Clone())
	s.notices.Notify(notice.Notice{Level: notice.Success, Message: fmt.Sprintf("Added %s to wishlist", item.Name)})
	return true, s.persist(ctx)
}

// Remove reports whether something was removed; absent ids are silent.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.notices.Notify(notice.Notice{Level: notice.Success, Message: fmt.Sprintf("Removed %s from wishlist", removed.Name)})
	return true, s.persist(ctx)
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(id) >= 0
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

func (s *Store) index(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.coll.Save(ctx, s.items); err != nil {
		s.logger.Error("save wishlist", slog.Any("err", err))
		return err
	}
	return nil
}
