// Package session wires the per-visitor stores together. Every store of a
// session reads and writes its slots under "session:<id>:".
package session

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/alerts"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/checkout"
	"github.com/ariefcatur/go-storefront.git/internal/notice"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/ariefcatur/go-storefront.git/internal/wishlist"
	"github.com/pkg/errors"
)

var ErrInvalidID = errors.New("invalid session id")

// ErrUnavailable means a slot could not be read; the session is not opened
// so that empty stores never overwrite durable state.
var ErrUnavailable = errors.New("session storage unavailable")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Config struct {
	Policy   orders.TransitionPolicy
	AlertTTL time.Duration
	SellerID string
	Logger   *slog.Logger
	// Listeners are subscribed to the order store of every new session.
	Listeners []orders.Listener
}

type Session struct {
	ID       string
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Orders   *orders.Store
	Alerts   *alerts.Feed
	Checkout *checkout.Service

	mu      sync.Mutex
	notices *notice.Recorder
}

// Run executes fn while holding the session and returns the notices it raised.
func (s *Session) Run(fn func()) []notice.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices.Drain()
	fn()
	return s.notices.Drain()
}

// Manager hands out one Session per id and keeps it for the process lifetime.
// A session whose slots could not be read is not kept, so the next Get retries.
type Manager struct {
	kv  storage.KV
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(kv storage.KV, cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{kv: kv, cfg: cfg, sessions: map[string]*Session{}}
}

// Get returns the session for id, hydrating its stores on first use.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !idPattern.MatchString(id) {
		return nil, errors.WithStack(ErrInvalidID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}

	s, err := m.open(ctx, id)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) open(ctx context.Context, id string) (*Session, error) {
	logger := m.cfg.Logger.With(slog.String("session_id", id))
	kv := storage.Namespace(m.kv, "session:"+id+":")
	rec := &notice.Recorder{}
	sink := notice.Multi(notice.Log(logger), rec)

	c := cart.NewStore(ctx, kv, logger)
	w := wishlist.NewStore(ctx, kv, sink, logger)
	o := orders.NewStore(ctx, kv, orders.Config{Notices: sink, Logger: logger, Policy: m.cfg.Policy})
	feed := alerts.NewFeed(ctx, storage.NewCollection[alerts.Alert](kv, alerts.SlotKey), alerts.Config{TTL: m.cfg.AlertTTL, Logger: logger})

	for slot, st := range map[string]storage.LoadStatus{
		cart.SlotKey:     c.LoadStatus(),
		wishlist.SlotKey: w.LoadStatus(),
		orders.SlotKey:   o.LoadStatus(),
		alerts.SlotKey:   feed.LoadStatus(),
	} {
		if st == storage.LoadUnavailable {
			return nil, errors.Wrapf(ErrUnavailable, "session %s slot %s", id, slot)
		}
	}

	o.Subscribe(feed.HandleTracking)
	for _, l := range m.cfg.Listeners {
		o.Subscribe(l)
	}

	logger.Debug("session opened")
	return &Session{
		ID:       id,
		Cart:     c,
		Wishlist: w,
		Orders:   o,
		Alerts:   feed,
		Checkout: checkout.NewService(c, o, checkout.Config{SellerID: m.cfg.SellerID, Notices: sink, Logger: logger}),
		notices:  rec,
	}, nil
}
