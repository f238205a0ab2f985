// Package alerts keeps the short-lived order alerts shown to a customer.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/pkg/errors"
)

const SlotKey = "orderNotifications"

// MaxShared caps a feed written through Append.
const MaxShared = 50

type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

type Alert struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	OrderID   string    `json:"orderId,omitempty"`
}

type Config struct {
	// TTL after which an alert drops out of Active; 0 keeps alerts until dismissed.
	TTL    time.Duration
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func(prefix string) string
}

// Feed is a newest-first alert list persisted in one slot.
type Feed struct {
	mu     sync.Mutex
	coll   storage.Collection[Alert]
	cfg    Config
	alerts []Alert
	loaded storage.LoadStatus
}

func NewFeed(ctx context.Context, coll storage.Collection[Alert], cfg Config) *Feed {
	cfg = cfg.withDefaults()
	f := &Feed{coll: coll, cfg: cfg}
	res := coll.Load(ctx)
	if res.Recovered() {
		cfg.Logger.Warn("alert slot recovered empty", slog.String("slot", coll.Key), slog.String("status", res.Status.String()), slog.Any("err", res.Err))
	}
	f.alerts = res.Items
	f.loaded = res.Status
	return f
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.NewID == nil {
		c.NewID = orders.NewID
	}
	return c
}

// LoadStatus reports how the slot looked when the feed was opened.
func (f *Feed) LoadStatus() storage.LoadStatus { return f.loaded }

// FromTracking renders a bridge notification as an alert (without id and time).
func FromTracking(n orders.TrackingNotification) Alert {
	msg := fmt.Sprintf("%s at %s", n.Status, n.Location)
	if n.Notes != "" {
		msg += " - " + n.Notes
	}
	return Alert{
		Type:    TypeInfo,
		Title:   fmt.Sprintf("Order %s update", n.OrderNumber),
		Message: msg,
		OrderID: n.OrderID,
	}
}

// HandleTracking is an orders.Listener.
func (f *Feed) HandleTracking(ctx context.Context, n orders.TrackingNotification) {
	if _, err := f.Push(ctx, FromTracking(n)); err != nil {
		f.cfg.Logger.Error("push tracking alert", slog.String("order_id", n.OrderID), slog.Any("err", err))
	}
}

func (c Config) fill(a Alert) Alert {
	if a.ID == "" {
		a.ID = c.NewID("alert")
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = c.Now()
	}
	a.Timestamp = a.Timestamp.UTC()
	if a.Type == "" {
		a.Type = TypeInfo
	}
	return a
}

func (c Config) unexpired(alerts []Alert) []Alert {
	kept := make([]Alert, 0, len(alerts))
	cutoff := c.Now().Add(-c.TTL)
	for _, a := range alerts {
		if c.TTL <= 0 || a.Timestamp.After(cutoff) {
			kept = append(kept, a)
		}
	}
	return kept
}

// Push prepends a, filling id and timestamp when empty.
func (f *Feed) Push(ctx context.Context, a Alert) (Alert, error) {
	a = f.cfg.fill(a)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.alerts = append([]Alert{a}, f.alerts...)
	return a, f.save(ctx)
}

// Active drops expired alerts and returns the rest, newest first.
func (f *Feed) Active(ctx context.Context) []Alert {
	f.mu.Lock()
	defer f.mu.Unlock()

	if kept := f.cfg.unexpired(f.alerts); len(kept) != len(f.alerts) {
		f.alerts = kept
		if err := f.save(ctx); err != nil {
			f.cfg.Logger.Warn("prune alerts", slog.Any("err", err))
		}
	}

	out := make([]Alert, len(f.alerts))
	copy(out, f.alerts)
	return out
}

// Dismiss removes one alert; unknown ids are ignored.
func (f *Feed) Dismiss(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, a := range f.alerts {
		if a.ID == id {
			f.alerts = append(f.alerts[:i:i], f.alerts[i+1:]...)
			return f.save(ctx)
		}
	}
	return nil
}

func (f *Feed) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.alerts = []Alert{}
	return f.save(ctx)
}

func (f *Feed) save(ctx context.Context) error {
	return errors.Wrap(f.coll.Save(ctx, f.alerts), "save alerts")
}

// Shared feeds are written by more than one process, so they are never
// cached: every call goes to the slot.

// Append prepends a to the shared feed in coll in one atomic step, dropping
// expired alerts and keeping at most MaxShared.
func Append(ctx context.Context, coll storage.Collection[Alert], a Alert, cfg Config) (Alert, error) {
	cfg = cfg.withDefaults()
	a = cfg.fill(a)
	err := coll.Update(ctx, func(items []Alert) ([]Alert, error) {
		next := append([]Alert{a}, cfg.unexpired(items)...)
		if len(next) > MaxShared {
			next = next[:MaxShared]
		}
		return next, nil
	})
	return a, errors.Wrap(err, "append alert")
}

// Read returns the unexpired alerts of a shared feed without rewriting it.
func Read(ctx context.Context, coll storage.Collection[Alert], cfg Config) ([]Alert, error) {
	cfg = cfg.withDefaults()
	res := coll.Load(ctx)
	if res.Status == storage.LoadUnavailable {
		return nil, errors.Wrap(storage.ErrUnavailable, res.Err.Error())
	}
	if res.Status == storage.LoadCorrupt {
		cfg.Logger.Warn("shared alert slot unreadable", slog.String("slot", coll.Key), slog.Any("err", res.Err))
	}
	return cfg.unexpired(res.Items), nil
}

// Remove drops one alert from a shared feed; unknown ids are ignored.
func Remove(ctx context.Context, coll storage.Collection[Alert], id string) error {
	err := coll.Update(ctx, func(items []Alert) ([]Alert, error) {
		out := make([]Alert, 0, len(items))
		for _, a := range items {
			if a.ID != id {
				out = append(out, a)
			}
		}
		return out, nil
	})
	return errors.Wrap(err, "remove alert")
}
