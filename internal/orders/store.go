package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/notice"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const SlotKey = "orders"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingNumber     = errors.New("order number is required")
	ErrDuplicateNumber   = errors.New("order number already exists")
)

// NewID returns prefix_<uuidv7>; v7 ids sort by creation time.
func NewID(prefix string) string {
	return prefix + "_" + uuid.Must(uuid.NewV7()).String()
}

type Config struct {
	Notices notice.Sink
	Logger  *slog.Logger
	Policy  TransitionPolicy
	Now     func() time.Time
	NewID   func(prefix string) string
}

// Store owns the session's orders, newest first. Orders are never deleted.
// A mutation is kept in memory only after the slot write succeeded.
type Store struct {
	mu     sync.Mutex
	coll   storage.Collection[Order]
	bridge Bridge
	cfg    Config
	orders []Order
	loaded storage.LoadStatus
}

func NewStore(ctx context.Context, kv storage.KV, cfg Config) *Store {
	if cfg.Notices == nil {
		cfg.Notices = notice.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = NewID
	}

	s := &Store{coll: storage.NewCollection[Order](kv, SlotKey), cfg: cfg}
	res := s.coll.Load(ctx)
	if res.Recovered() {
		cfg.Logger.Warn("orders slot recovered empty", slog.String("status", res.Status.String()), slog.Any("err", res.Err))
	}
	s.orders = res.Items
	s.loaded = res.Status
	return s
}

// LoadStatus reports how the slot looked when the store was opened.
func (s *Store) LoadStatus() storage.LoadStatus { return s.loaded }

// Subscribe attaches a listener to tracking notifications of this store.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	return s.bridge.Subscribe(fn)
}

func (s *Store) Create(ctx context.Context, in NewOrder) (Order, error) {
	o, err := s.create(ctx, in)
	if err != nil {
		s.cfg.Logger.Error("create order", slog.Any("err", err))
		s.notify(notice.Error, "Failed to create order")
		return Order{}, err
	}
	s.notify(notice.Success, fmt.Sprintf("Order %s created successfully", o.OrderNumber))
	return o, nil
}

func (s *Store) create(ctx context.Context, in NewOrder) (Order, error) {
	if strings.TrimSpace(in.OrderNumber) == "" {
		return Order{}, errors.WithStack(ErrMissingNumber)
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return Order{}, errors.Wrapf(ErrUnknownStatus, "%q", status)
	}

	now := s.cfg.Now().UTC()
	o := Order{
		ID:                s.cfg.NewID("order"),
		OrderNumber:       in.OrderNumber,
		UserID:            in.UserID,
		SellerID:          in.SellerID,
		Items:             append([]LineItem{}, in.Items...),
		TotalPrice:        in.TotalPrice,
		Status:            status,
		ShippingAddress:   in.ShippingAddress,
		TrackingNumber:    in.TrackingNumber,
		CreatedAt:         in.CreatedAt.UTC(),
		TrackingEvents: []TrackingEvent{{
			ID:        s.cfg.NewID("event"),
			Status:    "Order Placed",
			Location:  "Online",
			Timestamp: now,
			Notes:     "Your order has been placed successfully",
		}},
	}
	if in.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if in.EstimatedDelivery != nil {
		d := in.EstimatedDelivery.UTC()
		o.EstimatedDelivery = &d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if strings.EqualFold(existing.OrderNumber, o.OrderNumber) {
			return Order{}, errors.Wrapf(ErrDuplicateNumber, "%s", o.OrderNumber)
		}
	}

	next := make([]Order, 0, len(s.orders)+1)
	next = append(next, o)
	next = append(next, s.orders...)
	if err := s.commit(ctx, next); err != nil {
		return Order{}, errors.Wrap(err, "create order")
	}
	return o.clone(), nil
}

// UpdateStatus sets the order status. It does not publish on the bridge.
func (s *Store) UpdateStatus(ctx context.Context, orderID string, status Status) (Order, error) {
	o, err := s.updateStatus(ctx, orderID, status)
	if err != nil {
		s.cfg.Logger.Error("update order status", slog.String("order_id", orderID), slog.Any("err", err))
		s.notify(notice.Error, "Failed to update order status")
		return Order{}, err
	}
	s.notify(notice.Success, fmt.Sprintf("Order status updated to %s", status))
	return o, nil
}

func (s *Store) updateStatus(ctx context.Context, orderID string, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, errors.Wrapf(ErrUnknownStatus, "%q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(orderID)
	if i < 0 {
		return Order{}, errors.Wrapf(ErrOrderNotFound, "order %s", orderID)
	}
	if from := s.orders[i].Status; !s.cfg.Policy.Allows(from, status) {
		return Order{}, errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, status)
	}

	updated := s.orders[i].clone()
	updated.Status = status
	if err := s.commit(ctx, s.replaced(i, updated)); err != nil {
		return Order{}, errors.Wrap(err, "update order status")
	}
	return updated.clone(), nil
}

// AddTrackingEvent prepends an event and announces it on the bridge using
// the order as stored after the append.
func (s *Store) AddTrackingEvent(ctx context.Context, orderID string, in NewTrackingEvent) (TrackingEvent, error) {
	ev, o, err := s.addTrackingEvent(ctx, orderID, in)
	if err != nil {
		s.cfg.Logger.Error("add tracking event", slog.String("order_id", orderID), slog.Any("err", err))
		s.notify(notice.Error, "Failed to add tracking event")
		return TrackingEvent{}, err
	}

	s.bridge.Publish(ctx, TrackingNotification{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      ev.Status,
		Location:    ev.Location,
		Notes:       ev.Notes,
		UserID:      o.UserID,
	})
	s.notify(notice.Success, "Tracking event added successfully")
	return ev, nil
}

func (s *Store) addTrackingEvent(ctx context.Context, orderID string, in NewTrackingEvent) (TrackingEvent, Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(orderID)
	if i < 0 {
		return TrackingEvent{}, Order{}, errors.Wrapf(ErrOrderNotFound, "order %s", orderID)
	}

	ev := TrackingEvent{
		ID:        s.cfg.NewID("event"),
		Status:    in.Status,
		Location:  in.Location,
		Timestamp: in.Timestamp.UTC(),
		Notes:     in.Notes,
	}
	if in.Timestamp.IsZero() {
		ev.Timestamp = s.cfg.Now().UTC()
	}

	updated := s.orders[i].clone()
	updated.TrackingEvents = append([]TrackingEvent{ev}, updated.TrackingEvents...)
	if err := s.commit(ctx, s.replaced(i, updated)); err != nil {
		return TrackingEvent{}, Order{}, errors.Wrap(err, "add tracking event")
	}
	return ev, updated.clone(), nil
}

func (s *Store) Get(id string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		return s.orders[i].clone(), true
	}
	return Order{}, false
}

// FindByReference matches an order number or order id, ignoring case.
func (s *Store) FindByReference(ref string) (Order, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Order{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if strings.EqualFold(o.OrderNumber, ref) || strings.EqualFold(o.ID, ref) {
			return o.clone(), true
		}
	}
	return Order{}, false
}

func (s *Store) All() []Order {
	return s.filter(func(Order) bool { return true })
}

func (s *Store) UserOrders(userID string) []Order {
	return s.filter(func(o Order) bool { return o.UserID == userID })
}

func (s *Store) SellerOrders(sellerID string) []Order {
	return s.filter(func(o Order) bool { return o.SellerID == sellerID })
}

// StatusCounts counts the seller's orders per status; every status is present.
func (s *Store) StatusCounts(sellerID string) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	for _, o := range s.SellerOrders(sellerID) {
		counts[o.Status]++
	}
	return counts
}

func (s *Store) filter(keep func(Order) bool) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o.clone())
		}
	}
	return out
}

func (s *Store) index(id string) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) replaced(i int, o Order) []Order {
	next := make([]Order, len(s.orders))
	copy(next, s.orders)
	next[i] = o
	return next
}

// commit writes next to the slot and only then swaps it in. Caller holds mu.
func (s *Store) commit(ctx context.Context, next []Order) error {
	if err := s.coll.Save(ctx, next); err != nil {
		return err
	}
	s.orders = next
	return nil
}

func (s *Store) notify(level notice.Level, msg string) {
	s.cfg.Notices.Notify(notice.Notice{Level: level, Message: msg})
}
