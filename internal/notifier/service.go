package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/alerts"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/ariefcatur/go-storefront.git/internal/storage"
	"github.com/pkg/errors"
	kafkago "github.com/segmentio/kafka-go"
)

// Deduper is satisfied by *redisx.Deduper.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Service struct {
	KV       storage.KV
	Dedup    Deduper
	AlertTTL time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// UserFeed is the shared alert slot of one user.
func UserFeed(kv storage.KV, userID string) storage.Collection[alerts.Alert] {
	return storage.NewCollection[alerts.Alert](kv, fmt.Sprintf(redisx.KeyUserAlerts, userID))
}

// HandleTrackingUpdated is installed as the consumer handler. Envelopes of
// other types and replayed event ids are acknowledged without effect. The
// dedup mark is released when the alert could not be stored, so the
// redelivered message is processed again.
func (s *Service) HandleTrackingUpdated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if env.EventType != orders.EventTrackingUpdated {
		return nil
	}

	n, err := kafkax.UnwrapPayload[orders.TrackingNotification](env.Payload)
	if err != nil {
		return err
	}
	if n.UserID == "" {
		s.Logger.Info("tracking event without user", slog.String("order_id", n.OrderID))
		return nil
	}

	first, err := s.Dedup.FirstSeen(ctx, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		s.Logger.Debug("duplicate tracking event", slog.String("event_id", env.EventID))
		return nil
	}

	a := alerts.FromTracking(n)
	a.Timestamp = env.OccurredAt
	if _, err := alerts.Append(ctx, UserFeed(s.KV, n.UserID), a, alerts.Config{TTL: s.AlertTTL, Logger: s.Logger, Now: s.Now}); err != nil {
		if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
			s.Logger.Error("release dedup mark", slog.String("event_id", env.EventID), slog.Any("err", ferr))
		}
		return err
	}
	s.Logger.Info("tracking alert stored",
		slog.String("order_id", n.OrderID), slog.String("user_id", n.UserID), slog.String("trace_id", env.TraceID))
	return nil
}
