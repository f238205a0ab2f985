// Package notifier moves order tracking notifications across processes:
// the API publishes them to Kafka and the notifier service turns them into
// per-user alert feeds in Redis.
package notifier

import (
	"context"
	"log/slog"
	"time"

	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is satisfied by *kafka.Producer. Publish must not block.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

// Forwarder is an orders.Listener that relays every notification as an
// OrderTrackingUpdated envelope.
type Forwarder struct {
	Producer    Publisher
	ServiceName string
	Logger      *slog.Logger
	Now         func() time.Time
}

func (f *Forwarder) Forward(ctx context.Context, n orders.TrackingNotification) {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventTrackingUpdated,
		EventVersion:  1,
		OccurredAt:    now().UTC(),
		Producer:      f.ServiceName,
		TraceID:       traceID(ctx),
		CorrelationID: n.OrderID,
		Payload:       kafkax.MustMarshal(n),
	}
	queued := f.Producer.Publish(orders.PartitionKey(n.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventTrackingUpdated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if f.Logger != nil {
		f.Logger.Debug("tracking update forwarded",
			slog.String("order_id", n.OrderID), slog.String("event_id", ev.EventID), slog.Bool("queued", queued))
	}
}

type traceKey struct{}

// WithTraceID attaches the request id that Forward copies into envelopes.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
