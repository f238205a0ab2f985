package orders

import (
	"context"
	"sync"
)

// Listener receives tracking notifications synchronously on the publishing goroutine.
type Listener func(ctx context.Context, n TrackingNotification)

// Bridge fans a notification out to every subscriber in subscription order.
// There is no buffering and no replay. The zero value is ready to use.
type Bridge struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn until the returned func is called. Unsubscribing
// is idempotent and takes effect from the next Publish.
func (b *Bridge) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bridge) Publish(ctx context.Context, n TrackingNotification) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(ctx, n)
	}
}

func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bridge) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
