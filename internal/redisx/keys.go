package redisx

import "time"

const (
	// Every session slot lives under storefront:{slot key}, e.g.
	// storefront:session:{session_id}:cart -> JSON array
	KeySlot = "storefront:%s"

	// Per-user alert feed written by the notifier: user:{user_id}:orderNotifications
	KeyUserAlerts = "user:%s:orderNotifications"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSlot  = 30 * 24 * time.Hour
	TTLDedup = 48 * time.Hour
)
