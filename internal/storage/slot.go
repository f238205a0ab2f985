// Package storage keeps whole collections in named key/value slots.
package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// KV is a durable key/value backend. Get reports ok=false when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// ErrUnavailable marks a backend that could not be read, as opposed to a
// slot that is missing or unreadable.
var ErrUnavailable = errors.New("storage unavailable")

// Updater is implemented by backends that can read-modify-write one key
// atomically. fn may run more than once.
type Updater interface {
	Update(ctx context.Context, key string, fn func(old []byte, ok bool) ([]byte, error)) error
}

// Update applies fn to key, atomically when kv is an Updater and as a plain
// read then write otherwise.
func Update(ctx context.Context, kv KV, key string, fn func(old []byte, ok bool) ([]byte, error)) error {
	if u, ok := kv.(Updater); ok {
		return u.Update(ctx, key, fn)
	}
	old, ok, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(old, ok)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, next)
}

type LoadStatus int

const (
	LoadOK LoadStatus = iota
	LoadAbsent
	LoadCorrupt
	LoadUnavailable
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadAbsent:
		return "absent"
	case LoadCorrupt:
		return "corrupt"
	case LoadUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// LoadResult is what a slot held. Items is empty for every status but LoadOK;
// Err explains LoadCorrupt and LoadUnavailable.
type LoadResult[T any] struct {
	Items  []T
	Status LoadStatus
	Err    error
}

func (r LoadResult[T]) Recovered() bool {
	return r.Status == LoadCorrupt || r.Status == LoadUnavailable
}

// Collection is an ordered list of T stored as one JSON array under Key.
type Collection[T any] struct {
	KV  KV
	Key string
}

func NewCollection[T any](kv KV, key string) Collection[T] {
	return Collection[T]{KV: kv, Key: key}
}

// Load never fails; a missing or unreadable slot comes back empty with a reason.
func (c Collection[T]) Load(ctx context.Context) LoadResult[T] {
	raw, ok, err := c.KV.Get(ctx, c.Key)
	if err != nil {
		return LoadResult[T]{Items: []T{}, Status: LoadUnavailable, Err: errors.Wrapf(err, "read slot %s", c.Key)}
	}
	if !ok || len(raw) == 0 {
		return LoadResult[T]{Items: []T{}, Status: LoadAbsent}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return LoadResult[T]{Items: []T{}, Status: LoadCorrupt, Err: errors.Wrapf(err, "decode slot %s", c.Key)}
	}
	if items == nil {
		items = []T{}
	}
	return LoadResult[T]{Items: items, Status: LoadOK}
}

// Update rewrites the slot from its current content in one step, so writers
// in other processes are not lost. An unreadable payload counts as empty,
// as it does for Load.
func (c Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, error)) error {
	err := Update(ctx, c.KV, c.Key, func(raw []byte, ok bool) ([]byte, error) {
		items := []T{}
		if ok && len(raw) > 0 {
			if err := json.Unmarshal(raw, &items); err != nil || items == nil {
				items = []T{}
			}
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		return json.Marshal(next)
	})
	return errors.Wrapf(err, "update slot %s", c.Key)
}

// Save overwrites the slot with the full collection.
func (c Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encode slot %s", c.Key)
	}
	if err := c.KV.Set(ctx, c.Key, b); err != nil {
		return errors.Wrapf(err, "write slot %s", c.Key)
	}
	return nil
}
