package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb redis.Cmdable, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// KV stores session slots as plain string values. TTL 0 keeps them forever.
type KV struct {
	Redis redis.UniversalClient
	TTL   time.Duration
}

// updateAttempts bounds optimistic retries when other writers keep winning.
const updateAttempts = 100

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := k.Redis.Get(ctx, fmt.Sprintf(KeySlot, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return b, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	return errors.WithStack(k.Redis.Set(ctx, fmt.Sprintf(KeySlot, key), value, k.TTL).Err())
}

// Update runs fn under WATCH and writes the result in MULTI/EXEC, retrying
// when another client changed the key in between.
func (k *KV) Update(ctx context.Context, key string, fn func(old []byte, ok bool) ([]byte, error)) error {
	full := fmt.Sprintf(KeySlot, key)
	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, full).Bytes()
		ok := true
		if errors.Is(err, redis.Nil) {
			ok, err = false, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(old, ok)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, full, next, k.TTL)
			return nil
		})
		return err
	}

	for i := 0; i < updateAttempts; i++ {
		err := k.Redis.Watch(ctx, txf, full)
		if !errors.Is(err, redis.TxFailedErr) {
			return errors.WithStack(err)
		}
	}
	return errors.Errorf("update %s: too much contention", full)
}

// Deduper remembers processed event ids for TTLDedup.
type Deduper struct {
	Redis   redis.Cmdable
	Service string
}

// FirstSeen reports true exactly once per event id.
func (d *Deduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.Redis.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID), "1", TTLDedup).Result()
	if err != nil {
		return false, errors.WithStack(err)
	}
	return ok, nil
}

// Forget drops the mark so a redelivered event is processed again.
func (d *Deduper) Forget(ctx context.Context, eventID string) error {
	return errors.WithStack(d.Redis.Del(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID)).Err())
}
