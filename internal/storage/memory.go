package storage

import (
	"context"
	"sync"
)

type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Update(_ context.Context, key string, fn func(old []byte, ok bool) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.slots[key]
	next, err := fn(append([]byte(nil), old...), ok)
	if err != nil {
		return err
	}
	m.slots[key] = append([]byte(nil), next...)
	return nil
}

// Namespace returns a view of kv where every key is prefixed.
func Namespace(kv KV, prefix string) KV {
	return namespaced{kv: kv, prefix: prefix}
}

type namespaced struct {
	kv     KV
	prefix string
}

func (n namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n namespaced) Update(ctx context.Context, key string, fn func(old []byte, ok bool) ([]byte, error)) error {
	return Update(ctx, n.kv, n.prefix+key, fn)
}
