package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenKV) Set(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func TestCollection_RoundTrip(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection[row](NewMemory(), "cart")

	in := []row{{ID: "1", Qty: 2}, {ID: "2", Qty: 1}}
	require.NoError(t, coll.Save(ctx, in))

	res := coll.Load(ctx)
	assert.Equal(t, LoadOK, res.Status)
	assert.NoError(t, res.Err)
	assert.Equal(t, in, res.Items)
}

func TestCollection_Absent(t *testing.T) {
	res := NewCollection[row](NewMemory(), "cart").Load(context.Background())

	assert.Equal(t, LoadAbsent, res.Status)
	assert.False(t, res.Recovered())
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
}

func TestCollection_CorruptIsDistinguishable(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "cart", []byte(`{"not":"a list"`)))

	res := NewCollection[row](kv, "cart").Load(ctx)

	assert.Equal(t, LoadCorrupt, res.Status)
	assert.True(t, res.Recovered())
	assert.ErrorContains(t, res.Err, "decode slot cart")
	assert.Empty(t, res.Items)
}

func TestCollection_WrongShapeIsCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "cart", []byte(`[{"id":1}]`)))

	res := NewCollection[row](kv, "cart").Load(ctx)
	assert.Equal(t, LoadCorrupt, res.Status)
}

func TestCollection_NullPayloadLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "cart", []byte(`null`)))

	res := NewCollection[row](kv, "cart").Load(ctx)
	assert.Equal(t, LoadOK, res.Status)
	assert.Equal(t, []row{}, res.Items)
}

func TestCollection_BackendDown(t *testing.T) {
	coll := NewCollection[row](brokenKV{}, "orders")

	res := coll.Load(context.Background())
	assert.Equal(t, LoadUnavailable, res.Status)
	assert.ErrorContains(t, res.Err, "connection refused")

	err := coll.Save(context.Background(), nil)
	assert.ErrorContains(t, err, "write slot orders")
}

func TestCollection_SaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, NewCollection[row](kv, "cart").Save(ctx, nil))

	raw, ok, err := kv.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(raw))
}

func TestNamespace_IsolatesKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	a := Namespace(kv, "session:a:")
	b := Namespace(kv, "session:b:")

	require.NoError(t, a.Set(ctx, "cart", []byte("[1]")))

	_, ok, err := b.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, err := kv.Get(ctx, "session:a:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", string(raw))
}

func TestLoadStatus_String(t *testing.T) {
	assert.Equal(t, "corrupt", LoadCorrupt.String())
	assert.Equal(t, "unknown", LoadStatus(42).String())
}

func TestCollection_UpdateIsAtomicOnMemory(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection[row](Namespace(NewMemory(), "user:u1:"), "feed")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, coll.Update(ctx, func(items []row) ([]row, error) {
				return append(items, row{ID: fmt.Sprint(i), Qty: 1}), nil
			}))
		}(i)
	}
	wg.Wait()

	assert.Len(t, coll.Load(ctx).Items, 50)
}

func TestCollection_UpdateReplacesCorruptAndPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "feed", []byte("{{")))
	coll := NewCollection[row](kv, "feed")

	require.NoError(t, coll.Update(ctx, func(items []row) ([]row, error) {
		assert.Empty(t, items)
		return append(items, row{ID: "1"}), nil
	}))
	assert.Equal(t, []row{{ID: "1"}}, coll.Load(ctx).Items)

	err := coll.Update(ctx, func([]row) ([]row, error) { return nil, errors.New("nope") })
	assert.ErrorContains(t, err, "update slot feed: nope")
	assert.Equal(t, []row{{ID: "1"}}, coll.Load(ctx).Items)

	err = NewCollection[row](brokenKV{}, "feed").Update(ctx, func(items []row) ([]row, error) { return items, nil })
	assert.ErrorContains(t, err, "connection refused")
}
