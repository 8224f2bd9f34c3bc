package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/fleetwatch/internal/model"
)

type fakeStore struct {
	data    map[string]*model.GeoRecord
	loadErr error
	putErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]*model.GeoRecord)}
}

func (s *fakeStore) Load() (map[string]*model.GeoRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]*model.GeoRecord, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) Put(rec *model.GeoRecord) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.data[rec.IP] = rec
	return nil
}

func staticLookup(rec *model.GeoRecord, err error) (LookupFunc, *int) {
	calls := new(int)
	return func(ctx context.Context, ip string) (*model.GeoRecord, error) {
		*calls++
		if err != nil {
			return nil, err
		}
		out := *rec
		out.IP = ip
		return &out, nil
	}, calls
}

func TestCachePrimedFromStore(t *testing.T) {
	store := newFakeStore()
	store.data["1.2.3.4"] = &model.GeoRecord{IP: "1.2.3.4", Country: "ZA"}

	cache := NewCache(store)

	assert.Equal(t, 1, cache.Len())
	rec, ok := cache.Get("1.2.3.4")
	require.True(t, ok)
	assert.Equal(t, "ZA", rec.Country)
}

func TestCacheStartsEmptyOnLoadFailure(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("disk gone")

	cache := NewCache(store)
	assert.Equal(t, 0, cache.Len())
}

func TestGetOrFetchCachesWriteThrough(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(store)

	lookup, calls := staticLookup(&model.GeoRecord{Country: "ZA"}, nil)

	rec, err := cache.GetOrFetch(context.Background(), "1.2.3.4", lookup)
	require.NoError(t, err)
	assert.Equal(t, "ZA", rec.Country)
	assert.Equal(t, 1, *calls)
	assert.Contains(t, store.data, "1.2.3.4")

	// Second call hits the cache.
	_, err = cache.GetOrFetch(context.Background(), "1.2.3.4", lookup)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
}

func TestGetOrFetchWrapsFailure(t *testing.T) {
	cache := NewCache(newFakeStore())

	lookup, _ := staticLookup(nil, errors.New("timeout"))

	_, err := cache.GetOrFetch(context.Background(), "1.2.3.4", lookup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLookupFailed))
	assert.Contains(t, err.Error(), "1.2.3.4")

	// Nothing is cached for a failed lookup.
	_, ok := cache.Get("1.2.3.4")
	assert.False(t, ok)
}

func TestGetOrFetchToleratesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("readonly db")
	cache := NewCache(store)

	lookup, _ := staticLookup(&model.GeoRecord{Country: "ZA"}, nil)

	// The record is still served and cached in memory.
	rec, err := cache.GetOrFetch(context.Background(), "1.2.3.4", lookup)
	require.NoError(t, err)
	assert.Equal(t, "ZA", rec.Country)

	cached, ok := cache.Get("1.2.3.4")
	require.True(t, ok)
	assert.Same(t, rec, cached)
}

func TestSnapshotIsACopy(t *testing.T) {
	cache := NewCache(newFakeStore())
	lookup, _ := staticLookup(&model.GeoRecord{Country: "ZA"}, nil)

	_, err := cache.GetOrFetch(context.Background(), "1.2.3.4", lookup)
	require.NoError(t, err)

	snap := cache.Snapshot()
	delete(snap, "1.2.3.4")

	assert.Equal(t, 1, cache.Len())
}
