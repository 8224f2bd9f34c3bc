package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/fleetwatch/internal/geo"
	"github.com/user/fleetwatch/internal/model"
)

type memStore struct {
	data map[string]*model.GeoRecord
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]*model.GeoRecord)}
}

func (s *memStore) Load() (map[string]*model.GeoRecord, error) {
	out := make(map[string]*model.GeoRecord, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Put(rec *model.GeoRecord) error {
	s.data[rec.IP] = rec
	return nil
}

type countingLookup struct {
	calls   int
	records map[string]*model.GeoRecord
	err     error
}

func (l *countingLookup) Lookup(ctx context.Context, ip string) (*model.GeoRecord, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	rec, ok := l.records[ip]
	if !ok {
		return nil, errors.New("unknown ip")
	}
	return rec, nil
}

func gautengRecord(ip string) *model.GeoRecord {
	return &model.GeoRecord{
		IP:        ip,
		Region:    "Gauteng",
		City:      "Johannesburg",
		Country:   "ZA",
		Latitude:  -26.2,
		Longitude: 28.0,
	}
}

func TestPipelineEnrichesMismatchedLocation(t *testing.T) {
	d := device(map[string]any{
		model.FieldLocationIP: "41.0.0.1",
		model.FieldProvince:   "Western Cape",
		model.FieldCity:       "Cape Town",
		model.FieldLatitude:   -33.9,
		model.FieldLongitude:  18.4,
	})

	lookup := &countingLookup{records: map[string]*model.GeoRecord{
		"41.0.0.1": gautengRecord("41.0.0.1"),
	}}
	p := New(geo.NewCache(newMemStore()), lookup.Lookup, WithClock(func() time.Time { return testNow }))

	enriched, stats := p.Run(context.Background(), []*model.DeviceRecord{d})

	require.Len(t, enriched, 1)
	assert.Equal(t, "Gauteng", d.String(model.FieldProvince))
	assert.Equal(t, "Johannesburg", d.String(model.FieldCity))
	assert.Equal(t, "ZA", d.String(model.FieldCountry))

	lat, _ := d.Float(model.FieldLatitude)
	lon, _ := d.Float(model.FieldLongitude)
	assert.InDelta(t, -26.2, lat, 1e-9)
	assert.InDelta(t, 28.0, lon, 1e-9)

	// Country was not in the input, so it lands at the end of the row.
	keys := d.Keys()
	assert.Equal(t, model.FieldCountry, keys[len(keys)-1])

	assert.Equal(t, 1, stats.TotalDevices)
	assert.Equal(t, 1, stats.DevicesInSA)
}

func TestPipelineMatchingLocationUntouched(t *testing.T) {
	d := device(map[string]any{
		model.FieldLocationIP: "41.0.0.1",
		model.FieldProvince:   "Gauteng",
		model.FieldCity:       "Johannesburg",
		model.FieldCountry:    "ZA",
		model.FieldLatitude:   -26.2,
		model.FieldLongitude:  28.0,
	})
	before := d.Clone()

	lookup := &countingLookup{records: map[string]*model.GeoRecord{
		"41.0.0.1": gautengRecord("41.0.0.1"),
	}}
	p := New(geo.NewCache(newMemStore()), lookup.Lookup, WithClock(func() time.Time { return testNow }))

	enriched, _ := p.Run(context.Background(), []*model.DeviceRecord{d})

	require.Len(t, enriched, 1)
	assert.Equal(t, before.Keys(), d.Keys())
	for _, k := range before.Keys() {
		want, _ := before.Get(k)
		got, _ := d.Get(k)
		assert.Equal(t, want, got, "field %s", k)
	}
}

func TestPipelineSkipsDeviceWithoutID(t *testing.T) {
	valid := device(map[string]any{model.FieldRetailer: "ACME"})
	invalid := model.NewDeviceRecord()
	invalid.Set(model.FieldRetailer, "ACME")

	p := New(geo.NewCache(newMemStore()), (&countingLookup{}).Lookup,
		WithClock(func() time.Time { return testNow }))

	enriched, stats := p.Run(context.Background(), []*model.DeviceRecord{valid, invalid})

	require.Len(t, enriched, 1)
	assert.Equal(t, 2, stats.TotalDevices)
	assert.Equal(t, 1, stats.Retailers["ACME"].Total)
}

func TestPipelineSkipsLookupFailure(t *testing.T) {
	d := device(map[string]any{
		model.FieldLocationIP: "41.0.0.1",
		model.FieldRetailer:   "ACME",
	})

	store := newMemStore()
	lookup := &countingLookup{err: errors.New("connection refused")}
	p := New(geo.NewCache(store), lookup.Lookup, WithClock(func() time.Time { return testNow }))

	enriched, stats := p.Run(context.Background(), []*model.DeviceRecord{d})

	assert.Empty(t, enriched)
	assert.Equal(t, 1, stats.TotalDevices)
	assert.Empty(t, stats.Retailers)
	// Failed lookups are never cached.
	assert.Empty(t, store.data)
}

func TestPipelineFetchesEachIPOnce(t *testing.T) {
	devices := []*model.DeviceRecord{
		device(map[string]any{model.FieldLocationIP: "41.0.0.1"}),
		device(map[string]any{model.FieldLocationIP: "41.0.0.1"}),
		device(map[string]any{model.FieldLocationIP: "41.0.0.2"}),
	}

	lookup := &countingLookup{records: map[string]*model.GeoRecord{
		"41.0.0.1": gautengRecord("41.0.0.1"),
		"41.0.0.2": gautengRecord("41.0.0.2"),
	}}
	p := New(geo.NewCache(newMemStore()), lookup.Lookup, WithClock(func() time.Time { return testNow }))

	enriched, _ := p.Run(context.Background(), devices)

	assert.Len(t, enriched, 3)
	assert.Equal(t, 2, lookup.calls)
}

func TestPipelineErrorPayloadKeepsDevice(t *testing.T) {
	d := device(map[string]any{
		model.FieldLocationIP: "10.0.0.1",
		model.FieldProvince:   "Gauteng",
	})

	store := newMemStore()
	lookup := &countingLookup{records: map[string]*model.GeoRecord{
		"10.0.0.1": {IP: "10.0.0.1", Error: "bogon address"},
	}}
	p := New(geo.NewCache(store), lookup.Lookup, WithClock(func() time.Time { return testNow }))

	enriched, stats := p.Run(context.Background(), []*model.DeviceRecord{d})

	// An unresolvable address is not a failed lookup; the device stays,
	// its location untouched, and the result is cached.
	require.Len(t, enriched, 1)
	assert.Equal(t, "Gauteng", d.String(model.FieldProvince))
	assert.False(t, d.Has(model.FieldCountry))
	assert.Equal(t, 1, stats.TotalDevices)
	assert.Contains(t, store.data, "10.0.0.1")
}

func TestPipelineDeviceWithoutIPPassesThrough(t *testing.T) {
	d := device(map[string]any{model.FieldCountry: "ZA"})

	lookup := &countingLookup{}
	p := New(geo.NewCache(newMemStore()), lookup.Lookup, WithClock(func() time.Time { return testNow }))

	enriched, stats := p.Run(context.Background(), []*model.DeviceRecord{d})

	require.Len(t, enriched, 1)
	assert.Equal(t, 0, lookup.calls)
	assert.Equal(t, 1, stats.DevicesInSA)
}

func TestPipelineFullRun(t *testing.T) {
	d := device(map[string]any{
		model.FieldLocationIP:    "1.2.3.4",
		model.FieldProvince:      "X",
		model.FieldCountry:       "US",
		model.FieldRetailer:      "R1",
		model.FieldServiceStatus: "activated",
		model.FieldOnline:        true,
		model.FieldSyncTime:      testNow.Add(-time.Hour).Unix(),
		model.FieldConnectedTime: testNow.Add(-time.Hour).Unix(),
	})

	lookup := &countingLookup{records: map[string]*model.GeoRecord{
		"1.2.3.4": {
			IP:        "1.2.3.4",
			Region:    "Gauteng",
			City:      "Joburg",
			Country:   "ZA",
			Latitude:  -26.2,
			Longitude: 28.0,
		},
	}}
	p := New(geo.NewCache(newMemStore()), lookup.Lookup, WithClock(func() time.Time { return testNow }))

	enriched, stats := p.Run(context.Background(), []*model.DeviceRecord{d})

	require.Len(t, enriched, 1)
	assert.Equal(t, "Gauteng", d.String(model.FieldProvince))
	assert.Equal(t, "ZA", d.String(model.FieldCountry))

	assert.Equal(t, 1, stats.CASActivated)
	assert.Equal(t, 1, stats.DevicesInSA)
	assert.Equal(t, 0, stats.DevicesNotInSA)
	assert.Equal(t, 1, stats.DevicesOnline)
	assert.Equal(t, 1, stats.ConnectedLast24h)
	assert.Equal(t, 1, stats.NewConnectedLast24h)
	assert.Equal(t, 1, stats.NewConnectedLast7Days)

	require.Contains(t, stats.Retailers, "R1")
	assert.Equal(t, &model.RetailerCounts{Total: 1, Activated: 1, InSA: 1}, stats.Retailers["R1"])
}

func TestPipelineSecondRunIsIdempotent(t *testing.T) {
	d := device(map[string]any{
		model.FieldLocationIP: "41.0.0.1",
		model.FieldProvince:   "Limpopo",
	})

	store := newMemStore()
	lookup := &countingLookup{records: map[string]*model.GeoRecord{
		"41.0.0.1": gautengRecord("41.0.0.1"),
	}}
	clock := WithClock(func() time.Time { return testNow })

	p := New(geo.NewCache(store), lookup.Lookup, clock)
	_, first := p.Run(context.Background(), []*model.DeviceRecord{d})

	// A fresh pipeline primed from the same store resolves from cache.
	p2 := New(geo.NewCache(store), lookup.Lookup, clock)
	enriched, second := p2.Run(context.Background(), []*model.DeviceRecord{d})

	require.Len(t, enriched, 1)
	assert.Equal(t, 1, lookup.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "Gauteng", d.String(model.FieldProvince))
}
