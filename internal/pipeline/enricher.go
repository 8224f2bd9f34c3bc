// Package pipeline implements the enrichment-and-aggregation pass over
// the device inventory.
package pipeline

import (
	"context"

	"github.com/user/fleetwatch/internal/geo"
	"github.com/user/fleetwatch/internal/model"
)

// Enricher reconciles a device's self-reported location against the
// geolocation resolved from its IP.
type Enricher struct {
	cache *geo.Cache
	fetch geo.LookupFunc
}

// NewEnricher creates an enricher backed by the given cache and lookup.
func NewEnricher(cache *geo.Cache, fetch geo.LookupFunc) *Enricher {
	return &Enricher{cache: cache, fetch: fetch}
}

// Enrich updates the device's location fields in place. Devices without
// an IP are returned unchanged. A geo.ErrLookupFailed result means the
// device must be dropped from the run entirely.
//
// When the resolved record disagrees with the device on any of
// province, city, latitude, longitude or country, all five fields are
// overwritten together; partial overwrite is not permitted.
func (e *Enricher) Enrich(ctx context.Context, device *model.DeviceRecord) error {
	ip := device.LocationIP()
	if ip == "" {
		return nil
	}

	rec, err := e.cache.GetOrFetch(ctx, ip, e.fetch)
	if err != nil {
		return err
	}

	// Service-level error payloads leave the device untouched.
	if !rec.Valid() {
		return nil
	}

	if locationMatches(device, rec) {
		return nil
	}

	device.Set(model.FieldProvince, rec.Region)
	device.Set(model.FieldCity, rec.City)
	device.Set(model.FieldLatitude, rec.Latitude)
	device.Set(model.FieldLongitude, rec.Longitude)
	device.Set(model.FieldCountry, rec.Country)

	return nil
}

func locationMatches(device *model.DeviceRecord, rec *model.GeoRecord) bool {
	if device.String(model.FieldProvince) != rec.Region ||
		device.String(model.FieldCity) != rec.City ||
		device.String(model.FieldCountry) != rec.Country {
		return false
	}

	lat, ok := device.Float(model.FieldLatitude)
	if !ok || lat != rec.Latitude {
		return false
	}
	lon, ok := device.Float(model.FieldLongitude)
	if !ok || lon != rec.Longitude {
		return false
	}

	return true
}
