package storage

import (
	"fmt"

	"github.com/user/fleetwatch/internal/model"
)

// GeoStorage handles the durable IP geolocation cache.
type GeoStorage struct {
	db *DB
}

// NewGeoStorage creates a new geo cache storage handler.
func NewGeoStorage(db *DB) *GeoStorage {
	return &GeoStorage{db: db}
}

// Load returns the full cached mapping of IP to geolocation record.
func (s *GeoStorage) Load() (map[string]*model.GeoRecord, error) {
	query := `SELECT ip, region, city, country, latitude, longitude, error
			  FROM geo_cache`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query geo cache: %w", err)
	}
	defer rows.Close()

	cache := make(map[string]*model.GeoRecord)
	for rows.Next() {
		var rec model.GeoRecord
		if err := rows.Scan(
			&rec.IP, &rec.Region, &rec.City, &rec.Country,
			&rec.Latitude, &rec.Longitude, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan geo record: %w", err)
		}
		cache[rec.IP] = &rec
	}

	return cache, rows.Err()
}

// Put upserts one resolved record. Called write-through after every
// new resolution.
func (s *GeoStorage) Put(rec *model.GeoRecord) error {
	query := `INSERT INTO geo_cache (ip, region, city, country, latitude, longitude, error)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(ip) DO UPDATE SET
				region = excluded.region,
				city = excluded.city,
				country = excluded.country,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				error = excluded.error`

	_, err := s.db.Exec(query,
		rec.IP, rec.Region, rec.City, rec.Country,
		rec.Latitude, rec.Longitude, rec.Error)
	if err != nil {
		return fmt.Errorf("failed to upsert geo record: %w", err)
	}

	return nil
}

// SaveAll persists the full mapping.
func (s *GeoStorage) SaveAll(cache map[string]*model.GeoRecord) error {
	return s.db.WithLock(func() error {
		for _, rec := range cache {
			if err := s.Put(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of cached IPs.
func (s *GeoStorage) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM geo_cache").Scan(&count)
	return count, err
}

// Clear removes every cached entry. The only sanctioned invalidation.
func (s *GeoStorage) Clear() error {
	_, err := s.db.Exec("DELETE FROM geo_cache")
	return err
}
