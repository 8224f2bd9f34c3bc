// Package model defines core data structures for fleetwatch.
package model

import "time"

// NoRetailer is the bucket for devices without a retailer assignment.
const NoRetailer = "No Retailer Added"

// GeoRecord holds the geolocation resolved for one IP address.
type GeoRecord struct {
	IP        string  `json:"ip"`
	Region    string  `json:"region"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Error carries the service's error payload when the lookup
	// succeeded at the HTTP level but returned no usable location.
	// Such records are cached like any other.
	Error string `json:"error,omitempty"`
}

// Valid reports whether the record carries a usable location.
func (g *GeoRecord) Valid() bool {
	return g.Error == ""
}

// DeviceFacts holds the classifications derived from a single device.
type DeviceFacts struct {
	Activated           bool
	Online              bool
	InSA                bool
	SyncedLast24h       bool
	ConnectedLast24h    bool
	ConnectedLast7Days  bool
	ConnectedSinceMonth bool
}

// RetailerCounts holds per-retailer device counters.
type RetailerCounts struct {
	Total     int `json:"total"`
	Activated int `json:"activated"`
	InSA      int `json:"in_sa"`
}

// Stats holds the aggregate fleet statistics for one run.
//
// TotalDevices is fixed at pipeline start to the full input count,
// before any record is filtered out; every other counter only reflects
// devices that survived the identifier and geolocation filters.
type Stats struct {
	TotalDevices                  int `json:"total_devices"`
	CASActivated                  int `json:"cas_activated"`
	DevicesInSA                   int `json:"devices_in_sa"`
	DevicesNotInSA                int `json:"devices_not_in_sa"`
	DevicesOnline                 int `json:"devices_online"`
	ConnectedLast24h              int `json:"connected_last_24h"`
	NewConnectedLast24h           int `json:"new_connected_last_24h"`
	NewConnectedLast7Days         int `json:"new_connected_last_7_days"`
	NewConnectedSinceFirstOfMonth int `json:"new_connected_since_first_of_month"`

	Retailers map[string]*RetailerCounts `json:"retailers"`
}

// RunRecord is a persisted summary of one pipeline run.
type RunRecord struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Stats     Stats     `json:"stats"`
}

// ReportOptions defines options for report generation.
type ReportOptions struct {
	GeneratedAt time.Time `json:"generated_at"`
	OutputPath  string    `json:"output_path"`
}
