package geo

import "errors"

// ErrLookupFailed marks a geolocation fetch that failed outright. The
// owning device is skipped for the run; the pipeline continues.
var ErrLookupFailed = errors.New("geo lookup failed")
