package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/user/fleetwatch/internal/geo"
	"github.com/user/fleetwatch/internal/model"
	"github.com/user/fleetwatch/internal/util"
)

// Pipeline runs the single forward pass over the device inventory:
// enrich, classify, aggregate, emit.
type Pipeline struct {
	enricher *Enricher
	now      func() time.Time
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a pipeline over the given cache and lookup function.
func New(cache *geo.Cache, fetch geo.LookupFunc, opts ...Option) *Pipeline {
	p := &Pipeline{
		enricher: NewEnricher(cache, fetch),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes devices in input order and returns the enriched
// records plus the aggregate statistics. Records without a device_id
// and devices whose geo lookup failed are skipped and logged; they
// still count toward the total, which is fixed before filtering.
func (p *Pipeline) Run(ctx context.Context, devices []*model.DeviceRecord) ([]*model.DeviceRecord, *model.Stats) {
	agg := NewAggregator(len(devices))
	now := p.now()

	enriched := make([]*model.DeviceRecord, 0, len(devices))

	for _, device := range devices {
		if device.ID() == "" {
			util.Warn("Skipping device with missing ID")
			continue
		}

		if err := p.enricher.Enrich(ctx, device); err != nil {
			if errors.Is(err, geo.ErrLookupFailed) {
				util.Error("%v", err)
				continue
			}
			util.Error("Enrichment failed for %s: %v", device.ID(), err)
			continue
		}

		facts := Classify(device, now)
		agg.Fold(device, facts)
		enriched = append(enriched, device)
	}

	return enriched, agg.Finalize()
}
