package pipeline

import "github.com/user/fleetwatch/internal/model"

// Aggregator folds per-device facts into the running fleet statistics.
type Aggregator struct {
	stats *model.Stats
}

// NewAggregator initializes the counters. totalInput is the full input
// record count, taken before any filtering.
func NewAggregator(totalInput int) *Aggregator {
	return &Aggregator{
		stats: &model.Stats{
			TotalDevices: totalInput,
			Retailers:    make(map[string]*model.RetailerCounts),
		},
	}
}

// Fold adds one surviving device to the counters.
func (a *Aggregator) Fold(device *model.DeviceRecord, facts model.DeviceFacts) {
	st := a.stats

	if facts.Activated {
		st.CASActivated++
	}
	if facts.InSA {
		st.DevicesInSA++
	}
	if facts.Online {
		st.DevicesOnline++
	}
	if facts.SyncedLast24h {
		st.ConnectedLast24h++
	}
	if facts.ConnectedLast24h {
		st.NewConnectedLast24h++
	}
	if facts.ConnectedLast7Days {
		st.NewConnectedLast7Days++
	}
	if facts.ConnectedSinceMonth {
		st.NewConnectedSinceFirstOfMonth++
	}

	retailer := device.Retailer()
	counts, ok := st.Retailers[retailer]
	if !ok {
		counts = &model.RetailerCounts{}
		st.Retailers[retailer] = counts
	}
	counts.Total++
	if facts.Activated {
		counts.Activated++
	}
	if facts.InSA {
		counts.InSA++
	}
}

// Finalize computes the derived counter and returns the stats. The
// devices-not-in-SA figure is the literal difference of the activation
// and in-SA counters, and can go negative; this mirrors the upstream
// report's definition.
func (a *Aggregator) Finalize() *model.Stats {
	a.stats.DevicesNotInSA = a.stats.CASActivated - a.stats.DevicesInSA
	return a.stats
}

// Stats returns the counters accumulated so far.
func (a *Aggregator) Stats() *model.Stats {
	return a.stats
}
