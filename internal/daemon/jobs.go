package daemon

import (
	"context"

	"github.com/user/fleetwatch/internal/fleet"
	"github.com/user/fleetwatch/internal/util"
)

// registerJobs registers the scheduled jobs with the scheduler.
func (d *Daemon) registerJobs() {
	d.scheduler.AddJob(&Job{
		Name:     "fleet_sync",
		Interval: d.config.SyncInterval,
		Run:      d.runFleetSync,
	})
}

func (d *Daemon) runFleetSync(ctx context.Context) error {
	syncer := fleet.NewSyncer(d.config, d.db)

	run, err := syncer.Sync(ctx)
	if err != nil {
		return err
	}

	if run == nil {
		util.Info("Fleet sync finished: empty inventory")
		return nil
	}

	util.Info("Fleet sync finished: %d devices, %d activated, %d in SA",
		run.Stats.TotalDevices, run.Stats.CASActivated, run.Stats.DevicesInSA)

	lastSync := run.Timestamp.Format("2006-01-02 15:04:05")
	if err := WriteStatusFile(d.config.DataDir, d.GetStatus(), lastSync); err != nil {
		util.Warn("Failed to write status file: %v", err)
	}

	return nil
}
