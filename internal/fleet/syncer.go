// Package fleet orchestrates a full inventory sync: fetch, enrich,
// aggregate, export, report, deliver.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/user/fleetwatch/internal/export"
	"github.com/user/fleetwatch/internal/geo"
	"github.com/user/fleetwatch/internal/krms"
	"github.com/user/fleetwatch/internal/mailer"
	"github.com/user/fleetwatch/internal/model"
	"github.com/user/fleetwatch/internal/pipeline"
	"github.com/user/fleetwatch/internal/report"
	"github.com/user/fleetwatch/internal/storage"
	"github.com/user/fleetwatch/internal/util"
)

// Syncer executes complete sync runs against the configured inventory.
type Syncer struct {
	config *util.Config
	db     *storage.DB
}

// NewSyncer creates a syncer over the given database.
func NewSyncer(cfg *util.Config, db *storage.DB) *Syncer {
	return &Syncer{config: cfg, db: db}
}

// Sync performs one full run. Upstream fetch failures abort the run;
// per-device problems are logged and skipped inside the pipeline.
// A nil run record with nil error means the inventory was empty.
func (s *Syncer) Sync(ctx context.Context) (*model.RunRecord, error) {
	cfg := s.config

	client := krms.NewClient(cfg.APIBaseURL, cfg.APIUsername, cfg.APIPassword, cfg.APIClientKey)
	if err := client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if _, err := client.Profile(ctx); err != nil {
		return nil, err
	}
	util.Info("Profile data received")

	if _, err := client.User(ctx); err != nil {
		return nil, err
	}
	util.Info("User data received")

	devices, err := client.Devices(ctx, cfg.Page, cfg.Limit, cfg.Orders)
	if err != nil {
		return nil, err
	}
	util.Info("Devices data received: %d records", len(devices))

	if len(devices) == 0 {
		util.Info("No devices data found")
		return nil, nil
	}

	geoStore := storage.NewGeoStorage(s.db)
	cache := geo.NewCache(geoStore)
	lookup := geo.NewClient(cfg.GeoBaseURL, cfg.GeoToken)

	enriched, stats := pipeline.New(cache, lookup.Lookup).Run(ctx, devices)
	util.Info("Pipeline complete: %d/%d devices enriched, %d IPs cached",
		len(enriched), stats.TotalDevices, cache.Len())

	// Entries were written through as they resolved; persisting the
	// full snapshot catches anything a failed Put left behind.
	if err := geoStore.SaveAll(cache.Snapshot()); err != nil {
		util.Warn("Failed to save geo cache: %v", err)
	}

	if err := export.WriteCSV(cfg.CSVOutputFile, enriched); err != nil {
		return nil, err
	}
	if err := export.WriteXLSX(cfg.XLSXOutputFile, enriched); err != nil {
		return nil, err
	}
	util.Info("Data exported to %s and %s", cfg.CSVOutputFile, cfg.XLSXOutputFile)

	gen := report.NewGenerator(cfg)
	content, err := gen.Render(stats)
	if err != nil {
		return nil, err
	}
	reportPath, err := gen.WriteFile(stats)
	if err != nil {
		return nil, err
	}
	util.Info("Report saved to %s", reportPath)

	run := &model.RunRecord{
		Timestamp: time.Now(),
		Stats:     *stats,
	}
	if err := storage.NewRunStorage(s.db).SaveRun(run); err != nil {
		util.Warn("Failed to save run history: %v", err)
	}

	if cfg.SendEmail {
		if err := mailer.New(cfg).Send(content, cfg.XLSXOutputFile); err != nil {
			util.Error("Failed to send report email: %v", err)
		}
	}

	return run, nil
}
