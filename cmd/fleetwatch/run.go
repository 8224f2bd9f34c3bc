package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/user/fleetwatch/internal/fleet"
	"github.com/user/fleetwatch/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full inventory sync",
	Long: `Fetch the device inventory, enrich it with IP geolocation,
compute fleet statistics, export CSV/XLSX, and write the HTML report.

Examples:
  fleetwatch run
  fleetwatch run --log-level debug`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Println("Starting fleet sync...")

	run, err := fleet.NewSyncer(cfg, db).Sync(context.Background())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if run == nil {
		fmt.Println("No devices found in inventory")
		return nil
	}

	st := run.Stats

	fmt.Println()
	fmt.Println("Sync Summary:")
	fmt.Printf("  Total devices:        %d\n", st.TotalDevices)
	fmt.Printf("  CAS activated:        %d\n", st.CASActivated)
	fmt.Printf("  In South Africa:      %d\n", st.DevicesInSA)
	fmt.Printf("  Not in South Africa:  %d\n", st.DevicesNotInSA)
	fmt.Printf("  Online:               %d\n", st.DevicesOnline)
	fmt.Printf("  Synced last 24h:      %d\n", st.ConnectedLast24h)
	fmt.Printf("  New last 24h:         %d\n", st.NewConnectedLast24h)
	fmt.Printf("  New last 7 days:      %d\n", st.NewConnectedLast7Days)
	fmt.Printf("  New since 1st:        %d\n", st.NewConnectedSinceFirstOfMonth)

	if len(st.Retailers) > 0 {
		fmt.Println()
		fmt.Println("Retailers:")

		names := make([]string, 0, len(st.Retailers))
		for name := range st.Retailers {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			c := st.Retailers[name]
			fmt.Printf("  %-32s total=%d activated=%d in_sa=%d\n",
				name, c.Total, c.Activated, c.InSA)
		}
	}

	return nil
}
