package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/fleetwatch/internal/report"
	"github.com/user/fleetwatch/internal/storage"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an HTML report from the latest run",
	Long: `Generate the fleet statistics HTML report from the most recent
recorded sync, without contacting the inventory API.

Examples:
  fleetwatch report
  fleetwatch report --output ./fleet.html`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"Output file path (default: auto-generated in the report directory)")
}

func runReport(cmd *cobra.Command, args []string) error {
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	latest, err := storage.NewRunStorage(db).Latest()
	if err != nil {
		return fmt.Errorf("failed to load latest run: %w", err)
	}
	if latest == nil {
		fmt.Println("No runs recorded yet. Run 'fleetwatch run' first.")
		return nil
	}

	gen := report.NewGenerator(cfg)

	if reportOutput != "" {
		html, err := gen.Render(&latest.Stats)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		if err := os.WriteFile(reportOutput, []byte(html), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", reportOutput)
		return nil
	}

	path, err := gen.WriteFile(&latest.Stats)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("Report written to %s\n", path)
	fmt.Printf("Run recorded at %s, %d devices\n",
		latest.Timestamp.Format("2006-01-02 15:04:05"),
		latest.Stats.TotalDevices)

	return nil
}
