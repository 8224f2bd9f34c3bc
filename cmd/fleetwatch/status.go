package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/fleetwatch/internal/daemon"
	"github.com/user/fleetwatch/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long:  "Show the current status of the fleetwatch daemon and the latest sync results.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86"))

	runningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	stoppedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	// Check daemon status
	running, pid := daemon.CheckRunning(cfg.DataDir)

	fmt.Println(titleStyle.Render("Fleetwatch Status"))
	fmt.Println()

	// Daemon status
	fmt.Print(labelStyle.Render("Daemon: "))
	if running {
		fmt.Println(runningStyle.Render(fmt.Sprintf("Running (PID %d)", pid)))
	} else {
		fmt.Println(stoppedStyle.Render("Stopped"))
	}

	// Try to read status file for more details
	if sf, err := daemon.ReadStatusFile(cfg.DataDir); err == nil {
		fmt.Print(labelStyle.Render("Started: "))
		fmt.Println(valueStyle.Render(sf.StartTime))

		fmt.Print(labelStyle.Render("Uptime: "))
		fmt.Println(valueStyle.Render(sf.Uptime))

		if sf.LastSync != "" {
			fmt.Print(labelStyle.Render("Last sync: "))
			fmt.Println(valueStyle.Render(sf.LastSync))
		}

		if len(sf.Jobs) > 0 {
			fmt.Println()
			fmt.Println(titleStyle.Render("Jobs"))

			for _, job := range sf.Jobs {
				statusStr := "idle"
				if job.Running {
					statusStr = "running"
				}
				fmt.Printf("  %s: %s (last: %s, errors: %d)\n",
					labelStyle.Render(job.Name),
					valueStyle.Render(statusStr),
					job.LastRun.Format("15:04:05"),
					job.ErrorCount)
			}
		}
	}

	// Get database stats
	db, err := storage.Initialize(cfg.DataDir)
	if err == nil {
		fmt.Println()
		fmt.Println(titleStyle.Render("Database Stats"))

		runStorage := storage.NewRunStorage(db)
		if count, err := runStorage.Count(); err == nil {
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Recorded runs:"),
				valueStyle.Render(fmt.Sprintf("%d", count)))
		}

		geoStorage := storage.NewGeoStorage(db)
		if count, err := geoStorage.Count(); err == nil {
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Cached IPs:"),
				valueStyle.Render(fmt.Sprintf("%d", count)))
		}

		// Show latest run
		if latest, err := runStorage.Latest(); err == nil && latest != nil {
			fmt.Println()
			fmt.Println(titleStyle.Render("Latest Run"))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Time:"),
				valueStyle.Render(latest.Timestamp.Format("2006-01-02 15:04:05")))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Total devices:"),
				valueStyle.Render(fmt.Sprintf("%d", latest.Stats.TotalDevices)))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("CAS activated:"),
				valueStyle.Render(fmt.Sprintf("%d", latest.Stats.CASActivated)))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("In South Africa:"),
				valueStyle.Render(fmt.Sprintf("%d", latest.Stats.DevicesInSA)))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Online:"),
				valueStyle.Render(fmt.Sprintf("%d", latest.Stats.DevicesOnline)))
		}
	}

	return nil
}
