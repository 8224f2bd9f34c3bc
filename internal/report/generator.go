// Package report renders fleet statistics as an HTML report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/user/fleetwatch/internal/model"
	"github.com/user/fleetwatch/internal/util"
)

// Generator creates fleet reports.
type Generator struct {
	config *util.Config
}

// NewGenerator creates a new report generator.
func NewGenerator(cfg *util.Config) *Generator {
	return &Generator{config: cfg}
}

// RetailerRow is one line of the per-retailer table.
type RetailerRow struct {
	Name      string
	Total     int
	Activated int
	InSA      int
}

// reportData is the template input.
type reportData struct {
	GeneratedAt time.Time
	Stats       *model.Stats
	Retailers   []RetailerRow
}

// Render produces the HTML report for one run's statistics.
func (g *Generator) Render(stats *model.Stats) (string, error) {
	data := reportData{
		GeneratedAt: time.Now(),
		Stats:       stats,
		Retailers:   retailerRows(stats),
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return sb.String(), nil
}

// WriteFile renders the report and writes it to the report directory,
// returning the output path.
func (g *Generator) WriteFile(stats *model.Stats) (string, error) {
	content, err := g.Render(stats)
	if err != nil {
		return "", err
	}

	if err := util.EnsureDir(g.config.ReportDir); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	name := fmt.Sprintf("fleet_report_%s.html", time.Now().Format("2006-01-02_150405"))
	path := filepath.Join(g.config.ReportDir, name)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// retailerRows flattens the breakdown map into a stable order, largest
// fleet first.
func retailerRows(stats *model.Stats) []RetailerRow {
	rows := make([]RetailerRow, 0, len(stats.Retailers))
	for name, counts := range stats.Retailers {
		rows = append(rows, RetailerRow{
			Name:      name,
			Total:     counts.Total,
			Activated: counts.Activated,
			InSA:      counts.InSA,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Name < rows[j].Name
	})

	return rows
}
