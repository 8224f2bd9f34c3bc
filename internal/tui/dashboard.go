package tui

import (
	"fmt"
	"strings"

	"github.com/user/fleetwatch/internal/model"
)

// DashboardData holds data for the dashboard view.
type DashboardData struct {
	LatestRun *model.RunRecord
	RunCount  int
	CachedIPs int
	Retailers []RetailerInfo
}

// RetailerInfo represents retailer counters for display.
type RetailerInfo struct {
	Name      string
	Total     int
	Activated int
	InSA      int
}

// Dashboard is the main dashboard view.
type Dashboard struct {
	data   *DashboardData
	width  int
	height int
}

// NewDashboard creates a new dashboard.
func NewDashboard(msg dataMsg, width, height int) *Dashboard {
	return &Dashboard{
		data:   msg.Data,
		width:  width,
		height: height,
	}
}

// SetSize updates the dashboard size.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	var sb strings.Builder

	// Header
	header := HeaderStyle.Width(d.width).Render("📡 Fleetwatch Dashboard")
	sb.WriteString(header)
	sb.WriteString("\n\n")

	if d.data.LatestRun == nil {
		sb.WriteString(DimStyle.Render("No runs recorded yet. Run 'fleetwatch run' first."))
		sb.WriteString("\n")
		sb.WriteString(HelpStyle.Render("Press 'r' to refresh • 'q' to quit"))
		return sb.String()
	}

	sb.WriteString(d.renderSummarySection())
	sb.WriteString("\n")
	sb.WriteString(d.renderRetailerSection())
	sb.WriteString("\n")
	sb.WriteString(d.renderCacheSection())
	sb.WriteString("\n")

	help := HelpStyle.Render("Press 'r' to refresh • 'q' to quit")
	sb.WriteString(help)

	return sb.String()
}

func (d *Dashboard) sectionWidth() int {
	w := d.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (d *Dashboard) renderSummarySection() string {
	run := d.data.LatestRun
	st := run.Stats

	content := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s\n%s %s\n%s %s\n%s %s",
		LabelStyle.Render("Run at:"),
		ValueStyle.Render(run.Timestamp.Format("2006-01-02 15:04:05")),
		LabelStyle.Render("Devices:"),
		ValueStyle.Render(fmt.Sprintf("%d", st.TotalDevices)),
		LabelStyle.Render("Activated:"),
		ValueStyle.Render(fmt.Sprintf("%d", st.CASActivated)),
		LabelStyle.Render("In SA:"),
		ValueStyle.Render(fmt.Sprintf("%d", st.DevicesInSA)),
		LabelStyle.Render("Online:"),
		ValueStyle.Render(fmt.Sprintf("%d", st.DevicesOnline)),
		LabelStyle.Render("Synced 24h:"),
		ValueStyle.Render(fmt.Sprintf("%d", st.ConnectedLast24h)),
	)

	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("📊 Latest Run") + "\n" + content)
}

func (d *Dashboard) renderRetailerSection() string {
	if len(d.data.Retailers) == 0 {
		content := DimStyle.Render("No retailer data")
		return SectionStyle.Width(d.sectionWidth()).Render(
			SectionTitleStyle.Render("🏪 Retailers") + "\n" + content)
	}

	maxTotal := d.data.Retailers[0].Total

	var rows []string
	rows = append(rows, fmt.Sprintf("%-24s %7s %9s %6s", "Retailer", "Total", "Activated", "In SA"))
	rows = append(rows, strings.Repeat("─", 60))

	maxRows := 10
	if len(d.data.Retailers) < maxRows {
		maxRows = len(d.data.Retailers)
	}

	for i := 0; i < maxRows; i++ {
		r := d.data.Retailers[i]
		name := truncateName(r.Name, 22)
		rows = append(rows, fmt.Sprintf("%-24s %7d %9d %6d  %s",
			name, r.Total, r.Activated, r.InSA, RenderBar(r.Total, maxTotal, 12)))
	}

	if len(d.data.Retailers) > maxRows {
		rows = append(rows, DimStyle.Render(fmt.Sprintf("... and %d more", len(d.data.Retailers)-maxRows)))
	}

	content := strings.Join(rows, "\n")
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("🏪 Retailers") + "\n" + content)
}

func (d *Dashboard) renderCacheSection() string {
	content := fmt.Sprintf(
		"%s %s\n%s %s",
		LabelStyle.Render("Runs:"),
		ValueStyle.Render(fmt.Sprintf("%d", d.data.RunCount)),
		LabelStyle.Render("Cached IPs:"),
		ValueStyle.Render(fmt.Sprintf("%d", d.data.CachedIPs)),
	)

	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("🗺 Geo Cache") + "\n" + content)
}

// truncateName shortens a display name to at most max runes, keeping
// multi-byte names intact.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-3]) + "..."
}
