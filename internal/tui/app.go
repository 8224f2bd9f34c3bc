// Package tui provides a terminal dashboard over the run history.
package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/fleetwatch/internal/model"
	"github.com/user/fleetwatch/internal/storage"
	"github.com/user/fleetwatch/internal/util"
)

// App is the main TUI application.
type App struct {
	db     *storage.DB
	config *util.Config
}

// NewApp creates a new TUI application.
func NewApp(db *storage.DB, cfg *util.Config) *App {
	return &App{
		db:     db,
		config: cfg,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(newModel(a.db, a.config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// tuiModel is the main bubbletea model.
type tuiModel struct {
	db        *storage.DB
	config    *util.Config
	dashboard *Dashboard
	spinner   spinner.Model
	ready     bool
	width     int
	height    int
	err       error
}

func newModel(db *storage.DB, cfg *util.Config) tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return tuiModel{
		db:      db,
		config:  cfg,
		spinner: s,
	}
}

// Init initializes the model.
func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadData(m.db),
	)
}

// Update handles messages.
func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, loadData(m.db)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.dashboard != nil {
			m.dashboard.SetSize(msg.Width, msg.Height)
		}

	case dataMsg:
		m.ready = true
		m.dashboard = NewDashboard(msg, m.width, m.height)

	case errMsg:
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI.
func (m tuiModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render("Error: " + m.err.Error())
	}

	if !m.ready {
		return LoadingStyle.Render(m.spinner.View() + " Loading...")
	}

	return m.dashboard.View()
}

// Messages
type dataMsg struct {
	Data *DashboardData
}

type errMsg struct {
	err error
}

func loadData(db *storage.DB) tea.Cmd {
	return func() tea.Msg {
		data, err := fetchDashboardData(db)
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{Data: data}
	}
}

func fetchDashboardData(db *storage.DB) (*DashboardData, error) {
	data := &DashboardData{}

	runStorage := storage.NewRunStorage(db)
	latest, err := runStorage.Latest()
	if err != nil {
		return nil, err
	}
	data.LatestRun = latest

	if count, err := runStorage.Count(); err == nil {
		data.RunCount = count
	}

	if count, err := storage.NewGeoStorage(db).Count(); err == nil {
		data.CachedIPs = count
	}

	if latest != nil {
		data.Retailers = sortedRetailers(latest.Stats.Retailers)
	}

	return data, nil
}

func sortedRetailers(breakdown map[string]*model.RetailerCounts) []RetailerInfo {
	rows := make([]RetailerInfo, 0, len(breakdown))
	for name, counts := range breakdown {
		rows = append(rows, RetailerInfo{
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
