package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/internal/config"
	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/tonhe/mikrochart/tui/components"
	"github.com/tonhe/mikrochart/tui/keys"
	"github.com/tonhe/mikrochart/tui/styles"
	"github.com/tonhe/mikrochart/tui/views"
)

// AppState represents the current screen/view of the application.
type AppState int

const (
	StateDashboard AppState = iota
	StateSwitcher
	StateDetail
)

// TickMsg triggers a periodic UI refresh to pick up new poll data.
type TickMsg struct{}

// AppModel is the root Bubble Tea model that manages all views and state.
type AppModel struct {
	state      AppState
	theme      styles.Theme
	themeSlug  string
	config     *config.Config
	manager    *engine.Manager
	dashDir    string
	version    string
	dashboard  views.DashboardView
	detail     views.DetailView
	switcher   views.SwitcherView
	help       views.HelpView
	field      int
	width      int
	height     int
	activeDash string
	message    string
}

// NewAppModel creates a new AppModel. activeDash names a dashboard already
// started on mgr, or is empty to open on the switcher.
func NewAppModel(cfg *config.Config, mgr *engine.Manager, dashDir, activeDash, version string) AppModel {
	theme := styles.DefaultTheme
	if t := styles.GetThemeByName(cfg.Theme); t != nil {
		theme = *t
	}
	m := AppModel{
		state:      StateDashboard,
		theme:      theme,
		themeSlug:  cfg.Theme,
		config:     cfg,
		manager:    mgr,
		dashDir:    dashDir,
		version:    version,
		dashboard:  views.NewDashboardView(theme),
		detail:     views.NewDetailView(theme),
		switcher:   views.NewSwitcherView(theme),
		help:       views.NewHelpView(theme),
		activeDash: activeDash,
	}
	if activeDash == "" {
		m.openSwitcher()
	}
	m.refreshSnapshot()
	return m
}

// Init returns the initial command to start the tick loop.
func (m AppModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m AppModel) currentField() history.Field {
	return history.Fields[m.field]
}

func (m *AppModel) openSwitcher() {
	m.switcher.Refresh(m.dashDir, m.manager)
	m.state = StateSwitcher
}

// refreshSnapshot pulls the latest snapshot into the dashboard and detail views.
func (m *AppModel) refreshSnapshot() {
	snap := m.activeSnapshot()
	m.dashboard.SetSnapshot(snap)
	if snap == nil {
		return
	}
	if id := m.detail.DeviceID(); id != "" {
		if d, ok := snap.Device(id); ok {
			m.detail.SetDevice(&d)
		}
	}
}

// setTheme restyles every view for this session. The config file is not
// touched; "mikrochart config theme" persists a choice.
func (m *AppModel) setTheme(slug string) {
	t := styles.GetThemeByName(slug)
	if t == nil {
		return
	}
	m.theme = *t
	m.themeSlug = slug
	m.dashboard.SetTheme(*t)
	m.detail.SetTheme(*t)
	m.switcher.SetTheme(*t)
	m.help.SetTheme(*t)
}

// switchTo starts the selected dashboard if needed and makes it active.
func (m *AppModel) switchTo(item views.SwitcherItem) {
	name := item.Name
	if !item.Running {
		dash, err := dashboard.LoadDashboard(item.FilePath)
		if err != nil {
			m.message = fmt.Sprintf("load %s: %v", item.Name, err)
			return
		}
		m.config.FillDashboard(dash)
		if err := m.manager.Start(dash); err != nil {
			m.message = err.Error()
			return
		}
		name = dash.Name
	}
	m.activeDash = name
	m.message = ""
	m.state = StateDashboard
	m.refreshSnapshot()
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Body height = total - 1 (header) - 2 (status bar lines)
		m.dashboard.SetSize(msg.Width, msg.Height-3)
		m.detail.SetSize(msg.Width, msg.Height-3)
		m.switcher.SetSize(msg.Width, msg.Height-3)
		m.help.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case TickMsg:
		m.refreshSnapshot()
		return m, tickCmd()

	case tea.KeyMsg:
		// Global key bindings
		switch {
		case msg.String() == "ctrl+c":
			m.manager.StopAll()
			return m, tea.Quit
		case key.Matches(msg, keys.DefaultKeyMap.Help):
			m.help.Toggle()
			return m, nil
		case key.Matches(msg, keys.DefaultKeyMap.Theme):
			m.setTheme(styles.NextTheme(m.themeSlug))
			return m, nil
		}
		if m.help.IsVisible() {
			if key.Matches(msg, keys.DefaultKeyMap.Escape) {
				m.help.Toggle()
			}
			return m, nil
		}

		switch m.state {
		case StateDashboard:
			return m.updateDashboard(msg)
		case StateDetail:
			if key.Matches(msg, keys.DefaultKeyMap.Refresh) {
				_ = m.manager.Refresh(m.activeDash)
				return m, nil
			}
			var back bool
			m.detail, _, back = m.detail.Update(msg)
			if back {
				m.detail.SetDevice(nil)
				m.state = StateDashboard
			}
			return m, nil
		case StateSwitcher:
			var action views.SwitcherAction
			m.switcher, _, action = m.switcher.Update(msg)
			switch action {
			case views.ActionClose:
				m.state = StateDashboard
			case views.ActionSwitch:
				if item := m.switcher.SelectedItem(); item != nil {
					m.switchTo(*item)
				}
			case views.ActionStop:
				if item := m.switcher.SelectedItem(); item != nil {
					_ = m.manager.Stop(item.Name)
					if item.Name == m.activeDash {
						m.activeDash = ""
						m.refreshSnapshot()
					}
					m.switcher.Refresh(m.dashDir, m.manager)
				}
			}
			return m, nil
		}
	}
	return m, nil
}

func (m AppModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap
	switch {
	case key.Matches(msg, km.Quit):
		m.manager.StopAll()
		return m, tea.Quit
	case key.Matches(msg, km.Dashboard):
		m.openSwitcher()
		return m, nil
	case key.Matches(msg, km.Refresh):
		if m.activeDash != "" {
			_ = m.manager.Refresh(m.activeDash)
		}
		return m, nil
	case key.Matches(msg, km.Right), key.Matches(msg, km.Tab):
		m.field = (m.field + 1) % len(history.Fields)
		m.dashboard.SetField(m.currentField())
		return m, nil
	case key.Matches(msg, km.Left):
		m.field = (m.field + len(history.Fields) - 1) % len(history.Fields)
		m.dashboard.SetField(m.currentField())
		return m, nil
	case key.Matches(msg, km.Enter):
		if d, ok := m.dashboard.SelectedDevice(); ok {
			m.detail.SetDevice(&d)
			m.state = StateDetail
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(msg)
	return m, cmd
}

// View renders the full application UI by composing header, body, and status.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	snap := m.activeSnapshot()
	up, total := deviceHealth(snap)
	header := components.RenderHeader(m.theme, components.HeaderInfo{
		Dashboard: m.activeDash,
		Live:      snap != nil,
		Engines:   len(m.manager.ListEngines()),
		DevicesUp: up,
		Devices:   total,
		Version:   m.version,
	}, m.width)

	var body string
	switch {
	case m.help.IsVisible():
		body = m.help.View()
	case m.state == StateSwitcher:
		body = m.switcher.View()
	case m.state == StateDetail:
		body = m.detail.View()
	default:
		body = m.dashboard.View()
	}
	if m.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(m.theme.Base08)
		body = lipgloss.JoinVertical(lipgloss.Left, msgStyle.Render(" "+m.message), body)
	}

	status := components.StatusInfo{Field: m.currentField().Label()}
	if snap != nil {
		status.Interval = snap.Interval
		status.LastPoll = snap.LastPoll
		status.PollCount = snap.PollCount
		status.ErrorCount = snap.ErrorCount
	}
	statusBar := components.RenderStatusBar(m.theme, status, m.width)

	// Fill body to the available height between header and status bar
	bodyHeight := m.height - 1 - 2 // 1 header line, 2 status bar lines
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	bodyStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		Background(m.theme.Base00).
		Foreground(m.theme.Base05)

	return lipgloss.JoinVertical(lipgloss.Left, header, bodyStyle.Render(body), statusBar)
}

func (m AppModel) activeSnapshot() *engine.DashboardSnapshot {
	if m.activeDash == "" {
		return nil
	}
	snap, err := m.manager.GetSnapshot(m.activeDash)
	if err != nil {
		return nil
	}
	return snap
}

// deviceHealth counts devices whose last poll succeeded, and all devices.
func deviceHealth(snap *engine.DashboardSnapshot) (up, total int) {
	if snap == nil {
		return 0, 0
	}
	for _, g := range snap.Groups {
		for _, d := range g.Devices {
			total++
			if d.PollError == nil {
				up++
			}
		}
	}
	return up, total
}
