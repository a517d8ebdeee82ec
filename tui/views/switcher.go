package views

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/tui/keys"
	"github.com/tonhe/mikrochart/tui/styles"
)

// SwitcherAction describes what the app should do after a switcher key press.
type SwitcherAction int

const (
	// ActionNone means no action needed.
	ActionNone SwitcherAction = iota
	// ActionClose means the user wants to dismiss the switcher.
	ActionClose
	// ActionSwitch means the user selected a dashboard to switch to.
	ActionSwitch
	// ActionStop means the user wants to stop the selected engine.
	ActionStop
)

// SwitcherItem represents a single dashboard entry in the switcher list.
// Name is the dashboard's own name, which may differ from its file name.
type SwitcherItem struct {
	Name     string
	FilePath string
	Devices  int
	Interval time.Duration
	LoadErr  error
	Running  bool
	Info     engine.EngineInfo
}

// SwitcherView is a modal overlay that lists dashboards and lets the user
// switch between them or stop running engines.
type SwitcherView struct {
	theme  styles.Theme
	sty    *styles.Styles
	items  []SwitcherItem
	cursor int
	width  int
	height int
}

// NewSwitcherView creates a new SwitcherView with the given theme.
func NewSwitcherView(theme styles.Theme) SwitcherView {
	return SwitcherView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// Refresh scans the dashboards directory, reads each file for its device
// count and interval, and marks the dashboards whose engines are running.
func (v *SwitcherView) Refresh(dashDir string, mgr *engine.Manager) {
	v.items = nil

	files, err := dashboard.ListDashboards(dashDir)
	if err != nil {
		return
	}

	running := make(map[string]engine.EngineInfo)
	for _, info := range mgr.ListEngines() {
		running[info.Name] = info
	}

	for _, file := range files {
		item := SwitcherItem{
			Name:     file,
			FilePath: filepath.Join(dashDir, file+".toml"),
		}
		if dash, err := dashboard.LoadDashboard(item.FilePath); err != nil {
			item.LoadErr = err
		} else {
			item.Name = dash.Name
			item.Devices = len(dash.Devices())
			item.Interval = dash.Interval
		}
		if info, ok := running[item.Name]; ok {
			item.Running = true
			item.Info = info
		}
		v.items = append(v.items, item)
	}

	v.cursor = max(min(v.cursor, len(v.items)-1), 0)
}

// SetTheme restyles the view.
func (v *SwitcherView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetSize updates the available dimensions for the overlay.
func (v *SwitcherView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SelectedItem returns the currently highlighted item, or nil if the list is
// empty.
func (v *SwitcherView) SelectedItem() *SwitcherItem {
	if len(v.items) == 0 {
		return nil
	}
	return &v.items[v.cursor]
}

// Update handles key messages for the switcher overlay.
func (v SwitcherView) Update(msg tea.Msg) (SwitcherView, tea.Cmd, SwitcherAction) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Escape):
			return v, nil, ActionClose

		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil, ActionNone

		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.cursor < len(v.items)-1 {
				v.cursor++
			}
			return v, nil, ActionNone

		case key.Matches(msg, keys.DefaultKeyMap.Enter):
			if len(v.items) > 0 {
				return v, nil, ActionSwitch
			}
			return v, nil, ActionNone

		case key.Matches(msg, keys.DefaultKeyMap.Stop):
			if len(v.items) > 0 && v.items[v.cursor].Running {
				return v, nil, ActionStop
			}
			return v, nil, ActionNone
		}
	}
	return v, nil, ActionNone
}

// View renders the switcher as a centered modal box.
func (v SwitcherView) View() string {
	innerWidth := modalWidth(v.width, 30, 64) - 6

	var lines []string
	if len(v.items) == 0 {
		dim := lipgloss.NewStyle().Foreground(v.theme.Base04)
		lines = append(lines,
			dim.Render("No dashboards found."),
			"",
			dim.Render("Add a .toml file to the dashboards directory."))
	}
	for i, item := range v.items {
		lines = append(lines, v.renderItem(item, i == v.cursor, innerWidth))
	}

	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	helpKey := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	help := fmt.Sprintf("%s:switch  %s:stop  %s:close",
		helpKey.Render("enter"), helpKey.Render("x"), helpKey.Render("esc"))

	content := lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n"), "", helpStyle.Render(help))
	return renderModal(v.theme, v.sty, "Dashboards", content, innerWidth, v.width, v.height)
}

// renderItem renders one dashboard line: cursor, name, then a right-aligned
// status of either the running engine or what the file describes.
func (v SwitcherView) renderItem(item SwitcherItem, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	nameStyle := lipgloss.NewStyle().Foreground(v.theme.Base05)
	if selected {
		nameStyle = nameStyle.Foreground(v.theme.Base06).Bold(true)
	}
	dim := lipgloss.NewStyle().Foreground(v.theme.Base04)

	var status, plain string
	switch {
	case item.LoadErr != nil:
		plain = "! invalid file"
		status = v.sty.StatusDown.Render(plain)
	case item.Running:
		polls := fmt.Sprintf("(%d polls, %d err)", item.Info.PollCount, item.Info.ErrorCount)
		plain = "* LIVE  " + polls
		status = v.sty.StatusUp.Render("* LIVE") + "  " + dim.Render(polls)
	default:
		desc := fmt.Sprintf("%d devices, every %s", item.Devices, item.Interval)
		plain = "o " + desc
		status = lipgloss.NewStyle().Foreground(v.theme.Base03).Render("o") + " " + dim.Render(desc)
	}

	pad := max(width-len(cursor)-len(item.Name)-len(plain), 2)
	return lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true).Render(cursor) +
		nameStyle.Render(item.Name) + strings.Repeat(" ", pad) + status
}
