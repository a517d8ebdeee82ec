package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/internal/history"
	"github.com/tonhe/mikrochart/tui/components"
	"github.com/tonhe/mikrochart/tui/keys"
	"github.com/tonhe/mikrochart/tui/styles"
)

// infoPanelHeight is the number of lines renderInfoPanel produces.
const infoPanelHeight = 9

// DetailView is a split-screen view showing device information at the top
// and a chart per field at the bottom.
type DetailView struct {
	theme  styles.Theme
	sty    *styles.Styles
	device *engine.DeviceStats
	width  int
	height int
}

// NewDetailView creates a new DetailView with the given theme.
func NewDetailView(theme styles.Theme) DetailView {
	return DetailView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetDevice updates the detail view with new device data.
func (v *DetailView) SetDevice(d *engine.DeviceStats) {
	v.device = d
}

// DeviceID returns the ID of the device on display, or "".
func (v DetailView) DeviceID() string {
	if v.device == nil {
		return ""
	}
	return v.device.ID
}

// SetTheme restyles the view.
func (v *DetailView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetSize updates the available dimensions for the view.
func (v *DetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles key messages for the detail view. The third return value
// indicates whether the user wants to go back (Esc pressed).
func (v DetailView) Update(msg tea.Msg) (DetailView, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Escape):
			return v, nil, true
		}
	}
	return v, nil, false
}

// View renders the detail view with an info panel and four charts.
func (v DetailView) View() string {
	if v.device == nil {
		return v.renderEmpty()
	}
	return v.renderDetail()
}

func (v DetailView) renderEmpty() string {
	msg := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center).
		Render("No device selected")
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
}

func (v DetailView) renderDetail() string {
	d := v.device
	infoPanel := v.renderInfoPanel(d)

	// Two rows of two charts below the panel, a blank line, and the help line.
	chartHeight := (v.height - infoPanelHeight - 2) / 2
	if chartHeight < 5 {
		chartHeight = 5
	}
	chartWidth := (v.width - 3) / 2
	if chartWidth < 15 {
		chartWidth = 15
	}

	charts := make([]string, 0, len(history.Fields))
	for _, f := range history.Fields {
		out := components.RenderChart(d.Series(f), chartWidth, chartHeight, f.Label(), f.Format)
		charts = append(charts, lipgloss.NewStyle().Foreground(v.theme.FieldColor(f)).Render(out))
	}

	sep := lipgloss.NewStyle().
		Foreground(v.theme.Base03).
		Render(strings.TrimSuffix(strings.Repeat(" | \n", chartHeight), "\n"))
	top := lipgloss.JoinHorizontal(lipgloss.Top, charts[0], sep, charts[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, charts[2], sep, charts[3])

	return lipgloss.JoinVertical(lipgloss.Left, infoPanel, top, bottom, "", v.renderHelp())
}

// renderInfoPanel renders the device information section at the top.
func (v DetailView) renderInfoPanel(d *engine.DeviceStats) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Width(14)
	valueStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base05)
	highlightStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	status := v.sty.StatusUp.Render("ok")
	switch {
	case d.PollError != nil:
		status = v.sty.StatusDown.Render(d.PollError.Error())
	case !d.HasSample:
		status = v.sty.StatusWarn.Render("waiting for first poll")
	}

	lastPoll := "never"
	if !d.LastPoll.IsZero() {
		lastPoll = d.LastPoll.Format("2006-01-02 15:04:05")
	}

	current := "-"
	if d.HasSample {
		parts := make([]string, 0, len(history.Fields))
		for _, f := range history.Fields {
			val := d.Latest.Value(f)
			style := valueStyle
			if f != history.FieldUsers {
				style = v.sty.Usage(val)
			}
			parts = append(parts, fmt.Sprintf("%s %s %s",
				f.Label(), style.Render(f.Format(val)), v.sty.Trend(d.Trends[f]).Render(d.Trends[f].Arrow())))
		}
		current = strings.Join(parts, "   ")
	}

	field := func(label, value string) string {
		return fmt.Sprintf("  %s%s", labelStyle.Render(label), value)
	}
	rows := []string{
		"",
		field("Device:", highlightStyle.Render(d.Label)),
		field("Host:", valueStyle.Render(d.Host)),
		field("Group:", valueStyle.Render(d.Group)),
		field("Source:", valueStyle.Render(d.Source)),
		field("Status:", status),
		field("Last poll:", valueStyle.Render(lastPoll)),
		field("Samples:", valueStyle.Render(fmt.Sprintf("%d", len(d.History)))),
		field("Current:", current),
	}
	return strings.Join(rows, "\n")
}

// renderHelp renders a help line at the bottom of the detail view.
func (v DetailView) renderHelp() string {
	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	return helpStyle.Render(fmt.Sprintf("  %s to go back", keyStyle.Render("[esc]")))
}
