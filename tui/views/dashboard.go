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

// Column width constants (minimum widths).
const (
	colDevice   = 18
	colHost     = 16
	colStatus   = 7
	colMetric   = 10
	colUsers    = 8
	colSparkMin = 12
)

// DashboardView is the overview table: one row per device with current
// values, trend arrows, and a sparkline of the selected field.
type DashboardView struct {
	theme     styles.Theme
	sty       *styles.Styles
	snapshot  *engine.DashboardSnapshot
	field     history.Field
	cursor    int
	width     int
	height    int
	totalRows int
}

// NewDashboardView creates a new DashboardView with the given theme.
func NewDashboardView(theme styles.Theme) DashboardView {
	return DashboardView{
		theme: theme,
		sty:   styles.NewStyles(theme),
		field: history.FieldCPU,
	}
}

// Update handles key messages for cursor navigation within the dashboard.
func (v DashboardView) Update(msg tea.Msg) (DashboardView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.cursor < v.totalRows-1 {
				v.cursor++
			}
		}
	}
	return v, nil
}

// SetSnapshot updates the dashboard data. It recalculates the total row count
// and clamps the cursor if needed.
func (v *DashboardView) SetSnapshot(snap *engine.DashboardSnapshot) {
	v.snapshot = snap
	total := 0
	if snap != nil {
		for _, g := range snap.Groups {
			total += len(g.Devices)
		}
	}
	v.totalRows = total
	if v.cursor >= v.totalRows && v.totalRows > 0 {
		v.cursor = v.totalRows - 1
	}
}

// SetField selects the field drawn in the sparkline column.
func (v *DashboardView) SetField(f history.Field) {
	v.field = f
}

// SetTheme restyles the view.
func (v *DashboardView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetSize updates the available dimensions for the view.
func (v *DashboardView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SelectedDevice returns the device under the cursor.
func (v DashboardView) SelectedDevice() (engine.DeviceStats, bool) {
	if v.snapshot == nil {
		return engine.DeviceStats{}, false
	}
	idx := 0
	for _, g := range v.snapshot.Groups {
		for _, d := range g.Devices {
			if idx == v.cursor {
				return d, true
			}
			idx++
		}
	}
	return engine.DeviceStats{}, false
}

// View renders the dashboard view.
func (v DashboardView) View() string {
	if v.snapshot == nil || v.totalRows == 0 {
		return v.renderEmpty()
	}
	return v.renderTable()
}

// sparkWidth gives the sparkline column all remaining space.
func (v DashboardView) sparkWidth() int {
	fixed := colDevice + colHost + colStatus + 3*colMetric + colUsers
	spark := v.width - fixed
	if spark < colSparkMin {
		spark = colSparkMin
	}
	return spark
}

// renderTable renders the full dashboard table with group headers and
// device rows.
func (v DashboardView) renderTable() string {
	wSpark := v.sparkWidth()

	var lines []string

	headerStyle := v.sty.TableHeader
	header := fmt.Sprintf(
		"%s%s%s%s%s%s%s%s",
		headerStyle.Render(padRight("Device", colDevice)),
		headerStyle.Render(padRight("Host", colHost)),
		headerStyle.Render(padRight("Status", colStatus)),
		headerStyle.Render(padLeft("CPU", colMetric)),
		headerStyle.Render(padLeft("Memory", colMetric)),
		headerStyle.Render(padLeft("Disk", colMetric)),
		headerStyle.Render(padLeft("Users", colUsers)),
		headerStyle.Render(padRight(" "+v.field.Label()+" trend", wSpark)),
	)
	lines = append(lines, header)

	type row struct {
		isGroup bool
		text    string
	}
	var rows []row

	rowIdx := 0
	cursorRow := 0
	for _, g := range v.snapshot.Groups {
		groupLine := v.sty.GroupHeader.Render(
			padRight(fmt.Sprintf("--- %s ---", g.Name), v.width),
		)
		rows = append(rows, row{isGroup: true, text: groupLine})

		for _, d := range g.Devices {
			if rowIdx == v.cursor {
				cursorRow = len(rows)
			}
			rows = append(rows, row{text: v.renderDeviceRow(d, wSpark, rowIdx == v.cursor)})
			rowIdx++
		}
	}

	visibleHeight := v.height - 1 // subtract header
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	startIdx := 0
	if cursorRow >= visibleHeight {
		startIdx = cursorRow - visibleHeight + 1
	}
	endIdx := startIdx + visibleHeight
	if endIdx > len(rows) {
		endIdx = len(rows)
	}

	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, rows[i].text)
	}

	return strings.Join(lines, "\n")
}

// renderDeviceRow renders a single device metrics row.
func (v DashboardView) renderDeviceRow(d engine.DeviceStats, wSpark int, selected bool) string {
	rowStyle := v.sty.TableRow
	if selected {
		rowStyle = v.sty.TableRowSel
	}
	sel := func(st lipgloss.Style) lipgloss.Style {
		if selected {
			return st.Background(v.theme.Base02)
		}
		return st
	}

	device := rowStyle.Render(padRight(truncate(d.Label, colDevice-1), colDevice))
	host := rowStyle.Render(padRight(truncate(d.Host, colHost-1), colHost))

	var status string
	switch {
	case d.PollError != nil:
		status = sel(v.sty.StatusDown).Render(padRight("err", colStatus))
	case !d.HasSample:
		status = sel(v.sty.StatusWarn).Render(padRight("wait", colStatus))
	default:
		status = sel(v.sty.StatusUp).Render(padRight("ok", colStatus))
	}

	cells := []string{device, host, status}
	for _, f := range []history.Field{history.FieldCPU, history.FieldMemory, history.FieldDisk} {
		cells = append(cells, v.metricCell(d, f, colMetric, sel, rowStyle))
	}
	cells = append(cells, v.metricCell(d, history.FieldUsers, colUsers, sel, rowStyle))

	spark := components.Sparkline(d.Series(v.field), wSpark-1)
	cells = append(cells, rowStyle.Render(" "), sel(v.sty.SparklineStyle.Foreground(v.theme.FieldColor(v.field))).Render(spark))

	return strings.Join(cells, "")
}

// metricCell renders a right-aligned value followed by its trend arrow.
func (v DashboardView) metricCell(d engine.DeviceStats, f history.Field, width int, sel func(lipgloss.Style) lipgloss.Style, rowStyle lipgloss.Style) string {
	if !d.HasSample {
		return rowStyle.Render(padLeft("-", width-2) + "  ")
	}
	val := d.Latest.Value(f)
	valStyle := rowStyle
	if f != history.FieldUsers {
		valStyle = sel(v.sty.Usage(val))
	}
	trend := d.Trends[f]
	return valStyle.Render(padLeft(f.Format(val), width-2)) +
		rowStyle.Render(" ") +
		sel(v.sty.Trend(trend)).Render(trend.Arrow())
}

// renderEmpty renders a centered message when no dashboard is loaded.
func (v DashboardView) renderEmpty() string {
	msgStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center)

	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	msg := lipgloss.JoinVertical(lipgloss.Center,
		"",
		msgStyle.Render("No devices to show"),
		"",
		msgStyle.Render(fmt.Sprintf(
			"Press %s to open a dashboard",
			keyStyle.Render("[d]"),
		)),
		msgStyle.Render("or add targets to one under the config directory"),
		"",
	)

	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
}

// padRight pads s with spaces on the right to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads s with spaces on the left to the given width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// truncate shortens s to maxLen characters, adding an ellipsis if needed.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
