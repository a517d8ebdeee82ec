package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/tui/styles"
)

// HeaderInfo is what the top bar reports.
type HeaderInfo struct {
	Dashboard string
	Live      bool
	Engines   int
	// DevicesUp counts devices whose last poll succeeded.
	DevicesUp int
	Devices   int
	Version   string
}

// RenderHeader renders the top header bar: app name, dashboard, live state,
// device health, running engines and version.
func RenderHeader(theme styles.Theme, info HeaderInfo, width int) string {
	seg := func(fg lipgloss.Color, s string) string {
		return lipgloss.NewStyle().Foreground(fg).Background(theme.Base01).Render(s)
	}

	name := info.Dashboard
	if name == "" {
		name = "(no dashboard)"
	}

	status := seg(theme.Base08, "STOPPED")
	if info.Live {
		status = seg(theme.Base0B, "LIVE")
	}

	health := theme.Base0B
	switch {
	case info.Devices == 0:
		health = theme.Base04
	case info.DevicesUp == 0:
		health = theme.Base08
	case info.DevicesUp < info.Devices:
		health = theme.Base0A
	}

	parts := []string{
		lipgloss.NewStyle().Foreground(theme.Base0D).Background(theme.Base01).Bold(true).Render("mikrochart"),
		seg(theme.Base05, name),
		status,
		seg(health, fmt.Sprintf("%d/%d devices up", info.DevicesUp, info.Devices)),
		seg(theme.Base04, fmt.Sprintf("%d engines", info.Engines)),
		seg(theme.Base04, "v"+info.Version),
	}

	return lipgloss.NewStyle().
		Background(theme.Base01).
		Width(width).
		Render(" " + strings.Join(parts, "  |  ") + " ")
}
