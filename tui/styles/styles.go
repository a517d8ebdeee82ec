package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/internal/history"
)

// Styles holds the themed lipgloss styles shared by the views.
type Styles struct {
	// Device table
	TableHeader lipgloss.Style
	TableRow    lipgloss.Style
	TableRowSel lipgloss.Style
	GroupHeader lipgloss.Style

	// Poll status
	StatusUp   lipgloss.Style
	StatusDown lipgloss.Style
	StatusWarn lipgloss.Style

	// Usage thresholds
	UtilLow  lipgloss.Style // < 50%
	UtilMid  lipgloss.Style // 50-80%
	UtilHigh lipgloss.Style // >= 80%

	SparklineStyle lipgloss.Style

	// Overlays
	ModalBorder lipgloss.Style
	ModalTitle  lipgloss.Style

	TrendUp     lipgloss.Style
	TrendDown   lipgloss.Style
	TrendStable lipgloss.Style
}

// NewStyles derives the view styles from a theme.
func NewStyles(theme Theme) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	return &Styles{
		TableHeader: fg(theme.Base0D).Bold(true),
		TableRow:    fg(theme.Base05),
		TableRowSel: fg(theme.Base05).Background(theme.Base02),
		GroupHeader: fg(theme.Base0E).Bold(true),

		StatusUp:   fg(theme.Base0B),
		StatusDown: fg(theme.Base08),
		StatusWarn: fg(theme.Base0A),

		UtilLow:  fg(theme.Base0B),
		UtilMid:  fg(theme.Base0A),
		UtilHigh: fg(theme.Base08),

		SparklineStyle: fg(theme.Base0C),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base0D).
			BorderBackground(theme.Base00).
			Background(theme.Base00).
			Padding(1, 2),
		ModalTitle: fg(theme.Base0D).Bold(true),

		TrendUp:     fg(theme.Base08),
		TrendDown:   fg(theme.Base0B),
		TrendStable: fg(theme.Base04),
	}
}

// Usage picks the threshold style for a percentage.
func (s *Styles) Usage(pct float64) lipgloss.Style {
	switch {
	case pct >= 80:
		return s.UtilHigh
	case pct >= 50:
		return s.UtilMid
	default:
		return s.UtilLow
	}
}

// Trend picks the style for a trend arrow. Rising load is drawn as a warning.
func (s *Styles) Trend(t history.Trend) lipgloss.Style {
	switch t {
	case history.TrendUp:
		return s.TrendUp
	case history.TrendDown:
		return s.TrendDown
	default:
		return s.TrendStable
	}
}
