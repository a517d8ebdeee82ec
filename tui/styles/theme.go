package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/internal/history"
)

// Theme represents a Base16 color scheme.
type Theme struct {
	Name   string
	Base00 lipgloss.Color // Background
	Base01 lipgloss.Color // Lighter background
	Base02 lipgloss.Color // Selection
	Base03 lipgloss.Color // Comments / dim
	Base04 lipgloss.Color // Light foreground
	Base05 lipgloss.Color // Foreground
	Base06 lipgloss.Color // Light foreground
	Base07 lipgloss.Color // Light background
	Base08 lipgloss.Color // Red
	Base09 lipgloss.Color // Orange
	Base0A lipgloss.Color // Yellow
	Base0B lipgloss.Color // Green
	Base0C lipgloss.Color // Cyan
	Base0D lipgloss.Color // Blue
	Base0E lipgloss.Color // Magenta
	Base0F lipgloss.Color // Brown
}

var (
	DefaultTheme Theme
	sortedSlugs  []string
)

func init() {
	sortedSlugs = make([]string, 0, len(Themes))
	for slug := range Themes {
		sortedSlugs = append(sortedSlugs, slug)
	}
	sort.Strings(sortedSlugs)
	DefaultTheme = Themes["mikrotik"]
}

// GetThemeByName returns a theme by its slug, or nil if not found.
func GetThemeByName(name string) *Theme {
	t, ok := Themes[name]
	if !ok {
		return nil
	}
	return &t
}

// ListThemes returns sorted theme slugs.
func ListThemes() []string {
	return sortedSlugs
}

// NextTheme returns the slug after slug in sorted order, wrapping around.
// An unknown slug starts the cycle from the first theme.
func NextTheme(slug string) string {
	i := sort.SearchStrings(sortedSlugs, slug)
	if i < len(sortedSlugs) && sortedSlugs[i] == slug {
		i++
	}
	return sortedSlugs[i%len(sortedSlugs)]
}

// FieldColor is the accent used for a metric's charts and sparkline.
func (t Theme) FieldColor(f history.Field) lipgloss.Color {
	switch f {
	case history.FieldCPU:
		return t.Base0D
	case history.FieldMemory:
		return t.Base0B
	case history.FieldDisk:
		return t.Base0A
	case history.FieldUsers:
		return t.Base0E
	}
	return t.Base05
}
