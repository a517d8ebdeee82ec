package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/tui/keys"
	"github.com/tonhe/mikrochart/tui/styles"
)

// helpSection groups the bindings shown under one heading.
type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections() []helpSection {
	k := keys.DefaultKeyMap
	return []helpSection{
		{"Global", []key.Binding{k.Help, k.Theme}},
		{"Dashboard", []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Enter, k.Dashboard, k.Refresh, k.Quit}},
		{"Dashboard Switcher", []key.Binding{k.Enter, k.Stop, k.Escape}},
		{"Detail View", []key.Binding{k.Refresh, k.Escape}},
	}
}

// HelpView renders a modal overlay listing the key bindings.
type HelpView struct {
	theme   styles.Theme
	sty     *styles.Styles
	width   int
	height  int
	visible bool
}

// NewHelpView creates a new HelpView with the given theme.
func NewHelpView(theme styles.Theme) HelpView {
	return HelpView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// Toggle flips the help overlay visibility.
func (v *HelpView) Toggle() {
	v.visible = !v.visible
}

// IsVisible returns whether the help overlay is currently shown.
func (v HelpView) IsVisible() bool {
	return v.visible
}

// SetTheme restyles the view.
func (v *HelpView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetSize updates the available dimensions for the overlay.
func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// View renders the help overlay as a centered modal box.
func (v HelpView) View() string {
	section := lipgloss.NewStyle().Foreground(v.theme.Base0E).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	desc := lipgloss.NewStyle().Foreground(v.theme.Base05)
	dim := lipgloss.NewStyle().Foreground(v.theme.Base04)

	var lines []string
	for _, s := range helpSections() {
		lines = append(lines, section.Render(s.title))
		for _, b := range s.bindings {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %s  %s",
				keyStyle.Render(padRight(h.Key, 14)), desc.Render(h.Desc)))
		}
		lines = append(lines, "")
	}
	lines = append(lines, dim.Render("[?] close"))

	w := modalWidth(v.width, 38, 56)
	return renderModal(v.theme, v.sty, "Keyboard Shortcuts", strings.Join(lines, "\n"), w-6, v.width, v.height)
}
