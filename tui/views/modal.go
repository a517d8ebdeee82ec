package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/tui/styles"
)

// modalWidth picks an overlay width from the screen width, clamped to
// [lo, hi].
func modalWidth(screen, lo, hi int) int {
	w := 44
	if screen > 60 {
		w = screen / 2
	}
	return min(max(w, lo), hi)
}

// renderModal draws content in a rounded box with title set into the top
// border, centred in a width x height area. innerWidth excludes border and
// padding.
func renderModal(theme styles.Theme, sty *styles.Styles, title, content string, innerWidth, width, height int) string {
	box := sty.ModalBorder.BorderTop(false)
	body := box.Width(innerWidth + box.GetHorizontalPadding()).Render(content)

	border := lipgloss.NewStyle().Foreground(theme.Base0D).Background(theme.Base00)
	label := " " + title + " "
	dashes := max(lipgloss.Width(body)-3-lipgloss.Width(label), 0)
	top := border.Render("╭─") + sty.ModalTitle.Render(label) + border.Render(strings.Repeat("─", dashes)+"╮")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, top+"\n"+body)
}
