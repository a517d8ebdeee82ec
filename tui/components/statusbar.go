package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/mikrochart/tui/keys"
	"github.com/tonhe/mikrochart/tui/styles"
)

// StatusInfo is what the footer reports about the active dashboard.
type StatusInfo struct {
	Interval   time.Duration
	LastPoll   time.Time
	PollCount  int
	ErrorCount int
	Field      string
}

type keyHint struct {
	key  string
	desc string
}

func footerHints() []keyHint {
	k := keys.DefaultKeyMap
	first := func(b key.Binding) string { return b.Keys()[0] }
	return []keyHint{
		{first(k.Enter), "detail"},
		{first(k.Dashboard), "dashboards"},
		{first(k.Left) + "/" + first(k.Right), "field"},
		{first(k.Refresh), "poll"},
		{first(k.Theme), "theme"},
		{first(k.Help), "help"},
		{first(k.Quit), "quit"},
	}
}

// RenderStatusBar renders the two-line footer: poll state on top, key hints
// below. Both lines are padded to width.
func RenderStatusBar(theme styles.Theme, info StatusInfo, width int) string {
	bg := lipgloss.NewStyle().Background(theme.Base01)
	text := bg.Foreground(theme.Base05)

	last := "never"
	if !info.LastPoll.IsZero() {
		last = info.LastPoll.Format("15:04:05")
	}
	errStyle := bg.Foreground(theme.Base04)
	if info.ErrorCount > 0 {
		errStyle = bg.Foreground(theme.Base08)
	}

	segs := []string{
		text.Render("poll: " + info.Interval.String()),
		text.Render("last: " + last),
		text.Render(fmt.Sprintf("%d polls", info.PollCount)),
		errStyle.Render(fmt.Sprintf("%d errors", info.ErrorCount)),
		bg.Foreground(theme.Base0C).Render("trend: " + info.Field),
	}
	sep := bg.Foreground(theme.Base03).Render(" | ")
	top := bg.Render(" ") + strings.Join(segs, sep)

	keyStyle := bg.Foreground(theme.Base0D).Bold(true)
	descStyle := bg.Foreground(theme.Base04)
	hints := make([]string, 0, 8)
	for _, h := range footerHints() {
		hints = append(hints, keyStyle.Render(h.key)+descStyle.Render(":"+h.desc))
	}
	bottom := bg.Render(" ") + strings.Join(hints, bg.Render("  "))

	return lipgloss.JoinVertical(lipgloss.Left, padTo(bg, top, width), padTo(bg, bottom, width))
}

func padTo(bg lipgloss.Style, s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		s += bg.Render(strings.Repeat(" ", width-w))
	}
	return s
}
