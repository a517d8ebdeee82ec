package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Quit      key.Binding
	Dashboard key.Binding
	Stop      key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Left      key.Binding
	Right     key.Binding
	Tab       key.Binding
	Theme     key.Binding
}

// DefaultKeyMap provides the default set of key bindings.
var DefaultKeyMap = KeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "previous device")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next device")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q/ctrl+c", "stop all and quit")),
	Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard switcher")),
	Stop:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop engine")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "poll now")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left/h", "previous trend field")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "next trend field")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle theme")),
}
