package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tonhe/mikrochart/cmd"
	"github.com/tonhe/mikrochart/internal/config"
	"github.com/tonhe/mikrochart/internal/engine"
	"github.com/tonhe/mikrochart/tui"
)

func main() {
	if len(os.Args) > 1 && cmd.IsSubcommand(os.Args[1]) {
		cmd.Execute(os.Args[1:])
		return
	}

	dashName := flag.String("dashboard", "", "Dashboard to open on launch")
	theme := flag.String("theme", "", "Theme override for this session")
	flag.Parse()

	cfg := cmd.LoadConfig()
	if *theme != "" {
		cfg.Theme = *theme
	}

	dashDir, err := config.GetDashboardsDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rt, err := cmd.NewRuntime(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	mgr := engine.NewManager(rt.EngineOptions())

	active := *dashName
	if active == "" {
		active = cfg.DefaultDashboard
	}
	if active != "" {
		dash, err := cmd.LoadDashboard(cfg, active)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading dashboard: %v\n", err)
			os.Exit(1)
		}
		if err := mgr.Start(dash); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		active = dash.Name
	}

	model := tui.NewAppModel(cfg, mgr, dashDir, active, cmd.Version)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	mgr.StopAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
