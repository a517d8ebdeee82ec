package cmd

import (
	"fmt"
	"os"
)

// Version is overridden at build time with -ldflags "-X ...cmd.Version=...".
var Version = "0.1.0"

// knownSubcommands is the set of CLI subcommands that bypass the TUI.
var knownSubcommands = map[string]bool{
	"watch":    true,
	"render":   true,
	"history":  true,
	"probe":    true,
	"identity": true,
	"config":   true,
	"themes":   true,
	"version":  true,
	"help":     true,
}

// IsSubcommand returns true if the argument is a known CLI subcommand.
func IsSubcommand(arg string) bool {
	return knownSubcommands[arg]
}

// Execute dispatches to the appropriate CLI subcommand handler.
func Execute(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "watch":
		watchCmd(args[1:])
	case "render":
		renderCmd(args[1:])
	case "history":
		historyCmd(args[1:])
	case "probe":
		probeCmd(args[1:])
	case "identity":
		identityCmd(args[1:])
	case "config":
		configCmd(args[1:])
	case "themes":
		themesCmd()
	case "version":
		fmt.Printf("mikrochart v%s\n", Version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mikrochart - MikroTik resource monitor

Usage:
  mikrochart                       Launch TUI monitor
  mikrochart --dashboard NAME      Launch with specific dashboard
  mikrochart --theme NAME          Launch with theme override
  mikrochart watch [flags]         Poll a dashboard headless, writing charts
  mikrochart render [flags]        Render a chart from stored history
  mikrochart history [flags]       Print stored history and trends
  mikrochart probe [flags] HOST    Show what a device reports
  mikrochart identity <cmd>        Manage device credentials
  mikrochart config <cmd>          Manage configuration
  mikrochart themes                List available themes
  mikrochart version               Show version
  mikrochart help                  Show this help

Watch:
  mikrochart watch --dashboard NAME [--once] [--metrics ADDR]

Render:
  mikrochart render --dashboard NAME --device ID --field cpu [--kind area] [--out FILE]

History:
  mikrochart history --dashboard NAME [--device ID] [--format table|json|yaml]

Probe:
  mikrochart probe --identity NAME [--source snmp|rest|local] [--port PORT] HOST

Identity Commands:
  mikrochart identity list                List all identities
  mikrochart identity add                 Add a new identity (interactive)
  mikrochart identity remove NAME         Remove an identity
  mikrochart identity test NAME HOST      Test SNMP or API connectivity

Config Commands:
  mikrochart config path                  Show config directory path
  mikrochart config show                  Print the effective configuration
  mikrochart config theme NAME            Set default theme
  mikrochart config identity NAME         Set default identity
  mikrochart config dashboard NAME        Set default dashboard`)
}
