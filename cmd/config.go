package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/tonhe/mikrochart/internal/config"
	"github.com/tonhe/mikrochart/tui/styles"
)

const configUsage = "Usage: mikrochart config <path|show|theme|identity|dashboard>"

func configCmd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, configUsage)
		os.Exit(1)
	}

	switch args[0] {
	case "path":
		configPath()
	case "show":
		configShow()
	case "theme", "identity", "dashboard":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: mikrochart config %s NAME\n", args[0])
			os.Exit(1)
		}
		configSet(args[0], args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, configUsage)
		os.Exit(1)
	}
}

func configPath() {
	dir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(dir)
}

func configShow() {
	cfg := loadOrDefaultConfig()
	cfg.PollIntervalStr = cfg.PollInterval.String()
	cfg.HistoryWindowStr = cfg.HistoryWindow.String()
	if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configSet(key, name string) {
	cfg := loadOrDefaultConfig()
	switch key {
	case "theme":
		if styles.GetThemeByName(name) == nil {
			fmt.Fprintf(os.Stderr, "Error: unknown theme %q\n", name)
			fmt.Fprintln(os.Stderr, "Run 'mikrochart themes' to see available themes.")
			os.Exit(1)
		}
		cfg.Theme = name
	case "identity":
		cfg.DefaultIdentity = name
	case "dashboard":
		if _, err := LoadDashboard(cfg, name); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.DefaultDashboard = name
	}
	saveConfig(cfg)

	fmt.Printf("Default %s set to %q.\n", key, name)
}

func themesCmd() {
	for _, name := range styles.ListThemes() {
		fmt.Println(name)
	}
}

// loadOrDefaultConfig loads the config from disk, falling back to defaults.
func loadOrDefaultConfig() *config.Config {
	path, err := config.GetConfigPath()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// saveConfig writes the config to disk, creating directories as needed.
func saveConfig(cfg *config.Config) {
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directories: %v\n", err)
		os.Exit(1)
	}

	path, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.SaveConfig(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
}
