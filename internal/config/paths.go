package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mikrochart"

// GetConfigDir returns the platform-specific config directory.
// Unix: $XDG_CONFIG_HOME/mikrochart or ~/.config/mikrochart
// Windows: %APPDATA%\mikrochart
func GetConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir returns the platform-specific data directory.
// Unix: $XDG_DATA_HOME/mikrochart or ~/.local/share/mikrochart
// Windows: %LOCALAPPDATA%\mikrochart
func GetDataDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, appName), nil
}

func inConfigDir(name string) (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func inDataDir(name string) (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// GetConfigPath returns the path to config.toml.
func GetConfigPath() (string, error) { return inConfigDir("config.toml") }

// GetDashboardsDir returns the directory for dashboard config files.
func GetDashboardsDir() (string, error) { return inConfigDir("dashboards") }

// GetIdentityStorePath returns the path to the encrypted identity vault.
func GetIdentityStorePath() (string, error) { return inConfigDir("identities.enc") }

// GetEnvPath returns the path to the optional .env secrets file.
func GetEnvPath() (string, error) { return inConfigDir(".env") }

// GetHistoryDir returns the directory used by the file storage backend.
func GetHistoryDir() (string, error) { return inDataDir("history") }

// GetChartsDir returns the default directory for rendered charts.
func GetChartsDir() (string, error) { return inDataDir("charts") }

// GetLogPath returns the log file used while the terminal UI owns the screen.
func GetLogPath() (string, error) { return inDataDir("mikrochart.log") }

// EnsureDirs creates all required directories if they don't exist.
func EnsureDirs() error {
	dirs := []func() (string, error){GetConfigDir, GetDataDir, GetDashboardsDir}
	for _, fn := range dirs {
		dir, err := fn()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
