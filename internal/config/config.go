// Package config handles the XDG configuration directory, the TOML
// settings file and client-side state paths.
package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// AppName is the application directory name.
	AppName = "tasktrack"

	// SettingsFile is the TOML settings filename inside the config dir.
	SettingsFile = "config.toml"

	// SelectionFile holds the last-selected list id across sessions.
	SelectionFile = "selection"

	// DefaultServerURL is where the tracker server listens by default.
	DefaultServerURL = "http://localhost:4000"

	// DefaultDBName is the server database filename inside the config dir.
	DefaultDBName = "tasktrack.db"
)

// Settings is the persisted, user-editable part of the configuration.
type Settings struct {
	ServerURL string `toml:"server_url"`
	DBPath    string `toml:"db_path"`
}

// Config holds configuration paths and runtime settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Settings holds the values from config.toml.
	Settings Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config rooted at configDir and loads (or creates) its
// settings file. If configDir is empty, uses XDG_CONFIG_HOME/tasktrack or
// $HOME/.config/tasktrack.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	settings, err := loadOrCreateSettings(cfg.SettingsPath(), defaultSettings(dir))
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the TOML settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// SelectionPath returns the path to the persisted selection file.
func (c *Config) SelectionPath() string {
	return filepath.Join(c.Dir, SelectionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

func defaultSettings(dir string) Settings {
	return Settings{
		ServerURL: DefaultServerURL,
		DBPath:    filepath.Join(dir, DefaultDBName),
	}
}

// loadOrCreateSettings reads the settings file, writing the defaults out
// on first run so the user has something to edit.
func loadOrCreateSettings(path string, defaults Settings) (Settings, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeSettings(path, defaults); err != nil {
			return defaults, err
		}
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, err
	}
	settings := defaults
	if err := toml.Unmarshal(data, &settings); err != nil {
		return defaults, err
	}
	if settings.ServerURL == "" {
		settings.ServerURL = DefaultServerURL
	}
	if settings.DBPath == "" {
		settings.DBPath = defaults.DBPath
	}
	return settings, nil
}

func writeSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
