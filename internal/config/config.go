package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// DefaultsConfig holds default values for the install and inspect commands
type DefaultsConfig struct {
	// Resource name of the packaged app, without the .app extension
	Bundle string `mapstructure:"bundle" json:"bundle"`
	// Directory holding the packaged app; empty means next to the executable
	ResourcesDir string `mapstructure:"resources_dir" json:"resources_dir"`

	// Device matching: prefix, exact or contains
	Match string `mapstructure:"match" json:"match"`
	// Runtime platform the app targets; empty disables the filter
	Platform string `mapstructure:"platform" json:"platform"`

	// Chooser for ambiguous matches: auto, tui or dialog
	Chooser string `mapstructure:"chooser" json:"chooser"`
	// Fatal error alerts: auto, always or never
	Alert string `mapstructure:"alert" json:"alert"`

	BootTimeout string `mapstructure:"boot_timeout" json:"boot_timeout"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "ndjson",
		Quiet:   false,
		Verbose: false,
		Defaults: DefaultsConfig{
			Bundle:      "Packaged",
			Match:       "prefix",
			Platform:    "iOS",
			Chooser:     "auto",
			Alert:       "auto",
			BootTimeout: "60s",
		},
	}
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.simlaunch.yaml or ./.simlaunch.yml
// 2. ~/.simlaunch.yaml or ~/.simlaunch.yml
// 3. $XDG_CONFIG_HOME/simlaunch/config.yaml (or ~/.config/simlaunch/config.yaml)
// 4. /etc/simlaunch/config.yaml
func Load() (*Config, error) {
	cfg := Default()

	// Try to find and load config file in order of precedence
	configFile := findConfigFile()
	if configFile != "" {
		loaded, err := LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Override with environment variables
	applyEnvOverrides(cfg)

	return cfg, nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	// Config file names to search for (in order)
	names := []string{".simlaunch.yaml", ".simlaunch.yml", "simlaunch.yaml", "simlaunch.yml"}

	// Get home directory
	home, homeErr := os.UserHomeDir()

	// Get config directory (XDG_CONFIG_HOME or ~/.config)
	configDir, configDirErr := os.UserConfigDir()

	// Search locations in order of precedence (highest first)
	var searchPaths []string

	// 1. Current directory
	cwd, err := os.Getwd()
	if err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	// 2. Home directory
	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}

	// 3. Config directory (e.g., ~/.config/simlaunch/)
	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "simlaunch"))
	}

	// 4. System config
	searchPaths = append(searchPaths, "/etc/simlaunch")

	// Search for config file
	for i, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		// config.yaml only counts inside the dedicated directories
		if i < 2 {
			continue
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIMLAUNCH_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("SIMLAUNCH_QUIET"); v == "true" || v == "1" {
		cfg.Quiet = true
	}
	if v := os.Getenv("SIMLAUNCH_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("SIMLAUNCH_RESOURCES"); v != "" {
		cfg.Defaults.ResourcesDir = v
	}
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}
