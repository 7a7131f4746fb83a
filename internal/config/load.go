package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded config fails validation.
var ErrInvalid = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
// f may be nil.
func Load(f *Flags) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := f.ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads defaults merged with a single YAML file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Grid.DefaultCellSize <= 0:
		return fmt.Errorf("%w: grid.default_cell_size must be positive", ErrInvalid)
	case c.Grid.UnboundedExtent <= 0:
		return fmt.Errorf("%w: grid.unbounded_extent must be positive", ErrInvalid)
	case c.Bake.RayLength <= 0:
		return fmt.Errorf("%w: bake.ray_length must be positive", ErrInvalid)
	case c.Attenuation.Coefficient < 0:
		return fmt.Errorf("%w: attenuation.coefficient must not be negative", ErrInvalid)
	case c.Preview.WeatherAlpha < 0 || c.Preview.WeatherAlpha > 1:
		return fmt.Errorf("%w: preview.weather_alpha must be in [0,1]", ErrInvalid)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./thermoforge.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ThermoForge")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ThermoForge")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "thermoforge")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "thermoforge")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
