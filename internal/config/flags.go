package config

import "flag"

// Flags are the command-line overrides shared by every subcommand.
type Flags struct {
	Config  *string
	Debug   *bool
	DB      *string
	Cell    *float64
	Weather *float64
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:  fs.String("config", "", "Path to config file"),
		Debug:   fs.Bool("debug", false, "Enable debug logging"),
		DB:      fs.String("db", "", "Path to the field database"),
		Cell:    fs.Float64("cell", 0, "Default cell size in world units"),
		Weather: fs.Float64("weather", -1, "Weather alpha for queries (0 clear .. 1 overcast)"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil || f.Config == nil {
		return ""
	}
	return *f.Config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug != nil && *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.DB != nil && *f.DB != "" {
		cfg.Storage.DatabasePath = *f.DB
	}
	if f.Cell != nil && *f.Cell > 0 {
		cfg.Grid.DefaultCellSize = *f.Cell
	}
	if f.Weather != nil && *f.Weather >= 0 {
		cfg.Preview.WeatherAlpha = min(*f.Weather, 1)
	}
}
