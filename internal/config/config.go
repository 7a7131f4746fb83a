// Package config handles engine configuration loading and management.
package config

import (
	"github.com/Faultbox/thermoforge/internal/bake"
	"github.com/Faultbox/thermoforge/internal/climate"
	"github.com/Faultbox/thermoforge/internal/occlusion"
)

// Config holds all engine settings.
type Config struct {
	Trace       TraceConfig       `yaml:"trace"`
	Attenuation AttenuationConfig `yaml:"attenuation"`
	Grid        GridConfig        `yaml:"grid"`
	Bake        BakeConfig        `yaml:"bake"`
	Climate     ClimateConfig     `yaml:"climate"`
	Preview     PreviewConfig     `yaml:"preview"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// TraceConfig selects how occlusion rays are traced.
type TraceConfig struct {
	Channel string `yaml:"channel"` // only shapes on this channel (or on none) occlude; empty = all
	Complex bool   `yaml:"complex"` // trace against detailed geometry where available
}

// AttenuationConfig holds the Beer–Lambert constants and density policy.
type AttenuationConfig struct {
	FaceThicknessFactor float64 `yaml:"face_thickness_factor"`
	Coefficient         float64 `yaml:"coefficient"`
	UseMaterialDensity  bool    `yaml:"use_material_density"`
	TreatMissingAsAir   bool    `yaml:"treat_missing_as_air"`
	UnknownHitDensity   float64 `yaml:"unknown_hit_density"` // kg/m³
	AirDensity          float64 `yaml:"air_density"`         // kg/m³
}

// GridConfig holds grid sizing defaults.
type GridConfig struct {
	DefaultCellSize float64 `yaml:"default_cell_size"` // world units
	UnboundedExtent float64 `yaml:"unbounded_extent"`  // half size baked for unbounded volumes
}

// BakeConfig holds bake settings.
type BakeConfig struct {
	RayLength float64 `yaml:"ray_length"`
	Workers   int     `yaml:"workers"` // <= 1 = sequential; more needs a thread-safe scene
}

// ClimateConfig holds the ambient climate constants.
type ClimateConfig struct {
	SolarGainScale float64 `yaml:"solar_gain_scale"` // °C added under full open sky
	WinterAverage  float64 `yaml:"winter_average"`
	SummerAverage  float64 `yaml:"summer_average"`
	WinterDelta    float64 `yaml:"winter_day_night_delta"`
	SummerDelta    float64 `yaml:"summer_day_night_delta"`
	CurvePeakHour  float64 `yaml:"curve_peak_hour"`
	LapseRatePerKm float64 `yaml:"lapse_rate_per_km"`
	SeaLevelZ      float64 `yaml:"sea_level_z"`
	UnitsPerKm     float64 `yaml:"units_per_km"`
}

// PreviewConfig holds the weather used by time-based queries.
type PreviewConfig struct {
	WeatherAlpha float64 `yaml:"weather_alpha"` // 0 = clear, 1 = overcast
}

// StorageConfig holds persistence paths.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"` // empty disables persistence
	ExportDir    string `yaml:"export_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	cl := climate.DefaultSettings()
	bk := bake.DefaultSettings()
	return &Config{
		Trace: TraceConfig{
			Channel: "visibility",
			Complex: false,
		},
		Attenuation: AttenuationConfig{
			FaceThicknessFactor: 0.5,
			Coefficient:         0.0015,
			UseMaterialDensity:  true,
			TreatMissingAsAir:   false,
			UnknownHitDensity:   1000,
			AirDensity:          1.225,
		},
		Grid: GridConfig{
			DefaultCellSize: bk.DefaultCellSize,
			UnboundedExtent: bk.UnboundedExtent,
		},
		Bake: BakeConfig{
			RayLength: bk.RayLength,
		},
		Climate: ClimateConfig{
			SolarGainScale: 6,
			WinterAverage:  cl.WinterAverage,
			SummerAverage:  cl.SummerAverage,
			WinterDelta:    cl.WinterDelta,
			SummerDelta:    cl.SummerDelta,
			CurvePeakHour:  cl.PeakHour,
			LapseRatePerKm: cl.LapseRatePerKm,
			SeaLevelZ:      cl.SeaLevelZ,
			UnitsPerKm:     cl.UnitsPerKm,
		},
		Preview: PreviewConfig{
			WeatherAlpha: 0.3,
		},
		Storage: StorageConfig{
			DatabasePath: "",
			ExportDir:    "export",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// OcclusionSettings converts the attenuation section.
func (c *Config) OcclusionSettings() occlusion.Settings {
	a := c.Attenuation
	return occlusion.Settings{
		FaceThicknessFactor: a.FaceThicknessFactor,
		Coefficient:         a.Coefficient,
		UseMaterialDensity:  a.UseMaterialDensity,
		TreatMissingAsAir:   a.TreatMissingAsAir,
		UnknownHitDensity:   a.UnknownHitDensity,
		AirDensity:          a.AirDensity,
	}
}

// BakeSettings converts the grid and bake sections.
func (c *Config) BakeSettings() bake.Settings {
	return bake.Settings{
		RayLength:       c.Bake.RayLength,
		DefaultCellSize: c.Grid.DefaultCellSize,
		UnboundedExtent: c.Grid.UnboundedExtent,
		Workers:         c.Bake.Workers,
	}
}

// ClimateSettings converts the climate section.
func (c *Config) ClimateSettings() climate.Settings {
	cl := c.Climate
	return climate.Settings{
		WinterAverage:  cl.WinterAverage,
		SummerAverage:  cl.SummerAverage,
		WinterDelta:    cl.WinterDelta,
		SummerDelta:    cl.SummerDelta,
		PeakHour:       cl.CurvePeakHour,
		LapseRatePerKm: cl.LapseRatePerKm,
		SeaLevelZ:      cl.SeaLevelZ,
		UnitsPerKm:     cl.UnitsPerKm,
	}
}
