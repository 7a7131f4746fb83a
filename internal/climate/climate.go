// Package climate provides the ambient temperature curve and the seasonal
// and time-of-day helpers used when composing temperatures.
package climate

import (
	gomath "math"
	"time"

	"github.com/Faultbox/thermoforge/pkg/math"
)

// Curve returns the ambient air temperature in °C.
type Curve interface {
	AmbientAt(winter bool, hour, z float64) float64
}

// Settings parameterize the default sinusoidal climate model.
type Settings struct {
	WinterAverage float64 // °C
	SummerAverage float64
	WinterDelta   float64 // full day-night swing, °C
	SummerDelta   float64
	PeakHour      float64 // warmest hour of the curve, 0..24

	LapseRatePerKm float64 // °C lost per km above SeaLevelZ
	SeaLevelZ      float64
	UnitsPerKm     float64 // world units in one km
}

// DefaultSettings returns a temperate climate in centimeter world units.
func DefaultSettings() Settings {
	return Settings{
		WinterAverage:  5,
		SummerAverage:  28,
		WinterDelta:    8,
		SummerDelta:    10,
		PeakHour:       15,
		LapseRatePerKm: 6.5,
		SeaLevelZ:      0,
		UnitsPerKm:     100000,
	}
}

// Model is the default Curve: a seasonal mean plus a cosine day-night wave
// that peaks at PeakHour, cooled with altitude.
type Model struct {
	Settings
}

// NewModel creates a model.
func NewModel(s Settings) *Model {
	return &Model{Settings: s}
}

// AmbientAt implements Curve.
func (m *Model) AmbientAt(winter bool, hour, z float64) float64 {
	avg, delta := m.SummerAverage, m.SummerDelta
	if winter {
		avg, delta = m.WinterAverage, m.WinterDelta
	}
	return m.AdjustForAltitude(avg+0.5*delta*wave(hour, m.PeakHour), z)
}

// AdjustForAltitude applies the lapse rate to a sea-level temperature.
func (m *Model) AdjustForAltitude(seaLevelC, z float64) float64 {
	if m.UnitsPerKm <= 0 {
		return seaLevelC
	}
	km := (z - m.SeaLevelZ) / m.UnitsPerKm
	return seaLevelC - m.LapseRatePerKm*km
}

// DesiredAmbient is the ambient temperature queries aim for: the seasonal
// blend of averages and swings with the trough at 00:00 and the peak at
// 12:00, altitude adjusted. alpha is the season from SeasonAlpha.
func (m *Model) DesiredAmbient(alpha, hour, z float64) float64 {
	alpha = math.Clamp01(alpha)
	avg := math.Lerp(m.WinterAverage, m.SummerAverage, alpha)
	delta := math.Lerp(m.WinterDelta, m.SummerDelta, alpha)
	return m.AdjustForAltitude(avg+0.5*delta*wave(hour, 12), z)
}

// wave is cos over a 24h period, 1 at peak and -1 twelve hours later.
func wave(hour, peak float64) float64 {
	return gomath.Cos(2 * gomath.Pi * (hour - peak) / 24)
}

// HourOfDay returns the UTC time of day of t in hours, in [0, 24).
func HourOfDay(t time.Time) float64 {
	t = t.UTC()
	sec := float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())/1e9
	return WrapHour(sec / 3600)
}

// WrapHour wraps h into [0, 24).
func WrapHour(h float64) float64 {
	r := gomath.Mod(h, 24)
	if r < 0 {
		r += 24
	}
	return r
}

// winterPoleDay is the day of year at which SeasonAlpha is zero.
const winterPoleDay = 355

// SeasonAlpha returns 0 at the winter solstice, about 1 at the summer
// solstice, following a cosine over the year.
func SeasonAlpha(t time.Time) float64 {
	return SeasonAlphaForDay(t.UTC().YearDay())
}

// SeasonAlphaForDay is SeasonAlpha for a 1-based day of year.
func SeasonAlphaForDay(doy int) float64 {
	pos := float64(doy-winterPoleDay) / 365
	pos -= gomath.Floor(pos)
	return 0.5 * (1 - gomath.Cos(2*gomath.Pi*pos))
}

// Blend returns the season-weighted mix of a winter and a summer value.
func Blend(winter, summer, alpha float64) float64 {
	return math.Lerp(winter, summer, math.Clamp01(alpha))
}
