package thermo

import (
	"time"

	"github.com/Faultbox/thermoforge/internal/climate"
	"github.com/Faultbox/thermoforge/internal/query"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// ComposeTemperatureAt returns the temperature in °C at pos for a season,
// an hour of day and a weather alpha (0 clear, 1 overcast):
//
//	ambient(season, hour, z) + solarGain*sky*(1-weather) + Σ source*occlusion*wall
//
// sky and wall come from the nearest baked cell of any volume and default
// to 1 when nothing is baked.
func (e *Engine) ComposeTemperatureAt(pos Vec3, winter bool, hour, weather float64) float64 {
	if e == nil {
		return 0
	}
	sky, wall := e.localScalars(pos)
	return e.compose(pos, winter, hour, weather, sky, wall)
}

func (e *Engine) localScalars(pos Vec3) (sky, wall float64) {
	hit := query.NearestAny(e.volumes.Baked(), pos)
	if !hit.Found {
		return 1, 1
	}
	return math.Clamp01(hit.Sky), math.Clamp01(hit.Wall)
}

func (e *Engine) compose(pos Vec3, winter bool, hour, weather, sky, wall float64) float64 {
	ambient := e.curve.AmbientAt(winter, hour, pos.Z)
	solar := e.cfg.Climate.SolarGainScale * sky * (1 - math.Clamp01(weather))
	return ambient + solar + e.sourceSum(pos, wall)
}

// sourceSum adds every enabled source's delta, attenuated by line of sight
// and by the local wall permeability.
func (e *Engine) sourceSum(pos Vec3, wall float64) float64 {
	var sum float64
	for _, s := range e.registry.All() {
		if !s.Enabled() {
			continue
		}
		delta := s.SampleAt(pos)
		if delta == 0 {
			continue
		}
		occ := e.sampler.Between(pos, s.Location(), e.cfg.Grid.DefaultCellSize)
		sum += delta * occ * wall
	}
	return sum
}

// ComposeForQuery returns the temperature at pos for a UTC instant. The
// season is blended continuously over the year and the ambient part is
// moved onto a curve that is coldest at 00:00 and warmest at 12:00.
func (e *Engine) ComposeForQuery(pos Vec3, t time.Time) float64 {
	if e == nil {
		return 0
	}
	hour := climate.HourOfDay(t)
	alpha := climate.SeasonAlpha(t)
	weather := e.cfg.Preview.WeatherAlpha

	sky, wall := e.localScalars(pos)
	winter := e.compose(pos, true, hour, weather, sky, wall)
	summer := e.compose(pos, false, hour, weather, sky, wall)
	baseline := climate.Blend(winter, summer, alpha)

	baseAmbient := climate.Blend(
		e.curve.AmbientAt(true, hour, pos.Z),
		e.curve.AmbientAt(false, hour, pos.Z),
		alpha,
	)
	desired := e.model.DesiredAmbient(alpha, hour, pos.Z)
	return baseline + (desired - baseAmbient)
}

// QueryNearestCell returns the baked cell for pos, preferring volumes that
// contain it, with the temperature composed for the UTC instant t.
func (e *Engine) QueryNearestCell(pos Vec3, t time.Time) query.GridHit {
	if e == nil {
		return query.Miss()
	}
	hit := query.Locate(e.volumes.All(), pos)
	hit.QueryTime = t.UTC()
	if !hit.Found {
		return hit
	}
	hit.TemperatureC = e.ComposeForQuery(hit.CellCenter, t)
	return hit
}

// QueryNearestCellNow is QueryNearestCell at the engine clock's current time.
func (e *Engine) QueryNearestCellNow(pos Vec3) query.GridHit {
	if e == nil {
		return query.Miss()
	}
	return e.QueryNearestCell(pos, e.now())
}
