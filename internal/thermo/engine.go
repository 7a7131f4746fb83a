// Package thermo is the public entry point: one Engine per world ties the
// scene, volumes, sources and climate together for baking and queries.
package thermo

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/thermoforge/internal/bake"
	"github.com/Faultbox/thermoforge/internal/climate"
	"github.com/Faultbox/thermoforge/internal/config"
	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/internal/logger"
	"github.com/Faultbox/thermoforge/internal/occlusion"
	"github.com/Faultbox/thermoforge/internal/sources"
	"github.com/Faultbox/thermoforge/internal/volume"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// Engine errors.
var (
	ErrNoStore       = errors.New("no field store configured")
	ErrUnknownVolume = errors.New("unknown volume")
)

// Vec3 is the world position type used throughout the API.
type Vec3 = math.Vec3

// Store persists baked fields and loads the latest one per volume.
type Store interface {
	bake.Persister
	Latest(volumeID string) (*field.Field, error)
}

// Engine is the per-world context. Every method is safe on a nil *Engine
// and then returns the neutral default of the operation.
type Engine struct {
	cfg      *config.Config
	sampler  *occlusion.Sampler
	volumes  *volume.Set
	registry *sources.Registry
	model    *climate.Model
	curve    climate.Curve
	baker    *bake.Baker
	store    Store
	log      *zap.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithScene sets the intersection backend and density table. Backends that
// implement occlusion.TraceConfigurer get the configured trace channel and
// complexity.
func WithScene(scene occlusion.Intersector, densities occlusion.DensityResolver) Option {
	return func(e *Engine) {
		if tc, ok := scene.(occlusion.TraceConfigurer); ok {
			tc.SetTrace(e.cfg.Trace.Channel, e.cfg.Trace.Complex)
		}
		e.sampler = occlusion.NewSampler(scene, densities, e.cfg.OcclusionSettings())
	}
}

// WithStore enables persistence of baked fields.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithCurve replaces the ambient climate curve. The desired query phase
// still follows the configured climate constants.
func WithCurve(c climate.Curve) Option {
	return func(e *Engine) { e.curve = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the time source used by QueryNearestCellNow.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithVolumes adds volumes at construction.
func WithVolumes(vols ...*volume.Volume) Option {
	return func(e *Engine) { e.volumes.Add(vols...) }
}

// New creates an engine. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:      cfg,
		volumes:  volume.NewSet(),
		registry: sources.NewRegistry(),
		model:    climate.NewModel(cfg.ClimateSettings()),
		log:      logger.Named("thermo"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.curve == nil {
		e.curve = e.model
	}
	var p bake.Persister
	if e.store != nil {
		p = e.store
	}
	e.baker = bake.New(e.sampler, p, cfg.BakeSettings(), e.log.Named("bake"))
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	if e == nil {
		return config.Default()
	}
	return e.cfg
}

// Volumes returns the engine's volume set.
func (e *Engine) Volumes() *volume.Set {
	if e == nil {
		return nil
	}
	return e.volumes
}

// AddVolume adds v to the world.
func (e *Engine) AddVolume(v *volume.Volume) {
	if e == nil {
		return
	}
	e.volumes.Add(v)
}

// RemoveVolume removes the volume with id.
func (e *Engine) RemoveVolume(id string) bool {
	if e == nil {
		return false
	}
	return e.volumes.Remove(id)
}

// SetProgress installs a per-volume bake progress callback.
func (e *Engine) SetProgress(fn bake.ProgressFunc) {
	if e == nil {
		return
	}
	e.baker.Progress = fn
}

// BakeAllVolumes bakes every volume. Volumes with empty grids are skipped
// and a failing volume keeps its previous field.
func (e *Engine) BakeAllVolumes() bake.Report {
	if e == nil {
		return bake.Report{}
	}
	return e.baker.BakeAll(e.volumes.All())
}

// BakeVolume bakes one volume by ID.
func (e *Engine) BakeVolume(id string) (bake.Result, error) {
	if e == nil {
		return bake.Result{}, ErrUnknownVolume
	}
	v, ok := e.volumes.Get(id)
	if !ok {
		return bake.Result{}, fmt.Errorf("%w: %s", ErrUnknownVolume, id)
	}
	return e.baker.BakeVolume(v)
}

// LoadBakedFields publishes the latest stored field of every volume that
// has none yet and returns how many were restored.
func (e *Engine) LoadBakedFields() (int, error) {
	if e == nil || e.store == nil {
		return 0, ErrNoStore
	}
	n := 0
	var errs []error
	for _, v := range e.volumes.All() {
		if v.HasField() {
			continue
		}
		f, err := e.store.Latest(v.ID)
		if err != nil {
			if !errors.Is(err, field.ErrNotFound) {
				errs = append(errs, err)
			}
			continue
		}
		v.SetField(f)
		n++
	}
	e.log.Info("restored baked fields", zap.Int("count", n))
	return n, errors.Join(errs...)
}

// OcclusionBetween returns the permeability of the segment a→b in [0, 1].
// Without a scene it is 1.
func (e *Engine) OcclusionBetween(a, b Vec3, cellSize float64) float64 {
	if e == nil {
		return 1
	}
	return e.sampler.Between(a, b, cellSize)
}
