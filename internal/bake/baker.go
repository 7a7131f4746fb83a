// Package bake computes the per-cell sky-view, wall-permeability and
// indoor-ness fields of volumes and publishes them.
package bake

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/internal/occlusion"
	"github.com/Faultbox/thermoforge/internal/volume"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// ErrPersist wraps failures reported by the Persister.
var ErrPersist = errors.New("persist baked field")

// Persister stores a baked field and returns an opaque handle.
type Persister interface {
	SaveField(volumeID string, f *field.Field) (handle string, err error)
}

// Settings controls grid sizing and ray length.
type Settings struct {
	RayLength       float64 // hemisphere ray length in world units
	DefaultCellSize float64 // used when a volume has no cell size override
	UnboundedExtent float64 // half size of the cube baked for unbounded volumes
	// Workers is the number of Z slabs sampled at once. Values <= 1 bake on
	// the calling goroutine. Above 1 the sampler's Intersector and
	// DensityResolver must be safe for concurrent use.
	Workers int
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		RayLength:       100000,
		DefaultCellSize: 100,
		UnboundedExtent: 5000,
	}
}

// ProgressFunc reports cells done out of total for one volume. With more
// than one worker it may be called from several goroutines at once.
type ProgressFunc func(v *volume.Volume, done, total int)

// Baker bakes volumes against one scene.
type Baker struct {
	Sampler   *occlusion.Sampler
	Persister Persister // optional
	Settings  Settings
	Log       *zap.Logger
	Progress  ProgressFunc
}

// New creates a baker. A nil logger discards output.
func New(sampler *occlusion.Sampler, persister Persister, s Settings, log *zap.Logger) *Baker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Baker{Sampler: sampler, Persister: persister, Settings: s, Log: log}
}

// BakeAll bakes each volume in turn. A failing volume does not stop the
// others; its outcome is recorded in the report.
func (b *Baker) BakeAll(vols []*volume.Volume) Report {
	start := time.Now()
	rep := Report{Results: make([]Result, 0, len(vols))}
	for _, v := range vols {
		if v == nil {
			continue
		}
		res, err := b.BakeVolume(v)
		if err != nil {
			res.Err = err
		}
		rep.Results = append(rep.Results, res)
	}
	rep.Duration = time.Since(start)
	b.log().Info("bake finished",
		zap.Int("baked", rep.Baked()),
		zap.Int("skipped", rep.Skipped()),
		zap.Int("failed", rep.Failed()),
		zap.Duration("took", rep.Duration))
	return rep
}

// BakeVolume bakes one volume and publishes the field on success. A volume
// with an empty grid is skipped, not failed: the returned error is nil and
// Result.Err holds field.ErrEmptyGrid. When
// persistence fails the previous field is left in place.
func (b *Baker) BakeVolume(v *volume.Volume) (Result, error) {
	start := time.Now()
	res := Result{VolumeID: v.ID, Name: v.Name}
	log := b.log().With(zap.String("volume", v.Name), zap.String("id", v.ID))

	g := v.GridFrame(b.Settings.DefaultCellSize, b.Settings.UnboundedExtent)
	res.Dim = g.Dim
	if g.Empty() {
		res.Status = StatusSkipped
		res.Err = field.ErrEmptyGrid
		res.Duration = time.Since(start)
		log.Warn("skipping volume with empty grid", zap.Ints("dim", g.Dim[:]))
		return res, nil
	}
	res.Cells = g.Count()

	sky, wall, indoor := b.sampleGrid(v, g)

	f, err := field.New(v.ID, g, sky, wall, indoor)
	if err != nil {
		res.Status = StatusFailed
		res.Duration = time.Since(start)
		return res, fmt.Errorf("build field for %s: %w", v.Name, err)
	}

	if b.Persister != nil {
		handle, err := b.Persister.SaveField(v.ID, f)
		if err != nil {
			res.Status = StatusFailed
			res.Duration = time.Since(start)
			log.Error("persist failed, keeping previous field", zap.Error(err))
			return res, fmt.Errorf("%w for %s: %v", ErrPersist, v.Name, err)
		}
		res.Handle = handle
	}

	v.SetField(f)
	res.Status = StatusBaked
	res.Duration = time.Since(start)
	log.Debug("volume baked",
		zap.Ints("dim", g.Dim[:]),
		zap.Int("cells", res.Cells),
		zap.Duration("took", res.Duration))
	return res, nil
}

// sampleGrid fills the three channels. With more than one worker Z slabs
// are sharded across goroutines; each cell is written by exactly one.
func (b *Baker) sampleGrid(v *volume.Volume, g field.GridFrame) (sky, wall, indoor []float64) {
	n := g.Count()
	sky = make([]float64, n)
	wall = make([]float64, n)
	indoor = make([]float64, n)

	var done atomic.Int64
	slab := func(z int) {
		for y := 0; y < g.Dim[1]; y++ {
			for x := 0; x < g.Dim[0]; x++ {
				i := g.Index(x, y, z)
				s, w := b.sampleCell(g, x, y, z)
				sky[i] = s
				wall[i] = w
				indoor[i] = (1 - s) * (1 - w)
			}
		}
		d := done.Add(int64(g.Dim[0] * g.Dim[1]))
		if b.Progress != nil {
			b.Progress(v, int(d), n)
		}
	}

	workers := b.Settings.Workers
	if workers <= 1 {
		for z := 0; z < g.Dim[2]; z++ {
			slab(z)
		}
		return sky, wall, indoor
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for z := 0; z < g.Dim[2]; z++ {
		eg.Go(func() error {
			slab(z)
			return nil
		})
	}
	_ = eg.Wait()
	return sky, wall, indoor
}

func (b *Baker) sampleCell(g field.GridFrame, x, y, z int) (sky, wall float64) {
	p := g.CellCenter(x, y, z)
	sky = b.Sampler.SkyOpenness(p, b.Settings.RayLength)

	var sum float64
	var count int
	g.Neighbors6(x, y, z, func(nx, ny, nz int) {
		sum += b.Sampler.Between(p, g.CellCenter(nx, ny, nz), g.CellSize)
		count++
	})
	if count == 0 {
		return sky, 1
	}
	return sky, math.Clamp01(sum / float64(count))
}

func (b *Baker) log() *zap.Logger {
	if b.Log == nil {
		return zap.NewNop()
	}
	return b.Log
}
