package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/thermoforge/internal/sources"
	"github.com/Faultbox/thermoforge/internal/volume"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// ErrInvalidScene is returned for scene files that parse but make no sense.
var ErrInvalidScene = errors.New("invalid scene")

// File is the YAML layout of a scene description.
type File struct {
	Materials map[string]float64 `yaml:"materials"`
	Shapes    []ShapeSpec        `yaml:"shapes"`
	Volumes   []VolumeSpec       `yaml:"volumes"`
	Sources   []SourceSpec       `yaml:"sources"`
}

// ShapeSpec describes one shape. Kind selects which fields apply:
//
//	box:        location, rotation, extent
//	plane:      location (a point on it), normal
//	sphere:     location (center), radius
//	sdf_sphere: location, radius (sphere traced)
//	ground:     location, normal (sphere traced half space)
//
// channel optionally restricts the shape to one trace channel.
type ShapeSpec struct {
	Kind     string       `yaml:"kind"`
	Location math.Vec3    `yaml:"location"`
	Rotation math.Rotator `yaml:"rotation"`
	Extent   math.Vec3    `yaml:"extent"`
	Normal   *math.Vec3   `yaml:"normal"`
	Radius   float64      `yaml:"radius"`
	Material string       `yaml:"material"`
	Channel  string       `yaml:"channel"`
}

// VolumeSpec describes one volume.
type VolumeSpec struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	Location   math.Vec3    `yaml:"location"`
	Rotation   math.Rotator `yaml:"rotation"`
	Extent     math.Vec3    `yaml:"extent"`
	Unbounded  bool         `yaml:"unbounded"`
	CellSize   float64      `yaml:"cell_size"`
	GridOrigin *math.Vec3   `yaml:"grid_origin"`
}

// SourceSpec describes one heat source.
type SourceSpec struct {
	Name      string    `yaml:"name"`
	Location  math.Vec3 `yaml:"location"`
	Intensity float64   `yaml:"intensity"`
	Radius    float64   `yaml:"radius"`
	Falloff   string    `yaml:"falloff"`
	Disabled  bool      `yaml:"disabled"`
}

// World is a loaded scene file. It holds the only strong references to
// its sources; keep the World alive for as long as they should count.
type World struct {
	Scene     *Scene
	Materials *MaterialTable
	Volumes   []*volume.Volume
	Sources   []*sources.Source
}

// LoadFile reads and parses a scene file.
func LoadFile(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return w, nil
}

// Parse builds a World from YAML. Material densities extend
// DefaultDensities.
func Parse(data []byte) (*World, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}

	w := &World{
		Scene:     New(),
		Materials: NewMaterialTable(DefaultDensities),
	}
	for name, rho := range f.Materials {
		if rho < 0 {
			return nil, fmt.Errorf("%w: material %q has negative density", ErrInvalidScene, name)
		}
		w.Materials.Set(name, rho)
	}

	for i, spec := range f.Shapes {
		sh, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		w.Scene.Add(sh)
	}

	names := make(map[string]bool)
	for i, spec := range f.Volumes {
		v, err := spec.build(i)
		if err != nil {
			return nil, err
		}
		if names[v.Name] {
			return nil, fmt.Errorf("%w: duplicate volume name %q", ErrInvalidScene, v.Name)
		}
		names[v.Name] = true
		w.Volumes = append(w.Volumes, v)
	}

	for i, spec := range f.Sources {
		s, err := spec.build(i)
		if err != nil {
			return nil, err
		}
		w.Sources = append(w.Sources, s)
	}
	return w, nil
}

func (s ShapeSpec) build() (Shape, error) {
	normal := math.V3(0, 0, 1)
	if s.Normal != nil {
		normal = *s.Normal
	}
	kind := strings.ToLower(s.Kind)
	switch kind {
	case "box":
		if s.Extent.X <= 0 || s.Extent.Y <= 0 || s.Extent.Z <= 0 {
			return nil, fmt.Errorf("%w: box extent must be positive", ErrInvalidScene)
		}
		return BoxShape{
			Transform: math.NewTransform(s.Location, s.Rotation.Quat()),
			Extent:    s.Extent,
			Material:  s.Material,
			Channel:   s.Channel,
		}, nil
	case "plane":
		if normal.LengthSq() == 0 {
			return nil, fmt.Errorf("%w: plane normal is zero", ErrInvalidScene)
		}
		return PlaneShape{Point: s.Location, Normal: normal, Material: s.Material, Channel: s.Channel}, nil
	case "sphere", "sdf_sphere":
		if s.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere radius must be positive", ErrInvalidScene)
		}
		if kind == "sphere" {
			return SphereShape{Center: s.Location, Radius: s.Radius, Material: s.Material, Channel: s.Channel}, nil
		}
		return SDFShape{Distance: SphereSDF(s.Location, s.Radius), Material: s.Material, Channel: s.Channel}, nil
	case "ground":
		if normal.LengthSq() == 0 {
			return nil, fmt.Errorf("%w: ground normal is zero", ErrInvalidScene)
		}
		return SDFShape{Distance: HalfSpaceSDF(s.Location, normal), Material: s.Material, Channel: s.Channel}, nil
	}
	return nil, fmt.Errorf("%w: unknown shape kind %q", ErrInvalidScene, s.Kind)
}

func (s VolumeSpec) build(i int) (*volume.Volume, error) {
	name := s.Name
	if name == "" {
		name = fmt.Sprintf("volume-%d", i)
	}
	t := math.NewTransform(s.Location, s.Rotation.Quat())

	var v *volume.Volume
	if s.Unbounded {
		v = volume.NewUnbounded(name, t)
	} else {
		if s.Extent.X <= 0 || s.Extent.Y <= 0 || s.Extent.Z <= 0 {
			return nil, fmt.Errorf("%w: volume %q needs a positive extent or unbounded: true", ErrInvalidScene, name)
		}
		v = volume.New(name, t, s.Extent)
	}
	// Stable IDs let stored fields be found again on the next load.
	v.ID = s.ID
	if v.ID == "" {
		v.ID = volume.StableID(name)
	}
	if s.CellSize < 0 {
		return nil, fmt.Errorf("%w: volume %q has negative cell size", ErrInvalidScene, name)
	}
	v.CellSize = s.CellSize
	v.GridOrigin = s.GridOrigin
	return v, nil
}

func (s SourceSpec) build(i int) (*sources.Source, error) {
	name := s.Name
	if name == "" {
		name = fmt.Sprintf("source-%d", i)
	}
	fo, err := sources.ParseFalloff(s.Falloff)
	if err != nil {
		return nil, fmt.Errorf("%w: source %q: %v", ErrInvalidScene, name, err)
	}
	src := sources.NewSource(name, s.Location, s.Intensity, s.Radius, fo)
	src.SetEnabled(!s.Disabled)
	return src, nil
}
