package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/thermoforge/internal/sources"
	"github.com/Faultbox/thermoforge/internal/volume"
	"github.com/Faultbox/thermoforge/pkg/math"
)

const sampleScene = `
materials:
  adobe: 1500

shapes:
  - kind: plane
    location: {x: 0, y: 0, z: 0}
    material: earth
  - kind: box
    location: {x: 0, y: 0, z: 150}
    rotation: {yaw: 30}
    extent: {x: 200, y: 200, z: 10}
    material: adobe
  - kind: sphere
    location: {x: 500, y: 0, z: 50}
    radius: 40
  - kind: ground
    location: {x: 0, y: 0, z: -100}

volumes:
  - name: house
    location: {x: 0, y: 0, z: 100}
    extent: {x: 250, y: 250, z: 100}
    cell_size: 50
    grid_origin: {x: 0, y: 0, z: 0}
  - name: outside
    unbounded: true

sources:
  - name: stove
    location: {x: 10, y: 0, z: 60}
    intensity: 12
    radius: 300
    falloff: smooth
  - location: {x: 0, y: 0, z: 0}
    intensity: -4
    radius: 100
    disabled: true
`

func TestParse(t *testing.T) {
	w, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if w.Scene.Len() != 4 {
		t.Errorf("shapes = %d, want 4", w.Scene.Len())
	}
	if rho, ok := w.Materials.DensityOf("adobe"); !ok || rho != 1500 {
		t.Errorf("adobe = %v, %v", rho, ok)
	}
	if _, ok := w.Materials.DensityOf("concrete"); !ok {
		t.Error("default densities missing")
	}

	if len(w.Volumes) != 2 {
		t.Fatalf("volumes = %d, want 2", len(w.Volumes))
	}
	house := w.Volumes[0]
	if house.Name != "house" || house.CellSize != 50 || house.Unbounded {
		t.Errorf("house = %+v", house)
	}
	if house.GridOrigin == nil || *house.GridOrigin != (math.Vec3{}) {
		t.Errorf("grid origin = %v", house.GridOrigin)
	}
	if house.ID != volume.StableID("house") {
		t.Errorf("house ID %s is not stable", house.ID)
	}
	if !w.Volumes[1].Unbounded {
		t.Error("outside should be unbounded")
	}

	if len(w.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(w.Sources))
	}
	stove := w.Sources[0]
	if stove.Name != "stove" || stove.Intensity() != 12 || !stove.Enabled() {
		t.Errorf("stove = %s %v %v", stove.Name, stove.Intensity(), stove.Enabled())
	}
	if w.Sources[1].Name != "source-1" || w.Sources[1].Enabled() {
		t.Errorf("second source = %s enabled=%v", w.Sources[1].Name, w.Sources[1].Enabled())
	}

	// The roof box blocks a vertical ray through the house.
	hit, ok := w.Scene.Intersect(math.V3(0, 0, 60), math.V3(0, 0, 1000))
	if !ok || hit.Material != "adobe" {
		t.Errorf("roof hit = %+v, %v", hit, ok)
	}
}

func TestParseShapeChannel(t *testing.T) {
	w, err := Parse([]byte(`
shapes:
  - kind: box
    extent: {x: 10, y: 10, z: 10}
    channel: visibility
`))
	if err != nil {
		t.Fatal(err)
	}
	w.Scene.SetTrace("heat", false)
	if _, ok := w.Scene.Intersect(math.V3(-50, 0, 0), math.V3(50, 0, 0)); ok {
		t.Error("visibility-only box blocked a heat trace")
	}
	w.Scene.SetTrace("visibility", false)
	if _, ok := w.Scene.Intersect(math.V3(-50, 0, 0), math.V3(50, 0, 0)); !ok {
		t.Error("box missed a trace on its own channel")
	}
}

func TestParseStableIDs(t *testing.T) {
	a, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Volumes {
		if a.Volumes[i].ID != b.Volumes[i].ID {
			t.Errorf("volume %d ID changed between loads", i)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown shape", "shapes:\n  - kind: torus\n"},
		{"flat box", "shapes:\n  - kind: box\n    extent: {x: 1, y: 0, z: 1}\n"},
		{"zero radius", "shapes:\n  - kind: sphere\n"},
		{"zero normal", "shapes:\n  - kind: plane\n    normal: {x: 0, y: 0, z: 0}\n"},
		{"bounded without extent", "volumes:\n  - name: a\n"},
		{"duplicate volume", "volumes:\n  - {name: a, unbounded: true}\n  - {name: a, unbounded: true}\n"},
		{"negative density", "materials:\n  lead: -1\n"},
		{"bad falloff", "sources:\n  - falloff: cubic\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("err = %v, want ErrInvalidScene", err)
			}
		})
	}

	if _, err := Parse([]byte("shapes: [")); err == nil {
		t.Error("malformed YAML parsed")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(sampleScene), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(w.Volumes) != 2 {
		t.Errorf("volumes = %d", len(w.Volumes))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestSourcesRegisterFromWorld(t *testing.T) {
	w, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatal(err)
	}
	r := sources.NewRegistry()
	for _, s := range w.Sources {
		r.Register(s)
	}
	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2", r.Count())
	}
}
