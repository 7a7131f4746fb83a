package volume

import (
	"testing"

	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/pkg/math"
)

func TestContains(t *testing.T) {
	v := New("room", math.NewTransform(math.V3(1000, 0, 0), math.Rotator{Yaw: 90}.Quat()), math.V3(200, 50, 100))

	tests := []struct {
		name string
		p    math.Vec3
		want bool
	}{
		{"center", math.V3(1000, 0, 0), true},
		// yaw 90 swaps the long axis onto world Y
		{"along rotated long axis", math.V3(1000, 180, 0), true},
		{"outside along world X", math.V3(1180, 0, 0), false},
		{"above", math.V3(1000, 0, 101), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestUnboundedContainsEverything(t *testing.T) {
	v := NewUnbounded("world", math.TransformIdentity())
	if !v.Contains(math.V3(1e9, -1e9, 42)) {
		t.Error("unbounded volume should contain every point")
	}
	var nilVol *Volume
	if nilVol.Contains(math.V3(0, 0, 0)) {
		t.Error("nil volume should contain nothing")
	}
}

func TestEffectiveDefaults(t *testing.T) {
	v := New("v", math.NewTransform(math.V3(1, 2, 3), math.QuatIdentity()), math.V3(1, 1, 1))
	if got := v.EffectiveCellSize(100); got != 100 {
		t.Errorf("EffectiveCellSize = %v, want default 100", got)
	}
	v.CellSize = 25
	if got := v.EffectiveCellSize(100); got != 25 {
		t.Errorf("EffectiveCellSize = %v, want 25", got)
	}
	if got := v.EffectiveGridOrigin(); got != math.V3(1, 2, 3) {
		t.Errorf("EffectiveGridOrigin = %v, want location", got)
	}
	pin := math.V3(0, 0, 0)
	v.GridOrigin = &pin
	if got := v.EffectiveGridOrigin(); got != pin {
		t.Errorf("EffectiveGridOrigin = %v, want pinned origin", got)
	}
}

func TestGridOriginKeepsAlignment(t *testing.T) {
	pin := math.V3(0, 0, 0)
	a := New("a", math.NewTransform(math.V3(0, 0, 0), math.QuatIdentity()), math.V3(200, 200, 200))
	a.GridOrigin = &pin
	b := New("b", math.NewTransform(math.V3(30, 0, 0), math.QuatIdentity()), math.V3(200, 200, 200))
	b.GridOrigin = &pin

	ga := a.GridFrame(100, 0)
	gb := b.GridFrame(100, 0)
	ca := ga.CellCenter(0, 0, 0)
	cb := gb.CellCenter(0, 0, 0)
	// both grids share lattice points; centers differ by whole cells only
	dx := cb.X - ca.X
	if r := dx / 100; r != float64(int(r)) {
		t.Errorf("grids not aligned: dx=%v", dx)
	}
}

func TestWorldBoundsUnbounded(t *testing.T) {
	v := NewUnbounded("w", math.NewTransform(math.V3(0, 0, 500), math.QuatIdentity()))
	b := v.WorldBounds(1000)
	if b.Min != math.V3(-1000, -1000, -500) || b.Max != math.V3(1000, 1000, 1500) {
		t.Errorf("WorldBounds = %+v", b)
	}
}

func TestSetFieldSwap(t *testing.T) {
	v := New("v", math.TransformIdentity(), math.V3(100, 100, 100))
	if v.HasField() {
		t.Fatal("new volume should not have a field")
	}
	f1 := &field.Field{VolumeID: v.ID}
	f2 := &field.Field{VolumeID: v.ID}
	if prev := v.SetField(f1); prev != nil {
		t.Errorf("first SetField returned %v, want nil", prev)
	}
	if prev := v.SetField(f2); prev != f1 {
		t.Error("second SetField should return the first field")
	}
	if v.Field() != f2 {
		t.Error("Field() should return the latest field")
	}
}

func TestSet(t *testing.T) {
	a := New("a", math.TransformIdentity(), math.V3(1, 1, 1))
	b := New("b", math.TransformIdentity(), math.V3(1, 1, 1))
	s := NewSet(a, b, a, nil)

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if got, ok := s.ByName("b"); !ok || got != b {
		t.Error("ByName(b) failed")
	}
	if len(s.Baked()) != 0 {
		t.Error("no volume should be baked yet")
	}
	b.SetField(&field.Field{})
	if baked := s.Baked(); len(baked) != 1 || baked[0] != b {
		t.Errorf("Baked = %v, want [b]", baked)
	}
	if !s.Remove(a.ID) || s.Remove(a.ID) {
		t.Error("Remove should succeed once")
	}
	if _, ok := s.Get(a.ID); ok {
		t.Error("removed volume still present")
	}
}
