package field

import (
	"testing"

	"github.com/Faultbox/thermoforge/pkg/math"
)

func axisFrame(cell float64) Frame {
	return Frame{Rotation: math.QuatIdentity(), CellSize: cell}
}

func TestNewGridFrame_AxisAligned(t *testing.T) {
	bounds := math.Box{Min: math.V3(0, 0, 0), Max: math.V3(300, 200, 100)}
	g := NewGridFrame(bounds, axisFrame(100))

	if g.Dim != [3]int{3, 2, 1} {
		t.Errorf("Dim = %v, want [3 2 1]", g.Dim)
	}
	if g.I0 != [3]int{0, 0, 0} {
		t.Errorf("I0 = %v, want [0 0 0]", g.I0)
	}
	if got := g.CellCenter(0, 0, 0); got != math.V3(50, 50, 50) {
		t.Errorf("CellCenter(0,0,0) = %v", got)
	}
}

func TestNewGridFrame_NegativeBounds(t *testing.T) {
	bounds := math.Box{Min: math.V3(-150, -50, -10), Max: math.V3(150, 50, 10)}
	g := NewGridFrame(bounds, axisFrame(100))

	// x: floor(-1.5)=-2 .. ceil(1.5)-1=1 -> 4 cells
	if g.I0[0] != -2 || g.Dim[0] != 4 {
		t.Errorf("x range: I0=%d Dim=%d, want -2, 4", g.I0[0], g.Dim[0])
	}
	if got := g.CellCenter(0, 0, 0).X; got != -150 {
		t.Errorf("first cell center x = %v, want -150", got)
	}
}

func TestNewGridFrame_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		bounds math.Box
		cell   float64
	}{
		{"zero cell size", math.Box{Max: math.V3(100, 100, 100)}, 0},
		{"empty box", math.EmptyBox(), 100},
		{"flat box", math.Box{Min: math.V3(0, 0, 0), Max: math.V3(100, 100, 0)}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGridFrame(tt.bounds, axisFrame(tt.cell))
			if !g.Empty() || g.Count() != 0 {
				t.Errorf("expected empty grid, got Dim=%v", g.Dim)
			}
		})
	}
}

func TestIndexBijection(t *testing.T) {
	g := GridFrame{Dim: [3]int{4, 3, 5}}
	seen := make([]bool, g.Count())
	for z := 0; z < g.Dim[2]; z++ {
		for y := 0; y < g.Dim[1]; y++ {
			for x := 0; x < g.Dim[0]; x++ {
				i := g.Index(x, y, z)
				if i < 0 || i >= g.Count() {
					t.Fatalf("Index(%d,%d,%d) = %d out of range", x, y, z, i)
				}
				if seen[i] {
					t.Fatalf("Index(%d,%d,%d) = %d already used", x, y, z, i)
				}
				seen[i] = true
				if gx, gy, gz := g.Coords(i); gx != x || gy != y || gz != z {
					t.Errorf("Coords(%d) = (%d,%d,%d), want (%d,%d,%d)", i, gx, gy, gz, x, y, z)
				}
			}
		}
	}
}

func TestIndexLayout(t *testing.T) {
	g := GridFrame{Dim: [3]int{4, 3, 5}}
	if got := g.Index(1, 2, 3); got != (3*3+2)*4+1 {
		t.Errorf("Index(1,2,3) = %d", got)
	}
}

func TestNearestCellMatchesCellCenter(t *testing.T) {
	frame := Frame{
		Origin:   math.V3(1000, -500, 20),
		Rotation: math.Rotator{Yaw: 30, Pitch: 10}.Quat(),
		CellSize: 50,
	}
	bounds := math.Box{Min: math.V3(800, -700, 0), Max: math.V3(1200, -300, 200)}
	g := NewGridFrame(bounds, frame)
	if g.Empty() {
		t.Fatal("unexpected empty grid")
	}

	for i := 0; i < g.Count(); i += 7 {
		x, y, z := g.Coords(i)
		c := g.CellCenter(x, y, z)
		nx, ny, nz, ok := g.NearestCell(c)
		if !ok || nx != x || ny != y || nz != z {
			t.Errorf("NearestCell(center of %d,%d,%d) = %d,%d,%d", x, y, z, nx, ny, nz)
		}
	}
}

func TestNearestCellClamps(t *testing.T) {
	g := NewGridFrame(math.Box{Max: math.V3(300, 300, 300)}, axisFrame(100))
	x, y, z, ok := g.NearestCell(math.V3(-1e6, 150, 1e6))
	if !ok {
		t.Fatal("expected ok")
	}
	if x != 0 || y != 1 || z != 2 {
		t.Errorf("NearestCell = (%d,%d,%d), want (0,1,2)", x, y, z)
	}

	if _, _, _, ok := (GridFrame{}).NearestCell(math.V3(0, 0, 0)); ok {
		t.Error("empty grid should not report a cell")
	}
}

func TestNearestCellPicksNearestCenter(t *testing.T) {
	g := NewGridFrame(math.Box{Max: math.V3(300, 300, 300)}, axisFrame(100))
	tests := []struct {
		local float64 // in cells
		want  int
	}{
		{0.1, 0},
		{0.9, 0}, // center 0.5 is 0.4 away, center 1.5 is 0.6 away
		{1.0, 1},
		{1.49, 1},
		{2.99, 2},
	}
	for _, tt := range tests {
		x, _, _, ok := g.NearestCell(math.V3(tt.local*100, 50, 50))
		if !ok || x != tt.want {
			t.Errorf("NearestCell at %.2f cells = %d, want %d", tt.local, x, tt.want)
		}
	}
}

func TestRebasedKeepsCenters(t *testing.T) {
	frame := Frame{Origin: math.V3(10, 20, 30), Rotation: math.Rotator{Yaw: 45}.Quat(), CellSize: 25}
	g := NewGridFrame(math.Box{Min: math.V3(-100, -100, -100), Max: math.V3(100, 100, 100)}, frame)
	rb := g.Rebased()
	for _, c := range [][3]int{{0, 0, 0}, {1, 2, 3}, {g.Dim[0] - 1, g.Dim[1] - 1, g.Dim[2] - 1}} {
		a := g.CellCenter(c[0], c[1], c[2])
		b := rb.CellCenter(c[0], c[1], c[2])
		if a.DistanceSq(b) > 1e-12 {
			t.Errorf("center %v moved: %v -> %v", c, a, b)
		}
	}
}

func TestNeighbors6(t *testing.T) {
	g := GridFrame{Dim: [3]int{3, 3, 3}}
	count := func(x, y, z int) int {
		n := 0
		g.Neighbors6(x, y, z, func(int, int, int) { n++ })
		return n
	}
	if got := count(1, 1, 1); got != 6 {
		t.Errorf("interior neighbors = %d, want 6", got)
	}
	if got := count(0, 0, 0); got != 3 {
		t.Errorf("corner neighbors = %d, want 3", got)
	}
	single := GridFrame{Dim: [3]int{1, 1, 1}}
	n := 0
	single.Neighbors6(0, 0, 0, func(int, int, int) { n++ })
	if n != 0 {
		t.Errorf("single cell neighbors = %d, want 0", n)
	}
}
