package field

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/thermoforge/pkg/math"
)

// Field errors.
var (
	ErrEmptyGrid       = errors.New("grid has zero cells")
	ErrLengthMismatch  = errors.New("channel length does not match grid dimensions")
	ErrIndexOutOfRange = errors.New("cell index out of range")
	ErrUnknownChannel  = errors.New("unknown field channel")
	ErrNotFound        = errors.New("baked field not found")
)

// Channel selects one of the per-cell scalar arrays.
type Channel int

// Field channels.
const (
	SkyView          Channel = iota // 0 = enclosed, 1 = open sky
	WallPermeability                // 0 = opaque, 1 = fully transmissive
	Indoorness                      // (1-sky)*(1-wall)
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case SkyView:
		return "skyview"
	case WallPermeability:
		return "wallperm"
	case Indoorness:
		return "indoor"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// ParseChannel parses a channel name as returned by Channel.String.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "skyview", "sky":
		return SkyView, nil
	case "wallperm", "wall":
		return WallPermeability, nil
	case "indoor", "indoorness":
		return Indoorness, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// Field is the baked result for one volume. It is never mutated after
// construction; a re-bake produces a new Field.
type Field struct {
	VolumeID string
	Dim      [3]int
	CellSize float64
	Origin   math.Vec3 // world position of the min corner of cell (0,0,0)
	Rotation math.Quat
	BakedAt  time.Time

	Sky    []float64
	Wall   []float64
	Indoor []float64
}

// New builds a field over grid g. The channel slices are owned by the
// returned field and must not be modified by the caller afterwards.
func New(volumeID string, g GridFrame, sky, wall, indoor []float64) (*Field, error) {
	if g.Empty() {
		return nil, ErrEmptyGrid
	}
	rb := g.Rebased()
	f := &Field{
		VolumeID: volumeID,
		Dim:      rb.Dim,
		CellSize: rb.CellSize,
		Origin:   rb.Origin,
		Rotation: rb.Rotation,
		BakedAt:  time.Now().UTC(),
		Sky:      sky,
		Wall:     wall,
		Indoor:   indoor,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks dimensions, cell size and channel lengths.
func (f *Field) Validate() error {
	if f.Dim[0] <= 0 || f.Dim[1] <= 0 || f.Dim[2] <= 0 {
		return ErrEmptyGrid
	}
	if f.CellSize <= 0 {
		return fmt.Errorf("invalid cell size %v", f.CellSize)
	}
	n := f.Len()
	for _, ch := range []struct {
		name string
		data []float64
	}{{"skyview", f.Sky}, {"wallperm", f.Wall}, {"indoor", f.Indoor}} {
		if len(ch.data) != n {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrLengthMismatch, ch.name, len(ch.data), n)
		}
	}
	return nil
}

// Len returns the number of cells.
func (f *Field) Len() int {
	return f.Dim[0] * f.Dim[1] * f.Dim[2]
}

// Grid returns the grid frame the field was baked on, rebased so that
// cell (0,0,0) starts at Origin.
func (f *Field) Grid() GridFrame {
	return GridFrame{
		Frame: Frame{Origin: f.Origin, Rotation: f.Rotation, CellSize: f.CellSize},
		Dim:   f.Dim,
	}
}

// Channel returns the backing array of ch.
func (f *Field) Channel(ch Channel) ([]float64, error) {
	switch ch {
	case SkyView:
		return f.Sky, nil
	case WallPermeability:
		return f.Wall, nil
	case Indoorness:
		return f.Indoor, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, int(ch))
}

// ScalarAt returns channel ch at linear index i.
func (f *Field) ScalarAt(ch Channel, i int) (float64, error) {
	data, err := f.Channel(ch)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= f.Len() || i >= len(data) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, f.Len())
	}
	return data[i], nil
}

// ScalarOr returns channel ch at i, or def when i is not addressable.
func (f *Field) ScalarOr(ch Channel, i int, def float64) float64 {
	if f == nil {
		return def
	}
	v, err := f.ScalarAt(ch, i)
	if err != nil {
		return def
	}
	return v
}
