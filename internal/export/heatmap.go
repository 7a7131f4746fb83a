package export

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Faultbox/thermoforge/internal/field"
)

// slice adapts one Z layer of a channel to plotter.GridXYZ. X and Y are
// grid-local cell centers in world units.
type slice struct {
	f    *field.Field
	data []float64
	z    int
}

func (s slice) Dims() (c, r int) { return s.f.Dim[0], s.f.Dim[1] }

func (s slice) Z(c, r int) float64 {
	return s.data[s.f.Grid().Index(c, r, s.z)]
}

func (s slice) X(c int) float64 { return (float64(c) + 0.5) * s.f.CellSize }

func (s slice) Y(r int) float64 { return (float64(r) + 0.5) * s.f.CellSize }

// HeatmapOptions control the rendered image.
type HeatmapOptions struct {
	Channel field.Channel
	Z       int // layer index
	Width   vg.Length
	Height  vg.Length
	Format  string // png, svg, pdf...
	Title   string
}

// DefaultHeatmapOptions renders the sky-view channel of layer 0 as PNG.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{
		Channel: field.SkyView,
		Width:   6 * vg.Inch,
		Height:  6 * vg.Inch,
		Format:  "png",
	}
}

// WriteHeatmap renders one Z layer of a channel. Values map onto [0, 1].
func WriteHeatmap(w io.Writer, f *field.Field, opt HeatmapOptions) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("export heatmap: %w", err)
	}
	if opt.Z < 0 || opt.Z >= f.Dim[2] {
		return fmt.Errorf("export heatmap: %w: layer %d of %d", field.ErrIndexOutOfRange, opt.Z, f.Dim[2])
	}
	data, err := f.Channel(opt.Channel)
	if err != nil {
		return fmt.Errorf("export heatmap: %w", err)
	}

	p := plot.New()
	p.Title.Text = opt.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%s, layer %d", opt.Channel, opt.Z)
	}
	p.X.Label.Text = "x (local)"
	p.Y.Label.Text = "y (local)"

	hm := plotter.NewHeatMap(slice{f: f, data: data, z: opt.Z}, palette.Heat(32, 1))
	hm.Min, hm.Max = 0, 1
	p.Add(hm)

	wt, err := p.WriterTo(opt.Width, opt.Height, opt.Format)
	if err != nil {
		return fmt.Errorf("export heatmap: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("export heatmap: %w", err)
	}
	return nil
}
