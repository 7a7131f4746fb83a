package main

import (
	"errors"
	"flag"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/thermoforge/internal/bake"
	"github.com/Faultbox/thermoforge/internal/config"
	"github.com/Faultbox/thermoforge/internal/export"
	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/internal/logger"
	"github.com/Faultbox/thermoforge/internal/scene"
	"github.com/Faultbox/thermoforge/internal/storage/sqlite"
	"github.com/Faultbox/thermoforge/internal/thermo"
	"github.com/Faultbox/thermoforge/internal/volume"
	"github.com/Faultbox/thermoforge/pkg/math"
)

// app is what every command needs: config, scene, engine and the store.
type app struct {
	cfg    *config.Config
	world  *scene.World
	store  *sqlite.FieldStore
	engine *thermo.Engine
}

// namedStore records the volume name next to every saved field.
type namedStore struct {
	*sqlite.FieldStore
	names map[string]string
}

func (s namedStore) SaveField(volumeID string, f *field.Field) (string, error) {
	return s.SaveNamed(volumeID, s.names[volumeID], f)
}

// open loads config, logging, the scene file named by the first positional
// argument, and the field store when one is configured.
func open(fs *flag.FlagSet, flags *config.Flags) (*app, error) {
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("usage: thermoforge %s [options] <scene.yaml>", fs.Name())
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)

	world, err := scene.LoadFile(fs.Arg(0))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, world: world}
	opts := []thermo.Option{
		thermo.WithScene(world.Scene, world.Materials),
		thermo.WithVolumes(world.Volumes...),
	}

	if cfg.Storage.DatabasePath != "" {
		a.store, err = sqlite.Open(cfg.Storage.DatabasePath, logger.Named("store"))
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(world.Volumes))
		for _, v := range world.Volumes {
			names[v.ID] = v.Name
		}
		opts = append(opts, thermo.WithStore(namedStore{FieldStore: a.store, names: names}))
	}

	a.engine = thermo.New(cfg, opts...)
	for _, s := range world.Sources {
		a.engine.RegisterSource(s)
	}

	if a.store != nil {
		if _, err := a.engine.LoadBakedFields(); err != nil {
			logger.Warn("some stored fields could not be restored", zap.Error(err))
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("closing field store", zap.Error(err))
		}
	}
	logger.Sync()
}

func (a *app) volume(name string) (*volume.Volume, error) {
	if v, ok := a.engine.Volumes().ByName(name); ok {
		return v, nil
	}
	if v, ok := a.engine.Volumes().Get(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", thermo.ErrUnknownVolume, name)
}

func cmdBake(args []string) error {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	flags := config.BindFlags(fs)
	only := fs.String("volume", "", "Bake only this volume (name or ID)")
	csv := fs.Bool("csv", false, "Also export each baked field as CSV")
	quiet := fs.Bool("q", false, "No progress output")
	fs.Parse(args)

	a, err := open(fs, flags)
	if err != nil {
		return err
	}
	defer a.close()

	if !*quiet {
		a.engine.SetProgress(progressPrinter())
	}

	var report bake.Report
	if *only != "" {
		v, err := a.volume(*only)
		if err != nil {
			return err
		}
		report, err = bakeOne(a.engine, v.ID)
		if err != nil {
			printReport(report)
			return err
		}
	} else {
		report = a.engine.BakeAllVolumes()
	}
	printReport(report)

	if *csv {
		for _, res := range report.Results {
			if res.Status != bake.StatusBaked {
				continue
			}
			v, _ := a.engine.Volumes().Get(res.VolumeID)
			path, err := export.SaveCSV(a.cfg.Storage.ExportDir, res.Name, v.Field())
			if err != nil {
				return err
			}
			fmt.Printf("Exported: %s\n", path)
		}
	}

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d volume(s) failed to bake", n)
	}
	return nil
}

// bakeOne bakes a single volume and wraps the result in a report. A failure
// is recorded on the result, as BakeAllVolumes does.
func bakeOne(e *thermo.Engine, id string) (bake.Report, error) {
	res, err := e.BakeVolume(id)
	if err != nil {
		res.Err = err
	}
	return bake.Report{Results: []bake.Result{res}, Duration: res.Duration}, err
}

// progressPrinter reports every tenth of a volume. Workers call it
// concurrently.
func progressPrinter() bake.ProgressFunc {
	var mu sync.Mutex
	last := make(map[string]int)
	return func(v *volume.Volume, done, total int) {
		step := done * 10 / total
		mu.Lock()
		defer mu.Unlock()
		if prev, ok := last[v.ID]; ok && step <= prev {
			return
		}
		last[v.ID] = step
		fmt.Fprintf(os.Stderr, "\r%-20s %3d%%", v.Name, step*10)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}

func printReport(r bake.Report) {
	fmt.Printf("%-20s %-8s %-14s %10s %10s\n", "VOLUME", "STATUS", "GRID", "CELLS", "TIME")
	for _, res := range r.Results {
		grid := fmt.Sprintf("%dx%dx%d", res.Dim[0], res.Dim[1], res.Dim[2])
		fmt.Printf("%-20s %-8s %-14s %10d %10s", res.Name, res.Status, grid, res.Cells, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			fmt.Printf("  %v", res.Err)
		}
		fmt.Println()
	}
	fmt.Fprintf(os.Stderr, "\n%d baked, %d skipped, %d failed in %s\n",
		r.Baked(), r.Skipped(), r.Failed(), r.Duration.Round(time.Millisecond))
}

func cmdQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	flags := config.BindFlags(fs)
	x := fs.Float64("x", 0, "World X")
	y := fs.Float64("y", 0, "World Y")
	z := fs.Float64("z", 0, "World Z")
	at := fs.String("at", "", "Query time, RFC3339 (default now)")
	fs.Parse(args)

	a, err := open(fs, flags)
	if err != nil {
		return err
	}
	defer a.close()

	pos := math.V3(*x, *y, *z)
	t := time.Now()
	if *at != "" {
		if t, err = time.Parse(time.RFC3339, *at); err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
	}

	hit := a.engine.QueryNearestCell(pos, t)
	fmt.Printf("Position:    (%.1f, %.1f, %.1f)\n", pos.X, pos.Y, pos.Z)
	fmt.Printf("Time:        %s\n", hit.QueryTime.Format(time.RFC3339))
	fmt.Printf("Weather:     %.2f\n", a.cfg.Preview.WeatherAlpha)
	if !hit.Found {
		fmt.Println("Cell:        none (no baked volume)")
	} else {
		fmt.Printf("Volume:      %s\n", hit.Volume.Name)
		fmt.Printf("Cell:        [%d %d %d] #%d\n", hit.GridIndex[0], hit.GridIndex[1], hit.GridIndex[2], hit.LinearIndex)
		fmt.Printf("Center:      (%.1f, %.1f, %.1f) at %.1f\n", hit.CellCenter.X, hit.CellCenter.Y, hit.CellCenter.Z, gomath.Sqrt(hit.DistanceSq))
		fmt.Printf("Sky/Wall:    %.3f / %.3f (indoor %.3f)\n", hit.Sky, hit.Wall, hit.Indoor)
	}
	fmt.Printf("Temperature: %.2f °C\n", hit.TemperatureC)
	return nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	a, err := open(fs, flags)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("Scene:   %s\n", fs.Arg(0))
	fmt.Printf("Shapes:  %d\n", a.world.Scene.Len())
	fmt.Printf("Sources: %d\n", a.engine.SourceCount())
	fmt.Printf("Volumes: %d\n", a.engine.Volumes().Len())
	fmt.Println()

	for _, v := range a.engine.Volumes().All() {
		kind := "bounded"
		if v.Unbounded {
			kind = "unbounded"
		}
		g := v.GridFrame(a.cfg.Grid.DefaultCellSize, a.cfg.Grid.UnboundedExtent)
		fmt.Printf("%s (%s, %s)\n", v.Name, kind, v.ID)
		fmt.Printf("  grid %dx%dx%d, cell %.1f\n", g.Dim[0], g.Dim[1], g.Dim[2], g.CellSize)

		f := v.Field()
		if f == nil {
			fmt.Println("  not baked")
			continue
		}
		fmt.Printf("  baked %s\n", f.BakedAt.Format(time.RFC3339))
		for _, ch := range []field.Channel{field.SkyView, field.WallPermeability, field.Indoorness} {
			st, err := f.ChannelStats(ch)
			if err != nil {
				return err
			}
			fmt.Printf("  %-9s min %.3f  mean %.3f  max %.3f\n", ch, st.Min, st.Mean, st.Max)
		}
	}
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	flags := config.BindFlags(fs)
	name := fs.String("volume", "", "Volume name or ID (required)")
	format := fs.String("format", "csv", "csv, png or svg")
	channel := fs.String("channel", "skyview", "Heatmap channel: skyview, wallperm or indoor")
	layer := fs.Int("z", 0, "Heatmap Z layer")
	out := fs.String("out", "", "Output directory (default storage.export_dir)")
	fs.Parse(args)

	if *name == "" {
		return errors.New("export needs -volume")
	}

	a, err := open(fs, flags)
	if err != nil {
		return err
	}
	defer a.close()

	v, err := a.volume(*name)
	if err != nil {
		return err
	}
	f := v.Field()
	if f == nil {
		return fmt.Errorf("volume %s has no baked field; run bake first", v.Name)
	}

	dir := *out
	if dir == "" {
		dir = a.cfg.Storage.ExportDir
	}

	if *format == "csv" {
		path, err := export.SaveCSV(dir, v.Name, f)
		if err != nil {
			return err
		}
		fmt.Printf("Exported: %s (%d cells)\n", path, f.Len())
		return nil
	}

	ch, err := field.ParseChannel(*channel)
	if err != nil {
		return err
	}
	opt := export.DefaultHeatmapOptions()
	opt.Channel = ch
	opt.Z = *layer
	opt.Format = *format
	opt.Title = fmt.Sprintf("%s %s, layer %d", v.Name, ch, *layer)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, export.FileName(v.Name+"_"+ch.String(), *format, time.Now()))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteHeatmap(file, f, opt); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Printf("Exported: %s\n", path)
	return nil
}

func cmdHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	flags := config.BindFlags(fs)
	name := fs.String("volume", "", "Only this volume (name or ID)")
	prune := fs.Int("prune", 0, "Keep only the newest N bakes per volume (0 = no pruning)")
	fs.Parse(args)

	a, err := open(fs, flags)
	if err != nil {
		return err
	}
	defer a.close()
	if a.store == nil {
		return thermo.ErrNoStore
	}

	var vols []*volume.Volume
	if *name != "" {
		v, err := a.volume(*name)
		if err != nil {
			return err
		}
		vols = append(vols, v)
	} else {
		vols = a.engine.Volumes().All()
	}

	if *prune > 0 {
		for _, v := range vols {
			n, err := a.store.Prune(v.ID, *prune)
			if err != nil {
				return err
			}
			if n > 0 {
				fmt.Fprintf(os.Stderr, "Pruned %d bake(s) of %s\n", n, v.Name)
			}
		}
	}

	id := ""
	if *name != "" {
		id = vols[0].ID
	}
	recs, err := a.store.List(id)
	if err != nil {
		return err
	}
	fmt.Printf("%-36s %-20s %-14s %-20s %10s\n", "HANDLE", "VOLUME", "GRID", "BAKED", "BYTES")
	for _, r := range recs {
		label := r.VolumeName
		if label == "" {
			label = r.VolumeID
		}
		grid := fmt.Sprintf("%dx%dx%d", r.Dim[0], r.Dim[1], r.Dim[2])
		fmt.Printf("%-36s %-20s %-14s %-20s %10d\n", r.Handle, label, grid, r.BakedAt.Format("2006-01-02 15:04:05"), r.Bytes)
	}
	fmt.Fprintf(os.Stderr, "\n(%d stored bakes)\n", len(recs))
	return nil
}

func cmdSources(args []string) error {
	fs := flag.NewFlagSet("sources", flag.ExitOnError)
	flags := config.BindFlags(fs)
	x := fs.Float64("x", 0, "Sample X")
	y := fs.Float64("y", 0, "Sample Y")
	z := fs.Float64("z", 0, "Sample Z")
	fs.Parse(args)

	a, err := open(fs, flags)
	if err != nil {
		return err
	}
	defer a.close()

	pos := math.V3(*x, *y, *z)
	all := a.engine.AllSources()
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	fmt.Printf("%-20s %-8s %-14s %10s %10s %10s\n", "SOURCE", "STATE", "FALLOFF", "INTENSITY", "RADIUS", "AT POINT")
	for _, s := range all {
		state := "on"
		if !s.Enabled() {
			state = "off"
		}
		fmt.Printf("%-20s %-8s %-14s %10.2f %10.1f %10.3f\n",
			s.Name, state, s.Falloff(), s.Intensity(), s.Radius(), s.SampleAt(pos))
	}
	fmt.Fprintf(os.Stderr, "\n(%d registered sources)\n", len(all))
	return nil
}
