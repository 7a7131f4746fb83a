package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/pkg/math"
)

func sampleField(t *testing.T) *field.Field {
	t.Helper()
	g := field.NewGridFrame(
		math.Box{Min: math.V3(0, 0, 0), Max: math.V3(300, 200, 200)},
		field.Frame{Origin: math.V3(0, 0, 0), Rotation: math.QuatIdentity(), CellSize: 100},
	)
	n := g.Count()
	sky, wall, in := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		sky[i] = float64(i) / float64(n)
		wall[i] = 1
		in[i] = 0
	}
	f, err := field.New("vol", g, sky, wall, in)
	require.NoError(t, err)
	return f
}

func TestWriteCSV(t *testing.T) {
	f := sampleField(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, f))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3+f.Len())
	assert.Equal(t, "# DimX,DimY,DimZ,CellSizeCm,OriginX,OriginY,OriginZ", lines[0])
	assert.Equal(t, "3,2,2,100.000000,0.000000,0.000000,0.000000", lines[1])
	assert.Equal(t, "index,skyview,wallperm,indoor", lines[2])
	assert.Equal(t, "0,0.000000,1.000000,0.000000", lines[3])
	assert.Equal(t, "6,0.500000,1.000000,0.000000", lines[9])

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs[3], 4)
}

func TestWriteCSVRejectsInvalid(t *testing.T) {
	f := sampleField(t)
	f.Wall = f.Wall[:1]
	err := WriteCSV(&bytes.Buffer{}, f)
	assert.ErrorIs(t, err, field.ErrLengthMismatch)
}

func TestFileName(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "Main_Hall_Field_20250304-050607.csv", FileName("Main Hall", "csv", ts))
	assert.Equal(t, "a_b_Field_20250304-050607.png", FileName("a/b", "png", ts))
	assert.Equal(t, "volume_Field_20250304-050607.csv", FileName("", "csv", ts))
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveCSV(dir, "room", sampleField(t))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# DimX"))
}

func TestWriteHeatmap(t *testing.T) {
	f := sampleField(t)
	opt := DefaultHeatmapOptions()
	opt.Z = 1

	var buf bytes.Buffer
	require.NoError(t, WriteHeatmap(&buf, f, opt))
	// PNG signature
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestWriteHeatmapBadLayer(t *testing.T) {
	opt := DefaultHeatmapOptions()
	opt.Z = 7
	err := WriteHeatmap(&bytes.Buffer{}, sampleField(t), opt)
	assert.ErrorIs(t, err, field.ErrIndexOutOfRange)
}

func TestSliceGrid(t *testing.T) {
	f := sampleField(t)
	s := slice{f: f, data: f.Sky, z: 1}
	c, r := s.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, f.Sky[f.Grid().Index(2, 1, 1)], s.Z(2, 1))
	assert.Equal(t, 250.0, s.X(2))
}
