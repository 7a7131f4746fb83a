// Package export writes baked fields to CSV dumps and heatmap images.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Faultbox/thermoforge/internal/field"
)

// FileName returns "<volume>_Field_<YYYYMMDD-HHMMSS>.<ext>" with characters
// unsafe in file names replaced.
func FileName(volume, ext string, t time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, volume)
	if clean == "" {
		clean = "volume"
	}
	return fmt.Sprintf("%s_Field_%s.%s", clean, t.Format("20060102-150405"), ext)
}

// WriteCSV writes f as a two-line header with grid dimensions, cell size and
// the world origin of cell (0,0,0), then one row per cell.
func WriteCSV(w io.Writer, f *field.Field) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	cw := csv.NewWriter(w)

	header := [][]string{
		{"# DimX", "DimY", "DimZ", "CellSizeCm", "OriginX", "OriginY", "OriginZ"},
		{
			strconv.Itoa(f.Dim[0]), strconv.Itoa(f.Dim[1]), strconv.Itoa(f.Dim[2]),
			ff(f.CellSize), ff(f.Origin.X), ff(f.Origin.Y), ff(f.Origin.Z),
		},
		{"index", "skyview", "wallperm", "indoor"},
	}
	if err := cw.WriteAll(header); err != nil {
		return fmt.Errorf("export csv header: %w", err)
	}

	row := make([]string, 4)
	for i := 0; i < f.Len(); i++ {
		row[0] = strconv.Itoa(i)
		row[1] = ff(f.Sky[i])
		row[2] = ff(f.Wall[i])
		row[3] = ff(f.Indoor[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes f into dir under FileName and returns the path.
func SaveCSV(dir, volume string, f *field.Field) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(volume, "csv", time.Now()))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(out, f); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
