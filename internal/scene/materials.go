package scene

import (
	"strings"
	"sync"
)

// DefaultDensities lists common building materials in kg/m³.
var DefaultDensities = map[string]float64{
	"air":        1.225,
	"brick":      1900,
	"concrete":   2400,
	"earth":      1600,
	"glass":      2500,
	"insulation": 30,
	"steel":      7850,
	"stone":      2600,
	"water":      1000,
	"wood":       700,
}

// MaterialTable resolves material names to densities, case-insensitively.
// It implements occlusion.DensityResolver.
type MaterialTable struct {
	mu        sync.RWMutex
	densities map[string]float64
}

// NewMaterialTable creates a table seeded with the given densities.
func NewMaterialTable(seed map[string]float64) *MaterialTable {
	t := &MaterialTable{densities: make(map[string]float64, len(seed))}
	for name, rho := range seed {
		t.densities[strings.ToLower(name)] = rho
	}
	return t
}

// Set registers or replaces a material density.
func (t *MaterialTable) Set(name string, rho float64) {
	t.mu.Lock()
	t.densities[strings.ToLower(name)] = rho
	t.mu.Unlock()
}

// DensityOf returns the density of material.
func (t *MaterialTable) DensityOf(material string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	rho, ok := t.densities[strings.ToLower(material)]
	return rho, ok
}
