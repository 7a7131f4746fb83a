package bake

import (
	"time"
)

// Status is the outcome of baking one volume.
type Status int

// Bake outcomes.
const (
	StatusBaked Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusBaked:
		return "baked"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one volume's bake.
type Result struct {
	VolumeID string
	Name     string
	Status   Status
	Dim      [3]int
	Cells    int
	Handle   string // persistence handle, empty without a Persister
	Duration time.Duration
	Err      error
}

// Report collects the results of BakeAll.
type Report struct {
	Results  []Result
	Duration time.Duration
}

func (r Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Baked returns how many volumes received a new field.
func (r Report) Baked() int { return r.count(StatusBaked) }

// Skipped returns how many volumes had an empty grid.
func (r Report) Skipped() int { return r.count(StatusSkipped) }

// Failed returns how many volumes failed to bake or persist.
func (r Report) Failed() int { return r.count(StatusFailed) }
