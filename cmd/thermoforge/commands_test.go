package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/thermoforge/internal/bake"
	"github.com/Faultbox/thermoforge/internal/config"
	"github.com/Faultbox/thermoforge/internal/field"
	"github.com/Faultbox/thermoforge/internal/thermo"
	"github.com/Faultbox/thermoforge/internal/volume"
	"github.com/Faultbox/thermoforge/pkg/math"
)

type brokenStore struct{}

func (brokenStore) SaveField(string, *field.Field) (string, error) {
	return "", errors.New("disk full")
}

func (brokenStore) Latest(string) (*field.Field, error) {
	return nil, field.ErrNotFound
}

func smallVolume() *volume.Volume {
	v := volume.New("room", math.TransformIdentity(), math.V3(100, 100, 100))
	v.CellSize = 100
	return v
}

func TestBakeOneRecordsFailure(t *testing.T) {
	v := smallVolume()
	e := thermo.New(config.Default(), thermo.WithVolumes(v), thermo.WithStore(brokenStore{}))

	report, err := bakeOne(e, v.ID)
	require.ErrorIs(t, err, bake.ErrPersist)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.Equal(t, bake.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, bake.ErrPersist)
	assert.Equal(t, 1, report.Failed())
}

func TestBakeOneSuccess(t *testing.T) {
	v := smallVolume()
	e := thermo.New(config.Default(), thermo.WithVolumes(v))

	report, err := bakeOne(e, v.ID)
	require.NoError(t, err)
	assert.NoError(t, report.Results[0].Err)
	assert.Equal(t, 1, report.Baked())
	assert.True(t, v.HasField())
}

func TestBakeOneUnknownVolume(t *testing.T) {
	e := thermo.New(config.Default())
	report, err := bakeOne(e, "nope")
	require.ErrorIs(t, err, thermo.ErrUnknownVolume)
	assert.ErrorIs(t, report.Results[0].Err, thermo.ErrUnknownVolume)
}
