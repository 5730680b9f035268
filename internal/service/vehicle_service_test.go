package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/summary"
)

func TestVehicleServiceAddRunsCheck(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	result, err := h.vehicles.Add(ctx, AddVehicleInput{Plate: "30g46044", Email: "o@example.com"})
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.Equal(t, "30G-460.44", result.Vehicle.Vehicle.PlateNumber)
	assert.Equal(t, model.VehicleStatusHasViolation, result.Vehicle.Vehicle.Status)
	assert.Equal(t, 1, result.Vehicle.PendingCount)
	require.NotNil(t, result.Vehicle.LatestViolation)
	assert.Equal(t, "21:15, 05/02/2025", result.Vehicle.LatestViolation.Time)
	assert.Empty(t, h.notifier.Sent())

	logs := h.logbook.List()
	assert.Contains(t, logs[len(logs)-1].Message, "Added vehicle 30G-460.44")
}

func TestVehicleServiceAddRejectsDuplicateWithoutLogging(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.vehicles.Add(ctx, AddVehicleInput{Plate: "30G46044"})
	require.NoError(t, err)
	before := len(h.logbook.List())

	_, err = h.vehicles.Add(ctx, AddVehicleInput{Plate: "30G-460.44"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, h.logbook.List(), before)
}

func TestVehicleServiceListAndRemove(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.vehicles.Add(ctx, AddVehicleInput{Plate: "11A07378"})
	require.NoError(t, err)
	_, err = h.vehicles.Add(ctx, AddVehicleInput{Plate: "30G46044"})
	require.NoError(t, err)

	records := h.vehicles.List()
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[1].ResolvedCount)

	require.NoError(t, h.vehicles.Remove(ctx, first.Vehicle.Vehicle.ID))
	require.NoError(t, h.vehicles.Remove(ctx, first.Vehicle.Vehicle.ID))
	assert.Len(t, h.vehicles.List(), 1)

	_, err = h.vehicles.Get(first.Vehicle.Vehicle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVehicleServiceSummaryWithoutModel(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	added, err := h.vehicles.Add(ctx, AddVehicleInput{Plate: "51F12345"})
	require.NoError(t, err)

	got, err := h.vehicles.Summary(ctx, added.Vehicle.Vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.NoViolationsText, got.Summary)
	assert.Equal(t, "51F-123.45", got.Plate)

	_, err = h.vehicles.Summary(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
