package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-care-service/internal/model"
)

func TestRegistryAddValidates(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.registry.Add(ctx, AddVehicleInput{Plate: " -.- "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.registry.Add(ctx, AddVehicleInput{Plate: "30G46044", NotificationsEnabled: true})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, h.registry.List())
}

func TestRegistryAddFormatsAndPrepends(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.registry.Add(ctx, AddVehicleInput{Plate: "11a-073.78"})
	require.NoError(t, err)
	second, err := h.registry.Add(ctx, AddVehicleInput{Plate: "30g46044", Email: "x@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "11A-073.78", first.PlateNumber)
	assert.Equal(t, "30G-460.44", second.PlateNumber)
	// notifications off drops the address
	assert.Empty(t, second.Email)
	assert.Equal(t, model.VehicleStatusChecking, second.Status)
	assert.Equal(t, fixedNow, second.CreatedAt)

	list := h.registry.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRegistryRejectsDuplicatePlate(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.registry.Add(ctx, AddVehicleInput{Plate: "30G-460.44"})
	require.NoError(t, err)

	_, err = h.registry.Add(ctx, AddVehicleInput{Plate: "30g 46044"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, h.registry.List(), 1)
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	v, err := h.registry.Add(ctx, AddVehicleInput{Plate: "30G46044"})
	require.NoError(t, err)

	require.NoError(t, h.registry.Remove(ctx, v.ID))
	require.NoError(t, h.registry.Remove(ctx, v.ID))
	assert.Empty(t, h.registry.List())

	_, err = h.registry.Get(v.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrySurvivesReload(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	v, err := h.registry.Add(ctx, AddVehicleInput{Plate: "30G46044", Email: "a@example.com", NotificationsEnabled: true})
	require.NoError(t, err)

	reloaded, err := NewRegistry(ctx, h.store, h.keys.Vehicles)
	require.NoError(t, err)

	got, err := reloaded.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "30G-460.44", got.PlateNumber)
	assert.Equal(t, "a@example.com", got.Email)
	assert.True(t, got.CreatedAt.Equal(v.CreatedAt))
}

func TestRegistryFailedSaveLeavesListUntouched(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.store.setFailSave(true)
	_, err := h.registry.Add(ctx, AddVehicleInput{Plate: "30G46044"})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, h.registry.List())
}

func TestRegistryListReturnsCopies(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.registry.Add(ctx, AddVehicleInput{Plate: "30G46044"})
	require.NoError(t, err)

	list := h.registry.List()
	list[0].PlateNumber = "mutated"

	assert.Equal(t, "30G-460.44", h.registry.List()[0].PlateNumber)
}

func TestRegistryUpsertForTest(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	existing, err := h.registry.Add(ctx, AddVehicleInput{Plate: "11A07378"})
	require.NoError(t, err)
	other, err := h.registry.Add(ctx, AddVehicleInput{Plate: "51F12345"})
	require.NoError(t, err)

	touched, err := h.registry.UpsertForTest(ctx, []string{"30G46044", "11a-073.78", "30G-460.44"}, "qa@example.com")
	require.NoError(t, err)
	require.Len(t, touched, 2)
	assert.Equal(t, "30G-460.44", touched[0].PlateNumber)
	assert.Equal(t, existing.ID, touched[1].ID)

	list := h.registry.List()
	require.Len(t, list, 3)
	assert.Equal(t, other.ID, list[0].ID)
	assert.Equal(t, existing.ID, list[1].ID)
	assert.Equal(t, "30G-460.44", list[2].PlateNumber)

	for _, v := range touched {
		assert.True(t, v.NotificationsEnabled)
		assert.Equal(t, "qa@example.com", v.Email)
	}
}

func TestRegistryReplaceWritesOnlyCheckState(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	v, err := h.registry.Add(ctx, AddVehicleInput{Plate: "30G46044", Email: "owner@example.com", NotificationsEnabled: true})
	require.NoError(t, err)

	stale := v
	stale.Email = ""
	stale.NotificationsEnabled = false
	stale.PlateNumber = "ignored"
	stale.Status = model.VehicleStatusError
	stale.LastError = "source unavailable"
	stale.LastCheckAt = &fixedNow
	require.NoError(t, h.registry.Replace(ctx, stale))

	got, err := h.registry.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", got.Email)
	assert.True(t, got.NotificationsEnabled)
	assert.Equal(t, v.PlateNumber, got.PlateNumber)
	assert.Equal(t, model.VehicleStatusError, got.Status)
	assert.Equal(t, "source unavailable", got.LastError)
	require.NotNil(t, got.LastCheckAt)
	assert.True(t, fixedNow.Equal(*got.LastCheckAt))
}
