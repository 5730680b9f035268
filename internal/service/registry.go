package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/utils"
)

// Registry is the tracked-vehicle list. The list is copy-on-write: a mutation
// builds a new slice, persists it and only then swaps it in, so readers see
// either the old or the new list, never a mix.
type Registry struct {
	mu       sync.RWMutex
	store    DocumentStore
	key      string
	vehicles []model.Vehicle
	now      func() time.Time
}

func NewRegistry(ctx context.Context, store DocumentStore, key string) (*Registry, error) {
	var vehicles []model.Vehicle
	if _, err := store.Load(ctx, key, &vehicles); err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	return &Registry{
		store:    store,
		key:      key,
		vehicles: vehicles,
		now:      time.Now,
	}, nil
}

type AddVehicleInput struct {
	Plate                string
	Email                string
	NotificationsEnabled bool
}

// List returns vehicles newest-added first.
func (r *Registry) List() []model.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.CloneVehicles(r.vehicles)
}

func (r *Registry) Get(id string) (model.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vehicles {
		if v.ID == id {
			return v.Clone(), nil
		}
	}
	return model.Vehicle{}, ErrNotFound
}

func (r *Registry) Add(ctx context.Context, input AddVehicleInput) (model.Vehicle, error) {
	key := utils.NormalizePlate(input.Plate)
	if key == "" {
		return model.Vehicle{}, fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}

	email := ""
	if input.NotificationsEnabled {
		email = strings.TrimSpace(input.Email)
		if email == "" {
			return model.Vehicle{}, fmt.Errorf("%w: email is required when notifications are enabled", ErrInvalidInput)
		}
	}

	var added model.Vehicle
	err := r.update(ctx, func(current []model.Vehicle) ([]model.Vehicle, error) {
		if indexOfPlate(current, key) != -1 {
			return nil, fmt.Errorf("%w: vehicle %s is already tracked", ErrConflict, utils.FormatPlate(key))
		}
		added = model.Vehicle{
			ID:                   uuid.NewString(),
			PlateNumber:          utils.FormatPlate(key),
			Email:                email,
			NotificationsEnabled: input.NotificationsEnabled,
			Status:               model.VehicleStatusChecking,
			CreatedAt:            r.now(),
			Violations:           []model.ViolationRecord{},
		}
		return append([]model.Vehicle{added}, current...), nil
	})
	if err != nil {
		return model.Vehicle{}, err
	}
	return added.Clone(), nil
}

// Remove deletes a vehicle by id. Removing an unknown id is a no-op.
func (r *Registry) Remove(ctx context.Context, id string) error {
	return r.update(ctx, func(current []model.Vehicle) ([]model.Vehicle, error) {
		out := make([]model.Vehicle, 0, len(current))
		for _, v := range current {
			if v.ID != id {
				out = append(out, v)
			}
		}
		if len(out) == len(current) {
			return nil, errNoChange
		}
		return out, nil
	})
}

// Replace writes back the check state of updated vehicles by id: status,
// last check, last error and violations. Owner fields edited in the meantime
// are kept. Vehicles removed in the meantime are dropped silently.
func (r *Registry) Replace(ctx context.Context, updated ...model.Vehicle) error {
	if len(updated) == 0 {
		return nil
	}
	byID := make(map[string]model.Vehicle, len(updated))
	for _, v := range updated {
		byID[v.ID] = v
	}
	return r.update(ctx, func(current []model.Vehicle) ([]model.Vehicle, error) {
		out := make([]model.Vehicle, len(current))
		changed := false
		for i, v := range current {
			if nv, ok := byID[v.ID]; ok {
				nv = nv.Clone()
				v.Status = nv.Status
				v.LastCheckAt = nv.LastCheckAt
				v.LastError = nv.LastError
				v.Violations = nv.Violations
				out[i] = v
				changed = true
				continue
			}
			out[i] = v
		}
		if !changed {
			return nil, errNoChange
		}
		return out, nil
	})
}

// UpsertForTest makes sure every plate is tracked with the given email and
// notifications on. Unseen plates are appended at the end of the list.
// The returned vehicles follow the order of plates.
func (r *Registry) UpsertForTest(ctx context.Context, plates []string, email string) ([]model.Vehicle, error) {
	var touched []model.Vehicle
	err := r.update(ctx, func(current []model.Vehicle) ([]model.Vehicle, error) {
		out := model.CloneVehicles(current)
		touched = touched[:0]
		seen := make(map[string]bool, len(plates))
		for _, raw := range plates {
			key := utils.NormalizePlate(raw)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			if idx := indexOfPlate(out, key); idx != -1 {
				out[idx].PlateNumber = utils.FormatPlate(key)
				out[idx].Email = email
				out[idx].NotificationsEnabled = true
				touched = append(touched, out[idx])
				continue
			}
			v := model.Vehicle{
				ID:                   uuid.NewString(),
				PlateNumber:          utils.FormatPlate(key),
				Email:                email,
				NotificationsEnabled: true,
				Status:               model.VehicleStatusChecking,
				CreatedAt:            r.now(),
				Violations:           []model.ViolationRecord{},
			}
			out = append(out, v)
			touched = append(touched, v)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return model.CloneVehicles(touched), nil
}

var errNoChange = errors.New("no change")

func (r *Registry) update(ctx context.Context, mutate func([]model.Vehicle) ([]model.Vehicle, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := mutate(r.vehicles)
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if err := r.store.Save(ctx, r.key, next); err != nil {
		return fmt.Errorf("save vehicles: %w", err)
	}
	r.vehicles = next
	return nil
}

func indexOfPlate(list []model.Vehicle, key string) int {
	for i, v := range list {
		if utils.SamePlate(v.PlateNumber, key) {
			return i
		}
	}
	return -1
}
