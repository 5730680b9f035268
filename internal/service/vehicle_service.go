package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/summary"
)

type VehicleService struct {
	registry   *Registry
	checks     *CheckService
	logbook    *Logbook
	summarizer summary.Summarizer
	log        zerolog.Logger
}

func NewVehicleService(
	registry *Registry,
	checks *CheckService,
	logbook *Logbook,
	summarizer summary.Summarizer,
	log zerolog.Logger,
) *VehicleService {
	return &VehicleService{
		registry:   registry,
		checks:     checks,
		logbook:    logbook,
		summarizer: summarizer,
		log:        log,
	}
}

type AddVehicleResult struct {
	Vehicle model.VehicleRecord `json:"vehicle"`
	Report  *CheckReport        `json:"report,omitempty"`
}

// Add tracks a new plate and immediately runs a check over the whole registry.
// When another batch is already running the vehicle is still added and stays
// in the checking state until the next batch picks it up.
func (s *VehicleService) Add(ctx context.Context, input AddVehicleInput) (*AddVehicleResult, error) {
	vehicle, err := s.registry.Add(ctx, input)
	if err != nil {
		return nil, err
	}

	s.logbook.Append(ctx, model.LogTypeInfo, model.LogCategorySystem,
		"Added vehicle %s. Starting scan...", vehicle.PlateNumber)

	result := &AddVehicleResult{}
	report, err := s.checks.Run(ctx, CheckRequest{})
	switch {
	case err == nil:
		result.Report = report
	case errors.Is(err, ErrCheckInProgress):
		s.log.Info().Str("vehicle_id", vehicle.ID).Msg("check in progress, new vehicle left for the next batch")
	default:
		return nil, err
	}

	if current, err := s.registry.Get(vehicle.ID); err == nil {
		vehicle = current
	}
	result.Vehicle = model.BuildVehicleRecord(vehicle)
	return result, nil
}

func (s *VehicleService) Remove(ctx context.Context, id string) error {
	v, err := s.registry.Get(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err := s.registry.Remove(ctx, id); err != nil {
		return err
	}
	s.logbook.Append(ctx, model.LogTypeInfo, model.LogCategorySystem,
		"Removed vehicle %s.", v.PlateNumber)
	return nil
}

func (s *VehicleService) List() []model.VehicleRecord {
	vehicles := s.registry.List()
	records := make([]model.VehicleRecord, 0, len(vehicles))
	for _, v := range vehicles {
		records = append(records, model.BuildVehicleRecord(v))
	}
	return records
}

func (s *VehicleService) Get(id string) (model.VehicleRecord, error) {
	v, err := s.registry.Get(id)
	if err != nil {
		return model.VehicleRecord{}, err
	}
	return model.BuildVehicleRecord(v), nil
}

func (s *VehicleService) Summary(ctx context.Context, id string) (model.ViolationSummary, error) {
	v, err := s.registry.Get(id)
	if err != nil {
		return model.ViolationSummary{}, err
	}
	return model.ViolationSummary{
		VehicleID: v.ID,
		Plate:     v.PlateNumber,
		Summary:   s.summarizer.Summarize(ctx, v.Violations),
	}, nil
}
