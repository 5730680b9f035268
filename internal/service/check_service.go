package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/notify"
	"traffic-care-service/internal/source"
	"traffic-care-service/internal/utils"
)

type NotificationOutcome string

const (
	NotificationNone    NotificationOutcome = "none"
	NotificationSent    NotificationOutcome = "sent"
	NotificationSkipped NotificationOutcome = "skipped"
	NotificationFailed  NotificationOutcome = "failed"
)

type CheckRequest struct {
	// VehicleIDs limits the batch; empty means every tracked vehicle.
	VehicleIDs []string
	// Forced sends notifications regardless of what the fetch found.
	Forced bool
}

type VehicleOutcome struct {
	VehicleID     string              `json:"vehicle_id"`
	Plate         string              `json:"plate"`
	Status        model.VehicleStatus `json:"status"`
	Pending       int                 `json:"pending"`
	NewViolations int                 `json:"new_violations"`
	Notification  NotificationOutcome `json:"notification"`
	Error         string              `json:"error,omitempty"`
}

type CheckReport struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Forced     bool             `json:"forced"`
	Vehicles   []VehicleOutcome `json:"vehicles"`
}

func (r *CheckReport) Outcome(vehicleID string) (VehicleOutcome, bool) {
	for _, o := range r.Vehicles {
		if o.VehicleID == vehicleID {
			return o, true
		}
	}
	return VehicleOutcome{}, false
}

// cycleResult is the per-vehicle state carried from the fetch phase to the
// notify phase of one batch. It is never persisted.
type cycleResult struct {
	vehicle      model.Vehicle
	added        int
	pending      int
	shouldNotify bool
	fetchErr     error
}

// CheckService runs check batches: fetch and merge every vehicle, commit, then
// notify. At most one batch runs at a time.
type CheckService struct {
	registry    *Registry
	settings    *SettingsService
	logbook     *Logbook
	source      source.Source
	notifier    notify.Notifier
	concurrency int
	log         zerolog.Logger
	now         func() time.Time

	running atomic.Bool
}

func NewCheckService(
	registry *Registry,
	settings *SettingsService,
	logbook *Logbook,
	src source.Source,
	notifier notify.Notifier,
	concurrency int,
	log zerolog.Logger,
) *CheckService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &CheckService{
		registry:    registry,
		settings:    settings,
		logbook:     logbook,
		source:      src,
		notifier:    notifier,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

func (s *CheckService) Running() bool {
	return s.running.Load()
}

// Run executes one batch. Per-vehicle failures are recorded in the report and
// the system log; the only errors returned are ErrCheckInProgress and unknown
// vehicle ids.
func (s *CheckService) Run(ctx context.Context, req CheckRequest) (*CheckReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCheckInProgress
	}
	defer s.running.Store(false)

	targets, err := s.selectTargets(req.VehicleIDs)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{
		StartedAt: s.now(),
		Forced:    req.Forced,
		Vehicles:  []VehicleOutcome{},
	}
	if len(targets) == 0 {
		report.FinishedAt = s.now()
		return report, nil
	}

	schedule := s.settings.Get()

	s.markChecking(ctx, targets)
	s.logbook.Append(ctx, model.LogTypeInfo, model.LogCategoryScraping,
		"Querying violation source for %d vehicle(s)...", len(targets))

	results := s.fetchAll(ctx, targets, schedule.NotificationStrategy, req.Forced)

	// Every vehicle is merged before the first notification goes out.
	s.commit(ctx, results)

	for i := range results {
		outcome := VehicleOutcome{
			VehicleID:     results[i].vehicle.ID,
			Plate:         results[i].vehicle.PlateNumber,
			Status:        results[i].vehicle.Status,
			Pending:       results[i].pending,
			NewViolations: results[i].added,
			Notification:  NotificationNone,
		}
		if results[i].fetchErr != nil {
			outcome.Error = results[i].fetchErr.Error()
		}
		if results[i].shouldNotify {
			outcome.Notification = s.dispatch(ctx, results[i])
		}
		report.Vehicles = append(report.Vehicles, outcome)
	}

	s.logbook.Append(ctx, model.LogTypeSuccess, model.LogCategorySystem, "Sync completed.")
	report.FinishedAt = s.now()

	s.log.Info().
		Int("vehicles", len(report.Vehicles)).
		Bool("forced", req.Forced).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("check batch finished")

	return report, nil
}

func (s *CheckService) selectTargets(ids []string) ([]model.Vehicle, error) {
	if len(ids) == 0 {
		return s.registry.List(), nil
	}
	targets := make([]model.Vehicle, 0, len(ids))
	for _, id := range ids {
		v, err := s.registry.Get(id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, v)
	}
	return targets, nil
}

func (s *CheckService) markChecking(ctx context.Context, targets []model.Vehicle) {
	checking := make([]model.Vehicle, len(targets))
	for i, v := range targets {
		v.Status = model.VehicleStatusChecking
		checking[i] = v
	}
	if err := s.registry.Replace(ctx, checking...); err != nil {
		s.log.Error().Err(err).Msg("failed to mark vehicles as checking")
	}
}

func (s *CheckService) fetchAll(ctx context.Context, targets []model.Vehicle, strategy model.NotificationStrategy, forced bool) []cycleResult {
	results := make([]cycleResult, len(targets))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, v := range targets {
		i, v := i, v
		g.Go(func() error {
			results[i] = s.checkOne(ctx, v, strategy, forced)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *CheckService) checkOne(ctx context.Context, v model.Vehicle, strategy model.NotificationStrategy, forced bool) cycleResult {
	key := utils.NormalizePlate(v.PlateNumber)
	checkedAt := s.now()
	v.LastCheckAt = &checkedAt

	fetched, err := s.source.Lookup(ctx, key)
	if err != nil {
		v.Status = model.VehicleStatusError
		v.LastError = err.Error()
		s.log.Warn().Err(err).Str("plate", key).Str("vehicle_id", v.ID).Msg("violation lookup failed")
		s.logbook.Append(ctx, model.LogTypeError, model.LogCategoryScraping,
			"Lookup failed for %s: %v", v.PlateNumber, err)
		return cycleResult{vehicle: v, pending: model.CountPending(v.Violations), fetchErr: err}
	}

	merged := MergeViolations(v.Violations, fetched)
	added := len(merged.Violations) - len(v.Violations)
	v.Violations = merged.Violations
	v.Status = merged.Status
	v.LastError = ""

	s.log.Debug().
		Str("plate", key).
		Int("fetched", len(fetched)).
		Int("new", added).
		Int("pending", merged.Pending).
		Msg("violations reconciled")

	return cycleResult{
		vehicle:      v,
		added:        added,
		pending:      merged.Pending,
		shouldNotify: ShouldNotify(v, strategy, forced, merged.Pending),
	}
}

func (s *CheckService) commit(ctx context.Context, results []cycleResult) {
	vehicles := make([]model.Vehicle, len(results))
	for i, r := range results {
		vehicles[i] = r.vehicle
	}
	if err := s.registry.Replace(ctx, vehicles...); err != nil {
		s.log.Error().Err(err).Int("vehicles", len(vehicles)).Msg("failed to save check results")
		s.logbook.Append(ctx, model.LogTypeError, model.LogCategorySystem, "Failed to save check results: %v", err)
	}
}

func (s *CheckService) dispatch(ctx context.Context, r cycleResult) NotificationOutcome {
	v := r.vehicle
	err := s.notifier.Send(ctx, notify.Message{
		To:      v.Email,
		Plate:   v.PlateNumber,
		Pending: r.pending,
		Now:     s.now(),
	})
	switch {
	case err == nil:
		s.logbook.Append(ctx, model.LogTypeSuccess, model.LogCategoryNotification,
			"Report email sent for %s", v.PlateNumber)
		return NotificationSent
	case errors.Is(err, notify.ErrNotConfigured):
		s.logbook.Append(ctx, model.LogTypeWarning, model.LogCategoryNotification,
			"Email delivery is not configured. Skipping email for %s", v.PlateNumber)
		return NotificationSkipped
	default:
		s.log.Error().Err(err).Str("plate", v.PlateNumber).Str("vehicle_id", v.ID).Msg("email delivery failed")
		s.logbook.Append(ctx, model.LogTypeError, model.LogCategorySMTP,
			"Email delivery failed for %s: %v", v.PlateNumber, err)
		return NotificationFailed
	}
}
