package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/utils"
)

type TestRunInput struct {
	// Plates is a comma separated list as typed by the operator.
	Plates string
	// TargetEmail falls back to the stored test target when empty.
	TargetEmail string
}

type TestRunResult struct {
	Lines  []string     `json:"lines"`
	Report *CheckReport `json:"report"`
}

// TestHarness runs the end-to-end notification drill: it registers the test
// plates against the target mailbox and runs a forced check on them.
type TestHarness struct {
	registry *Registry
	settings *SettingsService
	checks   *CheckService
	logbook  *Logbook
	now      func() time.Time
}

func NewTestHarness(registry *Registry, settings *SettingsService, checks *CheckService, logbook *Logbook) *TestHarness {
	return &TestHarness{
		registry: registry,
		settings: settings,
		checks:   checks,
		logbook:  logbook,
		now:      time.Now,
	}
}

// Run executes the drill. progress, when set, receives every line as soon as
// it is produced.
func (h *TestHarness) Run(ctx context.Context, input TestRunInput, progress func(string)) (*TestRunResult, error) {
	plates := splitPlates(input.Plates)
	email := strings.TrimSpace(input.TargetEmail)
	if email == "" {
		email = h.settings.Get().Test.TargetEmail
	}
	if len(plates) == 0 || email == "" {
		return nil, fmt.Errorf("%w: test plates and target email are required", ErrInvalidInput)
	}
	if h.checks.Running() {
		return nil, ErrCheckInProgress
	}

	if err := h.settings.SetTestConfig(ctx, plates, email); err != nil {
		return nil, err
	}

	vehicles, err := h.registry.UpsertForTest(ctx, plates, email)
	if err != nil {
		return nil, err
	}
	// an empty id list would widen the forced batch to every vehicle
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("%w: no valid test plates", ErrInvalidInput)
	}

	result := &TestRunResult{Lines: []string{}}
	emit := func(format string, args ...any) {
		line := fmt.Sprintf("[%s] ", h.now().Format("15:04:05")) + fmt.Sprintf(format, args...)
		result.Lines = append(result.Lines, line)
		if progress != nil {
			progress(line)
		}
	}

	emit("Starting test cycle for %d plate(s) -> %s", len(vehicles), email)
	h.logbook.Append(ctx, model.LogTypeInfo, model.LogCategoryTest,
		"Test cycle started for %s", strings.Join(plates, ", "))

	ids := make([]string, len(vehicles))
	for i, v := range vehicles {
		ids[i] = v.ID
	}
	report, err := h.checks.Run(ctx, CheckRequest{VehicleIDs: ids, Forced: true})
	if err != nil {
		return nil, err
	}
	result.Report = report

	for _, o := range report.Vehicles {
		if o.Error != "" {
			emit("%s: lookup failed: %s", o.Plate, o.Error)
			continue
		}
		emit("%s: %d unresolved, %d new, email %s", o.Plate, o.Pending, o.NewViolations, o.Notification)
	}
	emit("Test cycle finished.")

	return result, nil
}

func splitPlates(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); utils.NormalizePlate(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
