package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/utils"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// SettingsService owns the check schedule document. It is read once at
// startup, defaulted when absent and rewritten on every change.
type SettingsService struct {
	mu       sync.RWMutex
	store    DocumentStore
	key      string
	schedule model.CheckSchedule
}

func NewSettingsService(ctx context.Context, store DocumentStore, key string) (*SettingsService, error) {
	schedule := model.DefaultCheckSchedule()
	found, err := store.Load(ctx, key, &schedule)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if !found {
		if err := store.Save(ctx, key, schedule); err != nil {
			return nil, fmt.Errorf("save default schedule: %w", err)
		}
	}
	return &SettingsService{
		store:    store,
		key:      key,
		schedule: schedule,
	}, nil
}

func (s *SettingsService) Get() model.CheckSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule.Clone()
}

// EmailConfig is the credentials view handed to the notifier.
func (s *SettingsService) EmailConfig() model.EmailConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule.Email
}

func (s *SettingsService) Update(ctx context.Context, next model.CheckSchedule) (model.CheckSchedule, error) {
	next = next.Clone()
	if err := normalizeSchedule(&next); err != nil {
		return model.CheckSchedule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistLocked(ctx, next); err != nil {
		return model.CheckSchedule{}, err
	}
	return next.Clone(), nil
}

// SetTestConfig stores the plates and target email of the latest test run.
func (s *SettingsService) SetTestConfig(ctx context.Context, plates []string, targetEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.schedule.Clone()
	next.Test.TestPlates = append([]string(nil), plates...)
	next.Test.TargetEmail = targetEmail
	return s.persistLocked(ctx, next)
}

func (s *SettingsService) persistLocked(ctx context.Context, next model.CheckSchedule) error {
	if err := s.store.Save(ctx, s.key, next); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	s.schedule = next
	return nil
}

func normalizeSchedule(s *model.CheckSchedule) error {
	switch s.Frequency {
	case "":
		s.Frequency = model.CheckFrequencyDaily
	case model.CheckFrequencyDaily, model.CheckFrequencyWeekly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, s.Frequency)
	}

	switch s.NotificationStrategy {
	case "":
		s.NotificationStrategy = model.NotificationStrategyOnChange
	case model.NotificationStrategyOnChange, model.NotificationStrategyAlways:
	default:
		return fmt.Errorf("%w: unknown notification strategy %q", ErrInvalidInput, s.NotificationStrategy)
	}

	s.Time = strings.TrimSpace(s.Time)
	if s.Time != "" && !clockPattern.MatchString(s.Time) {
		return fmt.Errorf("%w: time must be HH:mm, got %q", ErrInvalidInput, s.Time)
	}
	times := make([]string, 0, len(s.NotificationTimes))
	for _, t := range s.NotificationTimes {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !clockPattern.MatchString(t) {
			return fmt.Errorf("%w: notification time must be HH:mm, got %q", ErrInvalidInput, t)
		}
		times = append(times, t)
	}
	s.NotificationTimes = times

	if s.Email.Port < 0 || s.Email.Port > 65535 {
		return fmt.Errorf("%w: invalid smtp port %d", ErrInvalidInput, s.Email.Port)
	}
	s.Email.ServiceID = strings.TrimSpace(s.Email.ServiceID)
	s.Email.TemplateID = strings.TrimSpace(s.Email.TemplateID)
	s.Email.PublicKey = strings.TrimSpace(s.Email.PublicKey)

	plates := make([]string, 0, len(s.Test.TestPlates))
	for _, p := range s.Test.TestPlates {
		if key := utils.NormalizePlate(p); key != "" {
			plates = append(plates, key)
		}
	}
	s.Test.TestPlates = plates
	s.Test.TargetEmail = strings.TrimSpace(s.Test.TargetEmail)
	return nil
}
