package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-care-service/internal/model"
)

func TestSettingsDefaultsArePersisted(t *testing.T) {
	h := newHarness(t, nil)

	got := h.settings.Get()
	assert.Equal(t, model.DefaultCheckSchedule(), got)

	var stored model.CheckSchedule
	found, err := h.store.Load(context.Background(), h.keys.Schedule, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, got, stored)
}

func TestSettingsUpdate(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	next := h.settings.Get()
	next.NotificationStrategy = model.NotificationStrategyAlways
	next.Frequency = model.CheckFrequencyWeekly
	next.NotificationTimes = []string{" 07:30 ", ""}
	next.Email.ServiceID = " service_x "
	next.Email.TemplateID = "template_y"
	next.Email.PublicKey = "key"

	saved, err := h.settings.Update(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, []string{"07:30"}, saved.NotificationTimes)
	assert.Equal(t, "service_x", saved.Email.ServiceID)
	assert.True(t, h.settings.EmailConfig().Configured())

	reloaded, err := NewSettingsService(ctx, h.store, h.keys.Schedule)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStrategyAlways, reloaded.Get().NotificationStrategy)
}

func TestSettingsUpdateRejectsInvalidValues(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	cases := map[string]func(*model.CheckSchedule){
		"strategy":  func(s *model.CheckSchedule) { s.NotificationStrategy = "hourly" },
		"frequency": func(s *model.CheckSchedule) { s.Frequency = "monthly" },
		"time":      func(s *model.CheckSchedule) { s.Time = "25:00" },
		"notify at": func(s *model.CheckSchedule) { s.NotificationTimes = []string{"8am"} },
		"port":      func(s *model.CheckSchedule) { s.Email.Port = 70000 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			next := h.settings.Get()
			mutate(&next)
			_, err := h.settings.Update(ctx, next)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	assert.Equal(t, model.DefaultCheckSchedule(), h.settings.Get())
}
