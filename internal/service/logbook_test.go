package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-care-service/internal/model"
)

func TestLogbookKeepsNewestFifty(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	for i := 0; i < MaxLogEntries+7; i++ {
		h.logbook.Append(ctx, model.LogTypeInfo, model.LogCategorySystem, "event %d", i)
	}

	entries := h.logbook.List()
	require.Len(t, entries, MaxLogEntries)
	assert.Equal(t, fmt.Sprintf("event %d", MaxLogEntries+6), entries[0].Message)
	assert.Equal(t, "event 7", entries[MaxLogEntries-1].Message)

	reloaded, err := NewLogbook(ctx, h.store, h.keys.Logs, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, entries, reloaded.List())
}

func TestLogbookAppendSurvivesStoreFailure(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.store.setFailSave(true)
	entry := h.logbook.Append(ctx, model.LogTypeWarning, model.LogCategoryNotification, "skipped %s", "30G-460.44")

	assert.Equal(t, "skipped 30G-460.44", entry.Message)
	assert.NotEmpty(t, entry.ID)
	assert.Len(t, h.logbook.List(), 1)
}

func TestLogbookClear(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.logbook.Append(ctx, model.LogTypeInfo, model.LogCategorySystem, "one")
	require.NoError(t, h.logbook.Clear(ctx))
	assert.Empty(t, h.logbook.List())

	reloaded, err := NewLogbook(ctx, h.store, h.keys.Logs, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, reloaded.List())
}
