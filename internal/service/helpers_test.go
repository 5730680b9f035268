package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"traffic-care-service/internal/model"
	"traffic-care-service/internal/notify"
	"traffic-care-service/internal/repository"
	"traffic-care-service/internal/source"
	"traffic-care-service/internal/summary"
)

var errStoreDown = errors.New("store down")

// memStore keeps documents as JSON so tests go through the same
// encode/decode path as the real repositories.
type memStore struct {
	mu       sync.Mutex
	docs     map[string][]byte
	failSave bool
	saves    int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]byte{}}
}

func (m *memStore) Load(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.docs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(body, dest)
}

func (m *memStore) Save(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errStoreDown
	}
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[key] = body
	m.saves++
	return nil
}

func (m *memStore) setFailSave(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSave = v
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	fail func(notify.Message) error
}

func (n *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		if err := n.fail(msg); err != nil {
			return err
		}
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) Sent() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

type sourceFunc func(ctx context.Context, plateKey string) ([]model.ViolationRecord, error)

func (f sourceFunc) Lookup(ctx context.Context, plateKey string) ([]model.ViolationRecord, error) {
	return f(ctx, plateKey)
}

var fixedNow = time.Date(2025, 2, 6, 8, 0, 0, 0, time.UTC)

type harness struct {
	store    *memStore
	keys     repository.DocumentKeys
	registry *Registry
	settings *SettingsService
	logbook  *Logbook
	checks   *CheckService
	vehicles *VehicleService
	tests    *TestHarness
	notifier *fakeNotifier
}

func newHarness(t *testing.T, src source.Source) *harness {
	t.Helper()
	ctx := context.Background()

	if src == nil {
		src = source.NewFixtureSource()
	}

	store := newMemStore()
	keys := repository.KeysFor(repository.DefaultKeyPrefix)
	log := zerolog.Nop()

	registry, err := NewRegistry(ctx, store, keys.Vehicles)
	require.NoError(t, err)
	registry.now = func() time.Time { return fixedNow }

	settings, err := NewSettingsService(ctx, store, keys.Schedule)
	require.NoError(t, err)

	logbook, err := NewLogbook(ctx, store, keys.Logs, log)
	require.NoError(t, err)
	logbook.now = func() time.Time { return fixedNow }

	notifier := &fakeNotifier{}
	checks := NewCheckService(registry, settings, logbook, src, notifier, 2, log)
	checks.now = func() time.Time { return fixedNow }

	tests := NewTestHarness(registry, settings, checks, logbook)
	tests.now = func() time.Time { return fixedNow }

	return &harness{
		store:    store,
		keys:     keys,
		registry: registry,
		settings: settings,
		logbook:  logbook,
		checks:   checks,
		vehicles: NewVehicleService(registry, checks, logbook, summary.New(summary.Config{}, log), log),
		tests:    tests,
		notifier: notifier,
	}
}

func hasLog(entries []model.SystemLog, typ model.LogType, category model.LogCategory) bool {
	for _, e := range entries {
		if e.Type == typ && e.Category == category {
			return true
		}
	}
	return false
}
