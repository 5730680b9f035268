package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"traffic-care-service/internal/model"
)

const MaxLogEntries = 50

// Logbook is the dashboard event feed: newest first, bounded to MaxLogEntries.
// A failed write is reported to the process log and never to the caller, so
// recording an event cannot break the operation that produced it.
type Logbook struct {
	mu      sync.RWMutex
	store   DocumentStore
	key     string
	entries []model.SystemLog
	now     func() time.Time
	log     zerolog.Logger
}

func NewLogbook(ctx context.Context, store DocumentStore, key string, log zerolog.Logger) (*Logbook, error) {
	var entries []model.SystemLog
	if _, err := store.Load(ctx, key, &entries); err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}
	if len(entries) > MaxLogEntries {
		entries = entries[:MaxLogEntries]
	}
	if entries == nil {
		entries = []model.SystemLog{}
	}
	return &Logbook{
		store:   store,
		key:     key,
		entries: entries,
		now:     time.Now,
		log:     log,
	}, nil
}

func (l *Logbook) Append(ctx context.Context, typ model.LogType, category model.LogCategory, format string, args ...any) model.SystemLog {
	entry := model.SystemLog{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Type:      typ,
		Message:   fmt.Sprintf(format, args...),
		Category:  category,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]model.SystemLog, 0, MaxLogEntries)
	next = append(next, entry)
	for _, e := range l.entries {
		if len(next) == MaxLogEntries {
			break
		}
		next = append(next, e)
	}
	if err := l.store.Save(ctx, l.key, next); err != nil {
		l.log.Error().Err(err).Str("message", entry.Message).Msg("failed to persist system log")
	}
	l.entries = next
	return entry
}

func (l *Logbook) List() []model.SystemLog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.SystemLog, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Logbook) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Save(ctx, l.key, []model.SystemLog{}); err != nil {
		return fmt.Errorf("save logs: %w", err)
	}
	l.entries = []model.SystemLog{}
	return nil
}
