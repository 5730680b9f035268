// Package source provides the violation lookups a check cycle runs against.
//
// Source is the only contract the check runner depends on. The in-repo
// implementation is a static fixture; a network-backed lookup can replace it
// without touching reconciliation.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"traffic-care-service/internal/model"
)

// ErrUnavailable marks a lookup that failed, as opposed to one that found
// nothing. An empty result with a nil error is a clean answer.
var ErrUnavailable = errors.New("violation source unavailable")

type Source interface {
	Lookup(ctx context.Context, plateKey string) ([]model.ViolationRecord, error)
}

// TimeoutSource bounds every lookup of the wrapped source.
type TimeoutSource struct {
	next    Source
	timeout time.Duration
}

func WithTimeout(next Source, timeout time.Duration) Source {
	if timeout <= 0 {
		return next
	}
	return &TimeoutSource{next: next, timeout: timeout}
}

func (s *TimeoutSource) Lookup(ctx context.Context, plateKey string) ([]model.ViolationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		records []model.ViolationRecord
		err     error
	}
	done := make(chan result, 1)
	go func() {
		records, err := s.next.Lookup(ctx, plateKey)
		done <- result{records: records, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil && !errors.Is(res.err, ErrUnavailable) {
			return nil, fmt.Errorf("%w: lookup %s: %v", ErrUnavailable, plateKey, res.err)
		}
		return res.records, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: lookup %s: %v", ErrUnavailable, plateKey, ctx.Err())
	}
}
