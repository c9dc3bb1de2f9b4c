package question

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoQuestions signals a fetch that succeeded but returned zero records.
var ErrNoQuestions = errors.New("no questions available")

// SetCache defines cache behavior (implemented by the Redis-backed Cache).
type SetCache interface {
	Get(ctx context.Context, req SetRequest) ([]Record, error)
	Set(ctx context.Context, req SetRequest, records []Record) error
}

type setStore interface {
	FetchSet(ctx context.Context, req SetRequest) ([]Record, error)
}

// Service is the Question Source: it serves ordered question sets from the
// cache when warm, falling back to the Postgres store.
type Service struct {
	store setStore
	cache SetCache
}

func NewService(store setStore, cache SetCache) *Service {
	return &Service{store: store, cache: cache}
}

// FetchSet returns the ordered question set for a request. A successful fetch
// with zero records yields ErrNoQuestions so callers can distinguish an empty
// bank from a failed fetch.
func (s *Service) FetchSet(ctx context.Context, req SetRequest) ([]Record, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, req); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	records, err := s.store.FetchSet(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch question set: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoQuestions
	}

	if s.cache != nil {
		// Best effort; a cold cache only costs the next reader a DB round trip.
		_ = s.cache.Set(ctx, req, records)
	}
	return records, nil
}
