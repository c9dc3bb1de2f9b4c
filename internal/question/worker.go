package question

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// RefreshWorker re-warms the question set cache on an interval so quiz
// sessions rarely pay the Postgres round trip at start.
type RefreshWorker struct {
	service  *Service
	req      SetRequest
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewRefreshWorker(service *Service, req SetRequest, interval, timeout time.Duration, logger zerolog.Logger) *RefreshWorker {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &RefreshWorker{
		service:  service,
		req:      req,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("question refresh worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if _, err := w.service.FetchSet(fetchCtx, w.req); err != nil {
		if errors.Is(err, ErrNoQuestions) {
			w.logger.Warn().Msg("question bank is empty")
			return
		}
		w.logger.Warn().Err(err).Msg("question cache refresh failed")
	}
}
