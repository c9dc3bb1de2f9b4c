package quiz

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pharmexam/examprep/internal/question"
)

// Source supplies ordered question records (implemented by question.Service).
type Source interface {
	FetchSet(ctx context.Context, req question.SetRequest) ([]question.Record, error)
}

// ManagerOptions configures session creation and housekeeping.
type ManagerOptions struct {
	FetchTimeout  time.Duration // question source timeout, default 4s
	QuestionLimit int           // max questions per session, default 50
	IdleTimeout   time.Duration // evict sessions untouched this long, default 2h
	Rand          *rand.Rand    // shuffle source, nil for time-seeded
}

// Manager owns all live quiz sessions. Each session has a single logical
// writer, so every operation runs under the manager lock; the question fetch
// is the one slow path and happens outside it.
type Manager struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry

	source        Source
	shuffler      *Shuffler
	fetchTimeout  time.Duration
	questionLimit int
	idleTimeout   time.Duration
	logger        zerolog.Logger
}

type entry struct {
	owner    uuid.UUID
	category string
	session  *Session
	touched  time.Time
}

// NewManager creates a session manager over a question source.
func NewManager(source Source, opts ManagerOptions, logger zerolog.Logger) *Manager {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 4 * time.Second
	}
	if opts.QuestionLimit <= 0 {
		opts.QuestionLimit = 50
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 2 * time.Hour
	}
	return &Manager{
		entries:       make(map[uuid.UUID]*entry),
		source:        source,
		shuffler:      NewShuffler(opts.Rand),
		fetchTimeout:  opts.FetchTimeout,
		questionLimit: opts.QuestionLimit,
		idleTimeout:   opts.IdleTimeout,
		logger:        logger,
	}
}

// Start creates a session for an owner: fetch the question set, shuffle each
// question's choices once, and begin the attempt. Fetch errors and empty
// banks do not fail the call; the returned snapshot carries the terminal
// phase so the client always has something renderable.
func (m *Manager) Start(ctx context.Context, owner uuid.UUID, category string) (uuid.UUID, Snapshot, error) {
	sess := m.load(ctx, category)

	id := uuid.New()
	m.mu.Lock()
	m.entries[id] = &entry{owner: owner, category: category, session: sess, touched: time.Now()}
	m.mu.Unlock()

	metricSessionsStarted.Inc()
	m.logger.Info().
		Str("session_id", id.String()).
		Str("owner", owner.String()).
		Str("phase", sess.Phase().String()).
		Msg("quiz session started")

	return id, sess.Snapshot(), nil
}

// load runs the Loading phase: one fetch, shuffle, and the resulting
// transition to InProgress, Empty, or Error.
func (m *Manager) load(ctx context.Context, category string) *Session {
	sess := NewSession()

	fetchCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()

	records, err := m.source.FetchSet(fetchCtx, question.SetRequest{Category: category, Limit: m.questionLimit})
	if err != nil {
		if errors.Is(err, question.ErrNoQuestions) {
			_ = sess.Load(nil)
			return sess
		}
		metricFetchFailures.Inc()
		m.logger.Error().Err(err).Msg("question fetch failed")
		sess.Fail("Failed to load quiz questions")
		return sess
	}

	questions := make([]Question, 0, len(records))
	for _, rec := range records {
		q, err := m.shuffler.Shuffle(rec)
		if err != nil {
			metricQuestionsExcluded.Inc()
			m.logger.Warn().Err(err).Str("question_id", rec.ID).Msg("excluding malformed question")
			continue
		}
		questions = append(questions, q)
	}

	_ = sess.Load(questions)
	return sess
}

// Snapshot returns the current view of a session.
func (m *Manager) Snapshot(owner, id uuid.UUID) (Snapshot, error) {
	return m.apply(owner, id, func(s *Session) error { return nil })
}

// Select records a choice on the current question.
func (m *Manager) Select(owner, id uuid.UUID, choice string) (Snapshot, error) {
	return m.apply(owner, id, func(s *Session) error { return s.Select(choice) })
}

// Check grades the current selection.
func (m *Manager) Check(owner, id uuid.UUID) (Snapshot, error) {
	return m.apply(owner, id, func(s *Session) error {
		correct, err := s.Check()
		if err != nil {
			return err
		}
		if correct {
			metricAnswersChecked.WithLabelValues("correct").Inc()
		} else {
			metricAnswersChecked.WithLabelValues("incorrect").Inc()
		}
		return nil
	})
}

// Next advances the session, completing it from the last question.
func (m *Manager) Next(owner, id uuid.UUID) (Snapshot, error) {
	return m.apply(owner, id, func(s *Session) error {
		before := s.Phase()
		if err := s.Next(); err != nil {
			return err
		}
		if before == PhaseInProgress && s.Phase() == PhaseCompleted {
			metricSessionsCompleted.Inc()
		}
		return nil
	})
}

// Previous steps back one question.
func (m *Manager) Previous(owner, id uuid.UUID) (Snapshot, error) {
	return m.apply(owner, id, func(s *Session) error { return s.Previous() })
}

// JumpTo moves to an arbitrary question index.
func (m *Manager) JumpTo(owner, id uuid.UUID, index int) (Snapshot, error) {
	return m.apply(owner, id, func(s *Session) error { return s.JumpTo(index) })
}

// ToggleFlag flips the review flag on a question index.
func (m *Manager) ToggleFlag(owner, id uuid.UUID, index int) (Snapshot, error) {
	return m.apply(owner, id, func(s *Session) error { return s.ToggleFlag(index) })
}

// Results returns the terminal summary of a completed session.
func (m *Manager) Results(owner, id uuid.UUID) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(owner, id)
	if err != nil {
		return Summary{}, err
	}
	e.touched = time.Now()
	return e.session.Results()
}

// Restart begins a fresh attempt. A session that never loaded (Empty or
// Error) re-triggers the fetch and shuffle; an attempt in progress or
// completed reuses its existing shuffled set.
func (m *Manager) Restart(ctx context.Context, owner, id uuid.UUID) (Snapshot, error) {
	m.mu.Lock()
	e, err := m.lookup(owner, id)
	if err != nil {
		m.mu.Unlock()
		return Snapshot{}, err
	}
	phase := e.session.Phase()
	category := e.category
	m.mu.Unlock()

	if phase == PhaseEmpty || phase == PhaseError {
		sess := m.load(ctx, category)
		m.mu.Lock()
		defer m.mu.Unlock()
		e, err := m.lookup(owner, id)
		if err != nil {
			return Snapshot{}, err
		}
		e.session = sess
		e.touched = time.Now()
		return sess.Snapshot(), nil
	}

	return m.apply(owner, id, func(s *Session) error { return s.Restart() })
}

// Delete discards a session.
func (m *Manager) Delete(owner, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(owner, id); err != nil {
		return err
	}
	delete(m.entries, id)
	return nil
}

// Run evicts idle sessions until the context is canceled.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.idleTimeout / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.touched.Before(cutoff) {
			delete(m.entries, id)
			m.logger.Debug().Str("session_id", id.String()).Msg("evicted idle session")
		}
	}
}

func (m *Manager) apply(owner, id uuid.UUID, op func(*Session) error) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.lookup(owner, id)
	if err != nil {
		return Snapshot{}, err
	}
	e.touched = time.Now()
	if err := op(e.session); err != nil {
		return Snapshot{}, err
	}
	return e.session.Snapshot(), nil
}

// lookup must be called with the manager lock held. Foreign owners get
// ErrSessionNotFound rather than a distinct error to avoid leaking session
// existence.
func (m *Manager) lookup(owner, id uuid.UUID) (*entry, error) {
	e, ok := m.entries[id]
	if !ok || e.owner != owner {
		return nil, ErrSessionNotFound
	}
	return e, nil
}
