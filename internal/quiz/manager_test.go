package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmexam/examprep/internal/question"
)

type stubSource struct {
	records []question.Record
	err     error
	calls   int
}

func (s *stubSource) FetchSet(_ context.Context, _ question.SetRequest) ([]question.Record, error) {
	s.calls++
	return s.records, s.err
}

func bankRecords(n int) []question.Record {
	records := make([]question.Record, n)
	for i := range records {
		rec := sampleRecord()
		rec.ID = uuid.NewString()
		records[i] = rec
	}
	return records
}

func newTestManager(source Source) *Manager {
	return NewManager(source, ManagerOptions{
		Rand: rand.New(rand.NewSource(1)),
	}, zerolog.Nop())
}

func TestManagerStart(t *testing.T) {
	src := &stubSource{records: bankRecords(3)}
	m := newTestManager(src)
	owner := uuid.New()

	id, snap, err := m.Start(context.Background(), owner, "")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 3, snap.Total)
	require.NotNil(t, snap.Question)
}

func TestManagerStartEmptyBank(t *testing.T) {
	src := &stubSource{err: question.ErrNoQuestions}
	m := newTestManager(src)

	id, snap, err := m.Start(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, PhaseEmpty, snap.Phase)
}

func TestManagerStartFetchFailure(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	m := newTestManager(src)

	_, snap, err := m.Start(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, PhaseError, snap.Phase)
	assert.Equal(t, "Failed to load quiz questions", snap.Error)
}

func TestManagerExcludesMalformedQuestions(t *testing.T) {
	records := bankRecords(3)
	records[1].CorrectAnswer = "Z"
	src := &stubSource{records: records}
	m := newTestManager(src)

	_, snap, err := m.Start(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 2, snap.Total)
}

func TestManagerAllMalformedMeansEmpty(t *testing.T) {
	records := bankRecords(2)
	records[0].CorrectAnswer = ""
	records[1].CorrectAnswer = "x"
	src := &stubSource{records: records}
	m := newTestManager(src)

	_, snap, err := m.Start(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, PhaseEmpty, snap.Phase)
}

func TestManagerOwnerIsolation(t *testing.T) {
	src := &stubSource{records: bankRecords(2)}
	m := newTestManager(src)
	owner := uuid.New()

	id, _, err := m.Start(context.Background(), owner, "")
	require.NoError(t, err)

	_, err = m.Snapshot(uuid.New(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Snapshot(owner, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerOperationFlow(t *testing.T) {
	src := &stubSource{records: bankRecords(2)}
	m := newTestManager(src)
	owner := uuid.New()
	ctx := context.Background()

	id, snap, err := m.Start(ctx, owner, "")
	require.NoError(t, err)
	correct := LabelFor(0)
	for _, c := range snap.Question.Choices {
		// Find the right label via the known correct text.
		if c.Text == "Vitamin D" {
			correct = c.Label
		}
	}

	snap, err = m.Select(owner, id, correct)
	require.NoError(t, err)
	assert.Equal(t, correct, snap.Selection)

	snap, err = m.Check(owner, id)
	require.NoError(t, err)
	require.NotNil(t, snap.IsCorrect)
	assert.True(t, *snap.IsCorrect)
	assert.Equal(t, 1, snap.Score)

	snap, err = m.Next(owner, id)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentIndex)

	snap, err = m.Next(owner, id)
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, snap.Phase)
	require.NotNil(t, snap.Results)
	assert.Equal(t, Summary{Score: 1, Total: 2, Percentage: 50}, *snap.Results)

	summary, err := m.Results(owner, id)
	require.NoError(t, err)
	assert.Equal(t, 50, summary.Percentage)
}

func TestManagerCheckWithoutSelection(t *testing.T) {
	src := &stubSource{records: bankRecords(1)}
	m := newTestManager(src)
	owner := uuid.New()

	id, _, err := m.Start(context.Background(), owner, "")
	require.NoError(t, err)

	_, err = m.Check(owner, id)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestManagerRestartReusesSet(t *testing.T) {
	src := &stubSource{records: bankRecords(2)}
	m := newTestManager(src)
	owner := uuid.New()
	ctx := context.Background()

	id, _, err := m.Start(ctx, owner, "")
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	_, err = m.Select(owner, id, "A")
	require.NoError(t, err)

	snap, err := m.Restart(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, NoSelection, snap.Selection)

	// No refetch when the question set already loaded.
	assert.Equal(t, 1, src.calls)
}

func TestManagerRestartRefetchesAfterError(t *testing.T) {
	src := &stubSource{err: errors.New("db down")}
	m := newTestManager(src)
	owner := uuid.New()
	ctx := context.Background()

	id, snap, err := m.Start(ctx, owner, "")
	require.NoError(t, err)
	require.Equal(t, PhaseError, snap.Phase)

	// The bank comes back; restart re-runs the fetch.
	src.err = nil
	src.records = bankRecords(2)

	snap, err = m.Restart(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 2, src.calls)
}

func TestManagerRestartRefetchesAfterEmpty(t *testing.T) {
	src := &stubSource{err: question.ErrNoQuestions}
	m := newTestManager(src)
	owner := uuid.New()
	ctx := context.Background()

	id, snap, err := m.Start(ctx, owner, "")
	require.NoError(t, err)
	require.Equal(t, PhaseEmpty, snap.Phase)

	src.err = nil
	src.records = bankRecords(1)

	snap, err = m.Restart(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, snap.Phase)
}

func TestManagerResultsBeforeCompletion(t *testing.T) {
	src := &stubSource{records: bankRecords(2)}
	m := newTestManager(src)
	owner := uuid.New()

	id, _, err := m.Start(context.Background(), owner, "")
	require.NoError(t, err)

	_, err = m.Results(owner, id)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestManagerDelete(t *testing.T) {
	src := &stubSource{records: bankRecords(1)}
	m := newTestManager(src)
	owner := uuid.New()

	id, _, err := m.Start(context.Background(), owner, "")
	require.NoError(t, err)

	require.NoError(t, m.Delete(owner, id))
	_, err = m.Snapshot(owner, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, m.Delete(owner, id), ErrSessionNotFound)
}
