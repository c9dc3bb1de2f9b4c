package quiz

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmexam/examprep/internal/question"
)

func sampleRecord() question.Record {
	return question.Record{
		ID:            "q1",
		QuestionText:  "Which vitamin is fat-soluble?",
		ChoiceA:       "Vitamin C",
		ChoiceB:       "Vitamin D",
		ChoiceC:       "Vitamin B12",
		ChoiceD:       "Folic acid",
		CorrectAnswer: "B",
		Category:      "pharmacology",
		Difficulty:    question.DifficultyEasy,
	}
}

func TestShufflePreservesChoices(t *testing.T) {
	s := NewShuffler(rand.New(rand.NewSource(1)))
	rec := sampleRecord()

	q, err := s.Shuffle(rec)
	require.NoError(t, err)

	want := []string{rec.ChoiceA, rec.ChoiceB, rec.ChoiceC, rec.ChoiceD}
	got := append([]string(nil), q.Choices[:]...)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestShuffleTracksCorrectIndex(t *testing.T) {
	rec := sampleRecord()
	for seed := int64(0); seed < 50; seed++ {
		s := NewShuffler(rand.New(rand.NewSource(seed)))
		q, err := s.Shuffle(rec)
		require.NoError(t, err)
		assert.Equal(t, "Vitamin D", q.Choices[q.CorrectIndex], "seed %d", seed)
	}
}

func TestShuffleDoesNotMutateRecord(t *testing.T) {
	s := NewShuffler(rand.New(rand.NewSource(7)))
	rec := sampleRecord()
	before := rec

	_, err := s.Shuffle(rec)
	require.NoError(t, err)
	assert.Equal(t, before, rec)
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	rec := sampleRecord()

	a, err := NewShuffler(rand.New(rand.NewSource(42))).Shuffle(rec)
	require.NoError(t, err)
	b, err := NewShuffler(rand.New(rand.NewSource(42))).Shuffle(rec)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestShuffleProducesDifferentOrders(t *testing.T) {
	rec := sampleRecord()
	s := NewShuffler(rand.New(rand.NewSource(3)))

	seen := map[[ChoiceCount]string]bool{}
	for i := 0; i < 200; i++ {
		q, err := s.Shuffle(rec)
		require.NoError(t, err)
		seen[q.Choices] = true
	}
	// 4 choices admit 24 permutations; 200 draws should hit them all.
	assert.Equal(t, 24, len(seen))
}

func TestShuffleRejectsBadCorrectLabel(t *testing.T) {
	s := NewShuffler(rand.New(rand.NewSource(1)))

	for _, label := range []string{"", "E", "b", "AB"} {
		rec := sampleRecord()
		rec.CorrectAnswer = label
		_, err := s.Shuffle(rec)
		assert.ErrorIs(t, err, ErrMalformedQuestion, "label %q", label)
	}
}

func TestShuffleRejectsDuplicateCorrectText(t *testing.T) {
	s := NewShuffler(rand.New(rand.NewSource(1)))
	rec := sampleRecord()
	rec.ChoiceC = rec.ChoiceB

	_, err := s.Shuffle(rec)
	assert.ErrorIs(t, err, ErrMalformedQuestion)
}

func TestLabelHelpers(t *testing.T) {
	assert.Equal(t, "A", LabelFor(0))
	assert.Equal(t, "D", LabelFor(3))
	assert.Equal(t, "", LabelFor(4))
	assert.Equal(t, "", LabelFor(-1))

	idx, ok := IndexOf("C")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = IndexOf("e")
	assert.False(t, ok)

	assert.True(t, ValidLabel("A"))
	assert.False(t, ValidLabel(NoSelection))
}
