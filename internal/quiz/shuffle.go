package quiz

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pharmexam/examprep/internal/question"
)

// Shuffler randomizes choice order for questions at session load. Each
// question is shuffled exactly once; revisits never re-shuffle.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler creates a shuffler. A nil rng gets a time-seeded source; tests
// inject a fixed seed for reproducible permutations.
func NewShuffler(rng *rand.Rand) *Shuffler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Shuffler{rng: rng}
}

// Shuffle permutes a record's four choices uniformly and returns the question
// with the correct answer's new index. The record itself is never mutated.
// Records whose correct answer resolves to anything but exactly one choice
// fail with ErrMalformedQuestion.
func (s *Shuffler) Shuffle(rec question.Record) (Question, error) {
	idx, ok := IndexOf(rec.CorrectAnswer)
	if !ok {
		return Question{}, fmt.Errorf("%w: correct answer label %q", ErrMalformedQuestion, rec.CorrectAnswer)
	}

	choices := rec.Choices()
	correctText := choices[idx]

	matches := 0
	for _, c := range choices {
		if c == correctText {
			matches++
		}
	}
	if matches != 1 {
		return Question{}, fmt.Errorf("%w: correct answer text matches %d choices", ErrMalformedQuestion, matches)
	}

	// Fisher-Yates, last position to first, uniform draw in [0, i].
	for i := len(choices) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		choices[i], choices[j] = choices[j], choices[i]
	}

	correctIndex := -1
	for i, c := range choices {
		if c == correctText {
			correctIndex = i
			break
		}
	}
	if correctIndex < 0 {
		return Question{}, fmt.Errorf("%w: correct answer lost in shuffle", ErrMalformedQuestion)
	}

	return Question{
		ID:           rec.ID,
		Text:         rec.QuestionText,
		Choices:      choices,
		CorrectIndex: correctIndex,
		Category:     rec.Category,
		Difficulty:   rec.Difficulty,
	}, nil
}
