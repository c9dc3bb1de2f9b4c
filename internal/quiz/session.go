package quiz

import (
	"fmt"
	"math"
)

// Session is the full mutable state of one quiz attempt. It is owned by a
// single logical writer: all mutations arrive sequentially through the
// operation methods, which reject anything that does not apply in the
// current phase without touching unrelated state.
type Session struct {
	questions  []Question
	current    int
	selections []string
	attempted  map[int]bool
	flagged    map[int]bool
	card       scorecard
	feedback   *bool // transient correctness feedback, nil when unchecked
	phase      Phase
	failure    string // user-visible message when phase == PhaseError
}

// NewSession creates a session awaiting its question set.
func NewSession() *Session {
	return &Session{
		attempted: make(map[int]bool),
		flagged:   make(map[int]bool),
		card:      newScorecard(),
		phase:     PhaseLoading,
	}
}

// Load installs the shuffled question set and starts the attempt. Zero
// questions put the session in the terminal empty state and return
// ErrNoQuestionsAvailable for display purposes.
func (s *Session) Load(questions []Question) error {
	if s.phase != PhaseLoading {
		return fmt.Errorf("%w: session already loaded", ErrInvalidOperation)
	}
	if len(questions) == 0 {
		s.phase = PhaseEmpty
		return ErrNoQuestionsAvailable
	}

	s.questions = questions
	s.selections = make([]string, len(questions))
	s.attempted = make(map[int]bool)
	s.flagged = make(map[int]bool)
	s.card.reset()
	s.current = 0
	s.feedback = nil
	s.phase = PhaseInProgress
	return nil
}

// Fail marks the question fetch as failed. Terminal; only a restart
// (which re-triggers the fetch) leaves this state.
func (s *Session) Fail(message string) {
	if s.phase != PhaseLoading {
		return
	}
	s.phase = PhaseError
	s.failure = message
}

// Phase returns the session's lifecycle stage.
func (s *Session) Phase() Phase {
	return s.phase
}

// Select records a choice for the current question. A label "A".."D" marks
// the question attempted; NoSelection deselects and un-attempts it. Any
// pending correctness feedback is cleared either way.
func (s *Session) Select(choice string) error {
	if s.phase != PhaseInProgress {
		return fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}
	if choice != NoSelection && !ValidLabel(choice) {
		return ErrInvalidChoice
	}

	s.selections[s.current] = choice
	if choice == NoSelection {
		delete(s.attempted, s.current)
	} else {
		s.attempted[s.current] = true
	}
	s.feedback = nil
	return nil
}

// Check grades the current selection and sets transient feedback. The first
// correct check of a question credits one point; repeat checks and
// later-incorrect checks never change the score.
func (s *Session) Check() (bool, error) {
	if s.phase != PhaseInProgress {
		return false, fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}
	if s.selections[s.current] == NoSelection {
		return false, ErrNoSelection
	}

	correct := Grade(s.questions[s.current], s.selections[s.current])
	s.feedback = &correct
	if correct {
		s.card.credit(s.current)
	}
	return correct, nil
}

// Next advances to the following question, or completes the session when
// already on the last one. The new question's prior selection stays active.
func (s *Session) Next() error {
	if s.phase != PhaseInProgress {
		return fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}

	s.feedback = nil
	if s.current < len(s.questions)-1 {
		s.current++
	} else {
		s.phase = PhaseCompleted
	}
	return nil
}

// Previous steps back one question. No-op on the first question.
func (s *Session) Previous() error {
	if s.phase != PhaseInProgress {
		return fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}
	if s.current == 0 {
		return nil
	}

	s.current--
	s.feedback = nil
	return nil
}

// JumpTo moves the cursor to any question, restoring its selection. Used by
// sidebar navigation; attempted and flagged sets are untouched.
func (s *Session) JumpTo(index int) error {
	if s.phase != PhaseInProgress {
		return fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	s.current = index
	s.feedback = nil
	return nil
}

// ToggleFlag flips the review flag on a question, regardless of the current
// position.
func (s *Session) ToggleFlag(index int) error {
	if s.phase != PhaseInProgress && s.phase != PhaseCompleted {
		return fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	if s.flagged[index] {
		delete(s.flagged, index)
	} else {
		s.flagged[index] = true
	}
	return nil
}

// Restart wipes all progress and begins a fresh attempt over the same
// shuffled question set. The shuffle is deliberately not regenerated; a
// brand-new order requires starting a new session.
func (s *Session) Restart() error {
	if s.phase != PhaseInProgress && s.phase != PhaseCompleted {
		return fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}

	s.selections = make([]string, len(s.questions))
	s.attempted = make(map[int]bool)
	s.flagged = make(map[int]bool)
	s.card.reset()
	s.current = 0
	s.feedback = nil
	s.phase = PhaseInProgress
	return nil
}

// Score returns the number of questions credited correct so far.
func (s *Session) Score() int {
	return s.card.score
}

// Summary is the terminal results projection.
type Summary struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Results projects the final score. Only available once the session has
// advanced past the last question.
func (s *Session) Results() (Summary, error) {
	if s.phase != PhaseCompleted {
		return Summary{}, fmt.Errorf("%w: session is %s", ErrInvalidOperation, s.phase)
	}
	return s.summary(), nil
}

func (s *Session) summary() Summary {
	total := len(s.questions)
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(s.card.score) / float64(total) * 100))
	}
	return Summary{Score: s.card.score, Total: total, Percentage: pct}
}

// ChoiceView is one labeled choice as rendered to the client.
type ChoiceView struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuestionView is the current question without its answer key.
type QuestionView struct {
	Index      int          `json:"index"`
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	Choices    []ChoiceView `json:"choices"`
	Category   string       `json:"category,omitempty"`
	Difficulty string       `json:"difficulty,omitempty"`
}

// QuestionStatus is the per-question sidebar state. Correct reports whether
// the question has been credited by a check; it never flips back off.
type QuestionStatus struct {
	Attempted bool   `json:"attempted"`
	Flagged   bool   `json:"flagged"`
	Correct   bool   `json:"correct"`
	Selection string `json:"selection"`
}

// Snapshot is the read-only projection of the session for rendering. It is
// the only view the serving surface exposes.
type Snapshot struct {
	Phase        Phase            `json:"phase"`
	Total        int              `json:"total"`
	CurrentIndex int              `json:"current_index"`
	Question     *QuestionView    `json:"question,omitempty"`
	Selection    string           `json:"selection"`
	IsCorrect    *bool            `json:"is_correct,omitempty"`
	Score        int              `json:"score"`
	Questions    []QuestionStatus `json:"questions"`
	Results      *Summary         `json:"results,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Snapshot builds the renderable view of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:        s.phase,
		Total:        len(s.questions),
		CurrentIndex: s.current,
		Score:        s.card.score,
		Error:        s.failure,
	}

	if len(s.questions) > 0 {
		snap.Questions = make([]QuestionStatus, len(s.questions))
		for i := range s.questions {
			snap.Questions[i] = QuestionStatus{
				Attempted: s.attempted[i],
				Flagged:   s.flagged[i],
				Correct:   s.card.isCredited(i),
				Selection: s.selections[i],
			}
		}
	}

	switch s.phase {
	case PhaseInProgress:
		q := s.questions[s.current]
		view := QuestionView{
			Index:      s.current,
			ID:         q.ID,
			Text:       q.Text,
			Choices:    make([]ChoiceView, ChoiceCount),
			Category:   q.Category,
			Difficulty: q.Difficulty,
		}
		for i, text := range q.Choices {
			view.Choices[i] = ChoiceView{Label: LabelFor(i), Text: text}
		}
		snap.Question = &view
		snap.Selection = s.selections[s.current]
		snap.IsCorrect = s.feedback
	case PhaseCompleted:
		results := s.summary()
		snap.Results = &results
	}

	return snap
}
