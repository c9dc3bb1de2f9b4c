package quiz

import "fmt"

// ChoiceCount is fixed: every question carries exactly four choices.
const ChoiceCount = 4

// NoSelection is the selection value for an unanswered question.
const NoSelection = ""

var choiceLabels = [ChoiceCount]string{"A", "B", "C", "D"}

// LabelFor returns the display label ("A".."D") for a choice position.
func LabelFor(index int) string {
	if index < 0 || index >= ChoiceCount {
		return ""
	}
	return choiceLabels[index]
}

// IndexOf maps a choice label back to its position.
func IndexOf(label string) (int, bool) {
	for i, l := range choiceLabels {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// ValidLabel reports whether label names one of the four choices.
func ValidLabel(label string) bool {
	_, ok := IndexOf(label)
	return ok
}

// Question is one shuffled quiz question. Immutable once built: the choice
// order and CorrectIndex are fixed at session load and never re-shuffled.
type Question struct {
	ID           string
	Text         string
	Choices      [ChoiceCount]string
	CorrectIndex int
	Category     string
	Difficulty   string
}

// CorrectLabel returns the post-shuffle label of the correct choice.
func (q Question) CorrectLabel() string {
	return LabelFor(q.CorrectIndex)
}

// Phase is the session's coarse lifecycle stage.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseInProgress
	PhaseCompleted
	PhaseEmpty
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	case PhaseEmpty:
		return "empty"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders phases as their snapshot string form.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the snapshot string form back into a phase.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseLoading, PhaseInProgress, PhaseCompleted, PhaseEmpty, PhaseError} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
