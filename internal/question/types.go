package question

// Difficulty constants for readability.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Record is one raw question row as stored in the question bank. Choices are
// labeled A-D and correct_answer names the label of the right one. The quiz
// core consumes records verbatim and shuffles choices itself.
type Record struct {
	ID            string `json:"id"`
	QuestionText  string `json:"question_text"`
	ChoiceA       string `json:"choice_a"`
	ChoiceB       string `json:"choice_b"`
	ChoiceC       string `json:"choice_c"`
	ChoiceD       string `json:"choice_d"`
	CorrectAnswer string `json:"correct_answer"` // "A".."D"
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
}

// Choices returns the four choice texts in stored A-D order.
func (r Record) Choices() [4]string {
	return [4]string{r.ChoiceA, r.ChoiceB, r.ChoiceC, r.ChoiceD}
}

// SetRequest selects which question set to load.
type SetRequest struct {
	Category string // empty means all categories
	Limit    int
}
