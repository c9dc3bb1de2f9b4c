package quiz

// Grade reports whether a selection label matches the question's correct
// choice. An empty selection never grades correct.
func Grade(q Question, selection string) bool {
	return selection != NoSelection && selection == q.CorrectLabel()
}

// scorecard tracks which question indices have already been credited so a
// question can score at most once, no matter how often it is re-checked.
type scorecard struct {
	credited map[int]bool
	score    int
}

func newScorecard() scorecard {
	return scorecard{credited: make(map[int]bool)}
}

// credit awards a point for index unless it was credited before. Reports
// whether the point was newly awarded.
func (c *scorecard) credit(index int) bool {
	if c.credited[index] {
		return false
	}
	c.credited[index] = true
	c.score++
	return true
}

func (c *scorecard) isCredited(index int) bool {
	return c.credited[index]
}

func (c *scorecard) reset() {
	c.credited = make(map[int]bool)
	c.score = 0
}
