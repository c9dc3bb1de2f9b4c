package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedQuestion marks a record whose correct answer does not
	// resolve to exactly one of its four choices. The question is excluded
	// from the session rather than defaulted.
	ErrMalformedQuestion = errors.New("malformed question")

	// ErrNoQuestionsAvailable is the terminal empty state: the fetch
	// succeeded but produced zero usable questions.
	ErrNoQuestionsAvailable = errors.New("no questions available")

	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidOperation rejects an operation that does not apply in the
	// session's current state. The session is left untouched.
	ErrInvalidOperation = errors.New("invalid operation")

	ErrNoSelection     = fmt.Errorf("%w: no answer selected", ErrInvalidOperation)
	ErrInvalidChoice   = fmt.Errorf("%w: choice label must be A-D", ErrInvalidOperation)
	ErrIndexOutOfRange = fmt.Errorf("%w: question index out of range", ErrInvalidOperation)
)
