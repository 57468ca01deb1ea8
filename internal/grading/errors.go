package grading

import (
	"errors"
	"fmt"
)

var (
	ErrResultNotFound = errors.New("result not found")

	// ErrIncompleteEvaluation: finalize was called while at least one text
	// question still lacks an evaluation.
	ErrIncompleteEvaluation = errors.New("evaluation incomplete")

	// ErrNotEvaluated: publish was called on a result that is not fully
	// evaluated yet.
	ErrNotEvaluated = errors.New("result not fully evaluated")
)

// ValidationError reports malformed evaluation input, e.g. points awarded
// outside [0, points_possible].
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
