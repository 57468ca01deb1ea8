package http

import (
	"errors"
	"net/http"

	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/quiz"
)

// writeErr maps the grading/quiz error taxonomy onto HTTP status codes.
// Everything here is recoverable by the caller; nothing is fatal.
func writeErr(w http.ResponseWriter, err error) {
	var qv *quiz.ValidationError
	var gv *grading.ValidationError
	switch {
	case errors.As(err, &qv), errors.As(err, &gv):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, quiz.ErrNotFound), errors.Is(err, grading.ErrResultNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, grading.ErrIncompleteEvaluation), errors.Is(err, grading.ErrNotEvaluated):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
