package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/quiz"
	"github.com/miniquiz/miniquiz/internal/rbac"
)

// POST /api/quizzes/{quizID}/attempt
// Body: { "responses": [{question_id, selected_answer|text_answer}], "time_taken": seconds }
func SubmitAttemptHandler(wf *grading.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		var req struct {
			Responses []quiz.Response `json:"responses"`
			TimeTaken *int            `json:"time_taken,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		res, err := wf.SubmitAttempt(r.Context(), quizID, sub, req.Responses, req.TimeTaken)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}
