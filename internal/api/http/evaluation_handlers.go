package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/rbac"
)

// GET /api/instructor/evaluations — results still awaiting text grading,
// oldest submission first.
func ListPendingEvaluationsHandler(wf *grading.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := wf.ListPending(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []grading.PendingResult{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// POST /api/results/{resultID}/evaluations
// Body: { "items": {question_id: {points_awarded, feedback}}, "finalize": bool }
func RecordEvaluationsHandler(wf *grading.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resultID := chi.URLParam(r, "resultID")
		var req struct {
			Items    map[string]grading.EvaluationInput `json:"items"`
			Finalize bool                               `json:"finalize,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Items) == 0 {
			http.Error(w, "items required", http.StatusBadRequest)
			return
		}
		gradedBy := rbac.SubjectFromContext(r.Context())
		res, err := wf.RecordEvaluations(r.Context(), resultID, req.Items, gradedBy, req.Finalize)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /api/results/{resultID}/publish
func PublishResultHandler(wf *grading.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := wf.Publish(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}
