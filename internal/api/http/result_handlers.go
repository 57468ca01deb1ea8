package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/rbac"
)

var resultChecker = rbac.NewChecker(nil)

// GET /api/results/{resultID} — owner or a role with result:view-all.
// Owners see their own result even while text grading is pending; the
// published flag tells them whether grades are final.
func GetResultHandler(store grading.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.GetResult(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if res.UserID != sub && !resultChecker.Has(role, "result:view-all") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GET /api/results — the authenticated student's own results.
func MyResultsHandler(store grading.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		list, err := store.ListResultsByUser(r.Context(), sub)
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []grading.Result{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /api/instructor/results — all results, newest first.
func AllResultsHandler(store grading.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListResults(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []grading.Result{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
