package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/miniquiz/miniquiz/internal/quiz"
	"github.com/miniquiz/miniquiz/internal/rbac"
)

// POST /api/quizzes
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := quiz.Validate(&q); err != nil {
			writeErr(w, err)
			return
		}
		q.ID = uuid.NewString()
		for i := range q.Questions {
			q.Questions[i].ID = uuid.NewString()
		}
		q.CreatedBy = rbac.SubjectFromContext(r.Context())
		q.CreatedAt = time.Now().Unix()
		if err := store.PutQuiz(r.Context(), q); err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(q)
	}
}

// GET /api/quizzes
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []quiz.Summary{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /api/quizzes/{quizID} — taking view, answer keys stripped.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(q)
	}
}
