package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "github.com/miniquiz/miniquiz/internal/auth/middleware"
	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/quiz"
	"github.com/miniquiz/miniquiz/internal/rbac"
)

// NewRouter assembles the full HTTP surface. Identity comes from the JWT
// middleware; role checks sit on the routes themselves.
func NewRouter(db *sql.DB, quizzes quiz.Store, results grading.ResultStore, wf *grading.Workflow, authSvc *authmw.AuthService, corsOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/register", RegisterHandler(db))
		api.Post("/login", LoginHandler(db, authSvc))

		api.Group(func(pr chi.Router) {
			pr.Use(authmw.JWTMiddleware(authSvc))

			pr.Get("/me", MeHandler(db))

			// Instructor: authoring
			pr.With(rbac.Require("quiz:create")).
				Post("/quizzes", CreateQuizHandler(quizzes))

			// Student/instructor: discovery and taking
			pr.With(rbac.Require("quiz:list")).
				Get("/quizzes", ListQuizzesHandler(quizzes))
			pr.With(rbac.Require("quiz:view")).
				Get("/quizzes/{quizID}", GetQuizHandler(quizzes))
			pr.With(rbac.Require("attempt:submit")).
				Post("/quizzes/{quizID}/attempt", SubmitAttemptHandler(wf))

			// Results
			pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
				Get("/results", MyResultsHandler(results))
			pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
				Get("/results/{resultID}", GetResultHandler(results))
			pr.With(rbac.Require("result:view-all")).
				Get("/instructor/results", AllResultsHandler(results))

			// Evaluation workflow
			pr.With(rbac.Require("evaluation:record")).
				Get("/instructor/evaluations", ListPendingEvaluationsHandler(wf))
			pr.With(rbac.Require("evaluation:record")).
				Post("/results/{resultID}/evaluations", RecordEvaluationsHandler(wf))
			pr.With(rbac.Require("result:publish")).
				Post("/results/{resultID}/publish", PublishResultHandler(wf))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	return r
}
