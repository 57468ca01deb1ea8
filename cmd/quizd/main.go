package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/miniquiz/miniquiz/internal/api/http"
	auth "github.com/miniquiz/miniquiz/internal/auth/middleware"
	"github.com/miniquiz/miniquiz/internal/config"
	"github.com/miniquiz/miniquiz/internal/db"
	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/quiz"
	syncx "github.com/miniquiz/miniquiz/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	quizzes := quiz.NewSQLStore(dbh)
	results := grading.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)
	wf := grading.NewWorkflow(quizzes, results, events)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := api.NewRouter(dbh, quizzes, results, wf, authSvc, cfg.CORSOrigins)

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
