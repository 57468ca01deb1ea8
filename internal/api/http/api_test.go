package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	api "github.com/miniquiz/miniquiz/internal/api/http"
	auth "github.com/miniquiz/miniquiz/internal/auth/middleware"
	"github.com/miniquiz/miniquiz/internal/db"
	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/quiz"
	syncx "github.com/miniquiz/miniquiz/internal/sync"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	quizzes := quiz.NewSQLStore(dbh)
	results := grading.NewSQLStore(dbh)
	wf := grading.NewWorkflow(quizzes, results, syncx.NewEventRepo(dbh))
	authSvc := auth.NewAuthService("test-secret")

	ts := httptest.NewServer(api.NewRouter(dbh, quizzes, results, wf, authSvc, []string{"*"}))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp
}

func register(t *testing.T, ts *httptest.Server, email, role string) string {
	t.Helper()
	resp := doJSON(t, "POST", ts.URL+"/api/register", "", map[string]string{
		"email": email, "password": "Password123!", "full_name": "Test " + role, "role": role,
	}, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	var login struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}
	resp = doJSON(t, "POST", ts.URL+"/api/login", "", map[string]string{
		"email": email, "password": "Password123!",
	}, &login)
	if resp.StatusCode != 200 || login.AccessToken == "" {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	if login.Role != role {
		t.Fatalf("login role %q != %q", login.Role, role)
	}
	return login.AccessToken
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	instructor := register(t, ts, "teacher@example.com", "instructor")
	student := register(t, ts, "student@example.com", "student")

	// students may not author quizzes
	resp := doJSON(t, "POST", ts.URL+"/api/quizzes", student, map[string]any{}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("student create quiz: expected 403, got %d", resp.StatusCode)
	}

	// instructor creates a mixed quiz
	var created quiz.Quiz
	resp = doJSON(t, "POST", ts.URL+"/api/quizzes", instructor, map[string]any{
		"title":      "Mixed Quiz",
		"subject":    "Testing",
		"time_limit": 5,
		"questions": []map[string]any{
			{
				"question_text":  "Pick B",
				"question_type":  "multiple_choice",
				"options":        []string{"A", "B", "C"},
				"correct_answer": "B",
				"points":         2,
				"explanation":    "B was right",
			},
			{
				"question_text": "Say hello",
				"question_type": "text",
				"points":        3,
			},
		},
	}, &created)
	if resp.StatusCode != 200 || created.ID == "" {
		t.Fatalf("create quiz: status %d", resp.StatusCode)
	}
	mcID, textID := created.Questions[0].ID, created.Questions[1].ID

	// listing carries totals and the evaluation flag
	var list []quiz.Summary
	doJSON(t, "GET", ts.URL+"/api/quizzes", student, nil, &list)
	if len(list) != 1 || list[0].TotalPoints != 5 || !list[0].RequiresEvaluation {
		t.Fatalf("bad quiz listing: %+v", list)
	}

	// taking view must not leak answer keys
	var taking quiz.Quiz
	doJSON(t, "GET", ts.URL+"/api/quizzes/"+created.ID, student, nil, &taking)
	for i, qu := range taking.Questions {
		if qu.CorrectAnswer != "" || qu.Explanation != "" {
			t.Fatalf("question %d leaks answers", i)
		}
	}

	// student submits
	var res grading.Result
	resp = doJSON(t, "POST", ts.URL+"/api/quizzes/"+created.ID+"/attempt", student, map[string]any{
		"responses": []map[string]any{
			{"question_id": mcID, "selected_answer": "B"},
			{"question_id": textID, "text_answer": "hello"},
		},
		"time_taken": 42,
	}, &res)
	if resp.StatusCode != 200 {
		t.Fatalf("submit attempt: status %d", resp.StatusCode)
	}
	if res.TotalScore != 2 || res.MaxPossibleScore != 5 || res.Percentage != 40 || res.IsEvaluated {
		t.Fatalf("provisional result wrong: %+v", res)
	}
	if res.TimeTaken == nil || *res.TimeTaken != 42 {
		t.Fatalf("time_taken lost: %v", res.TimeTaken)
	}

	// owner can read it back; other students cannot
	resp = doJSON(t, "GET", ts.URL+"/api/results/"+res.ID, student, nil, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("owner get result: status %d", resp.StatusCode)
	}
	stranger := register(t, ts, "other@example.com", "student")
	resp = doJSON(t, "GET", ts.URL+"/api/results/"+res.ID, stranger, nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger get result: expected 403, got %d", resp.StatusCode)
	}

	// pending queue shows one result with one ungraded question
	var pending []grading.PendingResult
	doJSON(t, "GET", ts.URL+"/api/instructor/evaluations", instructor, nil, &pending)
	if len(pending) != 1 || pending[0].PendingCount != 1 {
		t.Fatalf("pending queue wrong: %+v", pending)
	}

	// publish before grading must fail
	resp = doJSON(t, "POST", ts.URL+"/api/results/"+res.ID+"/publish", instructor, nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("premature publish: expected 409, got %d", resp.StatusCode)
	}

	// out-of-range grade is a validation error
	resp = doJSON(t, "POST", ts.URL+"/api/results/"+res.ID+"/evaluations", instructor, map[string]any{
		"items": map[string]any{textID: map[string]any{"points_awarded": 4}},
	}, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("over-maximum grade: expected 422, got %d", resp.StatusCode)
	}

	// grade and finalize in one call
	var graded grading.Result
	resp = doJSON(t, "POST", ts.URL+"/api/results/"+res.ID+"/evaluations", instructor, map[string]any{
		"items":    map[string]any{textID: map[string]any{"points_awarded": 3, "feedback": "well put"}},
		"finalize": true,
	}, &graded)
	if resp.StatusCode != 200 {
		t.Fatalf("grade: status %d", resp.StatusCode)
	}
	if graded.TotalScore != 5 || graded.Percentage != 100 || !graded.IsEvaluated {
		t.Fatalf("graded result wrong: %+v", graded)
	}

	// publish, then publish again (idempotent)
	var published grading.Result
	resp = doJSON(t, "POST", ts.URL+"/api/results/"+res.ID+"/publish", instructor, nil, &published)
	if resp.StatusCode != 200 || !published.Published {
		t.Fatalf("publish: status %d %+v", resp.StatusCode, published)
	}
	resp = doJSON(t, "POST", ts.URL+"/api/results/"+res.ID+"/publish", instructor, nil, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("republish: expected 200, got %d", resp.StatusCode)
	}

	// student sees the final result in their list
	var mine []grading.Result
	doJSON(t, "GET", ts.URL+"/api/results", student, nil, &mine)
	if len(mine) != 1 || mine[0].TotalScore != 5 || !mine[0].Published {
		t.Fatalf("student result list wrong: %+v", mine)
	}
}

func TestAuthValidation(t *testing.T) {
	ts := newTestServer(t)

	// duplicate registration
	doJSON(t, "POST", ts.URL+"/api/register", "", map[string]string{
		"email": "dup@example.com", "password": "Password123!", "full_name": "Dup",
	}, nil)
	resp := doJSON(t, "POST", ts.URL+"/api/register", "", map[string]string{
		"email": "dup@example.com", "password": "Password123!", "full_name": "Dup",
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}

	// wrong password
	resp = doJSON(t, "POST", ts.URL+"/api/login", "", map[string]string{
		"email": "dup@example.com", "password": "wrong",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}

	// no token
	resp = doJSON(t, "GET", ts.URL+"/api/quizzes", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing bearer: expected 401, got %d", resp.StatusCode)
	}

	// unknown quiz 404s
	token := register(t, ts, "someone@example.com", "student")
	resp = doJSON(t, "GET", ts.URL+"/api/quizzes/does-not-exist", token, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown quiz: expected 404, got %d", resp.StatusCode)
	}
}
