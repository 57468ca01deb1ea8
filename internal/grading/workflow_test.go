package grading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/miniquiz/miniquiz/internal/quiz"
	syncx "github.com/miniquiz/miniquiz/internal/sync"
)

type fakeSink struct{ events []syncx.Event }

func (f *fakeSink) Append(_ context.Context, e syncx.Event) error {
	f.events = append(f.events, e)
	return nil
}

func newTestWorkflow(t *testing.T) (*Workflow, *fakeSink, quiz.Store) {
	t.Helper()
	quizzes := quiz.NewMemoryStore()
	sink := &fakeSink{}
	wf := NewWorkflow(quizzes, NewMemoryStore(), sink)

	clock := time.Unix(1_700_000_000, 0)
	wf.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	if err := quizzes.PutQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return wf, sink, quizzes
}

func submitSample(t *testing.T, wf *Workflow) Result {
	t.Helper()
	res, err := wf.SubmitAttempt(context.Background(), "quiz-1", "student-1", []quiz.Response{
		{QuestionID: "q1", Kind: quiz.KindChoice, Value: "B"},
		{QuestionID: "q2", Kind: quiz.KindText, Value: "hello"},
	}, nil)
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}
	return res
}

func TestSubmitAttemptPersistsProvisionalResult(t *testing.T) {
	wf, sink, _ := newTestWorkflow(t)
	res := submitSample(t, wf)

	if res.TotalScore != 2 || res.MaxPossibleScore != 5 || res.Percentage != 40 {
		t.Fatalf("unexpected provisional result: %+v", res)
	}
	if res.IsEvaluated || res.Published {
		t.Fatalf("fresh result with a text question must be pending and unpublished")
	}
	stored, err := wf.results.GetResult(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("stored result: %v", err)
	}
	if stored.TotalScore != res.TotalScore {
		t.Fatalf("stored result differs from returned one")
	}
	if len(sink.events) != 1 || sink.events[0].Type != syncx.EventAttemptSubmitted {
		t.Fatalf("expected one attempt_submitted event, got %+v", sink.events)
	}
}

func TestSubmitAttemptUnknownQuiz(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	_, err := wf.SubmitAttempt(context.Background(), "nope", "student-1", nil, nil)
	if !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestSubmitAttemptRejectsMismatchedKind(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	_, err := wf.SubmitAttempt(context.Background(), "quiz-1", "student-1", []quiz.Response{
		{QuestionID: "q1", Kind: quiz.KindText, Value: "essay"},
	}, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRecordEvaluationsValidation(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	res := submitSample(t, wf)
	ctx := context.Background()

	cases := []struct {
		name  string
		items map[string]EvaluationInput
	}{
		{"above maximum", map[string]EvaluationInput{"q2": {Points: 4}}},
		{"negative", map[string]EvaluationInput{"q2": {Points: -1}}},
		{"non-integer", map[string]EvaluationInput{"q2": {Points: 1.5}}},
		{"multiple-choice question", map[string]EvaluationInput{"q1": {Points: 1}}},
		{"unknown question", map[string]EvaluationInput{"zzz": {Points: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := wf.RecordEvaluations(ctx, res.ID, tc.items, "instructor-1", false)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	// no evaluation may be stored after a rejected batch
	evals, err := wf.results.GetEvaluations(ctx, res.ID)
	if err != nil {
		t.Fatalf("get evaluations: %v", err)
	}
	if len(evals) != 0 {
		t.Fatalf("rejected batch must not be partially applied: %+v", evals)
	}

	// boundary value succeeds
	out, err := wf.RecordEvaluations(ctx, res.ID, map[string]EvaluationInput{
		"q2": {Points: 3, Feedback: "full marks"},
	}, "instructor-1", false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.TotalScore != 5 || !out.IsEvaluated {
		t.Fatalf("expected finalized score 5, got %+v", out)
	}
}

func TestRecordEvaluationsOverwrites(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	res := submitSample(t, wf)
	ctx := context.Background()

	if _, err := wf.RecordEvaluations(ctx, res.ID, map[string]EvaluationInput{
		"q2": {Points: 1, Feedback: "thin"},
	}, "instructor-1", false); err != nil {
		t.Fatalf("first grade: %v", err)
	}
	out, err := wf.RecordEvaluations(ctx, res.ID, map[string]EvaluationInput{
		"q2": {Points: 3, Feedback: "reconsidered"},
	}, "instructor-1", false)
	if err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if out.TotalScore != 5 {
		t.Fatalf("regrade must overwrite, not append: total=%d", out.TotalScore)
	}
	evals, _ := wf.results.GetEvaluations(ctx, res.ID)
	if len(evals) != 1 || evals["q2"].Feedback != "reconsidered" {
		t.Fatalf("expected single overwritten evaluation, got %+v", evals)
	}
}

func TestFinalizeRequiresAllEvaluations(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	res := submitSample(t, wf)
	ctx := context.Background()

	if _, err := wf.Finalize(ctx, res.ID); !errors.Is(err, ErrIncompleteEvaluation) {
		t.Fatalf("expected incomplete evaluation, got %v", err)
	}
	// the finalize flag on a batch behaves the same way while grades are missing
	if _, err := wf.RecordEvaluations(ctx, res.ID, map[string]EvaluationInput{}, "instructor-1", true); !errors.Is(err, ErrIncompleteEvaluation) {
		t.Fatalf("expected incomplete evaluation from finalize flag, got %v", err)
	}

	if _, err := wf.RecordEvaluations(ctx, res.ID, map[string]EvaluationInput{
		"q2": {Points: 2},
	}, "instructor-1", false); err != nil {
		t.Fatalf("record: %v", err)
	}
	out, err := wf.Finalize(ctx, res.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !out.IsEvaluated || out.TotalScore != 4 || out.Percentage != 80 {
		t.Fatalf("finalized result wrong: %+v", out)
	}
}

func TestPublishLifecycle(t *testing.T) {
	wf, sink, _ := newTestWorkflow(t)
	res := submitSample(t, wf)
	ctx := context.Background()

	if _, err := wf.Publish(ctx, res.ID); !errors.Is(err, ErrNotEvaluated) {
		t.Fatalf("publishing a pending result must fail, got %v", err)
	}

	if _, err := wf.RecordEvaluations(ctx, res.ID, map[string]EvaluationInput{
		"q2": {Points: 3},
	}, "instructor-1", true); err != nil {
		t.Fatalf("grade+finalize: %v", err)
	}

	pub, err := wf.Publish(ctx, res.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !pub.Published {
		t.Fatalf("result must be published")
	}

	// idempotent: second publish is a no-op, not an error, and emits nothing
	events := len(sink.events)
	again, err := wf.Publish(ctx, res.ID)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !again.Published || len(sink.events) != events {
		t.Fatalf("republish must be a silent no-op")
	}
}

func TestListPendingOrderAndCounts(t *testing.T) {
	wf, _, quizzes := newTestWorkflow(t)
	ctx := context.Background()

	// a second quiz with two text questions
	if err := quizzes.PutQuiz(ctx, quiz.Quiz{
		ID: "quiz-2", Title: "Essays",
		Questions: []quiz.Question{
			{ID: "e1", Text: "First essay", Type: quiz.TypeText, Points: 5},
			{ID: "e2", Text: "Second essay", Type: quiz.TypeText, Points: 5},
		},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first := submitSample(t, wf) // submitted earlier
	second, err := wf.SubmitAttempt(ctx, "quiz-2", "student-2", []quiz.Response{
		{QuestionID: "e1", Kind: quiz.KindText, Value: "words"},
	}, nil)
	if err != nil {
		t.Fatalf("submit second: %v", err)
	}

	pending, err := wf.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending results, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("pending must be ordered oldest first")
	}
	if pending[0].PendingCount != 1 || pending[1].PendingCount != 2 {
		t.Fatalf("pending counts wrong: %d, %d", pending[0].PendingCount, pending[1].PendingCount)
	}

	// grading one of two essays keeps the result pending with count 1
	if _, err := wf.RecordEvaluations(ctx, second.ID, map[string]EvaluationInput{
		"e1": {Points: 4},
	}, "instructor-1", false); err != nil {
		t.Fatalf("partial grade: %v", err)
	}
	pending, _ = wf.ListPending(ctx)
	if len(pending) != 2 || pending[1].PendingCount != 1 {
		t.Fatalf("partially graded result must stay pending with count 1: %+v", pending)
	}

	// fully grading the first removes it from the queue
	if _, err := wf.RecordEvaluations(ctx, first.ID, map[string]EvaluationInput{
		"q2": {Points: 3},
	}, "instructor-1", true); err != nil {
		t.Fatalf("grade first: %v", err)
	}
	pending, _ = wf.ListPending(ctx)
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("graded result must leave the pending queue: %+v", pending)
	}
}

func TestEndToEndScenario(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	ctx := context.Background()

	res := submitSample(t, wf)
	if res.TotalScore != 2 || res.MaxPossibleScore != 5 || res.Percentage != 40 || res.IsEvaluated {
		t.Fatalf("provisional: %+v", res)
	}

	graded, err := wf.RecordEvaluations(ctx, res.ID, map[string]EvaluationInput{
		"q2": {Points: 3, Feedback: "well put"},
	}, "instructor-1", false)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	final, err := wf.Finalize(ctx, graded.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if final.TotalScore != 5 || final.Percentage != 100 || !final.IsEvaluated {
		t.Fatalf("final: %+v", final)
	}
	if _, err := wf.Publish(ctx, final.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
