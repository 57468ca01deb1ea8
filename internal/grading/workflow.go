package grading

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/miniquiz/miniquiz/internal/quiz"
	syncx "github.com/miniquiz/miniquiz/internal/sync"
)

// EvaluationInput is the wire form of one instructor grade. Points arrive
// as a JSON number and must be a whole value within [0, points_possible].
type EvaluationInput struct {
	Points   float64 `json:"points_awarded"`
	Feedback string  `json:"feedback,omitempty"`
}

type EventSink interface {
	Append(ctx context.Context, e syncx.Event) error
}

// Workflow drives the grading lifecycle: attempt submission and scoring,
// instructor evaluation of text questions, finalization and publication.
type Workflow struct {
	quizzes quiz.Store
	results ResultStore
	events  EventSink // optional
	now     func() time.Time
}

func NewWorkflow(quizzes quiz.Store, results ResultStore, events EventSink) *Workflow {
	return &Workflow{quizzes: quizzes, results: results, events: events, now: time.Now}
}

// SubmitAttempt scores a submitted response set against the quiz and
// persists the (possibly provisional) result. Responses for questions not
// in the quiz are ignored; a response whose kind does not match the
// question type is a validation error.
func (w *Workflow) SubmitAttempt(ctx context.Context, quizID, userID string, responses []quiz.Response, timeTaken *int) (Result, error) {
	q, err := w.quizzes.GetQuizWithAnswers(ctx, quizID)
	if err != nil {
		return Result{}, err
	}
	for _, r := range responses {
		qu, ok := q.Question(r.QuestionID)
		if !ok {
			continue
		}
		if !r.Matches(qu.Type) {
			return Result{}, invalidf("question %s: %s answer does not fit a %s question", r.QuestionID, r.Kind, qu.Type)
		}
	}

	res := Score(q, responses, nil)
	res.ID = uuid.NewString()
	res.UserID = userID
	res.TimeTaken = timeTaken
	res.CompletedAt = w.now().Unix()
	if err := w.results.SaveResult(ctx, res); err != nil {
		return Result{}, err
	}
	w.emit(ctx, syncx.EventAttemptSubmitted, res)
	return res, nil
}

// ListPending returns results awaiting instructor evaluation, oldest
// submission first, each annotated with the number of ungraded text
// questions.
func (w *Workflow) ListPending(ctx context.Context) ([]PendingResult, error) {
	rs, err := w.results.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PendingResult, 0, len(rs))
	for _, r := range rs {
		n := 0
		for _, d := range r.Details {
			if d.QuestionType == quiz.TypeText && !d.IsEvaluated {
				n++
			}
		}
		out = append(out, PendingResult{Result: r, PendingCount: n})
	}
	return out, nil
}

// RecordEvaluations validates and upserts one evaluation per question,
// then re-scores the result. Repeated calls for the same question
// overwrite the earlier grade. With finalize set, the call fails unless
// every text question ends up evaluated.
func (w *Workflow) RecordEvaluations(ctx context.Context, resultID string, items map[string]EvaluationInput, gradedBy string, finalize bool) (Result, error) {
	r, err := w.results.GetResult(ctx, resultID)
	if err != nil {
		return Result{}, err
	}
	q, err := w.quizzes.GetQuizWithAnswers(ctx, r.QuizID)
	if err != nil {
		return Result{}, err
	}

	// Validate everything before the first write so a bad item cannot leave
	// a partial batch behind.
	for qid, in := range items {
		qu, ok := q.Question(qid)
		if !ok {
			return Result{}, invalidf("question %s: not part of quiz %s", qid, q.ID)
		}
		if qu.Type != quiz.TypeText {
			return Result{}, invalidf("question %s: only text questions take manual evaluation", qid)
		}
		if in.Points != math.Trunc(in.Points) {
			return Result{}, invalidf("question %s: points_awarded must be an integer", qid)
		}
		if in.Points < 0 || int(in.Points) > qu.Points {
			return Result{}, invalidf("question %s: points_awarded must be within [0, %d]", qid, qu.Points)
		}
	}

	gradedAt := w.now().Unix()
	for qid, in := range items {
		ev := Evaluation{
			QuestionID:    qid,
			PointsAwarded: int(in.Points),
			Feedback:      in.Feedback,
			GradedBy:      gradedBy,
			GradedAt:      gradedAt,
		}
		if err := w.results.UpsertEvaluation(ctx, resultID, ev); err != nil {
			return Result{}, err
		}
	}

	res, err := w.rescore(ctx, r, q)
	if err != nil {
		return Result{}, err
	}
	if finalize && !res.IsEvaluated {
		return res, ErrIncompleteEvaluation
	}
	return res, nil
}

// Finalize re-scores the result from a fresh snapshot of its evaluations
// and fails if any text question is still ungraded.
func (w *Workflow) Finalize(ctx context.Context, resultID string) (Result, error) {
	r, err := w.results.GetResult(ctx, resultID)
	if err != nil {
		return Result{}, err
	}
	q, err := w.quizzes.GetQuizWithAnswers(ctx, r.QuizID)
	if err != nil {
		return Result{}, err
	}
	res, err := w.rescore(ctx, r, q)
	if err != nil {
		return Result{}, err
	}
	if !res.IsEvaluated {
		return res, ErrIncompleteEvaluation
	}
	return res, nil
}

// Publish makes a fully evaluated result visible to its owner. Publishing
// an already-published result is a no-op.
func (w *Workflow) Publish(ctx context.Context, resultID string) (Result, error) {
	r, err := w.results.GetResult(ctx, resultID)
	if err != nil {
		return Result{}, err
	}
	if !r.IsEvaluated {
		return Result{}, ErrNotEvaluated
	}
	if r.Published {
		return r, nil
	}
	if err := w.results.SetPublished(ctx, resultID); err != nil {
		return Result{}, err
	}
	r.Published = true
	w.emit(ctx, syncx.EventResultPublished, r)
	return r, nil
}

// rescore recomputes the stored result view from its responses plus the
// current evaluation snapshot, keeping submission-time identity fields.
func (w *Workflow) rescore(ctx context.Context, r Result, q quiz.Quiz) (Result, error) {
	evals, err := w.results.GetEvaluations(ctx, r.ID)
	if err != nil {
		return Result{}, err
	}
	res := Score(q, r.Responses, evals)
	res.ID = r.ID
	res.UserID = r.UserID
	res.TimeTaken = r.TimeTaken
	res.CompletedAt = r.CompletedAt
	res.Published = r.Published
	if err := w.results.SaveResult(ctx, res); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (w *Workflow) emit(ctx context.Context, typ string, r Result) {
	if w.events == nil {
		return
	}
	data, _ := json.Marshal(map[string]any{
		"result_id": r.ID,
		"quiz_id":   r.QuizID,
		"user_id":   r.UserID,
		"score":     r.TotalScore,
	})
	// Best effort: the result is already persisted.
	_ = w.events.Append(ctx, syncx.Event{Type: typ, Key: r.ID, DataJSON: string(data)})
}
