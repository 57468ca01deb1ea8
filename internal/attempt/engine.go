package attempt

import (
	"errors"
	"fmt"

	"github.com/miniquiz/miniquiz/internal/grading"
	"github.com/miniquiz/miniquiz/internal/quiz"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
)

var (
	ErrNotInProgress   = errors.New("attempt not in progress")
	ErrUnknownQuestion = errors.New("question not in quiz")
	ErrKindMismatch    = errors.New("answer kind does not match question type")
)

// SubmitFunc hands the flattened response list to the scoring side.
// timeTaken is nil for untimed quizzes.
type SubmitFunc func(responses []quiz.Response, timeTaken *int) (grading.Result, error)

// Engine drives one student's traversal of one quiz: question navigation,
// answer capture, the per-second countdown, and the single terminal
// submission. One engine instance belongs to one session; it is not safe
// for concurrent use.
type Engine struct {
	quiz      quiz.Quiz
	submit    SubmitFunc
	state     State
	index     int
	responses map[string]quiz.Response
	initial   int  // seconds granted at start, 0 when untimed
	remaining *int // nil when untimed
	result    *grading.Result
}

func New(q quiz.Quiz, submit SubmitFunc) *Engine {
	return &Engine{quiz: q, submit: submit, state: StateNotStarted}
}

// Start moves the attempt to in-progress at the first question with no
// answers recorded. Starting a started attempt is a no-op.
func (e *Engine) Start() {
	if e.state != StateNotStarted {
		return
	}
	e.state = StateInProgress
	e.index = 0
	e.responses = map[string]quiz.Response{}
	if e.quiz.TimeLimitMin > 0 {
		e.initial = e.quiz.TimeLimitMin * 60
		secs := e.initial
		e.remaining = &secs
	}
}

func (e *Engine) State() State { return e.state }
func (e *Engine) Index() int   { return e.index }

// Remaining returns the seconds left, or nil for untimed attempts.
func (e *Engine) Remaining() *int {
	if e.remaining == nil {
		return nil
	}
	v := *e.remaining
	return &v
}

// Response returns the recorded answer for a question, if any.
func (e *Engine) Response(questionID string) (quiz.Response, bool) {
	r, ok := e.responses[questionID]
	return r, ok
}

// Answer records (or overwrites) the answer for a question. The value is
// not validated: an empty string is a legal, recorded answer.
func (e *Engine) Answer(questionID string, kind quiz.ResponseKind, value string) error {
	if e.state != StateInProgress {
		return ErrNotInProgress
	}
	qu, ok := e.quiz.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	r := quiz.Response{QuestionID: questionID, Kind: kind, Value: value}
	if !r.Matches(qu.Type) {
		return fmt.Errorf("%w: %s answer for %s question %s", ErrKindMismatch, kind, qu.Type, questionID)
	}
	e.responses[questionID] = r
	return nil
}

// GoNext advances to the next question; at the last question it is a no-op.
func (e *Engine) GoNext() {
	if e.state == StateInProgress && e.index < len(e.quiz.Questions)-1 {
		e.index++
	}
}

// GoPrevious moves back one question; at the first question it is a no-op.
func (e *Engine) GoPrevious() {
	if e.state == StateInProgress && e.index > 0 {
		e.index--
	}
}

// Tick consumes one second of the countdown. When the clock hits zero the
// attempt is submitted with whatever answers are recorded; every later
// tick is a no-op. The returned result is non-nil only for the tick that
// triggered submission.
func (e *Engine) Tick() (*grading.Result, error) {
	if e.state != StateInProgress || e.remaining == nil || *e.remaining <= 0 {
		return nil, nil
	}
	*e.remaining--
	if *e.remaining > 0 {
		return nil, nil
	}
	res, err := e.Submit()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Submit flattens the recorded answers in quiz order and hands them to the
// scoring side. On success the attempt is terminal; calling Submit again
// returns the original result. On failure the attempt stays in progress so
// the caller can retry without losing answers.
func (e *Engine) Submit() (grading.Result, error) {
	switch e.state {
	case StateSubmitted:
		return *e.result, nil
	case StateNotStarted:
		return grading.Result{}, ErrNotInProgress
	}

	var timeTaken *int
	if e.remaining != nil {
		v := e.initial - *e.remaining
		timeTaken = &v
	}

	responses := make([]quiz.Response, 0, len(e.responses))
	for _, qu := range e.quiz.Questions {
		if r, ok := e.responses[qu.ID]; ok {
			responses = append(responses, r)
		}
	}

	res, err := e.submit(responses, timeTaken)
	if err != nil {
		return grading.Result{}, err
	}
	e.state = StateSubmitted
	e.result = &res
	return res, nil
}
