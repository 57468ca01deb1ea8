package quiz

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed authoring input. It is recoverable:
// the caller fixes the quiz and retries.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Validate checks a quiz before it is stored. Blank option strings are
// dropped; a multiple-choice question needs at least two left over and a
// correct answer matching one of them.
func Validate(q *Quiz) error {
	if strings.TrimSpace(q.Title) == "" {
		return invalidf("title required")
	}
	if strings.TrimSpace(q.Subject) == "" {
		return invalidf("subject required")
	}
	if q.TimeLimitMin < 0 {
		return invalidf("time_limit must not be negative")
	}
	if len(q.Questions) == 0 {
		return invalidf("at least one question required")
	}
	for i := range q.Questions {
		if err := validateQuestion(&q.Questions[i], i); err != nil {
			return err
		}
	}
	return nil
}

func validateQuestion(qu *Question, i int) error {
	if strings.TrimSpace(qu.Text) == "" {
		return invalidf("question %d: question_text required", i+1)
	}
	if qu.Points == 0 {
		qu.Points = 1
	}
	if qu.Points < 0 {
		return invalidf("question %d: points must be positive", i+1)
	}
	switch qu.Type {
	case TypeMultipleChoice:
		opts := qu.Options[:0:0]
		for _, o := range qu.Options {
			if strings.TrimSpace(o) != "" {
				opts = append(opts, o)
			}
		}
		qu.Options = opts
		if len(opts) < 2 {
			return invalidf("question %d: at least 2 non-blank options required", i+1)
		}
		if qu.CorrectAnswer == "" {
			return invalidf("question %d: correct_answer required", i+1)
		}
		found := false
		for _, o := range opts {
			if o == qu.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return invalidf("question %d: correct_answer must match one of the options", i+1)
		}
	case TypeText:
		if len(qu.Options) > 0 || qu.CorrectAnswer != "" {
			return invalidf("question %d: text questions carry no options or correct_answer", i+1)
		}
	default:
		return invalidf("question %d: unknown question_type %q", i+1, qu.Type)
	}
	return nil
}
