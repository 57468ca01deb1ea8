package quiz

import (
	"encoding/json"
	"errors"
)

type ResponseKind string

const (
	KindChoice ResponseKind = "choice" // selected_answer, multiple_choice questions
	KindText   ResponseKind = "text"   // text_answer, free-text questions
)

// Response is one recorded answer. Exactly one kind applies per question
// type; an empty Value is still a recorded answer, distinct from the
// question never having been answered at all.
type Response struct {
	QuestionID string
	Kind       ResponseKind
	Value      string
}

// The wire shape keeps the selected_answer / text_answer split so either
// field may be present (possibly empty) while the other is absent.
type responseJSON struct {
	QuestionID string  `json:"question_id"`
	Selected   *string `json:"selected_answer,omitempty"`
	Text       *string `json:"text_answer,omitempty"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	out := responseJSON{QuestionID: r.QuestionID}
	v := r.Value
	switch r.Kind {
	case KindChoice:
		out.Selected = &v
	case KindText:
		out.Text = &v
	default:
		return nil, errors.New("response kind must be choice or text")
	}
	return json.Marshal(out)
}

func (r *Response) UnmarshalJSON(b []byte) error {
	var in responseJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.QuestionID == "" {
		return errors.New("question_id required")
	}
	switch {
	case in.Selected != nil && in.Text != nil:
		return errors.New("selected_answer and text_answer are mutually exclusive")
	case in.Selected != nil:
		*r = Response{QuestionID: in.QuestionID, Kind: KindChoice, Value: *in.Selected}
	case in.Text != nil:
		*r = Response{QuestionID: in.QuestionID, Kind: KindText, Value: *in.Text}
	default:
		return errors.New("selected_answer or text_answer required")
	}
	return nil
}

// Matches reports whether the response kind is legal for the question type.
func (r Response) Matches(t QuestionType) bool {
	switch r.Kind {
	case KindChoice:
		return t == TypeMultipleChoice
	case KindText:
		return t == TypeText
	}
	return false
}
