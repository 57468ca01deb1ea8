package quiz

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeText           QuestionType = "text"
)

type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"question_text"`
	Type          QuestionType `json:"question_type"`
	Options       []string     `json:"options,omitempty"`        // multiple_choice only
	CorrectAnswer string       `json:"correct_answer,omitempty"` // multiple_choice only
	Points        int          `json:"points"`
	Explanation   string       `json:"explanation,omitempty"`
}

type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Subject      string     `json:"subject"`
	Description  string     `json:"description,omitempty"`
	TimeLimitMin int        `json:"time_limit,omitempty"` // minutes, 0 = untimed
	Questions    []Question `json:"questions"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

// Summary is the listing view of a quiz, without question content.
type Summary struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Subject            string `json:"subject"`
	Description        string `json:"description,omitempty"`
	TotalQuestions     int    `json:"total_questions"`
	TotalPoints        int    `json:"total_points"`
	TimeLimitMin       int    `json:"time_limit,omitempty"`
	RequiresEvaluation bool   `json:"requires_evaluation"`
}

func (q Quiz) TotalPoints() int {
	sum := 0
	for _, qu := range q.Questions {
		sum += qu.Points
	}
	return sum
}

// RequiresEvaluation reports whether the quiz has at least one free-text
// question, i.e. results stay pending until an instructor grades them.
func (q Quiz) RequiresEvaluation() bool {
	for _, qu := range q.Questions {
		if qu.Type == TypeText {
			return true
		}
	}
	return false
}

func (q Quiz) Summary() Summary {
	return Summary{
		ID:                 q.ID,
		Title:              q.Title,
		Subject:            q.Subject,
		Description:        q.Description,
		TotalQuestions:     len(q.Questions),
		TotalPoints:        q.TotalPoints(),
		TimeLimitMin:       q.TimeLimitMin,
		RequiresEvaluation: q.RequiresEvaluation(),
	}
}

// Sanitized returns a copy safe to serve to a student taking the quiz:
// correct answers and explanations are stripped.
func (q Quiz) Sanitized() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.CorrectAnswer = ""
		qu.Explanation = ""
		out.Questions[i] = qu
	}
	return out
}

// Question returns the question with the given id, if any.
func (q Quiz) Question(id string) (Question, bool) {
	for _, qu := range q.Questions {
		if qu.ID == id {
			return qu, true
		}
	}
	return Question{}, false
}
