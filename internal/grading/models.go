package grading

import "github.com/miniquiz/miniquiz/internal/quiz"

// QuestionResult is one row of a result's per-question breakdown.
type QuestionResult struct {
	QuestionID     string            `json:"question_id"`
	QuestionText   string            `json:"question_text"`
	QuestionType   quiz.QuestionType `json:"question_type"`
	PointsPossible int               `json:"points_possible"`
	PointsEarned   int               `json:"points_earned"`
	Answered       bool              `json:"answered"`
	IsCorrect      bool              `json:"is_correct"`
	SelectedAnswer string            `json:"selected_answer,omitempty"`
	TextAnswer     string            `json:"text_answer,omitempty"`
	// CorrectAnswer is revealed only when the student got the question wrong.
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
	// Text questions only.
	IsEvaluated bool   `json:"is_evaluated,omitempty"`
	Feedback    string `json:"feedback,omitempty"`
}

type Result struct {
	ID               string           `json:"id"`
	QuizID           string           `json:"quiz_id"`
	QuizTitle        string           `json:"quiz_title"`
	UserID           string           `json:"user_id,omitempty"`
	TotalScore       int              `json:"total_score"`
	MaxPossibleScore int              `json:"max_possible_score"`
	Percentage       int              `json:"percentage"`
	TimeTaken        *int             `json:"time_taken,omitempty"` // seconds, nil when untimed
	IsEvaluated      bool             `json:"is_evaluated"`
	Published        bool             `json:"published"`
	CompletedAt      int64            `json:"completed_at,omitempty"`
	Responses        []quiz.Response  `json:"responses,omitempty"`
	Details          []QuestionResult `json:"detailed_results"`
}

// Evaluation is an instructor's point award + feedback for one text
// question within one submitted attempt.
type Evaluation struct {
	QuestionID    string `json:"question_id"`
	PointsAwarded int    `json:"points_awarded"`
	Feedback      string `json:"feedback,omitempty"`
	GradedBy      string `json:"graded_by,omitempty"`
	GradedAt      int64  `json:"graded_at,omitempty"`
}

// PendingResult annotates a not-yet-evaluated result with how many text
// questions still need a score.
type PendingResult struct {
	Result
	PendingCount int `json:"pending_count"`
}
