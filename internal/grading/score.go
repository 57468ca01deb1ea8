package grading

import (
	"math"

	"github.com/miniquiz/miniquiz/internal/quiz"
)

// Score computes a result view for one submitted response set. It never
// mutates its inputs: re-scoring the same responses and evaluations yields
// an identical result.
//
// Multiple-choice questions are compared by exact string equality against
// the correct answer; unanswered counts as incorrect. Text questions earn
// zero until an evaluation exists, then the awarded points clamped to
// [0, points_possible]. The result is provisional (is_evaluated false)
// until every text question has an evaluation.
func Score(q quiz.Quiz, responses []quiz.Response, evals map[string]Evaluation) Result {
	byQuestion := make(map[string]quiz.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	res := Result{
		QuizID:      q.ID,
		QuizTitle:   q.Title,
		IsEvaluated: true,
		Responses:   responses,
		Details:     make([]QuestionResult, 0, len(q.Questions)),
	}

	total := 0
	for _, qu := range q.Questions {
		r, answered := byQuestion[qu.ID]
		item := QuestionResult{
			QuestionID:     qu.ID,
			QuestionText:   qu.Text,
			QuestionType:   qu.Type,
			PointsPossible: qu.Points,
			Answered:       answered,
			Explanation:    qu.Explanation,
		}

		switch qu.Type {
		case quiz.TypeMultipleChoice:
			if answered {
				item.SelectedAnswer = r.Value
			}
			item.IsCorrect = answered && r.Value == qu.CorrectAnswer
			if item.IsCorrect {
				item.PointsEarned = qu.Points
			} else {
				item.CorrectAnswer = qu.CorrectAnswer
			}
		case quiz.TypeText:
			if answered {
				item.TextAnswer = r.Value
			}
			if ev, ok := evals[qu.ID]; ok {
				item.IsEvaluated = true
				item.PointsEarned = clamp(ev.PointsAwarded, 0, qu.Points)
				item.Feedback = ev.Feedback
			} else {
				res.IsEvaluated = false
			}
		}

		total += item.PointsEarned
		res.MaxPossibleScore += qu.Points
		res.Details = append(res.Details, item)
	}

	res.TotalScore = total
	if res.MaxPossibleScore > 0 {
		res.Percentage = int(math.Round(float64(total) / float64(res.MaxPossibleScore) * 100))
	}
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
