package grading

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) SaveResult(ctx context.Context, r Result) error {
	rj, err := json.Marshal(r.Responses)
	if err != nil {
		return err
	}
	dj, err := json.Marshal(r.Details)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results
		(id,quiz_id,quiz_title,user_id,total_score,max_score,percentage,time_taken,is_evaluated,published,completed_at,responses_json,details_json)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			total_score=EXCLUDED.total_score, max_score=EXCLUDED.max_score,
			percentage=EXCLUDED.percentage, is_evaluated=EXCLUDED.is_evaluated,
			details_json=EXCLUDED.details_json`,
		r.ID, r.QuizID, r.QuizTitle, r.UserID, r.TotalScore, r.MaxPossibleScore,
		r.Percentage, r.TimeTaken, boolInt(r.IsEvaluated), boolInt(r.Published),
		r.CompletedAt, string(rj), string(dj))
	return err
}

const resultCols = `id,quiz_id,quiz_title,user_id,total_score,max_score,percentage,time_taken,is_evaluated,published,completed_at,responses_json,details_json`

func (s *SQLStore) GetResult(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultCols+` FROM results WHERE id=$1`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrResultNotFound
	}
	return r, err
}

func (s *SQLStore) ListResults(ctx context.Context) ([]Result, error) {
	return s.list(ctx, `SELECT `+resultCols+` FROM results ORDER BY completed_at DESC, id`)
}

func (s *SQLStore) ListResultsByUser(ctx context.Context, userID string) ([]Result, error) {
	return s.list(ctx, `SELECT `+resultCols+` FROM results WHERE user_id=$1 ORDER BY completed_at DESC, id`, userID)
}

func (s *SQLStore) ListPending(ctx context.Context) ([]Result, error) {
	return s.list(ctx, `SELECT `+resultCols+` FROM results WHERE is_evaluated=0 ORDER BY completed_at ASC, id`)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (Result, error) {
	var r Result
	var evaluated, published int
	var timeTaken sql.NullInt64
	var rjson, djson string
	if err := row.Scan(&r.ID, &r.QuizID, &r.QuizTitle, &r.UserID, &r.TotalScore,
		&r.MaxPossibleScore, &r.Percentage, &timeTaken, &evaluated, &published,
		&r.CompletedAt, &rjson, &djson); err != nil {
		return Result{}, err
	}
	if timeTaken.Valid {
		v := int(timeTaken.Int64)
		r.TimeTaken = &v
	}
	r.IsEvaluated = evaluated != 0
	r.Published = published != 0
	if err := json.Unmarshal([]byte(rjson), &r.Responses); err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal([]byte(djson), &r.Details); err != nil {
		return Result{}, err
	}
	return r, nil
}

func (s *SQLStore) UpsertEvaluation(ctx context.Context, resultID string, e Evaluation) error {
	if err := s.ensureResult(ctx, resultID); err != nil {
		return err
	}
	gradedAt := e.GradedAt
	if gradedAt == 0 {
		gradedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO evaluations (result_id,question_id,points_awarded,feedback,graded_by,graded_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (result_id,question_id) DO UPDATE SET
			points_awarded=EXCLUDED.points_awarded, feedback=EXCLUDED.feedback,
			graded_by=EXCLUDED.graded_by, graded_at=EXCLUDED.graded_at`,
		resultID, e.QuestionID, e.PointsAwarded, e.Feedback, e.GradedBy, gradedAt)
	return err
}

func (s *SQLStore) GetEvaluations(ctx context.Context, resultID string) (map[string]Evaluation, error) {
	if err := s.ensureResult(ctx, resultID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT question_id,points_awarded,feedback,graded_by,graded_at
		FROM evaluations WHERE result_id=$1`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]Evaluation{}
	for rows.Next() {
		var e Evaluation
		if err := rows.Scan(&e.QuestionID, &e.PointsAwarded, &e.Feedback, &e.GradedBy, &e.GradedAt); err != nil {
			return nil, err
		}
		out[e.QuestionID] = e
	}
	return out, rows.Err()
}

func (s *SQLStore) SetPublished(ctx context.Context, resultID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE results SET published=1 WHERE id=$1`, resultID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrResultNotFound
	}
	return nil
}

func (s *SQLStore) ensureResult(ctx context.Context, resultID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM results WHERE id=$1`, resultID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrResultNotFound
	}
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
