package quiz

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

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	created := q.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,subject,description,time_limit_min,questions_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, subject=EXCLUDED.subject,
			description=EXCLUDED.description, time_limit_min=EXCLUDED.time_limit_min,
			questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, q.Subject, q.Description, q.TimeLimitMin, string(qj), q.CreatedBy, created)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := s.GetQuizWithAnswers(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	return q.Sanitized(), nil
}

func (s *SQLStore) GetQuizWithAnswers(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,subject,description,time_limit_min,questions_json,created_by,created_at
		FROM quizzes WHERE id=$1`, id)
	var q Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.Title, &q.Subject, &q.Description, &q.TimeLimitMin, &qjson, &q.CreatedBy, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,subject,description,time_limit_min,questions_json
		FROM quizzes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var q Quiz
		var qjson string
		if err := rows.Scan(&q.ID, &q.Title, &q.Subject, &q.Description, &q.TimeLimitMin, &qjson); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
			return nil, err
		}
		out = append(out, q.Summary())
	}
	return out, rows.Err()
}
