package syncx

import (
	"context"
	"database/sql"
	"time"
)

const (
	EventAttemptSubmitted = "attempt_submitted"
	EventResultPublished  = "result_published"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: result ID
	DataJSON  string
	CreatedAt int64
}

// EventRepo appends lifecycle events to the append-only event_log table so
// downstream consumers (notifications, sync) can tail it.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}
