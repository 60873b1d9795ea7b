package syncx

import (
	"context"
	"database/sql"
	"time"
)

const (
	EventAttemptSubmitted = "AttemptSubmitted"
	EventLessonCompleted  = "LessonCompleted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: attemptID, lessonID
	DataJSON  string
	CreatedAt int64
}

// EventRepo appends audit events. Writes are best-effort; callers log and
// continue on failure.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}
