package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
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
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,course_id,lesson_id,title,passing_score,time_limit_min,max_attempts,is_mandatory,questions_json,created_by,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			title=EXCLUDED.title,
			passing_score=EXCLUDED.passing_score,
			time_limit_min=EXCLUDED.time_limit_min,
			max_attempts=EXCLUDED.max_attempts,
			is_mandatory=EXCLUDED.is_mandatory,
			questions_json=EXCLUDED.questions_json,
			updated_at=EXCLUDED.updated_at`,
		q.ID, q.CourseID, q.LessonID, q.Title, q.PassingScore, q.TimeLimitMin,
		q.MaxAttempts, q.Mandatory, string(qj), q.CreatedBy, now, now)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,course_id,lesson_id,title,passing_score,time_limit_min,max_attempts,is_mandatory,questions_json,created_by,created_at,updated_at
		FROM quizzes WHERE id=$1`, id)
	var q Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.CourseID, &q.LessonID, &q.Title, &q.PassingScore,
		&q.TimeLimitMin, &q.MaxAttempts, &q.Mandatory, &qjson, &q.CreatedBy,
		&q.CreatedAt, &q.UpdatedAt); err != nil {
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

func (s *SQLStore) CountAttempts(ctx context.Context, quizID, studentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id=$1 AND student_id=$2`,
		quizID, studentID).Scan(&n)
	return n, err
}

func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts
		(id,quiz_id,student_id,attempt_number,answers_json,score,passed,time_spent_sec,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.QuizID, a.StudentID, a.AttemptNumber, string(aj), a.Score,
		a.Passed, a.TimeSpentSec, a.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrAttemptConflict
	}
	return err
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,student_id,attempt_number,answers_json,score,passed,time_spent_sec,created_at
		FROM attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id,quiz_id,student_id,attempt_number,answers_json,score,passed,time_spent_sec,created_at
		FROM attempts WHERE quiz_id=$1`
	args := []any{opts.QuizID}
	if opts.StudentID != "" {
		q += ` AND student_id=$2`
		args = append(args, opts.StudentID)
	}
	q += ` ORDER BY created_at DESC, attempt_number DESC`
	if opts.StudentID != "" {
		q += ` LIMIT $3 OFFSET $4`
	} else {
		q += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var ajson string
	if err := row.Scan(&a.ID, &a.QuizID, &a.StudentID, &a.AttemptNumber, &ajson,
		&a.Score, &a.Passed, &a.TimeSpentSec, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
