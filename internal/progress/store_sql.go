package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CompleteLesson(ctx context.Context, studentID, courseID, lessonID string, totalLessons int) (Snapshot, error) {
	now := time.Now().Unix()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertRow(ctx, tx, studentID, courseID, now); err != nil {
			return err
		}
		// set semantics: re-completing is a no-op
		if _, err := tx.ExecContext(ctx, `INSERT INTO progress_lessons (student_id,course_id,lesson_id,completed_at)
			VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING`,
			studentID, courseID, lessonID, now); err != nil {
			return err
		}
		return recomputePct(ctx, tx, studentID, courseID, totalLessons)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return s.Get(ctx, studentID, courseID)
}

func (s *SQLStore) UncompleteLesson(ctx context.Context, studentID, courseID, lessonID string, totalLessons int) (Snapshot, error) {
	now := time.Now().Unix()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertRow(ctx, tx, studentID, courseID, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM progress_lessons
			WHERE student_id=$1 AND course_id=$2 AND lesson_id=$3`,
			studentID, courseID, lessonID); err != nil {
			return err
		}
		return recomputePct(ctx, tx, studentID, courseID, totalLessons)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return s.Get(ctx, studentID, courseID)
}

func (s *SQLStore) AddTime(ctx context.Context, studentID, courseID string, minutes int) (Snapshot, error) {
	now := time.Now().Unix()
	// single-statement atomic increment
	_, err := s.db.ExecContext(ctx, `INSERT INTO progress (student_id,course_id,progress_pct,total_time_min,last_accessed)
		VALUES ($1,$2,0,$3,$4)
		ON CONFLICT (student_id,course_id) DO UPDATE SET
			total_time_min = total_time_min + EXCLUDED.total_time_min,
			last_accessed = EXCLUDED.last_accessed`,
		studentID, courseID, minutes, now)
	if err != nil {
		return Snapshot{}, err
	}
	return s.Get(ctx, studentID, courseID)
}

func (s *SQLStore) Get(ctx context.Context, studentID, courseID string) (Snapshot, error) {
	snap := Snapshot{StudentID: studentID, CourseID: courseID, CompletedLessons: []CompletedLesson{}}
	err := s.db.QueryRowContext(ctx, `SELECT progress_pct,total_time_min,last_accessed
		FROM progress WHERE student_id=$1 AND course_id=$2`,
		studentID, courseID).Scan(&snap.ProgressPct, &snap.TotalTimeMin, &snap.LastAccessed)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, nil // absence of progress is not an error
	}
	if err != nil {
		return Snapshot{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT lesson_id,completed_at FROM progress_lessons
		WHERE student_id=$1 AND course_id=$2 ORDER BY completed_at, lesson_id`,
		studentID, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var cl CompletedLesson
		if err := rows.Scan(&cl.LessonID, &cl.CompletedAt); err != nil {
			return Snapshot{}, err
		}
		snap.CompletedLessons = append(snap.CompletedLessons, cl)
	}
	return snap, rows.Err()
}

func (s *SQLStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertRow(ctx context.Context, tx *sql.Tx, studentID, courseID string, now int64) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO progress (student_id,course_id,progress_pct,total_time_min,last_accessed)
		VALUES ($1,$2,0,0,$3)
		ON CONFLICT (student_id,course_id) DO UPDATE SET last_accessed=EXCLUDED.last_accessed`,
		studentID, courseID, now)
	return err
}

func recomputePct(ctx context.Context, tx *sql.Tx, studentID, courseID string, totalLessons int) error {
	var completed int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM progress_lessons
		WHERE student_id=$1 AND course_id=$2`, studentID, courseID).Scan(&completed); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `UPDATE progress SET progress_pct=$1
		WHERE student_id=$2 AND course_id=$3`,
		Pct(completed, totalLessons), studentID, courseID)
	return err
}
