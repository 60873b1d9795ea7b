package analytics

import (
	"context"
	"database/sql"
)

// QuizStats aggregates all persisted attempts for one quiz.
type QuizStats struct {
	QuizID   string  `json:"quizId"`
	Attempts int     `json:"attempts"`
	Students int     `json:"students"`
	AvgScore float64 `json:"avgScore"`
	PassRate float64 `json:"passRate"` // 0-1
}

// CourseStats aggregates enrollment and progress for one course.
type CourseStats struct {
	CourseID       string  `json:"courseId"`
	Enrolled       int     `json:"enrolled"`
	LessonCount    int     `json:"lessonCount"`
	AvgProgressPct float64 `json:"avgProgressPercentage"`
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service { return &Service{db: db} }

func (s *Service) QuizStats(ctx context.Context, quizID string) (QuizStats, error) {
	st := QuizStats{QuizID: quizID}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT student_id),
		       COALESCE(AVG(score), 0),
		       COALESCE(AVG(CASE WHEN passed THEN 1.0 ELSE 0.0 END), 0)
		  FROM attempts WHERE quiz_id=$1`, quizID).
		Scan(&st.Attempts, &st.Students, &st.AvgScore, &st.PassRate)
	return st, err
}

func (s *Service) CourseStats(ctx context.Context, courseID string) (CourseStats, error) {
	st := CourseStats{CourseID: courseID}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id=$1`, courseID).Scan(&st.Enrolled)
	if err != nil {
		return st, err
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lessons WHERE course_id=$1`, courseID).Scan(&st.LessonCount)
	if err != nil {
		return st, err
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(progress_pct), 0) FROM progress WHERE course_id=$1`, courseID).
		Scan(&st.AvgProgressPct)
	return st, err
}
