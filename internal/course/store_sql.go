package course

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound signals a missing course or lesson.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) CreateCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id,title,description,instructor_id,created_at) VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Title, c.Description, c.InstructorID, time.Now().Unix())
	return err
}

func (s *Store) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,instructor_id,created_at FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

func (s *Store) ListCourses(ctx context.Context, limit, offset int) ([]Course, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,description,instructor_id,created_at FROM courses
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddLesson(ctx context.Context, l Lesson) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (id,course_id,title,content,position,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.CourseID, l.Title, l.Content, l.Position, time.Now().Unix())
	return err
}

func (s *Store) ListLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,course_id,title,content,position,created_at FROM lessons
		 WHERE course_id=$1 ORDER BY position, created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lesson{}
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.Position, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CountLessons(ctx context.Context, courseID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lessons WHERE course_id=$1`, courseID).Scan(&n)
	return n, err
}

func (s *Store) LessonInCourse(ctx context.Context, courseID, lessonID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM lessons WHERE id=$1 AND course_id=$2`, lessonID, courseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Enroll is idempotent: re-enrolling an enrolled student is a no-op. A zero
// progress row is seeded alongside so course dashboards see the student
// immediately; existing progress is never touched.
func (s *Store) Enroll(ctx context.Context, studentID, courseID string) error {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return err
	}
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (student_id,course_id,enrolled_at) VALUES ($1,$2,$3)
		 ON CONFLICT DO NOTHING`,
		studentID, courseID, now)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progress (student_id,course_id,progress_pct,total_time_min,last_accessed)
		 VALUES ($1,$2,0,0,$3) ON CONFLICT DO NOTHING`,
		studentID, courseID, now)
	return err
}

func (s *Store) ListEnrollments(ctx context.Context, studentID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id,course_id,enrolled_at FROM enrollments
		 WHERE student_id=$1 ORDER BY enrolled_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Enrollment{}
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.StudentID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM enrollments WHERE student_id=$1 AND course_id=$2`, studentID, courseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
