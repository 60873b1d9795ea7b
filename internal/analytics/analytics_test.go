package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub/internal/db"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	h, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	h.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = h.Close() })
	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx, h, db.DriverSQLite))

	now := time.Now().Unix()
	seed := func(query string, args ...any) {
		t.Helper()
		_, err := h.ExecContext(ctx, query, args...)
		require.NoError(t, err)
	}
	seed(`INSERT INTO courses (id,title,description,instructor_id,created_at)
		VALUES ('c1','Course','','i1',$1)`, now)
	seed(`INSERT INTO lessons (id,course_id,title,content,position,created_at)
		VALUES ('l1','c1','One','',1,$1),('l2','c1','Two','',2,$2)`, now, now)
	seed(`INSERT INTO quizzes (id,course_id,lesson_id,title,passing_score,time_limit_min,
		max_attempts,is_mandatory,questions_json,created_by,created_at,updated_at)
		VALUES ('q1','c1','l1','Quiz',70,0,3,1,'[]','i1',$1,$2)`, now, now)
	seed(`INSERT INTO attempts (id,quiz_id,student_id,attempt_number,answers_json,score,passed,time_spent_sec,created_at)
		VALUES ('a1','q1','s1',1,'[]',40,0,60,$1),
		       ('a2','q1','s1',2,'[]',80,1,60,$2),
		       ('a3','q1','s2',1,'[]',90,1,60,$3)`, now, now, now)
	seed(`INSERT INTO enrollments (student_id,course_id,enrolled_at)
		VALUES ('s1','c1',$1),('s2','c1',$2)`, now, now)
	seed(`INSERT INTO progress (student_id,course_id,progress_pct,total_time_min,last_accessed)
		VALUES ('s1','c1',50,10,$1),('s2','c1',100,20,$2)`, now, now)

	return NewService(h)
}

func TestQuizStats(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.QuizStats(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, "q1", st.QuizID)
	assert.Equal(t, 3, st.Attempts)
	assert.Equal(t, 2, st.Students)
	assert.InDelta(t, 70.0, st.AvgScore, 1e-9)
	assert.InDelta(t, 2.0/3.0, st.PassRate, 1e-9)
}

func TestQuizStats_NoAttempts(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.QuizStats(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Attempts)
	assert.Equal(t, 0, st.Students)
	assert.Zero(t, st.AvgScore)
	assert.Zero(t, st.PassRate)
}

func TestCourseStats(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.CourseStats(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", st.CourseID)
	assert.Equal(t, 2, st.Enrolled)
	assert.Equal(t, 2, st.LessonCount)
	assert.InDelta(t, 75.0, st.AvgProgressPct, 1e-9)
}

func TestCourseStats_EmptyCourse(t *testing.T) {
	svc := newTestService(t)

	st, err := svc.CourseStats(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, st.Enrolled)
	assert.Zero(t, st.LessonCount)
	assert.Zero(t, st.AvgProgressPct)
}
