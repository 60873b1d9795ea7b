package course

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub/internal/db"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	h, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	h.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), h, db.DriverSQLite))

	store := NewStore(h)
	require.NoError(t, store.CreateCourse(context.Background(),
		Course{ID: "c1", Title: "Go Basics", InstructorID: "i1"}))
	return store, h
}

func TestStore_EnrollSeedsZeroProgress(t *testing.T) {
	store, h := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enroll(ctx, "s1", "c1"))

	var pct, mins int
	err := h.QueryRow(`SELECT progress_pct, total_time_min FROM progress
		WHERE student_id='s1' AND course_id='c1'`).Scan(&pct, &mins)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)
	assert.Equal(t, 0, mins)
}

func TestStore_EnrollKeepsExistingProgress(t *testing.T) {
	store, h := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enroll(ctx, "s1", "c1"))
	_, err := h.Exec(`UPDATE progress SET progress_pct=40, total_time_min=15
		WHERE student_id='s1' AND course_id='c1'`)
	require.NoError(t, err)

	// re-enrolling is a no-op for both tables
	require.NoError(t, store.Enroll(ctx, "s1", "c1"))

	var pct, mins int
	require.NoError(t, h.QueryRow(`SELECT progress_pct, total_time_min FROM progress
		WHERE student_id='s1' AND course_id='c1'`).Scan(&pct, &mins))
	assert.Equal(t, 40, pct)
	assert.Equal(t, 15, mins)

	var n int
	require.NoError(t, h.QueryRow(`SELECT COUNT(*) FROM enrollments
		WHERE student_id='s1' AND course_id='c1'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStore_EnrollUnknownCourse(t *testing.T) {
	store, _ := newTestStore(t)
	assert.ErrorIs(t, store.Enroll(context.Background(), "s1", "missing"), ErrNotFound)
}

func TestStore_IsEnrolled(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.IsEnrolled(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Enroll(ctx, "s1", "c1"))

	ok, err = store.IsEnrolled(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsEnrolled(ctx, "s2", "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LessonsOrderedByPosition(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddLesson(ctx, Lesson{ID: "l2", CourseID: "c1", Title: "Two", Position: 2}))
	require.NoError(t, store.AddLesson(ctx, Lesson{ID: "l1", CourseID: "c1", Title: "One", Position: 1}))

	lessons, err := store.ListLessons(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "l1", lessons[0].ID)
	assert.Equal(t, "l2", lessons[1].ID)

	n, err := store.CountLessons(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	in, err := store.LessonInCourse(ctx, "c1", "l1")
	require.NoError(t, err)
	assert.True(t, in)
	in, err = store.LessonInCourse(ctx, "c1", "nope")
	require.NoError(t, err)
	assert.False(t, in)
}
