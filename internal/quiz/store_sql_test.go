package quiz

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub/internal/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	h, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	h.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), h, db.DriverSQLite))

	_, err = h.Exec(`INSERT INTO courses (id,title,description,instructor_id,created_at)
		VALUES ('c1','Course','',  'i1', $1)`, time.Now().Unix())
	require.NoError(t, err)
	return h
}

func TestSQLStore_QuizRoundtrip(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()

	q := testQuiz()
	require.NoError(t, store.PutQuiz(ctx, q))

	got, err := store.GetQuiz(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, q.Title, got.Title)
	assert.Equal(t, q.MaxAttempts, got.MaxAttempts)
	assert.True(t, got.Mandatory)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "0", got.Questions[0].CorrectAnswer)

	// upsert keeps the id, replaces content
	q.Title = "Basics v2"
	require.NoError(t, store.PutQuiz(ctx, q))
	got, err = store.GetQuiz(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "Basics v2", got.Title)

	_, err = store.GetQuiz(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_AttemptUniqueness(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.PutQuiz(ctx, testQuiz()))

	a := Attempt{
		ID: "a1", QuizID: "q1", StudentID: "s1", AttemptNumber: 1,
		Answers:   []AnswerRecord{{QuestionIndex: 0, CorrectAnswer: "0"}},
		Score:     50, CreatedAt: time.Now().Unix(),
	}
	require.NoError(t, store.InsertAttempt(ctx, a))

	// same (quiz, student, attempt_number) loses the race
	dup := a
	dup.ID = "a2"
	assert.ErrorIs(t, store.InsertAttempt(ctx, dup), ErrAttemptConflict)

	n, err := store.CountAttempts(ctx, "q1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// another student is unaffected
	other := a
	other.ID = "a3"
	other.StudentID = "s2"
	require.NoError(t, store.InsertAttempt(ctx, other))
}

func TestSQLStore_ListAttempts(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.PutQuiz(ctx, testQuiz()))

	now := time.Now().Unix()
	for i, student := range []string{"s1", "s1", "s2"} {
		a := Attempt{
			ID: string(rune('a' + i)), QuizID: "q1", StudentID: student,
			AttemptNumber: i%2 + 1,
			Answers:       []AnswerRecord{},
			CreatedAt:     now + int64(i),
		}
		require.NoError(t, store.InsertAttempt(ctx, a))
	}

	all, err := store.ListAttempts(ctx, AttemptListOpts{QuizID: "q1"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// newest first
	assert.Equal(t, "s2", all[0].StudentID)

	own, err := store.ListAttempts(ctx, AttemptListOpts{QuizID: "q1", StudentID: "s1"})
	require.NoError(t, err)
	assert.Len(t, own, 2)
}
