package quiz

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub/internal/apierr"
	"github.com/learnhub/learnhub/internal/pkg/logger"
	"github.com/learnhub/learnhub/internal/progress"
)

type fakeNotifier struct {
	calls int
	fail  bool
}

func (f *fakeNotifier) CompleteLesson(_ context.Context, studentID, courseID, lessonID string) (progress.Snapshot, error) {
	f.calls++
	if f.fail {
		return progress.Snapshot{}, errors.New("tracker unavailable")
	}
	return progress.Snapshot{
		StudentID:        studentID,
		CourseID:         courseID,
		CompletedLessons: []progress.CompletedLesson{{LessonID: lessonID}},
		ProgressPct:      50,
	}, nil
}

func newTestService(t *testing.T, q Quiz) (*Service, Store, *fakeNotifier) {
	t.Helper()
	store := NewInMemoryStore()
	require.NoError(t, store.PutQuiz(context.Background(), q))
	notifier := &fakeNotifier{}
	return NewService(store, notifier, nil, nil, logger.NewNop()), store, notifier
}

type fakeEnrollments struct {
	enrolled map[string]bool // studentID|courseID
}

func (f *fakeEnrollments) IsEnrolled(_ context.Context, studentID, courseID string) (bool, error) {
	return f.enrolled[studentID+"|"+courseID], nil
}

func testQuiz() Quiz {
	return Quiz{
		ID:           "q1",
		CourseID:     "c1",
		LessonID:     "l1",
		Title:        "Basics",
		PassingScore: 70,
		MaxAttempts:  3,
		Mandatory:    true,
		Questions:    twoQuestionQuiz(),
	}
}

func correctAnswers() []AnswerInput {
	return []AnswerInput{{SelectedOption: "0"}, {TextAnswer: "Blue"}}
}

func TestSubmit_PassedMandatoryUpdatesProgress(t *testing.T) {
	svc, store, notifier := newTestService(t, testQuiz())

	res, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(), TimeSpentSec: 42,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, 2, res.CorrectAnswers)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 1, res.AttemptNumber)
	assert.Equal(t, 3, res.MaxAttempts)
	require.NotNil(t, res.ProgressUpdate)
	assert.Equal(t, 1, notifier.calls)

	a, err := store.GetAttempt(context.Background(), res.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, 42, a.TimeSpentSec)
	assert.Len(t, a.Answers, 2)
}

func TestSubmit_FailedAttemptSkipsProgress(t *testing.T) {
	svc, _, notifier := newTestService(t, testQuiz())

	res, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1",
		Answers: []AnswerInput{{SelectedOption: "1"}, {TextAnswer: "red"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Passed)
	assert.Nil(t, res.ProgressUpdate)
	assert.Equal(t, 0, notifier.calls)
}

func TestSubmit_NonMandatorySkipsProgress(t *testing.T) {
	q := testQuiz()
	q.Mandatory = false
	svc, _, notifier := newTestService(t, q)

	res, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
	})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Nil(t, res.ProgressUpdate)
	assert.Equal(t, 0, notifier.calls)
}

func TestSubmit_ProgressFailureDoesNotFailAttempt(t *testing.T) {
	svc, store, notifier := newTestService(t, testQuiz())
	notifier.fail = true

	res, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
	})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Nil(t, res.ProgressUpdate) // surfaced as null, attempt stands

	_, err = store.GetAttempt(context.Background(), res.AttemptID)
	assert.NoError(t, err)
}

func TestSubmit_QuizNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, testQuiz())
	_, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "missing", StudentID: "s1", Answers: correctAnswers(),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
}

func TestSubmit_AnswerCountMismatch(t *testing.T) {
	svc, store, _ := newTestService(t, testQuiz())
	_, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: []AnswerInput{{SelectedOption: "0"}},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	assert.Contains(t, err.Error(), "expected 2 answers")

	n, err := store.CountAttempts(context.Background(), "q1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, n) // nothing persisted
}

func TestSubmit_AttemptNumbersMonotonic(t *testing.T) {
	svc, _, _ := newTestService(t, testQuiz())
	for want := 1; want <= 3; want++ {
		res, err := svc.Submit(context.Background(), SubmitInput{
			QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
		})
		require.NoError(t, err)
		assert.Equal(t, want, res.AttemptNumber)
	}
}

func TestSubmit_MaxAttemptsEnforced(t *testing.T) {
	q := testQuiz()
	q.MaxAttempts = 1
	svc, store, _ := newTestService(t, q)

	_, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
	})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))
	assert.Contains(t, err.Error(), "maximum attempts (1) exceeded")

	n, err := store.CountAttempts(context.Background(), "q1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n) // still exactly one record
}

func TestSubmit_LimitIsPerStudent(t *testing.T) {
	q := testQuiz()
	q.MaxAttempts = 1
	svc, _, _ := newTestService(t, q)

	_, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
	})
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s2", Answers: correctAnswers(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.AttemptNumber)
}

func TestSubmit_MisconfiguredQuizRejected(t *testing.T) {
	q := testQuiz()
	q.Questions[1].CorrectAnswer = "   " // broken definition upstream
	svc, store, _ := newTestService(t, q)

	_, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apierr.StatusOf(err))

	n, err := store.CountAttempts(context.Background(), "q1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSubmit_RequiresEnrollment(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.PutQuiz(context.Background(), testQuiz()))
	enr := &fakeEnrollments{enrolled: map[string]bool{"s1|c1": true}}
	svc := NewService(store, &fakeNotifier{}, enr, nil, logger.NewNop())

	res, err := svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s1", Answers: correctAnswers(),
	})
	require.NoError(t, err)
	assert.True(t, res.Passed)

	_, err = svc.Submit(context.Background(), SubmitInput{
		QuizID: "q1", StudentID: "s2", Answers: correctAnswers(),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))

	// nothing persisted for the rejected student
	list, err := store.ListAttempts(context.Background(), AttemptListOpts{QuizID: "q1", StudentID: "s2"})
	require.NoError(t, err)
	assert.Empty(t, list)
}
