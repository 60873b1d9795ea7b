package quiz

import (
	"context"
	"errors"
)

var (
	// ErrNotFound signals a missing quiz or attempt.
	ErrNotFound = errors.New("not found")
	// ErrAttemptConflict signals a concurrent submission lost the race on
	// the (quiz, student, attempt_number) uniqueness constraint.
	ErrAttemptConflict = errors.New("attempt number conflict")
)

type AttemptListOpts struct {
	QuizID    string
	StudentID string // empty: any student
	Limit     int
	Offset    int
}

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	// GetQuiz returns the full quiz including answer keys. Callers serving
	// students must apply StudentView.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	CountAttempts(ctx context.Context, quizID, studentID string) (int, error)
	// InsertAttempt persists one attempt. Returns ErrAttemptConflict when
	// the attempt number is already taken for the (quiz, student) pair.
	InsertAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}
