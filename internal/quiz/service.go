package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/learnhub/internal/apierr"
	"github.com/learnhub/learnhub/internal/pkg/logger"
	"github.com/learnhub/learnhub/internal/progress"
	syncx "github.com/learnhub/learnhub/internal/sync"
)

// progressTimeout bounds the best-effort call into the progress tracker.
const progressTimeout = 3 * time.Second

// ProgressNotifier is the tracker operation the orchestrator invokes when a
// mandatory quiz is passed.
type ProgressNotifier interface {
	CompleteLesson(ctx context.Context, studentID, courseID, lessonID string) (progress.Snapshot, error)
}

// EnrollmentSource reports whether a student is enrolled in a course.
// Implemented by the course store.
type EnrollmentSource interface {
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

type SubmitInput struct {
	QuizID       string
	StudentID    string
	Answers      []AnswerInput
	TimeSpentSec int
}

// SubmitResult is the response for one graded submission. ProgressUpdate is
// nil when the quiz is not mandatory, was not passed, or propagation to the
// progress tracker failed (the attempt still stands).
type SubmitResult struct {
	Score            float64            `json:"score"`
	Passed           bool               `json:"passed"`
	CorrectAnswers   int                `json:"correctAnswers"`
	TotalQuestions   int                `json:"totalQuestions"`
	EarnedPoints     float64            `json:"earnedPoints"`
	TotalPoints      float64            `json:"totalPoints"`
	AttemptID        string             `json:"attemptId"`
	AttemptNumber    int                `json:"attemptNumber"`
	MaxAttempts      int                `json:"maxAttempts"`
	EvaluatedAnswers []AnswerRecord     `json:"evaluatedAnswers"`
	ProgressUpdate   *progress.Snapshot `json:"progressUpdate"`
}

// Service coordinates one submission end to end: load, validate, grade,
// enforce the attempt quota, persist, then best-effort progress update.
type Service struct {
	store       Store
	progress    ProgressNotifier
	enrollments EnrollmentSource // optional, nil skips the enrollment gate
	events      *syncx.EventRepo // optional
	log         *logger.Logger
}

func NewService(store Store, notifier ProgressNotifier, enrollments EnrollmentSource, events *syncx.EventRepo, log *logger.Logger) *Service {
	return &Service{
		store:       store,
		progress:    notifier,
		enrollments: enrollments,
		events:      events,
		log:         log.With("component", "quiz"),
	}
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	q, err := s.store.GetQuiz(ctx, in.QuizID)
	if errors.Is(err, ErrNotFound) {
		return nil, apierr.NotFound("quiz_not_found", "quiz not found")
	}
	if err != nil {
		return nil, err
	}

	if s.enrollments != nil && q.CourseID != "" {
		enrolled, err := s.enrollments.IsEnrolled(ctx, in.StudentID, q.CourseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, apierr.Forbidden("not_enrolled", "student is not enrolled in this course")
		}
	}

	if len(in.Answers) != len(q.Questions) {
		return nil, apierr.BadRequest("answer_count_mismatch",
			fmt.Sprintf("expected %d answers, got %d", len(q.Questions), len(in.Answers)))
	}

	sum := Grade(q.Questions, in.Answers)

	prior, err := s.store.CountAttempts(ctx, q.ID, in.StudentID)
	if err != nil {
		return nil, err
	}
	attemptNumber := prior + 1
	if attemptNumber > q.MaxAttempts {
		return nil, apierr.Conflict("max_attempts_exceeded",
			fmt.Sprintf("maximum attempts (%d) exceeded", q.MaxAttempts))
	}

	records, err := sanitizeRecords(sum.Records, q.Questions)
	if err != nil {
		// malformed quiz data upstream, not a grading bug
		return nil, apierr.Unprocessable("quiz_misconfigured", err.Error())
	}

	a := Attempt{
		ID:            uuid.NewString(),
		QuizID:        q.ID,
		StudentID:     in.StudentID,
		AttemptNumber: attemptNumber,
		Answers:       records,
		Score:         sum.Score,
		Passed:        sum.Score >= q.PassingScore,
		TimeSpentSec:  in.TimeSpentSec,
		CreatedAt:     time.Now().Unix(),
	}
	if err := s.store.InsertAttempt(ctx, a); err != nil {
		if errors.Is(err, ErrAttemptConflict) {
			// a concurrent submission took this attempt number; the loser
			// is rejected and nothing is persisted for it
			return nil, apierr.Conflict("attempt_conflict", "concurrent submission detected, retry")
		}
		return nil, err
	}
	s.appendEvent(ctx, a)

	res := &SubmitResult{
		Score:            a.Score,
		Passed:           a.Passed,
		CorrectAnswers:   sum.CorrectCount,
		TotalQuestions:   len(q.Questions),
		EarnedPoints:     sum.EarnedPoints,
		TotalPoints:      sum.TotalPoints,
		AttemptID:        a.ID,
		AttemptNumber:    a.AttemptNumber,
		MaxAttempts:      q.MaxAttempts,
		EvaluatedAnswers: a.Answers,
	}

	// Best-effort side effect: the attempt is already durable, a failure
	// here surfaces as a nil progressUpdate and never rolls it back.
	if a.Passed && q.Mandatory {
		pctx, cancel := context.WithTimeout(ctx, progressTimeout)
		defer cancel()
		snap, err := s.progress.CompleteLesson(pctx, in.StudentID, q.CourseID, q.LessonID)
		if err != nil {
			s.log.Warn("progress update failed after passed attempt",
				"attempt", a.ID, "quiz", q.ID, "student", in.StudentID, "err", err)
		} else {
			res.ProgressUpdate = &snap
		}
	}
	return res, nil
}

// sanitizeRecords rebuilds each record so no field reaches storage unset.
// An empty correct answer after sanitization means the quiz definition is
// broken and the attempt must not be persisted.
func sanitizeRecords(records []AnswerRecord, questions []Question) ([]AnswerRecord, error) {
	out := make([]AnswerRecord, len(records))
	for i, r := range records {
		r.QuestionIndex = i
		if r.CorrectAnswer == "" {
			r.CorrectAnswer = questions[i].CorrectAnswer
		}
		if r.Explanation == "" {
			r.Explanation = questions[i].Explanation
		}
		if strings.TrimSpace(r.CorrectAnswer) == "" {
			return nil, fmt.Errorf("question %d has no correct answer defined", i)
		}
		out[i] = r
	}
	return out, nil
}

func (s *Service) appendEvent(ctx context.Context, a Attempt) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(map[string]any{
		"quizId":        a.QuizID,
		"studentId":     a.StudentID,
		"attemptNumber": a.AttemptNumber,
		"score":         a.Score,
		"passed":        a.Passed,
	})
	if err := s.events.Append(ctx, syncx.Event{
		Type:     syncx.EventAttemptSubmitted,
		Key:      a.ID,
		DataJSON: string(data),
	}); err != nil {
		s.log.Warn("event append failed", "attempt", a.ID, "err", err)
	}
}
