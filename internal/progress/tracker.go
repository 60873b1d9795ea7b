package progress

import (
	"context"
	"encoding/json"

	"github.com/learnhub/learnhub/internal/apierr"
	"github.com/learnhub/learnhub/internal/pkg/logger"
	syncx "github.com/learnhub/learnhub/internal/sync"
)

// LessonSource supplies course/lesson facts the tracker needs to recompute
// percentages. Implemented by the course store.
type LessonSource interface {
	CountLessons(ctx context.Context, courseID string) (int, error)
	LessonInCourse(ctx context.Context, courseID, lessonID string) (bool, error)
}

// Tracker maintains per-(student, course) completion state. It is called
// by the lesson-completion endpoints and, on mandatory quiz passes, by the
// attempt orchestrator.
type Tracker struct {
	store   Store
	lessons LessonSource
	events  *syncx.EventRepo // optional audit log, nil disables
	log     *logger.Logger
}

func NewTracker(store Store, lessons LessonSource, events *syncx.EventRepo, log *logger.Logger) *Tracker {
	return &Tracker{store: store, lessons: lessons, events: events, log: log.With("component", "progress")}
}

func (t *Tracker) CompleteLesson(ctx context.Context, studentID, courseID, lessonID string) (Snapshot, error) {
	ok, err := t.lessons.LessonInCourse(ctx, courseID, lessonID)
	if err != nil {
		return Snapshot{}, err
	}
	if !ok {
		return Snapshot{}, apierr.NotFound("lesson_not_found", "lesson not found in course")
	}
	total, err := t.lessons.CountLessons(ctx, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := t.store.CompleteLesson(ctx, studentID, courseID, lessonID, total)
	if err != nil {
		return Snapshot{}, err
	}
	t.appendEvent(ctx, lessonID, map[string]any{
		"studentId": studentID,
		"courseId":  courseID,
		"pct":       snap.ProgressPct,
	})
	t.log.Debug("lesson completed",
		"student", studentID, "course", courseID, "lesson", lessonID, "pct", snap.ProgressPct)
	return snap, nil
}

func (t *Tracker) appendEvent(ctx context.Context, lessonID string, data map[string]any) {
	if t.events == nil {
		return
	}
	payload, _ := json.Marshal(data)
	if err := t.events.Append(ctx, syncx.Event{
		Type:     syncx.EventLessonCompleted,
		Key:      lessonID,
		DataJSON: string(payload),
	}); err != nil {
		t.log.Warn("event append failed", "type", syncx.EventLessonCompleted, "err", err)
	}
}

func (t *Tracker) UncompleteLesson(ctx context.Context, studentID, courseID, lessonID string) (Snapshot, error) {
	total, err := t.lessons.CountLessons(ctx, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	return t.store.UncompleteLesson(ctx, studentID, courseID, lessonID, total)
}

func (t *Tracker) AddTimeSpent(ctx context.Context, studentID, courseID string, minutes int) (Snapshot, error) {
	if minutes <= 0 {
		return Snapshot{}, apierr.BadRequest("invalid_minutes", "minutes must be greater than zero")
	}
	return t.store.AddTime(ctx, studentID, courseID, minutes)
}

func (t *Tracker) GetProgress(ctx context.Context, studentID, courseID string) (Snapshot, error) {
	return t.store.Get(ctx, studentID, courseID)
}
