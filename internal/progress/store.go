package progress

import "context"

// Store persists progress records. Implementations must make each write
// atomic for its (student, course) key so racing lesson-completion and
// time-tracking calls cannot lose updates.
type Store interface {
	// CompleteLesson adds the lesson to the completed set (no-op when
	// already present), sets the percentage from totalLessons, and bumps
	// last_accessed. Upserts the record.
	CompleteLesson(ctx context.Context, studentID, courseID, lessonID string, totalLessons int) (Snapshot, error)
	// UncompleteLesson removes the lesson and recomputes the percentage.
	// No-op when the lesson is not in the set.
	UncompleteLesson(ctx context.Context, studentID, courseID, lessonID string, totalLessons int) (Snapshot, error)
	// AddTime increments total time spent (minutes) and bumps
	// last_accessed. Upserts the record.
	AddTime(ctx context.Context, studentID, courseID string, minutes int) (Snapshot, error)
	// Get returns the snapshot, zero-valued when no record exists.
	Get(ctx context.Context, studentID, courseID string) (Snapshot, error)
}

// Pct is the shared percentage rule: rounded, and 0 for a course with no
// lessons.
func Pct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}
