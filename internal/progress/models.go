package progress

// CompletedLesson is one entry in the completed set.
type CompletedLesson struct {
	LessonID    string `json:"lessonId"`
	CompletedAt int64  `json:"completedAt"`
}

// Snapshot is the per-(student, course) progress record as served to
// clients. A student with no record yet gets a zero-valued snapshot.
type Snapshot struct {
	StudentID        string            `json:"studentId"`
	CourseID         string            `json:"courseId"`
	CompletedLessons []CompletedLesson `json:"completedLessons"`
	ProgressPct      int               `json:"progressPercentage"` // 0-100
	TotalTimeMin     int               `json:"totalTimeSpent"`     // minutes
	LastAccessed     int64             `json:"lastAccessed"`
}
