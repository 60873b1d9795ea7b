package course

type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	InstructorID string `json:"instructorId"`
	CreatedAt    int64  `json:"createdAt"`
}

type Lesson struct {
	ID        string `json:"id"`
	CourseID  string `json:"courseId"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Position  int    `json:"position"`
	CreatedAt int64  `json:"createdAt"`
}

type Enrollment struct {
	StudentID  string `json:"studentId"`
	CourseID   string `json:"courseId"`
	EnrolledAt int64  `json:"enrolledAt"`
}
