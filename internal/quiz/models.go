package quiz

import (
	"fmt"
	"strings"
)

const (
	TypeMultipleChoice = "multiple_choice"
	TypeTheory         = "theory"
)

type Question struct {
	Type          string   `json:"type"` // multiple_choice | theory
	Text          string   `json:"question"`
	Options       []string `json:"options,omitempty"`       // multiple_choice only, ordered
	CorrectAnswer string   `json:"correctAnswer"`           // option index as text, or expected theory answer
	Points        float64  `json:"points"`                  // weight, defaults to 1
	CaseSensitive bool     `json:"caseSensitive,omitempty"` // theory only
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"courseId"`
	LessonID     string     `json:"lessonId"`
	Title        string     `json:"title"`
	PassingScore float64    `json:"passingScore"` // 0-100
	TimeLimitMin int        `json:"timeLimit"`    // minutes
	MaxAttempts  int        `json:"maxAttempts"`
	Mandatory    bool       `json:"isMandatory"`
	Questions    []Question `json:"questions"`
	CreatedBy    string     `json:"createdBy,omitempty"`
	CreatedAt    int64      `json:"createdAt,omitempty"`
	UpdatedAt    int64      `json:"updatedAt,omitempty"`
}

// AnswerInput is one submitted answer. Which field is read depends on the
// question type at the same index: SelectedOption for multiple_choice,
// TextAnswer for theory.
type AnswerInput struct {
	SelectedOption string `json:"selectedOption,omitempty"`
	TextAnswer     string `json:"textAnswer,omitempty"`
}

// AnswerRecord is the graded form of one answer as persisted on an attempt.
// CorrectAnswer is always populated from the question definition, even when
// the submitted answer was empty.
type AnswerRecord struct {
	QuestionIndex  int    `json:"questionIndex"`
	SelectedOption string `json:"selectedOption"`
	TextAnswer     string `json:"textAnswer"`
	Correct        bool   `json:"isCorrect"`
	CorrectAnswer  string `json:"correctAnswer"`
	Explanation    string `json:"explanation"`
}

// Attempt is one graded submission. Created once, never mutated.
type Attempt struct {
	ID            string         `json:"id"`
	QuizID        string         `json:"quizId"`
	StudentID     string         `json:"studentId"`
	AttemptNumber int            `json:"attemptNumber"` // 1-based, monotonic per (student, quiz)
	Answers       []AnswerRecord `json:"answers"`
	Score         float64        `json:"score"` // 0-100, one decimal place
	Passed        bool           `json:"passed"`
	TimeSpentSec  int            `json:"timeSpent"` // seconds
	CreatedAt     int64          `json:"createdAt"`
}

// Normalize applies schema defaults in one place instead of scattering them
// across call sites.
func (q *Quiz) Normalize() {
	q.Title = strings.TrimSpace(q.Title)
	if q.MaxAttempts < 1 {
		q.MaxAttempts = 1
	}
	if q.PassingScore <= 0 {
		q.PassingScore = 70
	}
	for i := range q.Questions {
		if q.Questions[i].Points <= 0 {
			q.Questions[i].Points = 1
		}
	}
}

// Validate checks the quiz is internally consistent. Run at the data-model
// boundary (create/update), so grading can assume well-formed questions.
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return fmt.Errorf("title required")
	}
	if q.CourseID == "" || q.LessonID == "" {
		return fmt.Errorf("courseId and lessonId required")
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		return fmt.Errorf("passingScore must be between 0 and 100")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("at least one question required")
	}
	for i, qu := range q.Questions {
		switch qu.Type {
		case TypeMultipleChoice:
			if len(qu.Options) < 2 {
				return fmt.Errorf("question %d: multiple_choice needs at least 2 options", i)
			}
		case TypeTheory:
			// no options
		default:
			return fmt.Errorf("question %d: unknown type %q", i, qu.Type)
		}
		if strings.TrimSpace(qu.Text) == "" {
			return fmt.Errorf("question %d: text required", i)
		}
		if strings.TrimSpace(qu.CorrectAnswer) == "" {
			return fmt.Errorf("question %d: correctAnswer required", i)
		}
	}
	return nil
}

// StudentView returns a copy with answer keys and explanations stripped,
// safe to serve to students before submission.
func (q Quiz) StudentView() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	copy(out.Questions, q.Questions)
	for i := range out.Questions {
		out.Questions[i].CorrectAnswer = ""
		out.Questions[i].Explanation = ""
	}
	return out
}
