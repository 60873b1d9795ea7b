package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuiz() Quiz {
	return Quiz{
		CourseID:  "c1",
		LessonID:  "l1",
		Title:     "Basics",
		Questions: twoQuestionQuiz(),
	}
}

func TestQuizNormalize_Defaults(t *testing.T) {
	q := validQuiz()
	q.Questions[0].Points = 0
	q.Normalize()

	assert.Equal(t, 1, q.MaxAttempts)
	assert.Equal(t, 70.0, q.PassingScore)
	assert.Equal(t, 1.0, q.Questions[0].Points)
}

func TestQuizValidate(t *testing.T) {
	q := validQuiz()
	q.Normalize()
	require.NoError(t, q.Validate())

	missing := validQuiz()
	missing.Normalize()
	missing.Questions[0].CorrectAnswer = ""
	assert.Error(t, missing.Validate())

	badType := validQuiz()
	badType.Normalize()
	badType.Questions[0].Type = "essay"
	assert.Error(t, badType.Validate())

	oneOption := validQuiz()
	oneOption.Normalize()
	oneOption.Questions[0].Options = []string{"only"}
	assert.Error(t, oneOption.Validate())

	empty := validQuiz()
	empty.Normalize()
	empty.Questions = nil
	assert.Error(t, empty.Validate())

	badScore := validQuiz()
	badScore.Normalize()
	badScore.PassingScore = 120
	assert.Error(t, badScore.Validate())
}

func TestStudentView_StripsAnswerKeys(t *testing.T) {
	q := validQuiz()
	q.Questions[0].Explanation = "because"

	view := q.StudentView()
	for _, qu := range view.Questions {
		assert.Empty(t, qu.CorrectAnswer)
		assert.Empty(t, qu.Explanation)
	}
	// original untouched
	assert.Equal(t, "0", q.Questions[0].CorrectAnswer)
	assert.Equal(t, "because", q.Questions[0].Explanation)
}
