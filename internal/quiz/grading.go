package quiz

import (
	"math"
	"strings"
)

// GradeSummary is the outcome of grading one full submission.
type GradeSummary struct {
	Records      []AnswerRecord
	CorrectCount int
	EarnedPoints float64
	TotalPoints  float64
	Score        float64 // 0-100, one decimal place
}

// Grade evaluates submitted answers against the quiz's questions. Pure
// computation: no I/O, deterministic. Caller must guarantee
// len(answers) == len(questions).
func Grade(questions []Question, answers []AnswerInput) GradeSummary {
	sum := GradeSummary{Records: make([]AnswerRecord, len(questions))}
	for i, q := range questions {
		pts := q.Points
		if pts <= 0 {
			pts = 1
		}
		sum.TotalPoints += pts

		rec := AnswerRecord{
			QuestionIndex: i,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		switch q.Type {
		case TypeTheory:
			rec.TextAnswer = answers[i].TextAnswer
			rec.Correct = theoryMatch(rec.TextAnswer, q.CorrectAnswer, q.CaseSensitive)
		case TypeMultipleChoice:
			// exact match on the stored option token
			rec.SelectedOption = answers[i].SelectedOption
			rec.Correct = rec.SelectedOption == q.CorrectAnswer
		default:
			// unknown type (written outside Validate): keep the submission
			// visible in the record but never award points for it
			rec.SelectedOption = answers[i].SelectedOption
			rec.TextAnswer = answers[i].TextAnswer
		}
		if rec.Correct {
			sum.CorrectCount++
			sum.EarnedPoints += pts
		}
		sum.Records[i] = rec
	}
	if sum.TotalPoints > 0 {
		sum.Score = math.Round(sum.EarnedPoints/sum.TotalPoints*1000) / 10
	}
	return sum
}

// theoryMatch compares whitespace-trimmed answers; case-insensitive unless
// the question asks otherwise.
func theoryMatch(got, want string, caseSensitive bool) bool {
	got = strings.TrimSpace(got)
	want = strings.TrimSpace(want)
	if got == "" {
		return false
	}
	if caseSensitive {
		return got == want
	}
	return strings.EqualFold(got, want)
}
