package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub/internal/apierr"
	"github.com/learnhub/learnhub/internal/quiz"
	"github.com/learnhub/learnhub/internal/rbac"
)

func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeErr(w, apierr.BadRequest("bad_json", "bad json"))
			return
		}
		q.ID = uuid.NewString()
		q.CreatedBy = rbac.SubjectFromContext(r.Context())
		q.Normalize()
		if err := q.Validate(); err != nil {
			writeErr(w, apierr.BadRequest("invalid_quiz", err.Error()))
			return
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func UpdateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		existing, err := store.GetQuiz(r.Context(), id)
		if errors.Is(err, quiz.ErrNotFound) {
			writeErr(w, apierr.NotFound("quiz_not_found", "quiz not found"))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if existing.CreatedBy != sub && role != "admin" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeErr(w, apierr.BadRequest("bad_json", "bad json"))
			return
		}
		q.ID = existing.ID
		q.CourseID = existing.CourseID
		q.LessonID = existing.LessonID
		q.CreatedBy = existing.CreatedBy
		q.Normalize()
		if err := q.Validate(); err != nil {
			writeErr(w, apierr.BadRequest("invalid_quiz", err.Error()))
			return
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GetQuizHandler serves the quiz with answer keys stripped unless the
// caller owns the quiz or is an admin. Other instructors get the same
// sanitized view a student does.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		q, err := store.GetQuiz(r.Context(), id)
		if errors.Is(err, quiz.ErrNotFound) {
			writeErr(w, apierr.NotFound("quiz_not_found", "quiz not found"))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if q.CreatedBy != sub && role != "admin" {
			q = q.StudentView()
		}
		writeJSON(w, http.StatusOK, q)
	}
}
