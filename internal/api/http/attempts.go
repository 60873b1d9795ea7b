package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/learnhub/learnhub/internal/apierr"
	"github.com/learnhub/learnhub/internal/quiz"
	"github.com/learnhub/learnhub/internal/rbac"
)

// POST /quizzes/{quizID}/submit
// { "answers": [...], "timeSpent": 120 }
func SubmitQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Answers   []quiz.AnswerInput `json:"answers"`
			TimeSpent int                `json:"timeSpent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apierr.BadRequest("bad_json", "bad json"))
			return
		}
		res, err := svc.Submit(r.Context(), quiz.SubmitInput{
			QuizID:       chi.URLParam(r, "quizID"),
			StudentID:    sub,
			Answers:      req.Answers,
			TimeSpentSec: req.TimeSpent,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /quizzes/{quizID}/attempts?student_id=...&limit=50&offset=0
// Callers without attempt:view-all are scoped to their own attempts.
func ListAttemptsHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		if !checker.Has(role, "attempt:view-all") {
			studentID = sub
		}
		list, err := store.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID:    chi.URLParam(r, "quizID"),
			StudentID: studentID,
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
