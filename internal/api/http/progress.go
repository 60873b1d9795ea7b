package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/learnhub/learnhub/internal/progress"
	"github.com/learnhub/learnhub/internal/rbac"
)

// POST /courses/{courseID}/lessons/{lessonID}/complete
func CompleteLessonHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := tracker.CompleteLesson(r.Context(),
			rbac.SubjectFromContext(r.Context()),
			chi.URLParam(r, "courseID"),
			chi.URLParam(r, "lessonID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// DELETE /courses/{courseID}/lessons/{lessonID}/complete
func UncompleteLessonHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := tracker.UncompleteLesson(r.Context(),
			rbac.SubjectFromContext(r.Context()),
			chi.URLParam(r, "courseID"),
			chi.URLParam(r, "lessonID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// POST /courses/{courseID}/time  { "minutes": 5 }
func AddTimeSpentHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Minutes int `json:"minutes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		snap, err := tracker.AddTimeSpent(r.Context(),
			rbac.SubjectFromContext(r.Context()),
			chi.URLParam(r, "courseID"),
			req.Minutes)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// GET /courses/{courseID}/progress
func GetProgressHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := tracker.GetProgress(r.Context(),
			rbac.SubjectFromContext(r.Context()),
			chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
