package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub/internal/apierr"
	"github.com/learnhub/learnhub/internal/course"
	"github.com/learnhub/learnhub/internal/rbac"
)

func CreateCourseHandler(store *course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			writeErr(w, apierr.BadRequest("invalid_course", "title required"))
			return
		}
		c := course.Course{
			ID:           uuid.NewString(),
			Title:        strings.TrimSpace(req.Title),
			Description:  req.Description,
			InstructorID: rbac.SubjectFromContext(r.Context()),
		}
		if err := store.CreateCourse(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func ListCoursesHandler(store *course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListCourses(r.Context(),
			parseIntDefault(r.URL.Query().Get("limit"), 50),
			parseIntDefault(r.URL.Query().Get("offset"), 0))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetCourseHandler(store *course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetCourse(r.Context(), chi.URLParam(r, "courseID"))
		if errors.Is(err, course.ErrNotFound) {
			writeErr(w, apierr.NotFound("course_not_found", "course not found"))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func AddLessonHandler(store *course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		c, err := store.GetCourse(r.Context(), courseID)
		if errors.Is(err, course.ErrNotFound) {
			writeErr(w, apierr.NotFound("course_not_found", "course not found"))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		if c.InstructorID != sub && rbac.RoleFromContext(r.Context()) != "admin" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req struct {
			Title    string `json:"title"`
			Content  string `json:"content"`
			Position int    `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			writeErr(w, apierr.BadRequest("invalid_lesson", "title required"))
			return
		}
		l := course.Lesson{
			ID:       uuid.NewString(),
			CourseID: courseID,
			Title:    strings.TrimSpace(req.Title),
			Content:  req.Content,
			Position: req.Position,
		}
		if err := store.AddLesson(r.Context(), l); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func ListLessonsHandler(store *course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListLessons(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func EnrollHandler(store *course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")
		err := store.Enroll(r.Context(), sub, courseID)
		if errors.Is(err, course.ErrNotFound) {
			writeErr(w, apierr.NotFound("course_not_found", "course not found"))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "enrolled", "courseId": courseID})
	}
}

func ListEnrollmentsHandler(store *course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListEnrollments(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
