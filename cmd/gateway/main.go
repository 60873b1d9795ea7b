package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/learnhub/learnhub/internal/analytics"
	api "github.com/learnhub/learnhub/internal/api/http"
	auth "github.com/learnhub/learnhub/internal/auth/middleware"
	"github.com/learnhub/learnhub/internal/config"
	"github.com/learnhub/learnhub/internal/course"
	"github.com/learnhub/learnhub/internal/db"
	"github.com/learnhub/learnhub/internal/pkg/logger"
	"github.com/learnhub/learnhub/internal/progress"
	"github.com/learnhub/learnhub/internal/quiz"
	"github.com/learnhub/learnhub/internal/rbac"
	syncx "github.com/learnhub/learnhub/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(string(cfg.Mode))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "err", err)
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Warn("admin seed failed", "err", err)
	}

	// --- Stores and services ---
	quizStore := quiz.NewSQLStore(dbh)
	courseStore := course.NewStore(dbh)
	progressStore := progress.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)
	tracker := progress.NewTracker(progressStore, courseStore, events, log)
	quizSvc := quiz.NewService(quizStore, tracker, courseStore, events, log)
	analyticsSvc := analytics.NewService(dbh)
	checker := rbac.NewChecker(nil)

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))

		// Catalog
		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(courseStore))
		pr.With(rbac.Require("course:view")).
			Get("/courses", api.ListCoursesHandler(courseStore))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}", api.GetCourseHandler(courseStore))
		pr.With(rbac.Require("lesson:create")).
			Post("/courses/{courseID}/lessons", api.AddLessonHandler(courseStore))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}/lessons", api.ListLessonsHandler(courseStore))

		// Enrollment
		pr.With(rbac.Require("course:enroll")).
			Post("/courses/{courseID}/enroll", api.EnrollHandler(courseStore))
		pr.With(rbac.Require("course:enroll")).
			Get("/enrollments", api.ListEnrollmentsHandler(courseStore))

		// Quizzes
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:edit_own")).
			Put("/quizzes/{quizID}", api.UpdateQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:submit")).
			Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(quizSvc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/quizzes/{quizID}/attempts", api.ListAttemptsHandler(quizStore, checker))

		// Progress
		pr.With(rbac.Require("progress:update-own")).
			Post("/courses/{courseID}/lessons/{lessonID}/complete", api.CompleteLessonHandler(tracker))
		pr.With(rbac.Require("progress:update-own")).
			Delete("/courses/{courseID}/lessons/{lessonID}/complete", api.UncompleteLessonHandler(tracker))
		pr.With(rbac.Require("progress:update-own")).
			Post("/courses/{courseID}/time", api.AddTimeSpentHandler(tracker))
		pr.With(rbac.Require("progress:view-own")).
			Get("/courses/{courseID}/progress", api.GetProgressHandler(tracker))

		// Instructor analytics
		pr.With(rbac.Require("analytics:view")).
			Get("/analytics/quizzes/{quizID}", api.QuizStatsHandler(analyticsSvc))
		pr.With(rbac.Require("analytics:view")).
			Get("/analytics/courses/{courseID}", api.CourseStatsHandler(analyticsSvc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver)
	log.Fatal("server stopped", "err", http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin ensures the configured admin account exists.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx, `INSERT INTO users (id,username,password_hash,role,created_at)
		VALUES ($1,$2,$3,'admin',$4) ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix())
	return err
}
