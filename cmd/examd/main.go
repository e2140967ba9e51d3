package main

import (
	"context"
	"net/http"
	"time"

	"github.com/classforge/examcore/internal/academics"
	api "github.com/classforge/examcore/internal/api/http"
	auth "github.com/classforge/examcore/internal/auth/middleware"
	"github.com/classforge/examcore/internal/config"
	"github.com/classforge/examcore/internal/db"
	"github.com/classforge/examcore/internal/exam"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("db open failed")
	}

	examSvc := exam.NewService(exam.NewSQLStore(dbh), exam.SystemClock(), log)
	academicSvc := academics.NewService(academics.NewSQLStore(dbh), log)
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

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

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		api.MountExams(pr, examSvc)
		api.MountAcademics(pr, academicSvc)
	})

	log.WithField("addr", cfg.HTTPAddr).Info("examcore listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
