package http

import (
	"net/http"

	"github.com/classforge/examcore/internal/academics"
	auth "github.com/classforge/examcore/internal/auth/middleware"
	"github.com/classforge/examcore/internal/exam"

	"github.com/go-chi/chi/v5"
)

// callerID pulls the authenticated subject off the request. The
// engine trusts whatever identity the auth layer attached; it never
// reads student ids from request bodies.
func callerID(r *http.Request) (string, bool) {
	c, ok := auth.FromContext(r.Context())
	if !ok || c.Sub == "" {
		return "", false
	}
	return c.Sub, true
}

func MountExams(r chi.Router, svc *exam.Service) {
	r.Get("/exams/{examID}/status", ExamStatusHandler(svc))
	r.Post("/exams/{examID}/attempts", StartAttemptHandler(svc))
	r.Get("/exams/{examID}/result", ExamResultHandler(svc))
	r.Put("/attempts/{attemptID}/answers", SaveAnswerHandler(svc))
	r.Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(svc))
}

func MountAcademics(r chi.Router, svc *academics.Service) {
	r.Post("/academics/results", RecordResultHandler(svc))
	r.Post("/academics/results/{resultID}/status", TransitionResultHandler(svc))
	r.Get("/academics/students/{studentID}/report", TermReportHandler(svc))
}
