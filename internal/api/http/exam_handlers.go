package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classforge/examcore/internal/exam"

	"github.com/go-chi/chi/v5"
)

// statusCode maps the engine's typed errors onto HTTP statuses so
// clients can react deterministically (409s are user-correctable,
// 422 is an integrity bug on the caller's side).
func statusCode(err error) int {
	switch {
	case errors.Is(err, exam.ErrAttemptConflict),
		errors.Is(err, exam.ErrSubmissionWindowClosed):
		return http.StatusConflict
	case errors.Is(err, exam.ErrInvalidAttempt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, exam.ErrExamUnavailable):
		return http.StatusForbidden
	case errors.Is(err, exam.ErrExamNotFound),
		errors.Is(err, exam.ErrQuestionNotFound),
		errors.Is(err, exam.ErrAttemptNotFound),
		errors.Is(err, exam.ErrResultNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusCode(err))
}

// GET /exams/{examID}/status
func ExamStatusHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		studentID, ok := callerID(r)
		if !ok {
			http.Error(w, "no identity", http.StatusUnauthorized)
			return
		}
		view, err := svc.ExamStatus(r.Context(), examID, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

// POST /exams/{examID}/attempts
func StartAttemptHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		studentID, ok := callerID(r)
		if !ok {
			http.Error(w, "no identity", http.StatusUnauthorized)
			return
		}
		a, err := svc.StartAttempt(r.Context(), examID, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(a)
	}
}

// PUT /attempts/{attemptID}/answers
func SaveAnswerHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id"`
			Response   any    `json:"response"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		studentID, ok := callerID(r)
		if !ok {
			http.Error(w, "no identity", http.StatusUnauthorized)
			return
		}
		a, err := svc.SaveAnswer(r.Context(), exam.SaveAnswerInput{
			AttemptID:  chi.URLParam(r, "attemptID"),
			StudentID:  studentID,
			QuestionID: req.QuestionID,
			Response:   req.Response,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /exams/{examID}/result
func ExamResultHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := callerID(r)
		if !ok {
			http.Error(w, "no identity", http.StatusUnauthorized)
			return
		}
		res, err := svc.Result(r.Context(), chi.URLParam(r, "examID"), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /attempts/{attemptID}/submit
func SubmitAttemptHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TimeSpentSec *int `json:"time_spent_sec"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		studentID, ok := callerID(r)
		if !ok {
			http.Error(w, "no identity", http.StatusUnauthorized)
			return
		}
		out, err := svc.Submit(r.Context(), exam.SubmitInput{
			AttemptID:    chi.URLParam(r, "attemptID"),
			StudentID:    studentID,
			TimeSpentSec: req.TimeSpentSec,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
