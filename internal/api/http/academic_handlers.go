package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classforge/examcore/internal/academics"

	"github.com/go-chi/chi/v5"
)

func academicStatus(err error) int {
	switch {
	case errors.Is(err, academics.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, academics.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// POST /academics/results
func RecordResultHandler(svc *academics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in academics.RecordInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.Record(r.Context(), in)
		if err != nil {
			http.Error(w, err.Error(), academicStatus(err))
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /academics/results/{resultID}/status
func TransitionResultHandler(svc *academics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status academics.Status `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.Transition(r.Context(), chi.URLParam(r, "resultID"), req.Status)
		if err != nil {
			http.Error(w, err.Error(), academicStatus(err))
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GET /academics/students/{studentID}/report?term=...&session=...
func TermReportHandler(svc *academics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.TermReport(r.Context(),
			chi.URLParam(r, "studentID"),
			r.URL.Query().Get("term"),
			r.URL.Query().Get("session"))
		if err != nil {
			http.Error(w, err.Error(), academicStatus(err))
			return
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}
