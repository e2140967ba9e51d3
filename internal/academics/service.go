package academics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classforge/examcore/internal/grading"
	"github.com/sirupsen/logrus"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Service records subject results and builds term reports. The grade
// columns are derived data: every write recomputes total, grade and
// grade point from the two inputs through the school's scale, so the
// stored row can never drift from its inputs.
type Service struct {
	store Store
	log   *logrus.Logger
}

func NewService(store Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log}
}

type RecordInput struct {
	SchoolID  string  `json:"school_id"`
	StudentID string  `json:"student_id"`
	Subject   string  `json:"subject"`
	Term      string  `json:"term"`
	Session   string  `json:"session"`
	CAScore   float64 `json:"ca_score"`
	ExamScore float64 `json:"exam_score"`
}

// Record upserts a subject result in draft status. Re-recording the
// same (student, subject, term, session) overwrites the scores and
// regrades.
func (s *Service) Record(ctx context.Context, in RecordInput) (Result, error) {
	if in.CAScore < 0 || in.CAScore > MaxCAScore {
		return Result{}, fmt.Errorf("ca score %.2f out of range 0-%.0f", in.CAScore, MaxCAScore)
	}
	if in.ExamScore < 0 || in.ExamScore > MaxExamScore {
		return Result{}, fmt.Errorf("exam score %.2f out of range 0-%.0f", in.ExamScore, MaxExamScore)
	}

	total := in.CAScore + in.ExamScore
	band := grading.GradeFor(total, MaxCAScore+MaxExamScore, s.scaleFor(ctx, in.SchoolID))

	r, err := s.store.UpsertResult(ctx, Result{
		SchoolID:   in.SchoolID,
		StudentID:  in.StudentID,
		Subject:    in.Subject,
		Term:       in.Term,
		Session:    in.Session,
		CAScore:    in.CAScore,
		ExamScore:  in.ExamScore,
		TotalScore: total,
		Grade:      band.Grade,
		GradePoint: band.GradePoint,
		Remark:     band.Remark,
		Status:     StatusDraft,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Result{}, err
	}
	s.log.WithFields(logrus.Fields{"student": in.StudentID, "subject": in.Subject, "total": total, "grade": band.Grade}).
		Info("academic result recorded")
	return r, nil
}

// Transition moves a result through the approval workflow.
func (s *Service) Transition(ctx context.Context, id string, to Status) (Result, error) {
	r, err := s.store.GetResult(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !r.Status.CanTransitionTo(to) {
		return Result{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	return s.store.UpdateStatus(ctx, id, to)
}

// TermReport aggregates a student's term into a GPA and overall grade.
func (s *Service) TermReport(ctx context.Context, studentID, term, session string) (TermReport, error) {
	results, err := s.store.ListTermResults(ctx, studentID, term, session)
	if err != nil {
		return TermReport{}, err
	}
	points := make([]float64, 0, len(results))
	for _, r := range results {
		points = append(points, r.GradePoint)
	}
	gpa := grading.GPA(points)
	return TermReport{
		StudentID:    studentID,
		Term:         term,
		Session:      session,
		Results:      results,
		GPA:          gpa,
		OverallGrade: grading.OverallGradeFromGPA(gpa),
	}, nil
}

// scaleFor loads the school's configured scale, falling back to the
// default table when none exists.
func (s *Service) scaleFor(ctx context.Context, schoolID string) grading.Scale {
	scale, err := s.store.GetScale(ctx, schoolID)
	if err != nil {
		if !errors.Is(err, ErrScaleNotFound) {
			s.log.WithField("school", schoolID).WithError(err).Warn("loading grading scale, using default")
		}
		return grading.DefaultScale()
	}
	return scale
}
