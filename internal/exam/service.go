package exam

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Service is the exam session engine: it decides whether an exam is
// open to a student, gates answer saving, scores responses as they
// arrive and finalizes attempts into results. It holds no state of
// its own; every call reads through the Store.
type Service struct {
	store Store
	clock Clock
	log   *logrus.Logger
}

func NewService(store Store, clock Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, clock: clock, log: log}
}

// StatusView is what a student (or an admin acting for one) sees when
// they open an exam: the resolved window plus their own standing.
type StatusView struct {
	Window      Window      `json:"window"`
	Eligibility Eligibility `json:"eligibility"`
	Result      *Result     `json:"result,omitempty"`
}

func (s *Service) ExamStatus(ctx context.Context, examID, studentID string) (StatusView, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return StatusView{}, err
	}
	w := ResolveWindow(e, s.clock.Now())

	attempts, err := s.store.ListAttempts(ctx, examID, studentID)
	if err != nil {
		return StatusView{}, err
	}
	result, err := s.resultOrNil(ctx, examID, studentID)
	if err != nil {
		return StatusView{}, err
	}

	view := StatusView{Window: w, Eligibility: Eligible(w, e, attempts, result)}
	if e.ShowResultsImmediately {
		view.Result = result
	}
	return view, nil
}

// StartAttempt opens a fresh attempt for the student. Starting while
// another attempt is in progress fails with ErrAttemptConflict; the
// store's uniqueness guard closes the double-click race the
// eligibility pre-check cannot see.
func (s *Service) StartAttempt(ctx context.Context, examID, studentID string) (Attempt, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Attempt{}, err
	}
	now := s.clock.Now()
	w := ResolveWindow(e, now)

	attempts, err := s.store.ListAttempts(ctx, examID, studentID)
	if err != nil {
		return Attempt{}, err
	}
	result, err := s.resultOrNil(ctx, examID, studentID)
	if err != nil {
		return Attempt{}, err
	}

	el := Eligible(w, e, attempts, result)
	if el.Status == StatusInProgress {
		return Attempt{}, ErrAttemptConflict
	}
	if !el.CanTake {
		return Attempt{}, fmt.Errorf("%w: phase=%s attempts=%d/%d", ErrExamUnavailable, w.Phase, len(attempts), e.MaxAttempts)
	}

	a, err := s.store.CreateAttempt(ctx, Attempt{
		ExamID:        examID,
		StudentID:     studentID,
		AttemptNumber: len(attempts) + 1,
		Status:        AttemptInProgress,
		StartedAt:     now,
	})
	if err != nil {
		return Attempt{}, err
	}
	s.log.WithFields(logrus.Fields{"exam": examID, "student": studentID, "attempt": a.AttemptNumber}).
		Info("attempt started")
	return a, nil
}

type SaveAnswerInput struct {
	AttemptID  string
	StudentID  string
	QuestionID string
	Response   any
}

// SaveAnswer scores and upserts one response. The gate here is the
// window alone, deliberately looser than StartAttempt's eligibility:
// a student mid-exam should never lose an answer over an attempt
// bookkeeping check. Outside the window it returns
// ErrSubmissionWindowClosed, which the client treats as "stop
// autosaving", not as data loss.
func (s *Service) SaveAnswer(ctx context.Context, in SaveAnswerInput) (Answer, error) {
	a, err := s.store.GetAttempt(ctx, in.AttemptID)
	if err != nil {
		return Answer{}, err
	}
	if a.StudentID != in.StudentID || a.Status != AttemptInProgress {
		return Answer{}, ErrInvalidAttempt
	}

	e, err := s.store.GetExam(ctx, a.ExamID)
	if err != nil {
		return Answer{}, err
	}
	if w := ResolveWindow(e, s.clock.Now()); w.Phase != PhaseActive {
		return Answer{}, ErrSubmissionWindowClosed
	}

	q, err := s.store.GetQuestion(ctx, a.ExamID, in.QuestionID)
	if err != nil {
		return Answer{}, err
	}

	scored := ScoreAnswer(q, in.Response, e.NegativeMarking)
	return s.store.UpsertAnswer(ctx, Answer{
		AttemptID:     a.ID,
		ExamID:        a.ExamID,
		StudentID:     a.StudentID,
		QuestionID:    q.ID,
		Response:      responseText(in.Response),
		IsCorrect:     scored.IsCorrect,
		PointsAwarded: scored.PointsAwarded,
	})
}

type SubmitInput struct {
	AttemptID string
	StudentID string
	// TimeSpentSec, when the client measured it (e.g. to include
	// tab-hidden time), wins over the server-side delta.
	TimeSpentSec *int
}

// SubmitOutcome reports the closed attempt, the upserted result, and
// whether the submission landed after the window closed. Late
// submissions are accepted — partial work beats discarded work — and
// callers surface the flag to the user.
type SubmitOutcome struct {
	Attempt Attempt `json:"attempt"`
	Result  Result  `json:"result"`
	Late    bool    `json:"late"`
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitOutcome, error) {
	a, err := s.store.GetAttempt(ctx, in.AttemptID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if a.StudentID != in.StudentID {
		s.log.WithFields(logrus.Fields{"attempt": in.AttemptID, "student": in.StudentID, "owner": a.StudentID}).
			Error("submit rejected: attempt belongs to another student")
		return SubmitOutcome{}, ErrInvalidAttempt
	}
	if a.Status != AttemptInProgress {
		s.log.WithFields(logrus.Fields{"attempt": in.AttemptID, "status": a.Status}).
			Error("submit rejected: attempt already submitted")
		return SubmitOutcome{}, ErrInvalidAttempt
	}

	e, err := s.store.GetExam(ctx, a.ExamID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	now := s.clock.Now()
	late := ResolveWindow(e, now).Expired

	timeSpent := int(now.Sub(a.StartedAt).Seconds())
	if in.TimeSpentSec != nil {
		timeSpent = *in.TimeSpentSec
	}

	attempt, result, err := s.store.FinalizeAttempt(ctx, FinalizeParams{
		AttemptID:    a.ID,
		SubmittedAt:  now,
		TimeSpentSec: timeSpent,
		Late:         late,
	})
	if err != nil {
		return SubmitOutcome{}, err
	}
	s.log.WithFields(logrus.Fields{"exam": a.ExamID, "student": a.StudentID, "score": result.Score, "late": late}).
		Info("attempt submitted")
	return SubmitOutcome{Attempt: attempt, Result: result, Late: late}, nil
}

// Result returns the student's graded result for an exam, or
// ErrResultNotFound when nothing has been finalized yet.
func (s *Service) Result(ctx context.Context, examID, studentID string) (Result, error) {
	return s.store.GetResult(ctx, examID, studentID)
}

func (s *Service) resultOrNil(ctx context.Context, examID, studentID string) (*Result, error) {
	r, err := s.store.GetResult(ctx, examID, studentID)
	switch {
	case err == nil:
		return &r, nil
	case errors.Is(err, ErrResultNotFound):
		return nil, nil
	default:
		return nil, err
	}
}
