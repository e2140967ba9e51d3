package exam

import (
	"context"
	"time"
)

// Store is the persistence boundary for the session engine. The two
// uniqueness invariants — one open attempt per (student, exam) and one
// answer per (student, question, exam) — are enforced here, not in the
// service, so near-simultaneous duplicate requests collapse to a
// single surviving row.
type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	GetQuestion(ctx context.Context, examID, questionID string) (Question, error)

	// CreateAttempt inserts a new attempt. It fails with
	// ErrAttemptConflict if the student already has one in progress on
	// the same exam.
	CreateAttempt(ctx context.Context, a Attempt) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	// ListAttempts returns the student's attempts on an exam, most
	// recent first.
	ListAttempts(ctx context.Context, examID, studentID string) ([]Attempt, error)

	// UpsertAnswer writes an answer keyed on (student, question, exam);
	// resubmission overwrites rather than duplicating.
	UpsertAnswer(ctx context.Context, a Answer) (Answer, error)
	ListAnswers(ctx context.Context, attemptID string) ([]Answer, error)

	// FinalizeAttempt atomically sums the attempt's answers, marks the
	// attempt submitted and upserts the (student, exam) result. It
	// fails with ErrInvalidAttempt if the attempt is no longer in
	// progress by the time the write lands.
	FinalizeAttempt(ctx context.Context, p FinalizeParams) (Attempt, Result, error)

	// GetResult returns ErrResultNotFound when the student has no
	// graded result for the exam yet.
	GetResult(ctx context.Context, examID, studentID string) (Result, error)
}

// FinalizeParams carries everything the finalization transaction
// needs besides the answers it reads itself.
type FinalizeParams struct {
	AttemptID    string
	SubmittedAt  time.Time
	TimeSpentSec int
	Late         bool
}
