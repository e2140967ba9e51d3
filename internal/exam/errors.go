package exam

import "errors"

var (
	// ErrAttemptConflict is returned when a student tries to start an
	// attempt while another one is still in progress. The client should
	// resume the existing attempt instead.
	ErrAttemptConflict = errors.New("an attempt is already in progress")

	// ErrSubmissionWindowClosed is returned when an answer save arrives
	// outside the exam window. Recoverable: the client should stop
	// autosaving, nothing is lost.
	ErrSubmissionWindowClosed = errors.New("exam is not accepting answers now")

	// ErrInvalidAttempt is returned when a finalize or answer save
	// references an attempt that is not the caller's, belongs to a
	// different exam, or was already submitted.
	ErrInvalidAttempt = errors.New("invalid attempt")

	// ErrExamUnavailable is returned when starting a fresh attempt is not
	// allowed: the window is not active or the attempt budget is spent.
	ErrExamUnavailable = errors.New("exam is not available")

	ErrExamNotFound     = errors.New("exam not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrResultNotFound   = errors.New("result not found")
)
