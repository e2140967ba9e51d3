package exam

type StudentStatus string

const (
	StatusNotStarted StudentStatus = "not_started"
	StatusInProgress StudentStatus = "in_progress"
	StatusSubmitted  StudentStatus = "submitted"
	StatusCompleted  StudentStatus = "completed"
)

// Eligibility is a student's standing against one exam: their personal
// status plus whether they may start a fresh attempt or resume an open
// one.
type Eligibility struct {
	Status    StudentStatus `json:"status"`
	CanTake   bool          `json:"can_take"`
	CanResume bool          `json:"can_resume"`
}

// Eligible computes a student's standing from the resolved window,
// the exam's attempt budget, the student's attempts (most recent
// first) and their result, if graded.
//
// A result wins over attempt state: grading finished, the student is
// done. An open attempt makes the student resumable, and resuming
// counts as taking. Beyond that, a fresh attempt needs an active
// window and room left in the budget.
func Eligible(w Window, e Exam, attempts []Attempt, result *Result) Eligibility {
	el := Eligibility{Status: StatusNotStarted}

	switch {
	case result != nil:
		el.Status = StatusCompleted
	case len(attempts) > 0 && attempts[0].Status == AttemptInProgress:
		el.Status = StatusInProgress
		el.CanResume = true
		el.CanTake = true
	case len(attempts) > 0 && attempts[0].Status == AttemptSubmitted:
		el.Status = StatusSubmitted
	}

	if !el.CanTake &&
		w.Phase == PhaseActive &&
		len(attempts) < e.MaxAttempts &&
		(el.Status == StatusNotStarted || el.Status == StatusSubmitted) {
		el.CanTake = true
	}
	return el
}
