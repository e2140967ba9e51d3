package academics

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPublished Status = "published"
)

// transitions is the approval workflow: a teacher submits a draft,
// an admin approves or rejects, approved results get published, and
// a rejected result goes back through submission.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusSubmitted},
	StatusApproved:  {StatusPublished},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Result is one subject's grading for a student in a term. TotalScore,
// Grade and GradePoint are always recomputed from CAScore + ExamScore
// on write; they are never accepted from the caller.
type Result struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	StudentID string `json:"student_id"`
	Subject   string `json:"subject"`
	Term      string `json:"term"`
	Session   string `json:"session"`

	CAScore    float64 `json:"ca_score"`   // continuous assessment, out of 40
	ExamScore  float64 `json:"exam_score"` // out of 60
	TotalScore float64 `json:"total_score"`
	Grade      string  `json:"grade"`
	GradePoint float64 `json:"grade_point"`
	Remark     string  `json:"remark"`

	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TermReport aggregates a student's published term into a GPA.
type TermReport struct {
	StudentID    string   `json:"student_id"`
	Term         string   `json:"term"`
	Session      string   `json:"session"`
	Results      []Result `json:"results"`
	GPA          float64  `json:"gpa"`
	OverallGrade string   `json:"overall_grade"`
}

const (
	MaxCAScore   = 40.0
	MaxExamScore = 60.0
)
