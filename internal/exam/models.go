package exam

import "time"

type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionEssay       QuestionType = "essay"
	QuestionShortAnswer QuestionType = "short_answer"
)

// IsObjective reports whether answers of this type are auto-scored.
// Essay and short-answer responses wait for manual grading.
func (t QuestionType) IsObjective() bool {
	return t == QuestionMCQ || t == QuestionTrueFalse
}

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

type Question struct {
	ID            string       `json:"id"`
	ExamID        string       `json:"exam_id"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt,omitempty"`
	Options       []string     `json:"options,omitempty"` // ordered, MCQ only
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Points        float64      `json:"points"`
}

type Exam struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxAttempts     int       `json:"max_attempts"`

	// ManualControl switches availability to the live/completed flags,
	// letting an instructor pause or extend without editing timestamps.
	ManualControl bool `json:"manual_control"`
	IsLive        bool `json:"is_live"`
	IsCompleted   bool `json:"is_completed"`

	NegativeMarking        bool `json:"negative_marking"`
	ShowResultsImmediately bool `json:"show_results_immediately"`

	Questions []Question `json:"questions,omitempty"`
}

type Attempt struct {
	ID            string        `json:"id"`
	ExamID        string        `json:"exam_id"`
	StudentID     string        `json:"student_id"`
	AttemptNumber int           `json:"attempt_number"` // 1-based per (student, exam)
	Status        AttemptStatus `json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	SubmittedAt   *time.Time    `json:"submitted_at,omitempty"`
	TimeSpentSec  *int          `json:"time_spent_sec,omitempty"`
	Late          bool          `json:"late,omitempty"` // submitted after the window closed
}

type Answer struct {
	ID            string  `json:"id"`
	AttemptID     string  `json:"attempt_id"`
	ExamID        string  `json:"exam_id"`
	StudentID     string  `json:"student_id"`
	QuestionID    string  `json:"question_id"`
	Response      string  `json:"response"`
	IsCorrect     *bool   `json:"is_correct,omitempty"` // nil until graded (essay/short answer)
	PointsAwarded float64 `json:"points_awarded"`
}

type Result struct {
	ID        string    `json:"id"`
	ExamID    string    `json:"exam_id"`
	StudentID string    `json:"student_id"`
	Score     float64   `json:"score"`
	GradedAt  time.Time `json:"graded_at"`
}
