package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists the session engine on sqlite or postgres. The
// uniqueness invariants live in the schema (see internal/db): a
// partial unique index keeps one in_progress attempt per (student,
// exam), and answers/results upsert through ON CONFLICT so duplicate
// requests land on a single row.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO exams
		(id,title,start_time,end_time,duration_minutes,max_attempts,manual_control,is_live,is_completed,negative_marking,show_results_immediately)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			title=EXCLUDED.title, start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time,
			duration_minutes=EXCLUDED.duration_minutes, max_attempts=EXCLUDED.max_attempts,
			manual_control=EXCLUDED.manual_control, is_live=EXCLUDED.is_live, is_completed=EXCLUDED.is_completed,
			negative_marking=EXCLUDED.negative_marking, show_results_immediately=EXCLUDED.show_results_immediately`,
		e.ID, e.Title, e.StartTime.Unix(), e.EndTime.Unix(), e.DurationMinutes, e.MaxAttempts,
		e.ManualControl, e.IsLive, e.IsCompleted, e.NegativeMarking, e.ShowResultsImmediately)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE exam_id=$1`, e.ID); err != nil {
		return err
	}
	for i, q := range e.Questions {
		oj, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions
			(id,exam_id,type,prompt,options_json,correct_answer,points,position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			q.ID, e.ID, string(q.Type), q.Prompt, string(oj), q.CorrectAnswer, q.Points, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,start_time,end_time,duration_minutes,max_attempts,
		manual_control,is_live,is_completed,negative_marking,show_results_immediately FROM exams WHERE id=$1`, id)
	e, err := scanExam(row)
	if err != nil {
		return Exam{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id,exam_id,type,prompt,options_json,correct_answer,points
		FROM questions WHERE exam_id=$1 ORDER BY position`, id)
	if err != nil {
		return Exam{}, err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return Exam{}, err
		}
		e.Questions = append(e.Questions, q)
	}
	return e, rows.Err()
}

func (s *SQLStore) GetQuestion(ctx context.Context, examID, questionID string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,type,prompt,options_json,correct_answer,points
		FROM questions WHERE exam_id=$1 AND id=$2`, examID, questionID)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrQuestionNotFound
	}
	return q, err
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts
		(id,exam_id,student_id,attempt_number,status,started_at,late)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.ExamID, a.StudentID, a.AttemptNumber, string(a.Status), a.StartedAt.Unix(), a.Late)
	if err != nil {
		if isUniqueViolation(err) {
			return Attempt{}, ErrAttemptConflict
		}
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,student_id,attempt_number,status,started_at,submitted_at,time_spent_sec,late
		FROM attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, err
}

func (s *SQLStore) ListAttempts(ctx context.Context, examID, studentID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,exam_id,student_id,attempt_number,status,started_at,submitted_at,time_spent_sec,late
		FROM attempts WHERE exam_id=$1 AND student_id=$2 ORDER BY attempt_number DESC`, examID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertAnswer(ctx context.Context, a Answer) (Answer, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var isCorrect sql.NullBool
	if a.IsCorrect != nil {
		isCorrect = sql.NullBool{Bool: *a.IsCorrect, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO answers
		(id,attempt_id,exam_id,student_id,question_id,response,is_correct,points_awarded)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (student_id,question_id,exam_id) DO UPDATE SET
			attempt_id=EXCLUDED.attempt_id, response=EXCLUDED.response,
			is_correct=EXCLUDED.is_correct, points_awarded=EXCLUDED.points_awarded`,
		a.ID, a.AttemptID, a.ExamID, a.StudentID, a.QuestionID, a.Response, isCorrect, a.PointsAwarded)
	if err != nil {
		return Answer{}, err
	}
	// Re-read so a retried save returns the surviving row's identity.
	row := s.db.QueryRowContext(ctx, `SELECT id,attempt_id,exam_id,student_id,question_id,response,is_correct,points_awarded
		FROM answers WHERE student_id=$1 AND question_id=$2 AND exam_id=$3`, a.StudentID, a.QuestionID, a.ExamID)
	return scanAnswer(row)
}

func (s *SQLStore) ListAnswers(ctx context.Context, attemptID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,attempt_id,exam_id,student_id,question_id,response,is_correct,points_awarded
		FROM answers WHERE attempt_id=$1 ORDER BY question_id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FinalizeAttempt runs in one transaction so a crash can never leave
// a submitted attempt without a result, or a result pointing at an
// attempt still in progress.
func (s *SQLStore) FinalizeAttempt(ctx context.Context, p FinalizeParams) (Attempt, Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, Result{}, err
	}
	defer tx.Rollback()

	var total float64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points_awarded),0) FROM answers WHERE attempt_id=$1`, p.AttemptID).Scan(&total); err != nil {
		return Attempt{}, Result{}, err
	}

	res, err := tx.ExecContext(ctx, `UPDATE attempts
		SET status=$1, submitted_at=$2, time_spent_sec=$3, late=$4
		WHERE id=$5 AND status=$6`,
		string(AttemptSubmitted), p.SubmittedAt.Unix(), p.TimeSpentSec, p.Late, p.AttemptID, string(AttemptInProgress))
	if err != nil {
		return Attempt{}, Result{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Attempt{}, Result{}, err
	} else if n == 0 {
		// Lost the race to a concurrent submit, or the attempt is gone.
		return Attempt{}, Result{}, ErrInvalidAttempt
	}

	var examID, studentID string
	if err := tx.QueryRowContext(ctx,
		`SELECT exam_id, student_id FROM attempts WHERE id=$1`, p.AttemptID).Scan(&examID, &studentID); err != nil {
		return Attempt{}, Result{}, err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO results (id,exam_id,student_id,score,graded_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (student_id,exam_id) DO UPDATE SET score=EXCLUDED.score, graded_at=EXCLUDED.graded_at`,
		uuid.NewString(), examID, studentID, total, p.SubmittedAt.Unix()); err != nil {
		return Attempt{}, Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, Result{}, err
	}

	a, err := s.GetAttempt(ctx, p.AttemptID)
	if err != nil {
		return Attempt{}, Result{}, err
	}
	r, err := s.GetResult(ctx, examID, studentID)
	return a, r, err
}

func (s *SQLStore) GetResult(ctx context.Context, examID, studentID string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,student_id,score,graded_at
		FROM results WHERE exam_id=$1 AND student_id=$2`, examID, studentID)
	var r Result
	var gradedAt int64
	if err := row.Scan(&r.ID, &r.ExamID, &r.StudentID, &r.Score, &gradedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrResultNotFound
		}
		return Result{}, err
	}
	r.GradedAt = unixTime(gradedAt)
	return r, nil
}

// --- row scanning ---

type rowScanner interface{ Scan(dest ...any) error }

func scanExam(row rowScanner) (Exam, error) {
	var e Exam
	var start, end int64
	err := row.Scan(&e.ID, &e.Title, &start, &end, &e.DurationMinutes, &e.MaxAttempts,
		&e.ManualControl, &e.IsLive, &e.IsCompleted, &e.NegativeMarking, &e.ShowResultsImmediately)
	if errors.Is(err, sql.ErrNoRows) {
		return Exam{}, ErrExamNotFound
	}
	if err != nil {
		return Exam{}, err
	}
	e.StartTime = unixTime(start)
	e.EndTime = unixTime(end)
	return e, nil
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	var typ, oj string
	if err := row.Scan(&q.ID, &q.ExamID, &typ, &q.Prompt, &oj, &q.CorrectAnswer, &q.Points); err != nil {
		return Question{}, err
	}
	q.Type = QuestionType(typ)
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		return Question{}, err
	}
	return q, nil
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var status string
	var started int64
	var submitted sql.NullInt64
	var timeSpent sql.NullInt64
	if err := row.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.AttemptNumber, &status, &started, &submitted, &timeSpent, &a.Late); err != nil {
		return Attempt{}, err
	}
	a.Status = AttemptStatus(status)
	a.StartedAt = unixTime(started)
	if submitted.Valid {
		t := unixTime(submitted.Int64)
		a.SubmittedAt = &t
	}
	if timeSpent.Valid {
		n := int(timeSpent.Int64)
		a.TimeSpentSec = &n
	}
	return a, nil
}

func scanAnswer(row rowScanner) (Answer, error) {
	var a Answer
	var isCorrect sql.NullBool
	if err := row.Scan(&a.ID, &a.AttemptID, &a.ExamID, &a.StudentID, &a.QuestionID, &a.Response, &isCorrect, &a.PointsAwarded); err != nil {
		return Answer{}, err
	}
	if isCorrect.Valid {
		a.IsCorrect = &isCorrect.Bool
	}
	return a, nil
}

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}
