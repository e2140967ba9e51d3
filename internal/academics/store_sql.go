package academics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/classforge/examcore/internal/grading"
	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const resultCols = `id,school_id,student_id,subject,term,session,ca_score,exam_score,total_score,grade,grade_point,remark,status,updated_at`

func (s *SQLStore) UpsertResult(ctx context.Context, r Result) (Result, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO academic_results (`+resultCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (student_id,subject,term,session) DO UPDATE SET
			ca_score=EXCLUDED.ca_score, exam_score=EXCLUDED.exam_score, total_score=EXCLUDED.total_score,
			grade=EXCLUDED.grade, grade_point=EXCLUDED.grade_point, remark=EXCLUDED.remark,
			status=EXCLUDED.status, updated_at=EXCLUDED.updated_at`,
		r.ID, r.SchoolID, r.StudentID, r.Subject, r.Term, r.Session,
		r.CAScore, r.ExamScore, r.TotalScore, r.Grade, r.GradePoint, r.Remark,
		string(r.Status), r.UpdatedAt.Unix())
	if err != nil {
		return Result{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+resultCols+` FROM academic_results
		WHERE student_id=$1 AND subject=$2 AND term=$3 AND session=$4`,
		r.StudentID, r.Subject, r.Term, r.Session)
	return scanResult(row)
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultCols+` FROM academic_results WHERE id=$1`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrResultNotFound
	}
	return r, err
}

func (s *SQLStore) ListTermResults(ctx context.Context, studentID, term, session string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+resultCols+` FROM academic_results
		WHERE student_id=$1 AND term=$2 AND session=$3 ORDER BY subject`, studentID, term, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateStatus(ctx context.Context, id string, status Status) (Result, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE academic_results SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return Result{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Result{}, err
	} else if n == 0 {
		return Result{}, ErrResultNotFound
	}
	return s.GetResult(ctx, id)
}

func (s *SQLStore) PutScale(ctx context.Context, schoolID string, scale grading.Scale) error {
	bj, err := json.Marshal(scale)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO grading_scales (school_id,bands_json)
		VALUES ($1,$2)
		ON CONFLICT (school_id) DO UPDATE SET bands_json=EXCLUDED.bands_json`,
		schoolID, string(bj))
	return err
}

func (s *SQLStore) GetScale(ctx context.Context, schoolID string) (grading.Scale, error) {
	var bj string
	err := s.db.QueryRowContext(ctx, `SELECT bands_json FROM grading_scales WHERE school_id=$1`, schoolID).Scan(&bj)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScaleNotFound
	}
	if err != nil {
		return nil, err
	}
	var scale grading.Scale
	if err := json.Unmarshal([]byte(bj), &scale); err != nil {
		return nil, err
	}
	return scale, nil
}

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

type rowScanner interface{ Scan(dest ...any) error }

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var status string
	var updated int64
	if err := row.Scan(&r.ID, &r.SchoolID, &r.StudentID, &r.Subject, &r.Term, &r.Session,
		&r.CAScore, &r.ExamScore, &r.TotalScore, &r.Grade, &r.GradePoint, &r.Remark,
		&status, &updated); err != nil {
		return Result{}, err
	}
	r.Status = Status(status)
	r.UpdatedAt = unixTime(updated)
	return r, nil
}
