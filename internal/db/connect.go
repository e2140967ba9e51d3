package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:examcore.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/examcore?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

// The unique indexes are load-bearing: one open attempt per
// (student, exam), one answer per (student, question, exam), one
// result per (student, exam). The stores rely on them to collapse
// duplicate concurrent writes.

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  start_time INTEGER NOT NULL,
  end_time INTEGER NOT NULL,
  duration_minutes INTEGER NOT NULL,
  max_attempts INTEGER NOT NULL DEFAULT 1,
  manual_control INTEGER NOT NULL DEFAULT 0,
  is_live INTEGER NOT NULL DEFAULT 0,
  is_completed INTEGER NOT NULL DEFAULT 0,
  negative_marking INTEGER NOT NULL DEFAULT 0,
  show_results_immediately INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  prompt TEXT NOT NULL DEFAULT '',
  options_json TEXT NOT NULL DEFAULT '[]',
  correct_answer TEXT NOT NULL DEFAULT '',
  points REAL NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  attempt_number INTEGER NOT NULL,
  status TEXT NOT NULL,
  started_at INTEGER NOT NULL,
  submitted_at INTEGER,
  time_spent_sec INTEGER,
  late INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS attempts_one_open
  ON attempts(exam_id, student_id) WHERE status = 'in_progress';

CREATE TABLE IF NOT EXISTS answers (
  id TEXT PRIMARY KEY,
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  exam_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  response TEXT NOT NULL DEFAULT '',
  is_correct INTEGER,
  points_awarded REAL NOT NULL DEFAULT 0,
  UNIQUE(student_id, question_id, exam_id)
);

CREATE TABLE IF NOT EXISTS results (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  score REAL NOT NULL DEFAULT 0,
  graded_at INTEGER NOT NULL,
  UNIQUE(student_id, exam_id)
);

CREATE TABLE IF NOT EXISTS academic_results (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL DEFAULT '',
  student_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  term TEXT NOT NULL,
  session TEXT NOT NULL,
  ca_score REAL NOT NULL DEFAULT 0,
  exam_score REAL NOT NULL DEFAULT 0,
  total_score REAL NOT NULL DEFAULT 0,
  grade TEXT NOT NULL DEFAULT '',
  grade_point REAL NOT NULL DEFAULT 0,
  remark TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'draft',
  updated_at INTEGER NOT NULL,
  UNIQUE(student_id, subject, term, session)
);

CREATE TABLE IF NOT EXISTS grading_scales (
  school_id TEXT PRIMARY KEY,
  bands_json TEXT NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  start_time BIGINT NOT NULL,
  end_time BIGINT NOT NULL,
  duration_minutes INTEGER NOT NULL,
  max_attempts INTEGER NOT NULL DEFAULT 1,
  manual_control BOOLEAN NOT NULL DEFAULT FALSE,
  is_live BOOLEAN NOT NULL DEFAULT FALSE,
  is_completed BOOLEAN NOT NULL DEFAULT FALSE,
  negative_marking BOOLEAN NOT NULL DEFAULT FALSE,
  show_results_immediately BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  prompt TEXT NOT NULL DEFAULT '',
  options_json TEXT NOT NULL DEFAULT '[]',
  correct_answer TEXT NOT NULL DEFAULT '',
  points DOUBLE PRECISION NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  attempt_number INTEGER NOT NULL,
  status TEXT NOT NULL,
  started_at BIGINT NOT NULL,
  submitted_at BIGINT,
  time_spent_sec INTEGER,
  late BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE UNIQUE INDEX IF NOT EXISTS attempts_one_open
  ON attempts(exam_id, student_id) WHERE status = 'in_progress';

CREATE TABLE IF NOT EXISTS answers (
  id TEXT PRIMARY KEY,
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  exam_id TEXT NOT NULL,
  student_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  response TEXT NOT NULL DEFAULT '',
  is_correct BOOLEAN,
  points_awarded DOUBLE PRECISION NOT NULL DEFAULT 0,
  UNIQUE(student_id, question_id, exam_id)
);

CREATE TABLE IF NOT EXISTS results (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL DEFAULT 0,
  graded_at BIGINT NOT NULL,
  UNIQUE(student_id, exam_id)
);

CREATE TABLE IF NOT EXISTS academic_results (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL DEFAULT '',
  student_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  term TEXT NOT NULL,
  session TEXT NOT NULL,
  ca_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  exam_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  grade TEXT NOT NULL DEFAULT '',
  grade_point DOUBLE PRECISION NOT NULL DEFAULT 0,
  remark TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'draft',
  updated_at BIGINT NOT NULL,
  UNIQUE(student_id, subject, term, session)
);

CREATE TABLE IF NOT EXISTS grading_scales (
  school_id TEXT PRIMARY KEY,
  bands_json TEXT NOT NULL
);
`
