package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect names the SQL flavour a schema is written for.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Tables lists every table a stored run touches, parents first.
var Tables = []string{
	"runs",
	"schools",
	"faculties",
	"faculty_subjects",
	"students",
	"student_scores",
	"subject_summaries",
}

// InitSchema creates the run tables if they are missing and then verifies
// that all of them exist.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var schema string
	switch dialect {
	case Postgres:
		schema = schemaPostgres
	case SQLite:
		schema = schemaSQLite
	default:
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return VerifySchema(ctx, db, dialect)
}

// VerifySchema checks that every required table exists
func VerifySchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
	if dialect == SQLite {
		query = `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = $1)`
	}

	for _, table := range Tables {
		var exists bool
		if err := db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("required table %s does not exist", table)
		}
	}

	return nil
}

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  student_count INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS schools (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL,
  short_name TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, school_id)
);

CREATE TABLE IF NOT EXISTS faculties (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  faculty_id TEXT NOT NULL,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL,
  PRIMARY KEY (run_id, faculty_id)
);

CREATE TABLE IF NOT EXISTS faculty_subjects (
  run_id TEXT NOT NULL,
  faculty_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  subject TEXT NOT NULL,
  PRIMARY KEY (run_id, faculty_id, position),
  FOREIGN KEY (run_id, faculty_id) REFERENCES faculties(run_id, faculty_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS students (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  placement INTEGER NOT NULL,
  exam_id TEXT NOT NULL,
  faculty_id TEXT NOT NULL,
  school_id TEXT NOT NULL,
  overall_score TEXT NOT NULL,
  overall DOUBLE PRECISION NOT NULL,
  grant_tier TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, placement)
);

CREATE TABLE IF NOT EXISTS student_scores (
  run_id TEXT NOT NULL,
  placement INTEGER NOT NULL,
  subject TEXT NOT NULL,
  kind INTEGER NOT NULL,
  scaled DOUBLE PRECISION,
  equalized DOUBLE PRECISION,
  PRIMARY KEY (run_id, placement, subject),
  FOREIGN KEY (run_id, placement) REFERENCES students(run_id, placement) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS subject_summaries (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  student_count INTEGER NOT NULL,
  raw_min DOUBLE PRECISION NOT NULL,
  raw_max DOUBLE PRECISION NOT NULL,
  equalized_min DOUBLE PRECISION NOT NULL,
  equalized_max DOUBLE PRECISION NOT NULL,
  equalized_avg DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (run_id, subject)
);

CREATE INDEX IF NOT EXISTS idx_students_faculty ON students (run_id, faculty_id);
CREATE INDEX IF NOT EXISTS idx_students_school ON students (run_id, school_id);
`

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  student_count INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schools (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL,
  short_name TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, school_id)
);

CREATE TABLE IF NOT EXISTS faculties (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  faculty_id TEXT NOT NULL,
  school_id TEXT NOT NULL,
  name TEXT NOT NULL,
  PRIMARY KEY (run_id, faculty_id)
);

CREATE TABLE IF NOT EXISTS faculty_subjects (
  run_id TEXT NOT NULL,
  faculty_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  subject TEXT NOT NULL,
  PRIMARY KEY (run_id, faculty_id, position),
  FOREIGN KEY (run_id, faculty_id) REFERENCES faculties(run_id, faculty_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS students (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  placement INTEGER NOT NULL,
  exam_id TEXT NOT NULL,
  faculty_id TEXT NOT NULL,
  school_id TEXT NOT NULL,
  overall_score TEXT NOT NULL,
  overall REAL NOT NULL,
  grant_tier TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, placement)
);

CREATE TABLE IF NOT EXISTS student_scores (
  run_id TEXT NOT NULL,
  placement INTEGER NOT NULL,
  subject TEXT NOT NULL,
  kind INTEGER NOT NULL,
  scaled REAL,
  equalized REAL,
  PRIMARY KEY (run_id, placement, subject),
  FOREIGN KEY (run_id, placement) REFERENCES students(run_id, placement) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS subject_summaries (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  student_count INTEGER NOT NULL,
  raw_min REAL NOT NULL,
  raw_max REAL NOT NULL,
  equalized_min REAL NOT NULL,
  equalized_max REAL NOT NULL,
  equalized_avg REAL NOT NULL,
  PRIMARY KEY (run_id, subject)
);

CREATE INDEX IF NOT EXISTS idx_students_faculty ON students (run_id, faculty_id);
CREATE INDEX IF NOT EXISTS idx_students_school ON students (run_id, school_id);
`
