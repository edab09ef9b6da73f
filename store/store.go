package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/nonsonwune/admissions/config"
	"github.com/nonsonwune/admissions/migrations"
	"github.com/nonsonwune/admissions/models"
	"github.com/nonsonwune/admissions/processing"
)

// ErrNoRuns is returned by queries when nothing has been stored yet.
var ErrNoRuns = errors.New("no stored runs")

// Store persists finished ranking runs.
type Store struct {
	db      *sql.DB
	dialect migrations.Dialect
	logger  *slog.Logger
}

// Run is everything a finished pipeline produced.
type Run struct {
	Source    string
	Students  []models.StudentData
	Schools   map[string]models.School
	Faculties map[string]models.Faculty
	Summaries []processing.SubjectSummary
}

// Open connects to the configured database and makes sure the schema exists.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	dialect := migrations.Dialect(cfg.Driver)

	db, err := sql.Open(cfg.Driver, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == migrations.SQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.InitSchema(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("database ready", "driver", cfg.Driver)

	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun writes a run in a single transaction and returns its id. Students
// must already be ranked.
func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, student_count, created_at) VALUES ($1, $2, $3, $4)`,
		id, run.Source, len(run.Students), time.Now().UnixNano()); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, schoolID := range sortedKeys(run.Schools) {
		school := run.Schools[schoolID]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schools (run_id, school_id, name, short_name) VALUES ($1, $2, $3, $4)`,
			id, school.ID, school.Name, school.ShortName); err != nil {
			return "", fmt.Errorf("failed to insert school %s: %w", school.ID, err)
		}
	}

	for _, facultyID := range sortedKeys(run.Faculties) {
		faculty := run.Faculties[facultyID]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO faculties (run_id, faculty_id, school_id, name) VALUES ($1, $2, $3, $4)`,
			id, faculty.ID, faculty.SchoolID(), faculty.Name); err != nil {
			return "", fmt.Errorf("failed to insert faculty %s: %w", faculty.ID, err)
		}
		for position, subject := range faculty.Order {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO faculty_subjects (run_id, faculty_id, position, subject) VALUES ($1, $2, $3, $4)`,
				id, faculty.ID, position, subject.Key()); err != nil {
				return "", fmt.Errorf("failed to insert subjects of faculty %s: %w", faculty.ID, err)
			}
		}
	}

	for _, student := range run.Students {
		if err := insertStudent(ctx, tx, id, student); err != nil {
			return "", err
		}
	}

	for _, sum := range run.Summaries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subject_summaries
			   (run_id, subject, student_count, raw_min, raw_max, equalized_min, equalized_max, equalized_avg)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, sum.Subject.Key(), sum.Count, sum.RawMin, sum.RawMax,
			sum.EqualizedMin, sum.EqualizedMax, sum.EqualizedAvg); err != nil {
			return "", fmt.Errorf("failed to insert summary for %s: %w", sum.Subject.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Info("run stored", "run_id", id, "students", len(run.Students),
		"schools", len(run.Schools), "faculties", len(run.Faculties))

	return id, nil
}

func insertStudent(ctx context.Context, tx *sql.Tx, runID string, student models.StudentData) error {
	if student.Placement == 0 {
		return fmt.Errorf("student %s has no placement", student.ID)
	}

	overall, err := strconv.ParseFloat(student.OverallScore, 64)
	if err != nil {
		return fmt.Errorf("student %s: invalid overall score %q: %w", student.ID, student.OverallScore, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO students
		   (run_id, placement, exam_id, faculty_id, school_id, overall_score, overall, grant_tier)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		runID, student.Placement, student.ID, student.FacultyID, student.SchoolID(),
		student.OverallScore, overall, student.Grant.String()); err != nil {
		return fmt.Errorf("failed to insert student %s: %w", student.ID, err)
	}

	for _, subject := range models.AllSubjects {
		score, ok := student.Scores[subject]
		if !ok {
			continue
		}
		var scaled, equalized sql.NullFloat64
		if v, ok := score.ScaledValue(); ok {
			scaled = sql.NullFloat64{Float64: v, Valid: true}
		}
		if v, ok := score.EqualizedValue(); ok {
			equalized = sql.NullFloat64{Float64: v, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO student_scores (run_id, placement, subject, kind, scaled, equalized)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, student.Placement, subject.Key(), int(score.Kind), scaled, equalized); err != nil {
			return fmt.Errorf("failed to insert %s score of student %s: %w", subject.Key(), student.ID, err)
		}
	}

	return nil
}

// LatestRun returns the id of the most recently stored run.
func (s *Store) LatestRun(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest run: %w", err)
	}
	return id, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
