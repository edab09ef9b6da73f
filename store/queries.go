package store

import (
	"context"
	"fmt"

	"github.com/nonsonwune/admissions/models"
)

// StudentRow is one line of the stored top list.
type StudentRow struct {
	Placement    int
	ExamID       string
	OverallScore string
	School       string
	Faculty      string
	Grant        string
}

// FacultyPerformance aggregates the admitted students of one faculty.
type FacultyPerformance struct {
	FacultyID  string
	Name       string
	School     string
	Students   int
	AvgOverall float64
	TopOverall float64
}

// SchoolStanding aggregates the admitted students of one school.
type SchoolStanding struct {
	SchoolID   string
	Name       string
	Students   int
	Granted    int
	AvgOverall float64
}

// TopStudents returns the best placed students of a run.
func (s *Store) TopStudents(ctx context.Context, runID string, limit int) ([]StudentRow, error) {
	query := `
		SELECT st.placement, st.exam_id, st.overall_score,
		       CASE WHEN sc.short_name <> '' THEN sc.short_name ELSE sc.name END,
		       f.name, st.grant_tier
		FROM students st
		JOIN faculties f ON f.run_id = st.run_id AND f.faculty_id = st.faculty_id
		JOIN schools sc ON sc.run_id = st.run_id AND sc.school_id = st.school_id
		WHERE st.run_id = $1
		ORDER BY st.placement
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("error getting top students: %w", err)
	}
	defer rows.Close()

	var out []StudentRow
	for rows.Next() {
		var r StudentRow
		if err := rows.Scan(&r.Placement, &r.ExamID, &r.OverallScore, &r.School, &r.Faculty, &r.Grant); err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FacultyPerformance ranks the faculties of a run by average overall score.
func (s *Store) FacultyPerformance(ctx context.Context, runID string) ([]FacultyPerformance, error) {
	query := `
		SELECT f.faculty_id, f.name, sc.name,
		       COUNT(st.placement) as admitted,
		       COALESCE(AVG(st.overall), 0) as avg_score,
		       COALESCE(MAX(st.overall), 0) as top_score
		FROM faculties f
		JOIN schools sc ON sc.run_id = f.run_id AND sc.school_id = f.school_id
		LEFT JOIN students st ON st.run_id = f.run_id AND st.faculty_id = f.faculty_id
		WHERE f.run_id = $1
		GROUP BY f.faculty_id, f.name, sc.name
		ORDER BY avg_score DESC, f.faculty_id
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("error getting faculty performance: %w", err)
	}
	defer rows.Close()

	var out []FacultyPerformance
	for rows.Next() {
		var p FacultyPerformance
		if err := rows.Scan(&p.FacultyID, &p.Name, &p.School, &p.Students, &p.AvgOverall, &p.TopOverall); err != nil {
			return nil, fmt.Errorf("error scanning faculty: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SchoolRanking ranks schools by the average overall score of their
// admitted students. Granted counts students holding any non-zero grant.
func (s *Store) SchoolRanking(ctx context.Context, runID string, limit int) ([]SchoolStanding, error) {
	query := `
		SELECT sc.school_id,
		       CASE WHEN sc.short_name <> '' THEN sc.short_name ELSE sc.name END,
		       COUNT(st.placement) as admitted,
		       SUM(CASE WHEN st.grant_tier IN ($2, $3, $4) THEN 1 ELSE 0 END) as granted,
		       AVG(st.overall) as avg_score
		FROM schools sc
		JOIN students st ON st.run_id = sc.run_id AND st.school_id = sc.school_id
		WHERE sc.run_id = $1
		GROUP BY sc.school_id, sc.name, sc.short_name
		ORDER BY avg_score DESC, sc.school_id
		LIMIT $5
	`
	rows, err := s.db.QueryContext(ctx, query, runID,
		models.GrantFifty.String(), models.GrantSeventy.String(), models.GrantHundred.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("error fetching school rankings: %w", err)
	}
	defer rows.Close()

	var out []SchoolStanding
	for rows.Next() {
		var r SchoolStanding
		if err := rows.Scan(&r.SchoolID, &r.Name, &r.Students, &r.Granted, &r.AvgOverall); err != nil {
			return nil, fmt.Errorf("error scanning school: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
