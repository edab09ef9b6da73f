package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nonsonwune/admissions/models"
)

// WriteRankedCSV writes one record per ranked student:
// placement, {subject:score;...}, overall score, exam id, school, faculty, grant.
func WriteRankedCSV(
	w io.Writer,
	students []models.StudentData,
	schools map[string]models.School,
	faculties map[string]models.Faculty,
) error {
	writer := csv.NewWriter(w)

	for _, s := range students {
		school, faculty, err := lookup(s, schools, faculties)
		if err != nil {
			return err
		}

		record := []string{
			strconv.Itoa(s.Placement),
			FormatScores(s.Scores),
			s.OverallScore,
			s.ID,
			school.Name,
			faculty.Name,
			s.Grant.String(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write student %s: %w", s.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatScores lists the sat subjects in reverse canonical order as
// "{subject:score;...}".
func FormatScores(scores models.Scores) string {
	parts := make([]string, 0, len(scores))
	for i := models.SubjectCount - 1; i >= 0; i-- {
		subject := models.AllSubjects[i]
		if score, ok := scores[subject]; ok {
			parts = append(parts, subject.String()+":"+score.String())
		}
	}
	return "{" + strings.Join(parts, ";") + "}"
}
