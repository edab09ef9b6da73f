// Package report renders a ranked publication: CSV lists, a LaTeX book with
// per-faculty plots, an XLSX workbook and terminal summaries.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nonsonwune/admissions/models"
)

var (
	ErrUnknownFaculty = errors.New("unknown faculty")
	ErrUnknownSchool  = errors.New("unknown school")
)

// Options selects which parts of the book are produced.
type Options struct {
	TopList      bool
	Faculties    bool
	Graphs       bool
	ShortenNames bool
}

// OutputName derives the output file name from the input file name and the
// selected parts, e.g. "results-out-descaled-top-list-and-faculties".
func OutputName(input string, opts Options) string {
	parts := []string{"-out"}
	if opts.TopList || opts.Faculties {
		parts = append(parts, "descaled")
	}
	if opts.TopList {
		parts = append(parts, "top-list")
		if opts.ShortenNames {
			parts = append(parts, "with-shortened-names")
		}
	}
	if opts.TopList && opts.Faculties {
		parts = append(parts, "and")
	}
	if opts.Faculties {
		parts = append(parts, "faculties")
		if opts.Graphs {
			parts = append(parts, "with-graphs")
		}
	}

	return strings.TrimSuffix(input, filepath.Ext(input)) + strings.Join(parts, "-")
}

func lookup(
	student models.StudentData,
	schools map[string]models.School,
	faculties map[string]models.Faculty,
) (models.School, models.Faculty, error) {
	faculty, ok := faculties[student.FacultyID]
	if !ok {
		return models.School{}, models.Faculty{}, fmt.Errorf("student %s: %w %s", student.ID, ErrUnknownFaculty, student.FacultyID)
	}
	school, ok := schools[student.SchoolID()]
	if !ok {
		return models.School{}, models.Faculty{}, fmt.Errorf("student %s: %w %s", student.ID, ErrUnknownSchool, student.SchoolID())
	}
	return school, faculty, nil
}
