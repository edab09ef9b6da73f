package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nonsonwune/admissions/models"
)

// RowKind is the classification of one publication line.
type RowKind int

const (
	RowIgnored RowKind = iota
	RowSchool
	RowFaculty
	RowSubjects
	RowStudent
)

func (k RowKind) String() string {
	switch k {
	case RowSchool:
		return "school"
	case RowFaculty:
		return "faculty"
	case RowSubjects:
		return "subjects"
	case RowStudent:
		return "student"
	}
	return "ignored"
}

// Row is a classified publication line. Which fields are set depends on Kind:
// ID and Name for school and faculty headers, Subjects for declarations and
// Fields for student rows.
type Row struct {
	Kind     RowKind
	ID       string
	Name     string
	Subjects []models.Subject
	Fields   []string
}

// SplitRow trims a raw line and splits it on tabs.
func SplitRow(line string) []string {
	return strings.Split(strings.TrimSpace(line), "\t")
}

// Classify decides the kind of a tab-split line. facultyOpen reports whether
// a faculty header has been seen; numeric rows before the first one are
// ignored. Rows holding NaN or infinity tokens still classify as student
// rows so that the parser rejects them instead of reading a header.
func Classify(fields []string, facultyOpen bool) Row {
	if len(fields) == 0 {
		return Row{Kind: RowIgnored}
	}

	if allNumeric(fields) {
		if !facultyOpen {
			return Row{Kind: RowIgnored}
		}
		return Row{Kind: RowStudent, Fields: fields}
	}

	if containsPercent(fields) {
		return Row{Kind: RowSubjects, Subjects: declaredSubjects(fields)}
	}

	if isNumber(fields[0]) {
		row := Row{ID: fields[0], Name: strings.Join(fields[1:], " ")}
		if len(fields[0]) == 3 {
			row.Kind = RowSchool
		} else {
			row.Kind = RowFaculty
		}
		return row
	}

	return Row{Kind: RowIgnored}
}

// declaredSubjects reads subject tokens from a declaration row. The two
// trailing columns carry weight metadata and are never subjects.
func declaredSubjects(fields []string) []models.Subject {
	n := len(fields) - 2
	if n < 0 {
		n = 0
	}

	var subjects []models.Subject
	for _, f := range fields[:n] {
		if s, ok := models.ParseSubject(f); ok {
			subjects = append(subjects, s)
		}
	}
	return subjects
}

// parseFinite parses a numeric field. NaN and infinities are rejected with
// ErrInvalidNumber.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

func isNumber(s string) bool {
	_, err := parseFinite(s)
	return err == nil
}

func allNumeric(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return false
		}
	}
	return true
}

func containsPercent(fields []string) bool {
	for _, f := range fields {
		if f == "%" {
			return true
		}
	}
	return false
}
