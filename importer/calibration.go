package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nonsonwune/admissions/models"
)

// Calibration kinds accepted in the second column of a calibration record.
const (
	KindMaximum = "maximum"
	KindMinimum = "minimum"
	KindAnchor  = "anchor"
)

// defaultMinRatio derives a missing equalized minimum from the maximum.
const defaultMinRatio = 0.2

// Calibration holds the declared equalized bounds and anchors per subject.
type Calibration map[models.Subject]models.SubjectStats

// Stats returns a copy of the subject's calibration.
func (c Calibration) Stats(s models.Subject) (models.SubjectStats, bool) {
	st, ok := c[s]
	if !ok {
		return models.SubjectStats{}, false
	}
	return st.Clone(), true
}

// ReadCalibrationFile loads the calibration CSV at path.
func ReadCalibrationFile(path string) (Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open calibration: %w", err)
	}
	defer f.Close()

	return LoadCalibration(f)
}

// LoadCalibration reads records of the form subject,kind,value[,scaled].
// Minimum and maximum records overwrite earlier ones, anchors accumulate in
// file order. A subject with a maximum but no minimum gets 0.2 * maximum.
func LoadCalibration(r io.Reader) (Calibration, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	cal := make(Calibration)
	for record := 1; ; record++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read calibration: %w", err)
		}
		if record == 1 && isHeader(fields) {
			continue
		}
		if err := cal.apply(fields); err != nil {
			line, _ := reader.FieldPos(0)
			return nil, &LineError{Line: line, Err: err}
		}
	}

	for s, st := range cal {
		if st.Min == nil && st.Max != nil {
			floor := models.Equalized(st.Max.Equalized * defaultMinRatio)
			st.Min = &floor
			cal[s] = st
		}
	}

	return cal, nil
}

func (c Calibration) apply(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: calibration record needs at least 3 fields, got %d", ErrMissingColumn, len(fields))
	}

	subject, ok := models.ParseSubjectKey(fields[0])
	if !ok {
		return unknownSubject(fields[0])
	}

	value, err := parseFinite(fields[2])
	if err != nil {
		return err
	}

	st := c[subject]
	switch strings.TrimSpace(fields[1]) {
	case KindMaximum:
		v := models.Equalized(value)
		st.Max = &v
	case KindMinimum:
		v := models.Equalized(value)
		st.Min = &v
	case KindAnchor:
		if len(fields) < 4 {
			return fmt.Errorf("%w: anchor for %s has no scaled value", ErrMissingColumn, subject.Key())
		}
		scaled, err := parseFinite(fields[3])
		if err != nil {
			return err
		}
		st.Anchors = append(st.Anchors, models.EqualizedAndScaled(scaled, value))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, fields[1])
	}
	c[subject] = st

	return nil
}

// isHeader reports whether a first record is a column header rather than data.
func isHeader(fields []string) bool {
	if len(fields) < 2 {
		return false
	}
	if _, ok := models.ParseSubjectKey(fields[0]); ok {
		return false
	}
	switch strings.TrimSpace(fields[1]) {
	case KindMaximum, KindMinimum, KindAnchor:
		return false
	}
	return true
}

// unknownSubject names the closest known subject key to help fix typos in
// hand-written calibration files.
func unknownSubject(token string) error {
	token = strings.ToLower(strings.TrimSpace(token))
	best, bestDistance := "", 1000
	for _, s := range models.AllSubjects {
		if d := levenshteinDistance(token, s.Key()); d < bestDistance {
			best, bestDistance = s.Key(), d
		}
	}
	if bestDistance <= 2 {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownSubject, token, best)
	}
	return fmt.Errorf("%w: %q", ErrUnknownSubject, token)
}

func levenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
			} else {
				matrix[i][j] = 1 + min(matrix[i-1][j], matrix[i][j-1], matrix[i-1][j-1])
			}
		}
	}

	return matrix[len(a)][len(b)]
}
