package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/nonsonwune/admissions/models"
)

const maxLineBytes = 1 << 20

// Publication is everything read from one publication table.
type Publication struct {
	Students  []models.StudentData
	Schools   map[string]models.School
	Faculties map[string]models.Faculty
	Stats     ParseStats
}

// ParseStats counts how the lines of a publication were classified.
type ParseStats struct {
	TotalLines int
	Rows       map[RowKind]int
}

// parseState is the context carried from one line to the next.
type parseState struct {
	facultyID   string
	facultyName string
	facultyOpen bool
	subjects    []models.Subject
}

// ReadPublicationFile parses the publication TSV at path.
func ReadPublicationFile(path string) (*Publication, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open publication: %w", err)
	}
	defer f.Close()

	return ParsePublication(f)
}

// ParsePublication classifies every line of r in order and collects the
// schools, faculties and students it declares. Any malformed student or
// declaration row aborts the parse.
func ParsePublication(r io.Reader) (*Publication, error) {
	pub := &Publication{
		Schools:   make(map[string]models.School),
		Faculties: make(map[string]models.Faculty),
		Stats:     ParseStats{Rows: make(map[RowKind]int)},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		state parseState
		err   error
		line  int
	)
	for scanner.Scan() {
		line++
		row := Classify(SplitRow(scanner.Text()), state.facultyOpen)
		pub.Stats.Rows[row.Kind]++

		state, err = step(state, row, pub)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read publication: %w", err)
	}
	pub.Stats.TotalLines = line

	return pub, nil
}

// step applies one classified row to the output and returns the state for
// the next line.
func step(state parseState, row Row, pub *Publication) (parseState, error) {
	switch row.Kind {
	case RowSchool:
		if _, ok := pub.Schools[row.ID]; !ok {
			pub.Schools[row.ID] = models.School{ID: row.ID, Name: row.Name}
		}

	case RowFaculty:
		state.facultyID = row.ID
		state.facultyName = row.Name
		state.facultyOpen = true

	case RowSubjects:
		if !state.facultyOpen {
			return state, ErrNoFaculty
		}
		state.subjects = row.Subjects
		if _, ok := pub.Faculties[state.facultyID]; !ok {
			pub.Faculties[state.facultyID] = models.NewFaculty(state.facultyID, state.facultyName, row.Subjects)
		}

	case RowStudent:
		student, err := parseStudent(row.Fields, state)
		if err != nil {
			return state, err
		}
		pub.Students = append(pub.Students, student)
	}

	return state, nil
}

// parseStudent reads [row number, exam id, one score per declared subject,
// overall score, optional grant].
func parseStudent(fields []string, state parseState) (models.StudentData, error) {
	k := len(state.subjects)
	if len(fields) < k+3 {
		return models.StudentData{}, fmt.Errorf("%w: student row has %d fields, faculty %s declares %d subjects",
			ErrMissingColumn, len(fields), state.facultyID, k)
	}

	scores := make(models.Scores, k)
	for i, subject := range state.subjects {
		v, err := parseFinite(fields[i+2])
		if err != nil {
			return models.StudentData{}, fmt.Errorf("student %s, %s score: %w", fields[1], subject.Key(), err)
		}
		scores[subject] = models.Scaled(v)
	}
	if _, err := parseFinite(fields[k+2]); err != nil {
		return models.StudentData{}, fmt.Errorf("student %s, overall score: %w", fields[1], err)
	}

	grant := models.GrantZero
	if len(fields) > k+3 {
		grant = models.ParseGrant(fields[len(fields)-1])
	}

	return models.StudentData{
		ID:           fields[1],
		Scores:       scores,
		OverallScore: fields[k+2],
		FacultyID:    state.facultyID,
		Grant:        grant,
	}, nil
}
