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

// ReadShortNamesFile loads the school short-name table at path.
func ReadShortNamesFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open short names: %w", err)
	}
	defer f.Close()

	return LoadShortNames(f)
}

// LoadShortNames reads school_id,short_name pairs. Records with any other
// number of fields are skipped.
func LoadShortNames(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	names := make(map[string]string)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read short names: %w", err)
		}
		if len(fields) != 2 {
			continue
		}
		names[strings.TrimSpace(fields[0])] = strings.TrimSpace(fields[1])
	}

	return names, nil
}

// ApplyShortNames returns a copy of schools with short names filled in for
// every school the table knows.
func ApplyShortNames(schools map[string]models.School, names map[string]string) map[string]models.School {
	out := make(map[string]models.School, len(schools))
	for id, school := range schools {
		if short, ok := names[id]; ok {
			school.ShortName = short
		}
		out[id] = school
	}
	return out
}
