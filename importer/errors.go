package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a student row is shorter than its
	// faculty's declaration requires.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoFaculty is returned for a subject declaration that appears before
	// any faculty header.
	ErrNoFaculty = errors.New("subject declaration without faculty header")
	// ErrInvalidNumber is returned for numeric fields that do not parse.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrUnknownSubject is returned when a calibration record names a subject
	// outside the subject table.
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrUnknownKind is returned for calibration records whose kind is not
	// maximum, minimum or anchor.
	ErrUnknownKind = errors.New("unknown calibration kind")
)

// LineError ties a parse failure to its 1-based line in the source file.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
