package processing

import (
	"errors"
	"fmt"
	"math"

	"github.com/nonsonwune/admissions/importer"
	"github.com/nonsonwune/admissions/models"
)

var (
	// ErrNoCalibration is returned when students sat a subject the
	// calibration file never mentions.
	ErrNoCalibration = errors.New("no calibration for subject")
	// ErrMissingBound is returned when a calibrated subject declares no
	// equalized maximum.
	ErrMissingBound = errors.New("calibration declares no maximum")
	// ErrDegenerateInterval is returned when the interpolation interval for a
	// score has zero width.
	ErrDegenerateInterval = errors.New("zero-width interpolation interval")
	// ErrNonFiniteScore is returned for a raw score that is NaN or infinite.
	ErrNonFiniteScore = errors.New("non-finite raw score")
)

// Bounds is the calibration of one subject after the observed raw extremes
// were paired with the declared equalized ones.
type Bounds struct {
	Min     models.Score
	Max     models.Score
	Anchors []models.Score
}

// DeriveBounds pairs each calibrated subject's declared equalized minimum and
// maximum with the lowest and highest raw score observed among students.
// Only subjects at least one student sat are returned. A NaN or infinite
// raw score is an error.
func DeriveBounds(students []models.StudentData, cal importer.Calibration) (map[models.Subject]Bounds, error) {
	type observed struct{ min, max float64 }
	seen := make(map[models.Subject]*observed)

	for _, student := range students {
		for subject, score := range student.Scores {
			raw, ok := score.ScaledValue()
			if !ok {
				continue
			}
			if math.IsNaN(raw) || math.IsInf(raw, 0) {
				return nil, fmt.Errorf("%w: student %s, %s", ErrNonFiniteScore, student.ID, subject.Key())
			}
			o, ok := seen[subject]
			if !ok {
				seen[subject] = &observed{min: raw, max: raw}
				continue
			}
			o.min = math.Min(o.min, raw)
			o.max = math.Max(o.max, raw)
		}
	}

	bounds := make(map[models.Subject]Bounds, len(seen))
	for _, subject := range models.AllSubjects {
		o, ok := seen[subject]
		if !ok {
			continue
		}
		st, ok := cal.Stats(subject)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoCalibration, subject.Key())
		}
		if st.Max == nil || st.Min == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBound, subject.Key())
		}
		for _, anchor := range st.Anchors {
			if anchor.Kind != models.ScoreEqualizedAndScaled {
				return nil, fmt.Errorf("%s: anchor without scaled value", subject.Key())
			}
		}
		bounds[subject] = Bounds{
			Min:     models.EqualizedAndScaled(o.min, st.Min.Equalized),
			Max:     models.EqualizedAndScaled(o.max, st.Max.Equalized),
			Anchors: st.Anchors,
		}
	}

	return bounds, nil
}

// Equalize maps one raw score onto the equalized axis. The interval starts
// as the subject's observed extremes; the largest anchor at or below raw
// becomes the lower end and the smallest anchor above raw the upper end.
func (b Bounds) Equalize(raw float64) (float64, error) {
	lo, hi := b.Min, b.Max
	loAnchor := false

	for _, a := range b.Anchors {
		if a.Scaled <= raw && (!loAnchor || a.Scaled >= lo.Scaled) {
			lo, loAnchor = a, true
		}
	}
	hiAnchor := false
	for _, a := range b.Anchors {
		if a.Scaled > raw && (!hiAnchor || a.Scaled <= hi.Scaled) {
			hi, hiAnchor = a, true
		}
	}

	if hi.Scaled == lo.Scaled {
		// An anchor sitting exactly on the observed maximum keeps its value;
		// a subject with a single observed raw score has no scale at all.
		if loAnchor || lo.Equalized == hi.Equalized {
			return lo.Equalized, nil
		}
		return 0, fmt.Errorf("%w at raw score %v", ErrDegenerateInterval, raw)
	}

	return mapRange(raw, lo.Scaled, hi.Scaled, lo.Equalized, hi.Equalized), nil
}

func mapRange(v, fromMin, fromMax, toMin, toMax float64) float64 {
	return (v-fromMin)/(fromMax-fromMin)*(toMax-toMin) + toMin
}

// Normalize returns a copy of students with every score that carries a raw
// component re-derived as EqualizedAndScaled. Scores that are already bare
// Equalized values pass through, and the input is not modified.
func Normalize(students []models.StudentData, cal importer.Calibration) ([]models.StudentData, error) {
	bounds, err := DeriveBounds(students, cal)
	if err != nil {
		return nil, err
	}

	out := make([]models.StudentData, len(students))
	for i, student := range students {
		normalized := student.Clone()
		for subject, score := range student.Scores {
			raw, ok := score.ScaledValue()
			if !ok {
				continue
			}
			equalized, err := bounds[subject].Equalize(raw)
			if err != nil {
				return nil, fmt.Errorf("student %s, %s: %w", student.ID, subject.Key(), err)
			}
			normalized.Scores[subject] = models.EqualizedAndScaled(raw, equalized)
		}
		out[i] = normalized
	}

	return out, nil
}
