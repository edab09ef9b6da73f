package models

import (
	"fmt"
	"math"
	"strconv"
)

// ScoreKind tags which components of a Score are present.
type ScoreKind uint8

const (
	ScoreScaled ScoreKind = iota + 1
	ScoreEqualized
	ScoreEqualizedAndScaled
)

// Score is a subject result. A Scaled score comes from the publication, an
// Equalized one from calibration bounds, and EqualizedAndScaled is what the
// normalizer produces.
type Score struct {
	Kind      ScoreKind `json:"kind"`
	Scaled    float64   `json:"scaled,omitempty"`
	Equalized float64   `json:"equalized,omitempty"`
}

func Scaled(v float64) Score {
	return Score{Kind: ScoreScaled, Scaled: v}
}

func Equalized(v float64) Score {
	return Score{Kind: ScoreEqualized, Equalized: v}
}

func EqualizedAndScaled(scaled, equalized float64) Score {
	return Score{Kind: ScoreEqualizedAndScaled, Scaled: scaled, Equalized: equalized}
}

// ScaledValue returns the raw component, if the score carries one.
func (s Score) ScaledValue() (float64, bool) {
	switch s.Kind {
	case ScoreScaled, ScoreEqualizedAndScaled:
		return s.Scaled, true
	}
	return 0, false
}

// EqualizedValue returns the normalized component, if the score carries one.
func (s Score) EqualizedValue() (float64, bool) {
	switch s.Kind {
	case ScoreEqualized, ScoreEqualizedAndScaled:
		return s.Equalized, true
	}
	return 0, false
}

// Value is the component used for display: equalized when known, else scaled.
func (s Score) Value() float64 {
	if v, ok := s.EqualizedValue(); ok {
		return v
	}
	return s.Scaled
}

func (s Score) String() string {
	switch s.Kind {
	case ScoreScaled:
		return fmt.Sprintf("%.2f", s.Scaled)
	case ScoreEqualized:
		return fmt.Sprintf("%.2f", s.Equalized)
	case ScoreEqualizedAndScaled:
		return fmt.Sprintf("%.2f-%s", s.Equalized, strconv.FormatFloat(s.Scaled, 'f', -1, 64))
	}
	return ""
}

// LaTeX renders the score for a longtable cell.
func (s Score) LaTeX() string {
	switch s.Kind {
	case ScoreScaled:
		return fmt.Sprintf(`{\color{gray}\scriptsize%.1f}`, s.Scaled)
	case ScoreEqualized:
		return fmt.Sprintf("%.1f", s.Equalized)
	case ScoreEqualizedAndScaled:
		return fmt.Sprintf(`%.1f{\color{gray}\scriptsize(%.1f)}`, math.Round(s.Equalized*10)/10, s.Scaled)
	}
	return ""
}

// Scores holds one score per sat subject; subjects not sat are absent.
type Scores map[Subject]Score

// Clone returns an independent copy.
func (sc Scores) Clone() Scores {
	out := make(Scores, len(sc))
	for k, v := range sc {
		out[k] = v
	}
	return out
}
