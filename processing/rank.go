package processing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nonsonwune/admissions/models"
)

// ErrInvalidOverallScore is returned when a competition score is not a
// decimal number.
var ErrInvalidOverallScore = errors.New("invalid overall score")

// Rank orders students by overall score, highest first, and assigns dense
// 1-based placements. Students with equal scores keep their input order.
func Rank(students []models.StudentData) ([]models.StudentData, error) {
	type ranked struct {
		student models.StudentData
		overall decimal.Decimal
	}

	items := make([]ranked, len(students))
	for i, s := range students {
		d, err := decimal.NewFromString(s.OverallScore)
		if err != nil {
			return nil, fmt.Errorf("%w: student %s: %q", ErrInvalidOverallScore, s.ID, s.OverallScore)
		}
		items[i] = ranked{student: s.Clone(), overall: d}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].overall.GreaterThan(items[j].overall)
	})

	out := make([]models.StudentData, len(items))
	for i, item := range items {
		item.student.Placement = i + 1
		out[i] = item.student
	}

	return out, nil
}
