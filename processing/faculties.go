package processing

import (
	"math"
	"sort"
	"strconv"

	"github.com/nonsonwune/admissions/models"
)

// FacultyBucket is one faculty's students in ranked order.
type FacultyBucket struct {
	FacultyID string
	Students  []models.StudentData
}

// GroupByFaculty buckets students by faculty. Buckets are ordered by numeric
// faculty code and keep the students' relative order.
func GroupByFaculty(students []models.StudentData) []FacultyBucket {
	index := make(map[string]int)
	var buckets []FacultyBucket

	for _, s := range students {
		i, ok := index[s.FacultyID]
		if !ok {
			i = len(buckets)
			index[s.FacultyID] = i
			buckets = append(buckets, FacultyBucket{FacultyID: s.FacultyID})
		}
		buckets[i].Students = append(buckets[i].Students, s)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return facultyLess(buckets[i].FacultyID, buckets[j].FacultyID)
	})

	return buckets
}

func facultyLess(a, b string) bool {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return a < b
	}
	return x < y
}

// SubjectSummary describes the score distribution of one subject.
type SubjectSummary struct {
	Subject      models.Subject
	Count        int
	RawMin       float64
	RawMax       float64
	EqualizedMin float64
	EqualizedMax float64
	EqualizedAvg float64
}

// SubjectSummaries reports every subject sat by at least one student, in
// canonical subject order. Equalized figures are zero for subjects whose
// scores were never normalized.
func SubjectSummaries(students []models.StudentData) []SubjectSummary {
	acc := make(map[models.Subject]*SubjectSummary)
	sums := make(map[models.Subject]float64)
	equalizedCount := make(map[models.Subject]int)

	for _, s := range students {
		for subject, score := range s.Scores {
			sum, ok := acc[subject]
			if !ok {
				sum = &SubjectSummary{
					Subject:      subject,
					RawMin:       math.Inf(1),
					RawMax:       math.Inf(-1),
					EqualizedMin: math.Inf(1),
					EqualizedMax: math.Inf(-1),
				}
				acc[subject] = sum
			}
			sum.Count++
			if raw, ok := score.ScaledValue(); ok {
				sum.RawMin = math.Min(sum.RawMin, raw)
				sum.RawMax = math.Max(sum.RawMax, raw)
			}
			if eq, ok := score.EqualizedValue(); ok {
				sum.EqualizedMin = math.Min(sum.EqualizedMin, eq)
				sum.EqualizedMax = math.Max(sum.EqualizedMax, eq)
				sums[subject] += eq
				equalizedCount[subject]++
			}
		}
	}

	var out []SubjectSummary
	for _, subject := range models.AllSubjects {
		sum, ok := acc[subject]
		if !ok {
			continue
		}
		if n := equalizedCount[subject]; n > 0 {
			sum.EqualizedAvg = sums[subject] / float64(n)
		} else {
			sum.EqualizedMin, sum.EqualizedMax = 0, 0
		}
		if math.IsInf(sum.RawMin, 0) {
			sum.RawMin, sum.RawMax = 0, 0
		}
		out = append(out, *sum)
	}

	return out
}
