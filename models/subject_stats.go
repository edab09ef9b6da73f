package models

// SubjectStats is the calibration of one subject: the declared equalized
// extremes and the (equalized, scaled) anchor pairs in file order.
type SubjectStats struct {
	Min     *Score  `json:"min,omitempty"`
	Max     *Score  `json:"max,omitempty"`
	Anchors []Score `json:"anchors,omitempty"`
}

// Clone returns a deep copy.
func (s SubjectStats) Clone() SubjectStats {
	out := SubjectStats{Anchors: append([]Score(nil), s.Anchors...)}
	if s.Min != nil {
		v := *s.Min
		out.Min = &v
	}
	if s.Max != nil {
		v := *s.Max
		out.Max = &v
	}
	return out
}
