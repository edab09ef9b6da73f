package models

// Faculty is one competition of a school, identified by its full code.
type Faculty struct {
	ID    string             `db:"faculty_id" json:"id"`
	Name  string             `db:"faculty_name" json:"name"`
	Mask  [SubjectCount]bool `db:"-" json:"mask"`
	Order []Subject          `db:"-" json:"order"`
}

// NewFaculty builds the mask from the declared subject order.
func NewFaculty(id, name string, order []Subject) Faculty {
	f := Faculty{ID: id, Name: name, Order: append([]Subject(nil), order...)}
	for _, s := range order {
		f.Mask[s] = true
	}
	return f
}

// SchoolID is the first three characters of the faculty code.
func (f Faculty) SchoolID() string {
	if len(f.ID) < 3 {
		return f.ID
	}
	return f.ID[:3]
}

// DisplaySubjects expands the mask against the canonical subject order,
// reversed. Reports use this order for their score columns.
func (f Faculty) DisplaySubjects() []Subject {
	out := make([]Subject, 0, len(f.Order))
	for i := SubjectCount - 1; i >= 0; i-- {
		if f.Mask[i] {
			out = append(out, AllSubjects[i])
		}
	}
	return out
}
