package models

// Grant is the tuition grant tier printed after a student's overall score.
type Grant int

const (
	GrantNone Grant = iota
	GrantZero
	GrantFifty
	GrantSeventy
	GrantHundred
)

// ParseGrant maps the publication's grant column. Unknown codes yield
// GrantNone.
func ParseGrant(code string) Grant {
	switch code {
	case "100":
		return GrantHundred
	case "70":
		return GrantSeventy
	case "50":
		return GrantFifty
	}
	return GrantNone
}

func (g Grant) String() string {
	switch g {
	case GrantZero:
		return "0"
	case GrantFifty:
		return "50"
	case GrantSeventy:
		return "70"
	case GrantHundred:
		return "100"
	}
	return ""
}

// StudentData is one applicant row of the publication.
type StudentData struct {
	ID           string `db:"exam_id" json:"id"`
	Scores       Scores `db:"-" json:"scores"`
	OverallScore string `db:"overall_score" json:"overall_score"`
	Placement    int    `db:"placement" json:"placement,omitempty"`
	FacultyID    string `db:"faculty_id" json:"faculty_id"`
	Grant        Grant  `db:"grant_tier" json:"grant"`
}

// SchoolID is the owning school's code, the first three characters of the
// faculty code.
func (s StudentData) SchoolID() string {
	if len(s.FacultyID) < 3 {
		return s.FacultyID
	}
	return s.FacultyID[:3]
}

// Clone returns a copy that shares no scores map with s.
func (s StudentData) Clone() StudentData {
	s.Scores = s.Scores.Clone()
	return s
}
