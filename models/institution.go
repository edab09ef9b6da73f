package models

// School represents a university in the publication, keyed by its
// three character code.
type School struct {
	ID        string `db:"school_id" json:"id"`
	Name      string `db:"school_name" json:"name"`
	ShortName string `db:"short_name" json:"short_name,omitempty"`
}

// DisplayName prefers the shortened name when one was looked up.
func (s School) DisplayName() string {
	if s.ShortName != "" {
		return s.ShortName
	}
	return s.Name
}
