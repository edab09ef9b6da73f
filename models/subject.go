package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Subject is one of the nine exam subjects a faculty can admit on.
// The numeric order is the canonical display and index order.
type Subject int

const (
	Math Subject = iota
	History
	Physics
	Biology
	Chemistry
	Geography
	Literature
	English
	Georgian
)

// SubjectCount is the size of the closed subject set.
const SubjectCount = 9

// AllSubjects lists every subject in canonical order.
var AllSubjects = [SubjectCount]Subject{
	Math,
	History,
	Physics,
	Biology,
	Chemistry,
	Geography,
	Literature,
	English,
	Georgian,
}

type subjectInfo struct {
	name  string
	key   string
	color string
}

var subjectTable = [SubjectCount]subjectInfo{
	Math:       {name: "მათემატიკა", key: "math", color: "green"},
	History:    {name: "ისტორია", key: "history", color: "orange"},
	Physics:    {name: "ფიზიკა", key: "physics", color: "red"},
	Biology:    {name: "ბიოლოგია", key: "biology", color: "violet"},
	Chemistry:  {name: "ქიმია", key: "chemistry", color: "purple"},
	Geography:  {name: "გეოგრაფია", key: "geography", color: "cyan"},
	Literature: {name: "ლიტერატურა", key: "literature", color: "yellow"},
	English:    {name: "უცხოური", key: "english", color: "blue"},
	Georgian:   {name: "ქართული", key: "georgian", color: "pink"},
}

var (
	subjectsByName = make(map[string]Subject, SubjectCount)
	subjectsByKey  = make(map[string]Subject, SubjectCount)
)

func init() {
	for _, s := range AllSubjects {
		subjectsByName[subjectTable[s].name] = s
		subjectsByKey[subjectTable[s].key] = s
	}
}

// normalizeToken folds compatibility forms left by PDF extraction, such as
// fullwidth letters, and trims surrounding space.
func normalizeToken(token string) string {
	return strings.TrimSpace(norm.NFKC.String(token))
}

// ParseSubject matches a publication token against the Georgian display
// names.
func ParseSubject(token string) (Subject, bool) {
	s, ok := subjectsByName[normalizeToken(token)]
	return s, ok
}

// ParseSubjectKey matches a calibration token. Georgian display names and
// the English keys, in any case, are both accepted.
func ParseSubjectKey(token string) (Subject, bool) {
	token = normalizeToken(token)
	if s, ok := subjectsByName[token]; ok {
		return s, true
	}
	s, ok := subjectsByKey[strings.ToLower(token)]
	return s, ok
}

// Valid reports whether s is a member of the closed subject set.
func (s Subject) Valid() bool {
	return s >= 0 && int(s) < SubjectCount
}

// String returns the Georgian display name used in the publication.
func (s Subject) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return subjectTable[s].name
}

// Key returns the lowercase English identifier.
func (s Subject) Key() string {
	if !s.Valid() {
		return "unknown"
	}
	return subjectTable[s].key
}

// Color is the plot color for the subject.
func (s Subject) Color() string {
	if !s.Valid() {
		return "black"
	}
	return subjectTable[s].color
}
