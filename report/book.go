package report

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nonsonwune/admissions/models"
	"github.com/nonsonwune/admissions/processing"
)

const (
	topListHeading = "აბიტურიენტები საკონკურსო ქულის მიხედვით კლებადობით"
	overallLabel   = "საკონკურსო"
	placeLabel     = "ადგილი"
	numberLabel    = "ნომერი"
	grantLabel     = "გრანტი"
	facultyLabel   = "ფაკულტეტი"
	subjectLabel   = "საგანი"
)

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
)

func escape(s string) string {
	return latexEscaper.Replace(strings.TrimSpace(s))
}

type chapter struct {
	facultyID string
	body      string
}

// Book accumulates the LaTeX sources of the descaled publication in a work
// directory: main.tex, top-list.tex and chapters/<faculty>.tex.
type Book struct {
	dir      string
	output   string
	topList  string
	chapters []chapter
	graphs   map[string]bool
}

// NewBook prepares the work directory. output is the compiled file's path
// without the .pdf extension.
func NewBook(dir, output string) (*Book, error) {
	if err := os.MkdirAll(filepath.Join(dir, "chapters"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &Book{dir: dir, output: output, graphs: map[string]bool{}}, nil
}

// Dir is the work directory.
func (b *Book) Dir() string { return b.dir }

// SetGraphs marks the faculties whose chapter includes chapters/<id>.eps.
func (b *Book) SetGraphs(facultyIDs map[string]bool) {
	for id, ok := range facultyIDs {
		if ok {
			b.graphs[id] = true
		}
	}
}

// WriteTopList renders every student in ranked order with the first four
// display subjects of their faculty.
func (b *Book) WriteTopList(
	students []models.StudentData,
	schools map[string]models.School,
	faculties map[string]models.Faculty,
) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, `\section*{%s}

{
\scriptsize
\begin{longtable}{C{0.04\textwidth} | C{0.07\textwidth} | C{0.07\textwidth} | C{0.08\textwidth} | C{0.08\textwidth} | C{0.08\textwidth} | C{0.35\textwidth} | C{0.06\textwidth}}
    \# & %[2]s 1 & %[2]s 2 & %[2]s 3 & %[2]s 4 & %[3]s & %[4]s & %[5]s \\ \hline\hline
`, topListHeading, subjectLabel, overallLabel, facultyLabel, grantLabel)

	for i, s := range students {
		school, faculty, err := lookup(s, schools, faculties)
		if err != nil {
			return err
		}

		subjects := faculty.DisplaySubjects()
		names := make([]string, 4)
		scores := make([]string, 4)
		for j := 0; j < 4 && j < len(subjects); j++ {
			names[j] = subjects[j].String()
			if score, ok := s.Scores[subjects[j]]; ok {
				scores[j] = score.LaTeX()
			}
		}

		grant := s.Grant
		if grant == models.GrantNone {
			grant = models.GrantZero
		}

		fmt.Fprintf(&sb, "\t & \\color{gray}%s & \\color{gray}%s & \\color{gray}%s & \\color{gray}%s & & \\color{gray}%s & \\\\\n",
			names[0], names[1], names[2], names[3], escape(school.DisplayName()))
		fmt.Fprintf(&sb, "\t%d & %s & %s & %s & %s & %s & %s & %s\\\\\\hline\n",
			i+1, scores[0], scores[1], scores[2], scores[3], s.OverallScore, escape(faculty.Name), grant)
	}
	sb.WriteString("\\end{longtable}\n}")

	b.topList = sb.String()
	return nil
}

// WriteFaculties renders one chapter per faculty bucket.
func (b *Book) WriteFaculties(
	buckets []processing.FacultyBucket,
	schools map[string]models.School,
	faculties map[string]models.Faculty,
) error {
	chapters := make([]chapter, 0, len(buckets))

	for _, bucket := range buckets {
		faculty, ok := faculties[bucket.FacultyID]
		if !ok {
			return fmt.Errorf("%w %s", ErrUnknownFaculty, bucket.FacultyID)
		}
		school, ok := schools[faculty.SchoolID()]
		if !ok {
			return fmt.Errorf("faculty %s: %w %s", faculty.ID, ErrUnknownSchool, faculty.SchoolID())
		}

		subjects := faculty.DisplaySubjects()

		var sb strings.Builder
		fmt.Fprintf(&sb, "\\section*{%s - %s}\n\\subsection*{%s}\n", faculty.ID, escape(school.Name), escape(faculty.Name))
		fmt.Fprintf(&sb, "\n\\begin{longtable}{ C{0.03\\textwidth} C{0.07\\textwidth} C{0.08\\textwidth}%sC{0.07\\textwidth}}",
			strings.Repeat(" C{0.1\\textwidth} ", 2+len(subjects)))

		header := []string{"", placeLabel, numberLabel}
		for _, subject := range subjects {
			header = append(header, subject.String())
		}
		header = append(header, overallLabel, grantLabel)
		fmt.Fprintf(&sb, "\n\t%s \\\\\\hline", strings.Join(header, " & "))

		for i, s := range bucket.Students {
			cells := []string{
				fmt.Sprintf("\\color{gray}%d", i+1),
				strconv.Itoa(s.Placement),
				fmt.Sprintf("\\color{gray}%s", s.ID),
			}
			for _, subject := range subjects {
				cell := ""
				if score, ok := s.Scores[subject]; ok {
					cell = score.LaTeX()
				}
				cells = append(cells, cell)
			}
			cells = append(cells, s.OverallScore, s.Grant.String())
			fmt.Fprintf(&sb, "\n\t%s \\\\", strings.Join(cells, " & "))
		}
		sb.WriteString("\n\\end{longtable}")

		chapters = append(chapters, chapter{facultyID: faculty.ID, body: sb.String()})
	}

	b.chapters = chapters
	return nil
}

// Save writes main.tex and every rendered part into the work directory.
func (b *Book) Save() error {
	var inputs []string

	if b.topList != "" {
		inputs = append(inputs, `\input{top-list}`)
		if err := os.WriteFile(filepath.Join(b.dir, "top-list.tex"), []byte(b.topList), 0o644); err != nil {
			return fmt.Errorf("failed to write top list: %w", err)
		}
	}

	for _, ch := range b.chapters {
		body := ch.body
		if b.graphs[ch.facultyID] {
			body += fmt.Sprintf("\n\\begin{figure}[H]\\centering\n    \\includegraphics{chapters/%s.eps}\n\\end{figure}", ch.facultyID)
		}

		inputs = append(inputs, fmt.Sprintf(`\input{chapters/%s}`, ch.facultyID))
		if err := os.WriteFile(filepath.Join(b.dir, "chapters", ch.facultyID+".tex"), []byte(body), 0o644); err != nil {
			return fmt.Errorf("failed to write chapter %s: %w", ch.facultyID, err)
		}
	}

	content := "no data"
	if len(inputs) > 0 {
		content = strings.Join(inputs, "\n\t")
	}

	doc := fmt.Sprintf(mainTemplate, content)
	if err := os.WriteFile(filepath.Join(b.dir, "main.tex"), []byte(doc), 0o644); err != nil {
		return fmt.Errorf("failed to write main.tex: %w", err)
	}

	return nil
}

// Compile runs xelatex in the work directory, moves main.pdf to the output
// path and removes the work directory. It returns the PDF path.
func (b *Book) Compile(ctx context.Context, xelatex string) (string, error) {
	cmd := exec.CommandContext(ctx, xelatex, "-interaction=nonstopmode", "main.tex")
	cmd.Dir = b.dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("xelatex failed: %w: %s", err, lastLines(out, 10))
	}

	pdf := b.output + ".pdf"
	if err := os.Rename(filepath.Join(b.dir, "main.pdf"), pdf); err != nil {
		return "", fmt.Errorf("failed to move compiled book: %w", err)
	}
	if err := os.RemoveAll(b.dir); err != nil {
		return "", fmt.Errorf("failed to remove work directory: %w", err)
	}

	return pdf, nil
}

func lastLines(out []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

const mainTemplate = `\documentclass{article}

\usepackage[margin=2cm]{geometry}

\usepackage{fontspec}
\usepackage{float}
\usepackage{graphics}
\usepackage{xcolor}

\usepackage[T1]{fontenc}
\setmainfont{GA Sylvia}
\usepackage[georgian]{babel}
\usepackage{longtable,array}

\newcolumntype{C}[1]{>{\centering\arraybackslash}p{#1}}

\begin{document}
	%s
\end{document}`
