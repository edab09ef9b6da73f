package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nonsonwune/admissions/importer"
	"github.com/nonsonwune/admissions/models"
	"github.com/nonsonwune/admissions/processing"
)

type fixture struct {
	students  []models.StudentData
	schools   map[string]models.School
	faculties map[string]models.Faculty
}

func newFixture() fixture {
	return fixture{
		students: []models.StudentData{
			{ID: "a", Placement: 1, FacultyID: "101010", OverallScore: "1600", Grant: models.GrantHundred,
				Scores: models.Scores{
					models.Math:     models.EqualizedAndScaled(600, 80),
					models.Georgian: models.Scaled(60),
					models.English:  models.Scaled(70),
				}},
			{ID: "b", Placement: 2, FacultyID: "101010", OverallScore: "1400",
				Scores: models.Scores{
					models.Math:     models.EqualizedAndScaled(400, 20),
					models.Georgian: models.Scaled(50),
				}},
			{ID: "c", Placement: 3, FacultyID: "101020", OverallScore: "1200", Grant: models.GrantZero,
				Scores: models.Scores{models.History: models.Scaled(45)}},
		},
		schools: map[string]models.School{
			"101": {ID: "101", Name: "Tbilisi State University", ShortName: "TSU"},
		},
		faculties: map[string]models.Faculty{
			"101010": models.NewFaculty("101010", "Mathematics",
				[]models.Subject{models.Georgian, models.English, models.Math}),
			"101020": models.NewFaculty("101020", "History",
				[]models.Subject{models.Georgian, models.History}),
		},
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"nothing selected", Options{}, "data/results-out"},
		{"top list", Options{TopList: true, ShortenNames: true}, "data/results-out-descaled-top-list-with-shortened-names"},
		{"faculties", Options{Faculties: true, Graphs: true}, "data/results-out-descaled-faculties-with-graphs"},
		{"everything", Options{TopList: true, Faculties: true, Graphs: true},
			"data/results-out-descaled-top-list-and-faculties-with-graphs"},
		{"graphs need faculties", Options{TopList: true, Graphs: true}, "data/results-out-descaled-top-list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputName("data/results.pdf", tt.opts))
		})
	}
}

func TestFormatScoresUsesReversedSubjectOrder(t *testing.T) {
	fx := newFixture()
	assert.Equal(t, "{ქართული:60.00;უცხოური:70.00;მათემატიკა:80.00-600}", FormatScores(fx.students[0].Scores))
	assert.Equal(t, "{}", FormatScores(models.Scores{}))
}

func TestWriteRankedCSV(t *testing.T) {
	fx := newFixture()
	var buf bytes.Buffer

	require.NoError(t, WriteRankedCSV(&buf, fx.students, fx.schools, fx.faculties))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1,{ქართული:60.00;უცხოური:70.00;მათემატიკა:80.00-600},1600,a,Tbilisi State University,Mathematics,100", lines[0])
	assert.Equal(t, "2,{ქართული:50.00;მათემატიკა:20.00-400},1400,b,Tbilisi State University,Mathematics,", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",History,0"))
}

func TestWriteRankedCSVUnknownFaculty(t *testing.T) {
	fx := newFixture()
	delete(fx.faculties, "101020")

	err := WriteRankedCSV(&bytes.Buffer{}, fx.students, fx.schools, fx.faculties)
	assert.ErrorIs(t, err, ErrUnknownFaculty)
}

func TestBookSave(t *testing.T) {
	fx := newFixture()
	dir := filepath.Join(t.TempDir(), "work")

	book, err := NewBook(dir, filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	require.NoError(t, book.WriteTopList(fx.students, fx.schools, fx.faculties))
	require.NoError(t, book.WriteFaculties(processing.GroupByFaculty(fx.students), fx.schools, fx.faculties))
	book.SetGraphs(map[string]bool{"101010": true})
	require.NoError(t, book.Save())

	doc, err := os.ReadFile(filepath.Join(dir, "main.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), `\input{top-list}`)
	assert.Contains(t, string(doc), `\input{chapters/101010}`)
	assert.Contains(t, string(doc), `\input{chapters/101020}`)

	top, err := os.ReadFile(filepath.Join(dir, "top-list.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(top), `\color{gray}TSU`)
	assert.Contains(t, string(top), `& 1400 & Mathematics & 0\\\hline`, "missing grant prints as zero")

	chapter, err := os.ReadFile(filepath.Join(dir, "chapters", "101010.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(chapter), `\section*{101010 - Tbilisi State University}`)
	assert.Contains(t, string(chapter), "ადგილი & ნომერი & ქართული & უცხოური & მათემატიკა & საკონკურსო & გრანტი")
	assert.Contains(t, string(chapter), `\includegraphics{chapters/101010.eps}`)

	other, err := os.ReadFile(filepath.Join(dir, "chapters", "101020.tex"))
	require.NoError(t, err)
	assert.NotContains(t, string(other), `\includegraphics`)
}

func TestBookSaveWithoutParts(t *testing.T) {
	dir := t.TempDir()
	book, err := NewBook(dir, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.NoError(t, book.Save())

	doc, err := os.ReadFile(filepath.Join(dir, "main.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "no data")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `R\&D 100\% \#1`, escape(" R&D 100% #1 "))
}

func TestFacultyPlotScript(t *testing.T) {
	fx := newFixture()
	script := FacultyPlotScript(fx.faculties["101010"], fx.students[:2])

	assert.Contains(t, script, "set output '101010.eps'")
	assert.Contains(t, script, "set xrange [0:3]")
	assert.Contains(t, script, "$P1 << EOD\n1 60 70 80\n2 50 NaN 20\nEOD\n")
	assert.Contains(t, script, `plot $P3 using 1:2 with linespoints title "ქართული" lc rgb "pink", `)
	assert.Contains(t, script, `'' using 1:4 with linespoints title "მათემატიკა" lc rgb "green"`)
	assert.Contains(t, script, "$OVERALL << EOD\n1 1600\n2 1400\nEOD\n")
	assert.True(t, strings.HasSuffix(script, "unset multiplot\n"))
}

func TestPlotFacultiesSkipsSingleStudentFaculties(t *testing.T) {
	fx := newFixture()
	dir := t.TempDir()

	graphs, err := PlotFaculties(context.Background(), dir, processing.GroupByFaculty(fx.students), fx.faculties,
		PlotOptions{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"101010": true}, graphs)
	assert.FileExists(t, filepath.Join(dir, "101010.gp"))
	assert.NoFileExists(t, filepath.Join(dir, "101020.gp"))
}

func TestPlotFacultiesUnknownFaculty(t *testing.T) {
	fx := newFixture()
	delete(fx.faculties, "101010")

	_, err := PlotFaculties(context.Background(), t.TempDir(), processing.GroupByFaculty(fx.students), fx.faculties,
		PlotOptions{Workers: 1})
	assert.ErrorIs(t, err, ErrUnknownFaculty)
}

func TestWriteWorkbook(t *testing.T) {
	fx := newFixture()
	path := filepath.Join(t.TempDir(), "ranking.xlsx")

	require.NoError(t, WriteWorkbook(path, fx.students, processing.GroupByFaculty(fx.students), fx.schools, fx.faculties))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "ადგილი", rows[0][0])
	assert.Equal(t, "ქართული", rows[0][2])
	assert.Equal(t, []string{"1", "a", "60", "70"}, rows[1][:4])
	assert.Equal(t, "80", rows[1][10])
	assert.Equal(t, "1600", rows[1][11])
	assert.Equal(t, "Tbilisi State University", rows[1][12])
	assert.Equal(t, "100", rows[1][14])

	rows, err = f.GetRows(FacultiesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"101010", "Mathematics", "Tbilisi State University", "2", "1600", "1400"}, rows[1])
}

func TestPrintSummary(t *testing.T) {
	fx := newFixture()
	stats := importer.ParseStats{
		TotalLines: 12,
		Rows:       map[importer.RowKind]int{importer.RowStudent: 3, importer.RowSchool: 1},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, stats, processing.SubjectSummaries(fx.students), processing.GroupByFaculty(fx.students))

	out := buf.String()
	assert.Contains(t, out, "Publication")
	assert.Contains(t, out, "student")
	assert.Contains(t, out, "math")
	assert.Contains(t, out, "101010")
	assert.Contains(t, out, "1600")
}
