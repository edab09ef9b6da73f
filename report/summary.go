package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/admissions/importer"
	"github.com/nonsonwune/admissions/processing"
)

// PrintSummary prints parse counts, per-subject statistics and faculty sizes
// as terminal tables.
func PrintSummary(
	w io.Writer,
	stats importer.ParseStats,
	summaries []processing.SubjectSummary,
	buckets []processing.FacultyBucket,
) {
	heading := color.New(color.FgCyan, color.Bold)

	heading.Fprintln(w, "\nPublication")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Row Kind", "Count"})
	for _, kind := range []importer.RowKind{
		importer.RowSchool, importer.RowFaculty, importer.RowSubjects, importer.RowStudent, importer.RowIgnored,
	} {
		table.Append([]string{kind.String(), strconv.Itoa(stats.Rows[kind])})
	}
	table.SetFooter([]string{"Lines", strconv.Itoa(stats.TotalLines)})
	table.Render()

	heading.Fprintln(w, "\nSubjects")
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Subject", "Students", "Raw Min", "Raw Max", "Eq Min", "Eq Max", "Eq Avg"})
	for _, s := range summaries {
		table.Append([]string{
			s.Subject.Key(),
			strconv.Itoa(s.Count),
			fmt.Sprintf("%.2f", s.RawMin),
			fmt.Sprintf("%.2f", s.RawMax),
			fmt.Sprintf("%.2f", s.EqualizedMin),
			fmt.Sprintf("%.2f", s.EqualizedMax),
			fmt.Sprintf("%.2f", s.EqualizedAvg),
		})
	}
	table.Render()

	heading.Fprintln(w, "\nLargest Faculties")
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Faculty", "Students", "Best", "Last"})
	for _, b := range largest(buckets, 10) {
		best, last := b.Students[0].OverallScore, b.Students[len(b.Students)-1].OverallScore
		table.Append([]string{b.FacultyID, strconv.Itoa(len(b.Students)), best, last})
	}
	table.Render()
}

func largest(buckets []processing.FacultyBucket, n int) []processing.FacultyBucket {
	out := make([]processing.FacultyBucket, 0, len(buckets))
	for _, b := range buckets {
		if len(b.Students) > 0 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Students) > len(out[j].Students)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
