package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/admissions/store"
)

func displayTopStudents(ctx context.Context, s *store.Store, runID string) error {
	rows, err := s.TopStudents(ctx, runID, 20)
	if err != nil {
		return err
	}

	color.Yellow("\nTop 20 Students")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Exam ID", "Overall", "School", "Faculty", "Grant"})

	for _, r := range rows {
		table.Append([]string{
			strconv.Itoa(r.Placement),
			r.ExamID,
			r.OverallScore,
			r.School,
			r.Faculty,
			r.Grant,
		})
	}

	table.Render()
	return nil
}

func displayFacultyPerformance(ctx context.Context, s *store.Store, runID string) error {
	rows, err := s.FacultyPerformance(ctx, runID)
	if err != nil {
		return err
	}

	color.Yellow("\nFaculty Performance Analysis")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Faculty", "Name", "School", "Admitted", "Average Score", "Top Score"})

	for _, p := range rows {
		table.Append([]string{
			p.FacultyID,
			p.Name,
			p.School,
			fmt.Sprintf("%d", p.Students),
			fmt.Sprintf("%.2f", p.AvgOverall),
			fmt.Sprintf("%.2f", p.TopOverall),
		})
	}

	table.Render()
	return nil
}

func displaySchoolRanking(ctx context.Context, s *store.Store, runID string) error {
	rows, err := s.SchoolRanking(ctx, runID, 20)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"School", "Name", "Admitted", "With Grant", "Avg Score", "Grant Rate (%)"})

	for _, r := range rows {
		rate := 0.0
		if r.Students > 0 {
			rate = float64(r.Granted) / float64(r.Students) * 100
		}
		table.Append([]string{
			r.SchoolID,
			r.Name,
			strconv.Itoa(r.Students),
			strconv.Itoa(r.Granted),
			fmt.Sprintf("%.2f", r.AvgOverall),
			fmt.Sprintf("%.2f%%", rate),
		})
	}

	color.Cyan("\nTop 20 Schools by Average Score")
	table.Render()
	return nil
}
