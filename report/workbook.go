package report

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nonsonwune/admissions/models"
	"github.com/nonsonwune/admissions/processing"
)

const (
	RankingSheet   = "Ranking"
	FacultiesSheet = "Faculties"
)

// WriteWorkbook saves the ranked list and a per-faculty overview as an XLSX
// file. Score cells hold the equalized value when known, else the raw one.
func WriteWorkbook(
	path string,
	students []models.StudentData,
	buckets []processing.FacultyBucket,
	schools map[string]models.School,
	faculties map[string]models.Faculty,
) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RankingSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(FacultiesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := []interface{}{placeLabel, numberLabel}
	subjects := displayOrder()
	for _, subject := range subjects {
		header = append(header, subject.String())
	}
	header = append(header, overallLabel, "სკოლა", facultyLabel, grantLabel)
	if err := setRow(f, RankingSheet, 1, header); err != nil {
		return err
	}

	for i, s := range students {
		school, faculty, err := lookup(s, schools, faculties)
		if err != nil {
			return err
		}
		row := []interface{}{s.Placement, s.ID}
		for _, subject := range subjects {
			if score, ok := s.Scores[subject]; ok {
				row = append(row, score.Value())
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, overallCell(s.OverallScore), school.Name, faculty.Name, s.Grant.String())
		if err := setRow(f, RankingSheet, i+2, row); err != nil {
			return err
		}
	}

	facultyHeader := []interface{}{"ID", facultyLabel, "სკოლა", "რაოდენობა", "მაქსიმუმი", "მინიმუმი"}
	if err := setRow(f, FacultiesSheet, 1, facultyHeader); err != nil {
		return err
	}
	for i, bucket := range buckets {
		faculty, ok := faculties[bucket.FacultyID]
		if !ok {
			return fmt.Errorf("%w %s", ErrUnknownFaculty, bucket.FacultyID)
		}
		var schoolName string
		if school, ok := schools[faculty.SchoolID()]; ok {
			schoolName = school.Name
		}
		row := []interface{}{faculty.ID, faculty.Name, schoolName, len(bucket.Students), nil, nil}
		if n := len(bucket.Students); n > 0 {
			row[4] = overallCell(bucket.Students[0].OverallScore)
			row[5] = overallCell(bucket.Students[n-1].OverallScore)
		}
		if err := setRow(f, FacultiesSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := styleHeaders(f, len(header), len(facultyHeader)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeaders(f *excelize.File, rankingCols, facultyCols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	for sheet, cols := range map[string]int{RankingSheet: rankingCols, FacultiesSheet: facultyCols} {
		last, err := excelize.CoordinatesToCellName(cols, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	return nil
}

// overallCell keeps the overall score numeric when it parses.
func overallCell(overall string) interface{} {
	if v, err := strconv.ParseFloat(overall, 64); err == nil {
		return v
	}
	return overall
}

// displayOrder is the canonical subject order reversed, as in the CSV list.
func displayOrder() []models.Subject {
	out := make([]models.Subject, 0, models.SubjectCount)
	for i := models.SubjectCount - 1; i >= 0; i-- {
		out = append(out, models.AllSubjects[i])
	}
	return out
}
