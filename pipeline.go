package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nonsonwune/admissions/config"
	"github.com/nonsonwune/admissions/importer"
	"github.com/nonsonwune/admissions/models"
	"github.com/nonsonwune/admissions/processing"
	"github.com/nonsonwune/admissions/report"
	"github.com/nonsonwune/admissions/store"
)

// pipelineResult is a parsed, normalized and ranked publication.
type pipelineResult struct {
	publication *importer.Publication
	schools     map[string]models.School
	students    []models.StudentData
	buckets     []processing.FacultyBucket
	summaries   []processing.SubjectSummary
}

func runPipeline(ctx context.Context, opts cliOptions, cfg *config.Config, logger *slog.Logger) (*pipelineResult, error) {
	tsvPath := opts.input
	if strings.EqualFold(filepath.Ext(opts.input), ".pdf") {
		tsv, err := os.CreateTemp("", "publication-*.tsv")
		if err != nil {
			return nil, fmt.Errorf("failed to create extraction file: %w", err)
		}
		tsv.Close()
		tsvPath = tsv.Name()
		defer os.Remove(tsvPath)

		extractor := importer.NewExtractor(cfg.Render.Tabula, logger)
		if err := extractor.Extract(ctx, opts.input, tsvPath); err != nil {
			return nil, err
		}
	}

	pub, err := importer.ReadPublicationFile(tsvPath)
	if err != nil {
		return nil, err
	}
	logger.Info("publication parsed",
		slog.Int("lines", pub.Stats.TotalLines),
		slog.Int("students", len(pub.Students)),
		slog.Int("schools", len(pub.Schools)),
		slog.Int("faculties", len(pub.Faculties)))

	cal, err := importer.ReadCalibrationFile(opts.calibration)
	if err != nil {
		return nil, err
	}
	logger.Debug("calibration loaded", slog.Int("subjects", len(cal)))

	normalized, err := processing.Normalize(pub.Students, cal)
	if err != nil {
		return nil, err
	}

	ranked, err := processing.Rank(normalized)
	if err != nil {
		return nil, err
	}

	schools := pub.Schools
	if opts.shortenNames {
		names, err := importer.ReadShortNamesFile(opts.shortNames)
		if err != nil {
			return nil, err
		}
		schools = importer.ApplyShortNames(schools, names)
		logger.Debug("school short names applied", slog.Int("names", len(names)))
	}

	result := &pipelineResult{
		publication: pub,
		schools:     schools,
		students:    ranked,
		buckets:     processing.GroupByFaculty(ranked),
		summaries:   processing.SubjectSummaries(ranked),
	}
	logger.Info("students ranked",
		slog.Int("students", len(ranked)),
		slog.Int("subjects", len(result.summaries)))

	return result, nil
}

func writeOutputs(ctx context.Context, opts cliOptions, cfg *config.Config, logger *slog.Logger, r *pipelineResult) error {
	faculties := r.publication.Faculties

	if opts.csvPath != "" {
		if err := writeCSV(opts.csvPath, r.students, r.schools, faculties); err != nil {
			return err
		}
		logger.Info("ranked list written", slog.String("path", opts.csvPath))
	}

	if opts.xlsxPath != "" {
		if err := report.WriteWorkbook(opts.xlsxPath, r.students, r.buckets, r.schools, faculties); err != nil {
			return err
		}
		logger.Info("workbook written", slog.String("path", opts.xlsxPath))
	}

	if opts.topList || opts.faculties {
		if err := writeBook(ctx, opts, cfg, logger, r); err != nil {
			return err
		}
	}

	if opts.summary {
		report.PrintSummary(os.Stdout, r.publication.Stats, r.summaries, r.buckets)
	}

	if opts.store {
		s, err := store.Open(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.SaveRun(ctx, store.Run{
			Source:    opts.input,
			Students:  r.students,
			Schools:   r.schools,
			Faculties: faculties,
			Summaries: r.summaries,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "stored run %s\n", id)
	}

	return nil
}

func writeCSV(path string, students []models.StudentData, schools map[string]models.School, faculties map[string]models.Faculty) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return report.WriteRankedCSV(w, students, schools, faculties)
}

func writeBook(ctx context.Context, opts cliOptions, cfg *config.Config, logger *slog.Logger, r *pipelineResult) error {
	output := report.OutputName(opts.input, report.Options{
		TopList:      opts.topList,
		Faculties:    opts.faculties,
		Graphs:       opts.graphs,
		ShortenNames: opts.shortenNames,
	})

	book, err := report.NewBook(opts.workDir, output)
	if err != nil {
		return err
	}

	faculties := r.publication.Faculties
	if opts.topList {
		if err := book.WriteTopList(r.students, r.schools, faculties); err != nil {
			return err
		}
	}

	if opts.faculties {
		if opts.graphs {
			graphs, err := report.PlotFaculties(ctx, filepath.Join(book.Dir(), "chapters"), r.buckets, faculties,
				report.PlotOptions{Workers: cfg.Render.Workers, Gnuplot: cfg.Render.Gnuplot, Logger: logger})
			if err != nil {
				return err
			}
			book.SetGraphs(graphs)
		}
		if err := book.WriteFaculties(r.buckets, r.schools, faculties); err != nil {
			return err
		}
	}

	if err := book.Save(); err != nil {
		return err
	}
	logger.Info("book sources written", slog.String("dir", book.Dir()))

	if !opts.compile {
		return nil
	}

	pdf, err := book.Compile(ctx, cfg.Render.Xelatex)
	if err != nil {
		return err
	}
	logger.Info("book compiled", slog.String("path", pdf))

	return nil
}
