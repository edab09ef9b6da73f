package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/nonsonwune/admissions/config"
	"github.com/nonsonwune/admissions/store"
)

// cliOptions mirrors the command line.
type cliOptions struct {
	input       string
	calibration string
	workDir     string

	topList      bool
	faculties    bool
	graphs       bool
	shortenNames bool
	shortNames   string
	compile      bool

	csvPath  string
	xlsxPath string
	summary  bool
	store    bool
	stats    bool

	configPath string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		printError(err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

// printError reports a fatal error in red on stderr.
func printError(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions

	fs := flag.NewFlagSet("admissions", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: admissions [flags] <publication.{pdf|tsv}> <calibration.csv> [work-dir]")
		fs.PrintDefaults()
	}

	fs.BoolVar(&opts.topList, "top-list", false, "include the list of all students by overall score")
	fs.BoolVar(&opts.faculties, "faculties", false, "include one chapter per faculty")
	fs.BoolVar(&opts.graphs, "graphs", false, "include per-faculty score graphs")
	fs.BoolVar(&opts.shortenNames, "shorten-names", false, "use school short names in the top list")
	fs.StringVar(&opts.shortNames, "short-names", "", "CSV of school_id,short_name pairs")
	fs.BoolVar(&opts.compile, "compile", false, "compile the book with xelatex")
	fs.StringVar(&opts.csvPath, "csv", "", "write the ranked list as CSV (- for stdout)")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "write the ranked list as an XLSX workbook")
	fs.BoolVar(&opts.summary, "summary", false, "print summary tables")
	fs.BoolVar(&opts.store, "store", false, "store the run in the configured database")
	fs.BoolVar(&opts.stats, "stats", false, "print tables for the latest stored run and exit")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.stats {
		return opts, nil
	}

	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		fs.Usage()
		return opts, fmt.Errorf("expected 2 or 3 arguments, got %d", len(rest))
	}
	opts.input, opts.calibration = rest[0], rest[1]
	if len(rest) == 3 {
		opts.workDir = rest[2]
	} else {
		opts.workDir = strings.TrimSuffix(opts.input, filepath.Ext(opts.input)) + "-work-directory"
	}

	if opts.shortNames != "" {
		opts.shortenNames = true
	}
	if opts.shortenNames && opts.shortNames == "" {
		return opts, errors.New("-shorten-names requires -short-names")
	}

	if !opts.topList && !opts.faculties && opts.xlsxPath == "" && !opts.summary && !opts.store && opts.csvPath == "" {
		opts.csvPath = "-"
	}

	return opts, nil
}

func run(ctx context.Context, opts cliOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger, closer, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	if opts.stats {
		return showStats(ctx, cfg, logger)
	}

	result, err := runPipeline(ctx, opts, cfg, logger)
	if err != nil {
		return err
	}

	return writeOutputs(ctx, opts, cfg, logger, result)
}

func showStats(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	s, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	runID, err := s.LatestRun(ctx)
	if err != nil {
		return err
	}

	color.Cyan("\n=== Stored run %s ===", runID)
	if err := displayTopStudents(ctx, s, runID); err != nil {
		return err
	}
	if err := displayFacultyPerformance(ctx, s, runID); err != nil {
		return err
	}
	return displaySchoolRanking(ctx, s, runID)
}
