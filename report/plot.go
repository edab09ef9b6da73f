package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nonsonwune/admissions/models"
	"github.com/nonsonwune/admissions/processing"
)

// PlotOptions controls PlotFaculties.
type PlotOptions struct {
	// Workers bounds the number of faculties rendered at once.
	Workers int
	// Gnuplot is the gnuplot executable. When empty only the scripts are
	// written.
	Gnuplot string
	Logger  *slog.Logger
}

// PlotFaculties writes <faculty>.gp for every faculty with more than one
// student into dir and, when a gnuplot executable is configured, renders it
// to <faculty>.eps. It returns the set of faculties that got a graph. The
// first failure cancels the remaining renders.
func PlotFaculties(
	ctx context.Context,
	dir string,
	buckets []processing.FacultyBucket,
	faculties map[string]models.Faculty,
	opts PlotOptions,
) (map[string]bool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	var plotted []processing.FacultyBucket
	graphs := make(map[string]bool)
	for _, bucket := range buckets {
		if len(bucket.Students) < 2 {
			continue
		}
		if _, ok := faculties[bucket.FacultyID]; !ok {
			return nil, fmt.Errorf("%w %s", ErrUnknownFaculty, bucket.FacultyID)
		}
		plotted = append(plotted, bucket)
		graphs[bucket.FacultyID] = true
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, bucket := range plotted {
		bucket := bucket // per-iteration copy (go directive is 1.21)
		faculty := faculties[bucket.FacultyID]
		g.Go(func() error {
			script := filepath.Join(dir, faculty.ID+".gp")
			if err := os.WriteFile(script, []byte(FacultyPlotScript(faculty, bucket.Students)), 0o644); err != nil {
				return fmt.Errorf("failed to write plot for faculty %s: %w", faculty.ID, err)
			}
			if opts.Gnuplot == "" {
				return nil
			}

			cmd := exec.CommandContext(ctx, opts.Gnuplot, faculty.ID+".gp")
			cmd.Dir = dir
			if out, err := cmd.CombinedOutput(); err != nil {
				return fmt.Errorf("gnuplot failed for faculty %s: %w: %s", faculty.ID, err, lastLines(out, 5))
			}
			logger.Debug("faculty plot rendered", "faculty", faculty.ID, "students", len(bucket.Students))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("faculty plots written", "count", len(graphs), "workers", workers)
	return graphs, nil
}

// FacultyPlotScript builds a self-contained gnuplot script: one panel per
// display subject with the students ordered by that subject's raw score, and
// a final panel with the overall score in ranked order.
func FacultyPlotScript(faculty models.Faculty, students []models.StudentData) string {
	subjects := faculty.DisplaySubjects()
	n := len(students)

	var sb strings.Builder
	sb.WriteString("set terminal postscript eps enhanced color size 6in,8in\n")
	fmt.Fprintf(&sb, "set output '%s.eps'\n", faculty.ID)
	sb.WriteString("set multiplot layout 3,2\n")
	fmt.Fprintf(&sb, "set xrange [0:%d]\n", n+1)

	for p, sortBy := range subjects {
		ordered := append([]models.StudentData(nil), students...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return sortKey(ordered[i], sortBy) > sortKey(ordered[j], sortBy)
		})

		block := fmt.Sprintf("$P%d", p+1)
		fmt.Fprintf(&sb, "%s << EOD\n", block)
		for i, s := range ordered {
			row := []string{strconv.Itoa(i + 1)}
			for _, subject := range subjects {
				row = append(row, plotValue(s, subject))
			}
			sb.WriteString(strings.Join(row, " "))
			sb.WriteByte('\n')
		}
		sb.WriteString("EOD\n")

		lines := make([]string, len(subjects))
		for c, subject := range subjects {
			source := "''"
			if c == 0 {
				source = block
			}
			lines[c] = fmt.Sprintf(`%s using 1:%d with linespoints title "%s" lc rgb "%s"`,
				source, c+2, subject.String(), subject.Color())
		}
		fmt.Fprintf(&sb, "plot %s\n", strings.Join(lines, ", "))
	}

	sb.WriteString("$OVERALL << EOD\n")
	for i, s := range students {
		overall, err := strconv.ParseFloat(s.OverallScore, 64)
		if err != nil {
			overall = math.NaN()
		}
		fmt.Fprintf(&sb, "%d %s\n", i+1, formatPlotFloat(overall))
	}
	sb.WriteString("EOD\n")
	fmt.Fprintf(&sb, "plot $OVERALL using 1:2 with linespoints title \"%s\" lc rgb \"black\"\n", overallLabel)
	sb.WriteString("unset multiplot\n")

	return sb.String()
}

func sortKey(s models.StudentData, subject models.Subject) float64 {
	score, ok := s.Scores[subject]
	if !ok {
		return math.Inf(-1)
	}
	if v, ok := score.ScaledValue(); ok {
		return v
	}
	return score.Equalized
}

func plotValue(s models.StudentData, subject models.Subject) string {
	score, ok := s.Scores[subject]
	if !ok {
		return "NaN"
	}
	return formatPlotFloat(score.Value())
}

func formatPlotFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
