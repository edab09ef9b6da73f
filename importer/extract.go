package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// DefaultTabulaCommand runs the tabula-java jar found on the working
// directory.
var DefaultTabulaCommand = []string{"java", "-jar", "tabula.jar"}

// publicationArea is the page region holding the result tables, in percent
// of the page: top, left, bottom, right.
const publicationArea = "%4.2,6.5,97,100"

// Extractor turns a publication PDF into the tab-separated table the parser
// reads. The table extraction itself is done by tabula.
type Extractor struct {
	Command []string
	Logger  *slog.Logger
}

// NewExtractor returns an Extractor running command, or tabula-java when
// command is empty.
func NewExtractor(command []string, logger *slog.Logger) *Extractor {
	if len(command) == 0 {
		command = DefaultTabulaCommand
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Command: command, Logger: logger}
}

// Extract writes the cleaned TSV for the PDF at input to output.
func (e *Extractor) Extract(ctx context.Context, input, output string) error {
	e.Logger.Info("extracting publication table",
		slog.String("input", input),
		slog.String("output", output))

	args := append(append([]string(nil), e.Command[1:]...),
		"--stream",
		"--pages", "all",
		"--area", publicationArea,
		"--format", "TSV",
		"--outfile", output,
		input,
	)
	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tabula: %w: %s", err, strings.TrimSpace(string(out)))
	}

	raw, err := os.ReadFile(output)
	if err != nil {
		return fmt.Errorf("read extracted table: %w", err)
	}
	if err := os.WriteFile(output, []byte(CleanTSV(string(raw))), 0o644); err != nil {
		return fmt.Errorf("write cleaned table: %w", err)
	}

	e.Logger.Info("publication table extracted", slog.String("output", output))
	return nil
}

var tsvFixes = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`""`), ""},
	{regexp.MustCompile(`[ \t]+`), "\t"},
	{regexp.MustCompile(`\t+\n`), "\n"},
	{regexp.MustCompile(`\n\t+`), "\n"},
}

// CleanTSV normalizes the whitespace of tabula's output so that every run of
// blanks becomes a single tab and lines carry no leading or trailing tabs.
func CleanTSV(s string) string {
	for _, fix := range tsvFixes {
		s = fix.pattern.ReplaceAllString(s, fix.repl)
	}
	return s
}
