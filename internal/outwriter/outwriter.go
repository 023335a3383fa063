// Package outwriter has output and writer logic.
package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/internal/parquet"
	"github.com/huangsam/gitspark/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// view is one renderable projection of a report.
type view struct {
	title    string
	data     any                         // JSON and YAML payload
	sections func(f formatter) []section // Tabular formats
	report   *schema.AnalysisReport      // Parquet payload, nil when the view has no Parquet form
	width    int                         // Columns reserved next to paths in text tables
}

// WriteReport prints the full analysis report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(reportView(report), cfg, duration)
}

// WriteAuthors prints the per-author view using the configured output format.
func (ow *OutWriter) WriteAuthors(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(authorsView(report), cfg, duration)
}

// WriteFiles prints the hotspot view using the configured output format.
func (ow *OutWriter) WriteFiles(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(filesView(report), cfg, duration)
}

// WriteTeam prints the team score using the configured output format.
func (ow *OutWriter) WriteTeam(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(teamView(report), cfg, duration)
}

// WriteTrends prints the daily trends using the configured output format.
func (ow *OutWriter) WriteTrends(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(trendsView(report), cfg, duration)
}

// WriteGovernance prints the commit message governance result using the configured output format.
func (ow *OutWriter) WriteGovernance(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return render(governanceView(report), cfg, duration)
}

// WriteCheck prints the outcome of a risk gate using the configured output format.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return render(checkView(result), cfg, duration)
}

// render dispatches a view to the writer for cfg.Output.
func render(v view, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, v.data)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, v.data)
		}, "Wrote YAML")
	case schema.CSVOut:
		sections := v.sections(newFormatter(cfg, false, 0))
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVSections(w, sections)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		sections := v.sections(newFormatter(cfg, false, 0))
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMarkdownSections(w, v.title, sections)
		}, "Wrote Markdown")
	case schema.HTMLOut:
		sections := v.sections(newFormatter(cfg, false, 0))
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHTMLSections(w, v.title, sections)
		}, "Wrote HTML")
	case schema.ParquetOut:
		return writeParquet(v, cfg.OutputFile)
	default:
		sections := v.sections(newFormatter(cfg, true, GetMaxTablePathWidth(cfg, v.width)))
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeTextSections(w, sections); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "\nAnalysis completed in %v.\n", duration.Round(time.Millisecond))
			return err
		}, "Wrote table")
	}
}

// writeParquet exports the report tables behind a view.
func writeParquet(v view, prefix string) error {
	if v.report == nil {
		return errors.New("parquet output is only available for full reports")
	}
	paths, err := parquet.WriteReportParquet(v.report, prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", p)
	}
	return nil
}

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and the width reserved for the other columns.
func GetMaxTablePathWidth(cfg *contract.Config, fixedColumns int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	baseWidth := fixedColumns + 20

	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable path width
		return 15
	}
	if available > 70 {
		// Maximum path width to prevent overly long paths
		return 70
	}
	return available
}
