package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/gitspark/internal/contract"
	"github.com/huangsam/gitspark/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"
)

// section is one titled table of a rendered view.
type section struct {
	Title  string
	Header []string
	Rows   [][]string
}

// keyValue builds a two-column section from ordered pairs.
func keyValue(title string, pairs ...[2]string) section {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	return section{Title: title, Header: []string{"Metric", "Value"}, Rows: rows}
}

// formatter carries the display settings shared by every section builder.
type formatter struct {
	precision int
	colored   bool
	pathWidth int // 0 disables truncation
}

func newFormatter(cfg *contract.Config, colored bool, pathWidth int) formatter {
	precision := cfg.Precision
	if precision <= 0 {
		precision = contract.DefaultPrecision
	}
	return formatter{precision: precision, colored: colored && cfg.UseColors, pathWidth: pathWidth}
}

func (f formatter) float(v float64) string {
	return fmt.Sprintf("%.*f", f.precision, v)
}

func (f formatter) score(v float64) string {
	return fmt.Sprintf("%.*f", f.precision+1, v)
}

// pct renders a 0-1 ratio as a percentage.
func (f formatter) pct(v float64) string {
	return fmt.Sprintf("%.*f%%", f.precision, v*100)
}

func (f formatter) int(v int) string {
	return fmt.Sprintf("%d", v)
}

func (f formatter) label(score float64) string {
	if f.colored {
		return contract.GetColorLabel(score)
	}
	return schema.GetPlainLabel(score)
}

func (f formatter) activity(rating schema.ActivityRating) string {
	if f.colored {
		return contract.GetActivityColorLabel(rating)
	}
	return string(rating)
}

func (f formatter) path(p string) string {
	if f.pathWidth <= 0 {
		return p
	}
	return contract.TruncatePath(p, f.pathWidth)
}

func (f formatter) date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(schema.DateLayout)
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeYAML emits data as block-style YAML keyed by the JSON field names.
// The JSON encoding is parsed back as a YAML node tree so key order and names match the JSON output.
func writeYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	clearStyle(&doc)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// clearStyle drops the flow and quoting styles inherited from the JSON source.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		clearStyle(child)
	}
}

// writeCSVSections writes every section as one CSV stream with a leading section column.
func writeCSVSections(w io.Writer, sections []section) error {
	csvWriter := csv.NewWriter(w)
	for i, s := range sections {
		if i > 0 {
			if err := csvWriter.Write(nil); err != nil {
				return fmt.Errorf("failed to write CSV separator: %w", err)
			}
		}
		if err := csvWriter.Write(append([]string{"section"}, s.Header...)); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		key := sectionKey(s.Title)
		for _, row := range s.Rows {
			if err := csvWriter.Write(append([]string{key}, row...)); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// sectionKey turns a section title into a snake_case identifier.
func sectionKey(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	return strings.Join(fields, "_")
}

// renderTable writes one section through tablewriter with the given renderer (nil for the default box style).
func renderTable(w io.Writer, s section, r tw.Renderer) error {
	opts := []tablewriter.Option{tablewriter.WithHeaderAutoFormat(tw.Off)}
	if r != nil {
		opts = append(opts, tablewriter.WithRenderer(r))
	}
	table := tablewriter.NewTable(w, opts...)
	table.Header(s.Header)
	if err := table.Bulk(s.Rows); err != nil {
		return err
	}
	return table.Render()
}

// writeTextSections renders the human-readable tables.
func writeTextSections(w io.Writer, sections []section) error {
	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
		if err := renderTable(w, s, nil); err != nil {
			return err
		}
	}
	return nil
}

// writeMarkdownSections renders each section as a heading plus a pipe table.
func writeMarkdownSections(w io.Writer, title string, sections []section) error {
	if _, err := fmt.Fprintf(w, "# %s\n", title); err != nil {
		return err
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "\n## %s\n\n", s.Title); err != nil {
			return err
		}
		if err := renderTable(w, s, renderer.NewMarkdown()); err != nil {
			return err
		}
	}
	return nil
}

const htmlStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin-bottom:1.5rem}
th,td{border:1px solid #ccc;padding:.3rem .6rem;text-align:right}
th{background:#f3f3f3}
td:first-child,th:first-child{text-align:left}`

// writeHTMLSections renders a standalone HTML page with one table per section.
func writeHTMLSections(w io.Writer, title string, sections []section) error {
	escaped := html.EscapeString(title)
	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n<h1>%s</h1>\n", escaped, htmlStyle, escaped); err != nil {
		return err
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n", html.EscapeString(s.Title)); err != nil {
			return err
		}
		if err := renderTable(w, s, renderer.NewHTML(renderer.HTMLConfig{EscapeContent: true, TableClass: sectionKey(s.Title)})); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "</body>\n</html>")
	return err
}
