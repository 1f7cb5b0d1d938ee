package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/gravestash/internal/model"
)

// SimpleWriter outputs a plain text summary of the workbook for the
// terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the per-column fill rates of every sheet.
	verbose bool

	// outputs lists the files the report was written to.
	outputs []string
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose adds column fill rates to the summary.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithOutputs lists the written files at the end of the summary.
func WithOutputs(paths ...string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.outputs = append(w.outputs, paths...)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(wb *Workbook) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, wb)
	for _, s := range wb.Sheets {
		w.writeSheet(&sb, s)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, wb *Workbook) {
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("GRAVESTASH REPORT\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Created:   %s\n", wb.Created.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Sheets:    %d\n", len(wb.Sheets))
	fmt.Fprintf(sb, "Memorials: %d\n\n", wb.RowCount())
}

func (w *SimpleWriter) writeSheet(sb *strings.Builder, s *Sheet) {
	fmt.Fprintf(sb, "[%s] cemetery %s: %d memorials\n", s.Name, s.CemeteryID, len(s.Rows))
	if !w.verbose || len(s.Rows) == 0 {
		return
	}
	for _, c := range model.Columns() {
		fmt.Fprintf(sb, "    %-18s %5s\n", c.Header(), formatPercent(s.FillRate(c)))
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	if len(w.outputs) > 0 {
		sb.WriteString("\nWritten:\n")
		for _, p := range w.outputs {
			fmt.Fprintf(sb, "  %s\n", p)
		}
	}
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
}
