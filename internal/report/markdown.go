package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/gravestash/internal/database"
	"github.com/nao1215/gravestash/internal/model"
)

// MarkdownWriter outputs a summary of the workbook in Markdown: sheets and
// row counts, how often each column was filled and, when ledger statistics
// are given, what the crawl stored.
type MarkdownWriter struct {
	baseWriter

	stats []database.CemeteryStats
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithLedgerStats adds a crawl ledger section to the summary.
func WithLedgerStats(stats []database.CemeteryStats) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.stats = stats
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary.
func (w *MarkdownWriter) Write(wb *Workbook) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, wb)
	w.writeSheets(md, wb)
	w.writeFillRates(md, wb)
	w.writeLedger(md)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, wb *Workbook) {
	md.H1("Gravestash Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Created", wb.Created.Format("2006-01-02 15:04:05 MST")},
			{"Sheets", strconv.Itoa(len(wb.Sheets))},
			{"Memorials", strconv.Itoa(wb.RowCount())},
		},
	})
	md.PlainText("")

	if wb.RowCount() == 0 {
		md.Warning("No memorials were extracted. Run the stash command for these cemeteries first.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSheets(md *markdown.Markdown, wb *Workbook) {
	md.H2("Sheets")
	md.PlainText("")

	if len(wb.Sheets) == 0 {
		md.PlainText("No sheets.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		rows[i] = []string{s.Name, "`" + s.CemeteryID + "`", strconv.Itoa(len(s.Rows))}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Sheet", "Cemetery", "Memorials"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(wb.Sheets) > 1 && wb.RowCount() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Memorials per Sheet"),
			piechart.WithShowData(true),
		)
		for _, s := range wb.Sheets {
			if len(s.Rows) > 0 {
				chart.LabelAndIntValue(s.Name, uint64(len(s.Rows)))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFillRates(md *markdown.Markdown, wb *Workbook) {
	if wb.RowCount() == 0 {
		return
	}

	md.H2("Column Fill Rates")
	md.PlainText("")

	header := []string{"Column"}
	for _, s := range wb.Sheets {
		header = append(header, s.Name)
	}

	rows := make([][]string, 0, model.ColumnCount)
	for _, c := range model.Columns() {
		row := []string{c.Header()}
		for _, s := range wb.Sheets {
			row = append(row, formatPercent(s.FillRate(c)))
		}
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeLedger(md *markdown.Markdown) {
	if len(w.stats) == 0 {
		return
	}

	md.H2("Crawl Ledger")
	md.PlainText("")

	rows := make([][]string, len(w.stats))
	for i, s := range w.stats {
		rows[i] = []string{
			"`" + s.CemeteryID + "`",
			strconv.Itoa(s.Burials),
			strconv.Itoa(s.FamilyPages),
			strconv.Itoa(s.Relations),
			FormatBytes(s.Bytes),
			s.LastStored.Format("2006-01-02 15:04:05"),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Cemetery", "Burial Pages", "Family Pages", "Relations", "Size", "Last Stored"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by gravestash*")
}

func formatPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 0, 64) + "%"
}

// FormatBytes renders n with a binary unit, e.g. "1.5 KiB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
