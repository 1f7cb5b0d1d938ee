package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/gravestash/internal/model"
)

// WorklistSheet is the name of the single worksheet of a worklist.
const WorklistSheet = "Worklist"

// worklistHeader is the worklist column header, in column order.
var worklistHeader = []string{
	"Memorial Name", "Dates", "Plot", "Instructions", "#", "Search",
	"Full Name", "Raw Dates", "No Photo", "Photographer", "URL",
}

// WorklistWriter writes search work items as a one-sheet .xlsx spreadsheet
// with the same header and link styling as the report.
type WorklistWriter struct {
	baseWriter
}

// NewWorklistWriter creates a WorklistWriter that outputs to the given writer.
func NewWorklistWriter(output io.Writer) *WorklistWriter {
	return &WorklistWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the spreadsheet. An empty worklist still gets its header.
func (w *WorklistWriter) Write(items []model.WorkItem) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newXLSXStyles(f)
	if err != nil {
		return 0, err
	}
	if err := f.SetSheetName(defaultSheet, WorklistSheet); err != nil {
		return 0, fmt.Errorf("failed to name worksheet: %w", err)
	}
	if err := writeXLSXHeader(f, WorklistSheet, worklistHeader, styles); err != nil {
		return 0, err
	}
	for i, item := range items {
		if err := writeXLSXRow(f, WorklistSheet, i+2, worklistCells(item), styles); err != nil {
			return 0, fmt.Errorf("worklist row %d: %w", i+1, err)
		}
	}
	if err := freezeXLSXHeader(f, WorklistSheet); err != nil {
		return 0, err
	}

	n, err := f.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("failed to write worklist: %w", err)
	}
	return int(n), nil
}

// worklistCells renders item in worklistHeader order. The memorial id
// links to the memorial page.
func worklistCells(item model.WorkItem) []model.Cell {
	noPhoto := ""
	if item.NoPhoto {
		noPhoto = "Yes"
	}
	return []model.Cell{
		model.TextCell(item.SortName),
		model.TextCell(item.Dates),
		model.TextCell(item.Plot),
		model.TextCell(item.Instruction),
		model.LinkCell(item.URL, item.Ref.ID),
		model.TextCell(item.Search),
		model.TextCell(item.FullName),
		model.TextCell(item.RawDates),
		model.TextCell(noPhoto),
		model.TextCell(item.Photographer),
		model.TextCell(item.URL),
	}
}
