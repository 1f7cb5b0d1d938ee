package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/gravestash/internal/model"
)

// defaultSheet is the worksheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// columnWidth is the width given to every report column.
const columnWidth = 24

// XLSXWriter writes the workbook as an .xlsx spreadsheet: one worksheet per
// sheet, a bold frozen header row, hyperlink cells for links and rich text
// cells for names with a bold surname.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the spreadsheet.
func (w *XLSXWriter) Write(wb *Workbook) (int, error) {
	if len(wb.Sheets) == 0 {
		return 0, ErrEmptyWorkbook
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newXLSXStyles(f)
	if err != nil {
		return 0, err
	}

	for i, sheet := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return 0, fmt.Errorf("failed to name worksheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return 0, fmt.Errorf("failed to add worksheet %q: %w", sheet.Name, err)
		}
		if err := writeXLSXSheet(f, sheet, styles); err != nil {
			return 0, fmt.Errorf("worksheet %q: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)

	n, err := f.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return int(n), nil
}

type xlsxStyles struct {
	header int
	body   int
	link   int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}

	s.body, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create body style: %w", err)
	}

	s.link, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "0563C1", Underline: "single"},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create link style: %w", err)
	}
	return s, nil
}

func writeXLSXSheet(f *excelize.File, sheet *Sheet, styles xlsxStyles) error {
	name := sheet.Name
	if err := writeXLSXHeader(f, name, sheet.Header, styles); err != nil {
		return err
	}

	for r, row := range sheet.Rows {
		if err := writeXLSXRow(f, name, r+2, row.Cells[:], styles); err != nil {
			return err
		}
	}
	return freezeXLSXHeader(f, name)
}

// writeXLSXHeader writes the bold header row and sets the column widths.
func writeXLSXHeader(f *excelize.File, name string, header []string, styles xlsxStyles) error {
	if len(header) == 0 {
		return nil
	}
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(name, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, styles.header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(name, "A", lastCol, columnWidth)
}

// writeXLSXRow writes cells into spreadsheet row rowNum (1-based).
func writeXLSXRow(f *excelize.File, name string, rowNum int, cells []model.Cell, styles xlsxStyles) error {
	for c, cell := range cells {
		ref, err := excelize.CoordinatesToCellName(c+1, rowNum)
		if err != nil {
			return err
		}
		if err := writeXLSXCell(f, name, ref, cell, styles); err != nil {
			return fmt.Errorf("cell %s: %w", ref, err)
		}
	}
	return nil
}

func freezeXLSXHeader(f *excelize.File, name string) error {
	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeXLSXCell(f *excelize.File, sheet, ref string, cell model.Cell, styles xlsxStyles) error {
	switch cell.Kind {
	case model.CellLink:
		if err := f.SetCellStr(sheet, ref, cell.Text); err != nil {
			return err
		}
		if err := f.SetCellHyperLink(sheet, ref, cell.URL, "External"); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, ref, ref, styles.link)
	case model.CellRich:
		runs := make([]excelize.RichTextRun, len(cell.Runs))
		for i, r := range cell.Runs {
			runs[i] = excelize.RichTextRun{Text: r.Text}
			if r.Bold {
				runs[i].Font = &excelize.Font{Bold: true}
			}
		}
		if err := f.SetCellRichText(sheet, ref, runs); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, ref, ref, styles.body)
	default:
		if cell.Text == "" {
			return nil
		}
		if err := f.SetCellStr(sheet, ref, cell.Text); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, ref, ref, styles.body)
	}
}
