package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/gravestash/internal/model"
)

// MaxSheetNameLength is the longest worksheet name spreadsheet
// applications accept.
const MaxSheetNameLength = 31

// Workbook is the extracted report: one sheet per cemetery.
type Workbook struct {
	// Created is when the workbook was built.
	Created time.Time

	// Sheets are in instruction-file order.
	Sheets []*Sheet
}

// NewWorkbook returns an empty workbook stamped with created.
func NewWorkbook(created time.Time) *Workbook {
	return &Workbook{Created: created}
}

// AddSheet appends a sheet for the cemetery. The name is sanitized and made
// unique within the workbook.
func (wb *Workbook) AddSheet(name, cemeteryID string) *Sheet {
	base := SheetName(name)
	if base == "" {
		base = SheetName(cemeteryID)
	}
	unique := base
	for n := 2; wb.hasSheet(unique); n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		unique = truncateRunes(base, MaxSheetNameLength-len(suffix)) + suffix
	}

	s := &Sheet{
		Name:       unique,
		CemeteryID: cemeteryID,
		Header:     model.Header(),
	}
	wb.Sheets = append(wb.Sheets, s)
	return s
}

func (wb *Workbook) hasSheet(name string) bool {
	for _, s := range wb.Sheets {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// RowCount returns the number of data rows across all sheets.
func (wb *Workbook) RowCount() int {
	n := 0
	for _, s := range wb.Sheets {
		n += len(s.Rows)
	}
	return n
}

// Sheet is the report of one cemetery.
type Sheet struct {
	// Name is the worksheet name.
	Name string

	// CemeteryID is the cemetery the rows were extracted for.
	CemeteryID string

	// Header is the column header row.
	Header []string

	// Rows are in burial list order.
	Rows []model.Row
}

// FillRate returns the share of rows with a non-empty value in column c,
// between 0 and 1. An empty sheet has a fill rate of 0.
func (s *Sheet) FillRate(c model.Column) float64 {
	if len(s.Rows) == 0 || !c.Valid() {
		return 0
	}
	filled := 0
	for _, r := range s.Rows {
		if !r.Cells[c].IsEmpty() {
			filled++
		}
	}
	return float64(filled) / float64(len(s.Rows))
}

// sheetNameReplacer drops the characters worksheet names may not contain.
var sheetNameReplacer = strings.NewReplacer(
	":", "", `\`, "", "/", "", "?", "", "*", "", "[", "", "]", "",
)

// SheetName makes name usable as a worksheet name: forbidden characters
// are removed, surrounding apostrophes and spaces are trimmed and the
// result is cut to MaxSheetNameLength characters.
func SheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	name = strings.Trim(name, "' ")
	return strings.TrimRight(truncateRunes(name, MaxSheetNameLength), "' ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
