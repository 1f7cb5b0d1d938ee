package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/nao1215/gravestash/internal/model"
)

// csvRow is the CSV rendering of a report row. The tags are the column
// headers, in column order.
type csvRow struct {
	Cemetery         string `csv:"Cemetery ID"`
	Surname          string `csv:"Surname"`
	Name             string `csv:"Name"`
	Memorial         string `csv:"Memorial ID"`
	BirthDate        string `csv:"Birth Date"`
	BirthLocation    string `csv:"Birth Location"`
	DeathDate        string `csv:"Death Date"`
	DeathLocation    string `csv:"Death Location"`
	ParentsSurname   string `csv:"Parents' Surname"`
	Parents          string `csv:"Parents"`
	Father           string `csv:"Father"`
	Mother           string `csv:"Mother"`
	Spouses          string `csv:"Spouses"`
	Children         string `csv:"Children"`
	Siblings         string `csv:"Siblings"`
	HalfSiblings     string `csv:"Half-siblings"`
	Veteran          string `csv:"Veteran"`
	Cenotaph         string `csv:"Cenotaph"`
	Plot             string `csv:"Plot"`
	Bio              string `csv:"Bio"`
	Map              string `csv:"Map"`
	Latitude         string `csv:"Latitude"`
	Longitude        string `csv:"Longitude"`
	Inscription      string `csv:"Inscription"`
	GravesiteDetails string `csv:"Gravesite Details"`
}

// newCSVRow renders r. Links are written as their target so the file
// stays useful without hyperlink support.
func newCSVRow(r model.Row) csvRow {
	v := func(c model.Column) string {
		cell := r.Cells[c]
		if cell.Kind == model.CellLink {
			return cell.URL
		}
		return cell.String()
	}
	return csvRow{
		Cemetery:         v(model.ColumnCemetery),
		Surname:          v(model.ColumnSurname),
		Name:             v(model.ColumnName),
		Memorial:         v(model.ColumnMemorial),
		BirthDate:        v(model.ColumnBirthDate),
		BirthLocation:    v(model.ColumnBirthLocation),
		DeathDate:        v(model.ColumnDeathDate),
		DeathLocation:    v(model.ColumnDeathLocation),
		ParentsSurname:   v(model.ColumnParentsSurname),
		Parents:          v(model.ColumnParents),
		Father:           v(model.ColumnFather),
		Mother:           v(model.ColumnMother),
		Spouses:          v(model.ColumnSpouses),
		Children:         v(model.ColumnChildren),
		Siblings:         v(model.ColumnSiblings),
		HalfSiblings:     v(model.ColumnHalfSiblings),
		Veteran:          v(model.ColumnVeteran),
		Cenotaph:         v(model.ColumnCenotaph),
		Plot:             v(model.ColumnPlot),
		Bio:              v(model.ColumnBio),
		Map:              v(model.ColumnMap),
		Latitude:         v(model.ColumnLatitude),
		Longitude:        v(model.ColumnLongitude),
		Inscription:      v(model.ColumnInscription),
		GravesiteDetails: v(model.ColumnGravesiteDetails),
	}
}

// CSVWriter writes one CSV file per sheet into a directory, named after
// the sheet.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a CSVWriter writing into dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Path returns the file a sheet is written to.
func (w *CSVWriter) Path(sheet *Sheet) string {
	return filepath.Join(w.dir, sheet.Name+".csv")
}

// Write outputs every sheet.
func (w *CSVWriter) Write(wb *Workbook) (int, error) {
	if len(wb.Sheets) == 0 {
		return 0, ErrEmptyWorkbook
	}
	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return 0, fmt.Errorf("failed to create CSV directory: %w", err)
	}

	total := 0
	for _, sheet := range wb.Sheets {
		n, err := w.writeSheet(sheet)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (w *CSVWriter) writeSheet(sheet *Sheet) (int, error) {
	rows := make([]csvRow, len(sheet.Rows))
	for i, r := range sheet.Rows {
		rows[i] = newCSVRow(r)
	}

	file, err := os.Create(w.Path(sheet))
	if err != nil {
		return 0, fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	cw := &countingWriter{w: file}
	if err := gocsv.Marshal(&rows, cw); err != nil {
		return cw.n, fmt.Errorf("failed to write CSV for sheet %s: %w", sheet.Name, err)
	}
	return cw.n, file.Close()
}
