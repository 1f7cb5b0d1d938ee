package model

import "fmt"

// Column is one column of the memorial report, in output order.
type Column int

const (
	ColumnCemetery Column = iota
	ColumnSurname
	ColumnName
	ColumnMemorial
	ColumnBirthDate
	ColumnBirthLocation
	ColumnDeathDate
	ColumnDeathLocation
	ColumnParentsSurname
	ColumnParents
	ColumnFather
	ColumnMother
	ColumnSpouses
	ColumnChildren
	ColumnSiblings
	ColumnHalfSiblings
	ColumnVeteran
	ColumnCenotaph
	ColumnPlot
	ColumnBio
	ColumnMap
	ColumnLatitude
	ColumnLongitude
	ColumnInscription
	ColumnGravesiteDetails
)

// ColumnCount is the number of report columns. Tables indexed by Column
// are declared as [ColumnCount] arrays.
const ColumnCount = int(ColumnGravesiteDetails) + 1

// columnHeaders are the header row labels, indexed by Column.
var columnHeaders = [ColumnCount]string{
	ColumnCemetery:         "Cemetery ID",
	ColumnSurname:          "Surname",
	ColumnName:             "Name",
	ColumnMemorial:         "Memorial ID",
	ColumnBirthDate:        "Birth Date",
	ColumnBirthLocation:    "Birth Location",
	ColumnDeathDate:        "Death Date",
	ColumnDeathLocation:    "Death Location",
	ColumnParentsSurname:   "Parents' Surname",
	ColumnParents:          "Parents",
	ColumnFather:           "Father",
	ColumnMother:           "Mother",
	ColumnSpouses:          "Spouses",
	ColumnChildren:         "Children",
	ColumnSiblings:         "Siblings",
	ColumnHalfSiblings:     "Half-siblings",
	ColumnVeteran:          "Veteran",
	ColumnCenotaph:         "Cenotaph",
	ColumnPlot:             "Plot",
	ColumnBio:              "Bio",
	ColumnMap:              "Map",
	ColumnLatitude:         "Latitude",
	ColumnLongitude:        "Longitude",
	ColumnInscription:      "Inscription",
	ColumnGravesiteDetails: "Gravesite Details",
}

// Columns returns every column in output order.
func Columns() []Column {
	cols := make([]Column, ColumnCount)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}

// Valid reports whether c is a declared column.
func (c Column) Valid() bool {
	return c >= ColumnCemetery && c <= ColumnGravesiteDetails
}

// Header returns the header label of the column.
func (c Column) Header() string {
	if !c.Valid() {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnHeaders[c]
}

// String implements fmt.Stringer.
func (c Column) String() string {
	return c.Header()
}

// Header returns the header row of the report.
func Header() []string {
	out := make([]string, ColumnCount)
	copy(out, columnHeaders[:])
	return out
}

// FamilyColumn returns the column that lists members of a family relation.
// ok is false for Burial.
func FamilyColumn(kind RelationKind) (c Column, ok bool) {
	switch kind {
	case Parent:
		return ColumnParents, true
	case Spouse:
		return ColumnSpouses, true
	case Child:
		return ColumnChildren, true
	case Sibling:
		return ColumnSiblings, true
	case HalfSibling:
		return ColumnHalfSiblings, true
	case Burial:
		return 0, false
	}
	return 0, false
}

// Row is one extracted report row.
type Row struct {
	// Memorial identifies the page the row was extracted from.
	Memorial MemorialRef

	// Cells holds one value per column.
	Cells [ColumnCount]Cell
}

// Strings returns the plain rendering of every cell.
func (r Row) Strings() []string {
	out := make([]string, ColumnCount)
	for i, c := range r.Cells {
		out[i] = c.String()
	}
	return out
}
