package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/gravestash/internal/model"
)

// missingCemetery stands in for the home cemetery of a family member whose
// page is not in the stash.
const missingCemetery = "missing"

// unknownDate stands in for a family member's absent birth or death date.
const unknownDate = "unknown"

// columnFunc extracts one column from a page.
type columnFunc func(*pageState) model.Cell

// Extractor produces report cells from memorial pages.
type Extractor struct {
	run   *Run
	rules [model.ColumnCount]columnFunc
}

// NewExtractor returns an Extractor bound to run.
func NewExtractor(run *Run) *Extractor {
	e := &Extractor{run: run}
	e.rules = [model.ColumnCount]columnFunc{
		model.ColumnCemetery:         cemeteryCell,
		model.ColumnSurname:          surnameCell,
		model.ColumnName:             nameCell,
		model.ColumnMemorial:         memorialCell,
		model.ColumnBirthDate:        fieldCell(FieldBirthDate),
		model.ColumnBirthLocation:    fieldCell(FieldBirthLocation),
		model.ColumnDeathDate:        fieldCell(FieldDeathDate),
		model.ColumnDeathLocation:    fieldCell(FieldDeathLocation),
		model.ColumnParentsSurname:   parentsSurnameCell,
		model.ColumnParents:          familyCell(model.Parent),
		model.ColumnFather:           parentLinkCell(0),
		model.ColumnMother:           parentLinkCell(1),
		model.ColumnSpouses:          familyCell(model.Spouse),
		model.ColumnChildren:         familyCell(model.Child),
		model.ColumnSiblings:         familyCell(model.Sibling),
		model.ColumnHalfSiblings:     familyCell(model.HalfSibling),
		model.ColumnVeteran:          fieldCell(FieldVeteran),
		model.ColumnCenotaph:         fieldCell(FieldCenotaph),
		model.ColumnPlot:             fieldCell(FieldPlot),
		model.ColumnBio:              fieldCell(FieldBio),
		model.ColumnMap:              mapCell,
		model.ColumnLatitude:         latitudeCell,
		model.ColumnLongitude:        longitudeCell,
		model.ColumnInscription:      fieldCell(FieldInscription),
		model.ColumnGravesiteDetails: fieldCell(FieldGravesiteDetails),
	}
	return e
}

// Extract returns the value of column c for page p.
func (e *Extractor) Extract(p *Page, c model.Column) model.Cell {
	if !c.Valid() {
		return model.Cell{}
	}
	return e.rules[c](e.newState(p))
}

// Row extracts every column of page p.
func (e *Extractor) Row(p *Page) model.Row {
	st := e.newState(p)
	row := model.Row{Memorial: p.Ref}
	for _, c := range model.Columns() {
		row.Cells[c] = e.rules[c](st)
	}
	return row
}

func (e *Extractor) newState(p *Page) *pageState {
	return &pageState{run: e.run, page: p}
}

// pageState is the per-page context of one extraction. Values read by more
// than one column are looked up once and kept here.
type pageState struct {
	run  *Run
	page *Page

	mapURL     string
	mapLoaded  bool
	members    [model.HalfSibling + 1][]Member
	membersSet [model.HalfSibling + 1]bool
}

// lookup evaluates a schema field, absorbing missing markup into "".
func (s *pageState) lookup(field string) string {
	v, err := s.run.schema.Lookup(s.page.Doc, field)
	if err != nil {
		if errors.Is(err, ErrMissingMarkup) {
			s.run.logger.Debug("field absent", "memorial", s.page.Ref.ID, "field", field)
		}
		return ""
	}
	return v
}

// mapLink returns the page's map URL, looked up on first use.
func (s *pageState) mapLink() string {
	if !s.mapLoaded {
		s.mapURL = s.lookup(FieldMap)
		s.mapLoaded = true
	}
	return s.mapURL
}

// family returns the members of kind, looked up on first use.
func (s *pageState) family(kind model.RelationKind) []Member {
	if !s.membersSet[kind] {
		s.members[kind] = FamilyMembers(s.page.Doc, s.run.schema, kind, s.run.opts.BaseURL)
		s.membersSet[kind] = true
	}
	return s.members[kind]
}

// nameRuns renders a person's name, bolding the surname when enabled.
func (s *pageState) nameRuns(name string) []model.Run {
	if !s.run.opts.BoldNames {
		return []model.Run{{Text: name}}
	}
	return BoldLastName(name)
}

func fieldCell(field string) columnFunc {
	return func(s *pageState) model.Cell {
		return model.TextCell(s.lookup(field))
	}
}

func cemeteryCell(s *pageState) model.Cell {
	id := model.ParseCemeteryID(s.lookup(FieldCemetery))
	if id == "" {
		return model.Cell{}
	}
	return model.LinkCell(model.CemeteryURL(s.run.opts.BaseURL, id), id)
}

func surnameCell(s *pageState) model.Cell {
	return model.TextCell(TitleCase(s.page.Ref.SlugSurname()))
}

func nameCell(s *pageState) model.Cell {
	name := s.lookup(FieldName)
	if name == "" {
		return model.Cell{}
	}
	return model.RichCell(s.nameRuns(name)...)
}

func memorialCell(s *pageState) model.Cell {
	return model.LinkCell(s.page.Ref.URL(s.run.opts.BaseURL), s.page.Ref.ID)
}

func parentsSurnameCell(s *pageState) model.Cell {
	parents := s.family(model.Parent)
	refs := make([]model.MemorialRef, len(parents))
	for i, p := range parents {
		refs[i] = p.Ref
	}
	return model.TextCell(InferParentsSurname(s.page.Ref, refs))
}

// parentLinkCell links the parent at position pos when exactly two parents
// are listed: position 0 is the father, position 1 the mother.
func parentLinkCell(pos int) columnFunc {
	return func(s *pageState) model.Cell {
		parents := s.family(model.Parent)
		if len(parents) != 2 {
			return model.Cell{}
		}
		p := parents[pos]
		return model.LinkCell(p.URL, p.Name)
	}
}

// familyCell renders one line per member:
// "Name, birth - death, #cemeteryId".
func familyCell(kind model.RelationKind) columnFunc {
	return func(s *pageState) model.Cell {
		members := s.family(kind)
		if len(members) == 0 {
			return model.Cell{}
		}

		var runs []model.Run
		for i, m := range members {
			if i > 0 {
				runs = append(runs, model.Run{Text: "\n"})
			}
			name := m.Name
			if name == "" {
				name = TitleCase(strings.ReplaceAll(m.Ref.Slug, "-", " "))
			}
			runs = append(runs, s.nameRuns(name)...)

			cem, ok := s.run.MemberCemetery(m.Ref.ID)
			if !ok {
				cem = missingCemetery
			}
			runs = append(runs, model.Run{
				Text: fmt.Sprintf(", %s - %s, #%s", orUnknown(m.Birth), orUnknown(m.Death), cem),
			})
		}
		return model.RichCell(runs...)
	}
}

func orUnknown(date string) string {
	if date == "" {
		return unknownDate
	}
	return date
}

func mapCell(s *pageState) model.Cell {
	link := s.mapLink()
	if !HasCoordinates(link) {
		return model.Cell{}
	}
	return model.LinkCell(link, "Map")
}

func latitudeCell(s *pageState) model.Cell {
	lat, _ := ParseCoordinates(s.mapLink())
	return model.TextCell(lat)
}

func longitudeCell(s *pageState) model.Cell {
	_, long := ParseCoordinates(s.mapLink())
	return model.TextCell(long)
}
