package extract

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/gravestash/internal/model"
)

//go:embed schema.yaml
var defaultSchema []byte

// Field names of the memorial section. Every one of them must be present
// in a schema.
const (
	FieldName             = "name"
	FieldCemetery         = "cemetery"
	FieldBirthDate        = "birth_date"
	FieldBirthLocation    = "birth_location"
	FieldDeathDate        = "death_date"
	FieldDeathLocation    = "death_location"
	FieldVeteran          = "veteran"
	FieldCenotaph         = "cenotaph"
	FieldPlot             = "plot"
	FieldBio              = "bio"
	FieldMap              = "map"
	FieldInscription      = "inscription"
	FieldGravesiteDetails = "gravesite_details"
)

var requiredFields = []string{
	FieldName, FieldCemetery, FieldBirthDate, FieldBirthLocation,
	FieldDeathDate, FieldDeathLocation, FieldVeteran, FieldCenotaph,
	FieldPlot, FieldBio, FieldMap, FieldInscription, FieldGravesiteDetails,
}

// Mode is how a matched element is turned into a string.
type Mode string

const (
	ModeText      Mode = "text"
	ModeMultiline Mode = "multiline"
	ModeAttr      Mode = "attr"
	ModeExists    Mode = "exists"
)

// Schema describes where data lives in the site's markup.
type Schema struct {
	Listing  ListingSchema        `yaml:"listing"`
	Search   SearchSchema         `yaml:"search"`
	Cemetery CemeterySchema       `yaml:"cemetery"`
	Memorial map[string]FieldRule `yaml:"memorial"`
	Family   FamilySchema         `yaml:"family"`
}

// ListingSchema locates memorial links on a cemetery search page.
type ListingSchema struct {
	// Item matches one search result.
	Item string `yaml:"item"`
	// Link matches the result's memorial link inside Item; the first match
	// is used.
	Link string `yaml:"link"`
	// Warning matches warning icons; the text of a warning's parent is
	// compared against EndMarker.
	Warning string `yaml:"warning"`
	// EndMarker is the case-insensitive text that means "no more results".
	EndMarker string `yaml:"end_marker"`

	item, link, warning cascadia.Selector
}

// SearchSchema locates the parts of a listing result that the search
// worklist reports, and the photographer credit on a memorial page.
type SearchSchema struct {
	Name  string `yaml:"name"`
	Dates string `yaml:"dates"`
	Plot  string `yaml:"plot"`
	Note  string `yaml:"note"`
	// NoPhoto is the case-insensitive note text of a grave without a photo.
	NoPhoto      string `yaml:"no_photo"`
	Photographer string `yaml:"photographer"`

	name, dates, plot, note, photographer cascadia.Selector
}

// CemeterySchema locates data on a cemetery landing page.
type CemeterySchema struct {
	Name string `yaml:"name"`

	name cascadia.Selector
}

// FieldRule locates one memorial field.
type FieldRule struct {
	Selectors []string `yaml:"selectors"`
	Mode      Mode     `yaml:"mode"`
	Attr      string   `yaml:"attr"`

	compiled []cascadia.Selector
}

// FamilySchema locates the family sections of a memorial page. Each
// relation kind has a label element whose parent holds the members.
type FamilySchema struct {
	// Labels maps relation tokens (parent, spouse, ...) to label ids.
	Labels map[string]string `yaml:"labels"`
	// Member matches one member inside a section.
	Member string `yaml:"member"`
	// Name, Birth and Death are looked up inside a member.
	Name  string `yaml:"name"`
	Birth string `yaml:"birth"`
	Death string `yaml:"death"`

	labels                    map[model.RelationKind]cascadia.Selector
	member, name, birth, death cascadia.Selector
}

// DefaultSchema returns the schema embedded in the binary.
func DefaultSchema() (*Schema, error) {
	return ParseSchema(defaultSchema)
}

// LoadSchema reads a schema from a YAML file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's config file
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes, validates and compiles a YAML schema.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every field used by a report column is present and
// that every selector compiles. It also prepares the compiled selectors,
// so a Schema built by hand must be validated before use.
func (s *Schema) Validate() error {
	var err error
	compile := func(what, sel string) cascadia.Selector {
		if err != nil {
			return nil
		}
		if strings.TrimSpace(sel) == "" {
			err = fmt.Errorf("%w: %s has no selector", ErrInvalidSchema, what)
			return nil
		}
		c, cerr := cascadia.Compile(sel)
		if cerr != nil {
			err = fmt.Errorf("%w: %s selector %q: %w", ErrInvalidSchema, what, sel, cerr)
			return nil
		}
		return c
	}

	s.Listing.item = compile("listing.item", s.Listing.Item)
	s.Listing.link = compile("listing.link", s.Listing.Link)
	s.Listing.warning = compile("listing.warning", s.Listing.Warning)
	s.Cemetery.name = compile("cemetery.name", s.Cemetery.Name)
	if err == nil && strings.TrimSpace(s.Listing.EndMarker) == "" {
		err = fmt.Errorf("%w: listing.end_marker is empty", ErrInvalidSchema)
	}

	s.Search.name = compile("search.name", s.Search.Name)
	s.Search.dates = compile("search.dates", s.Search.Dates)
	s.Search.plot = compile("search.plot", s.Search.Plot)
	s.Search.note = compile("search.note", s.Search.Note)
	s.Search.photographer = compile("search.photographer", s.Search.Photographer)
	if err == nil && strings.TrimSpace(s.Search.NoPhoto) == "" {
		err = fmt.Errorf("%w: search.no_photo is empty", ErrInvalidSchema)
	}

	for _, field := range requiredFields {
		rule, ok := s.Memorial[field]
		if !ok {
			if err == nil {
				err = fmt.Errorf("%w: memorial.%s is missing", ErrInvalidSchema, field)
			}
			continue
		}
		if rule.Mode == "" {
			rule.Mode = ModeText
		}
		switch rule.Mode {
		case ModeText, ModeMultiline, ModeExists:
		case ModeAttr:
			if rule.Attr == "" && err == nil {
				err = fmt.Errorf("%w: memorial.%s uses attr mode without attr", ErrInvalidSchema, field)
			}
		default:
			if err == nil {
				err = fmt.Errorf("%w: memorial.%s has unknown mode %q", ErrInvalidSchema, field, rule.Mode)
			}
		}
		if len(rule.Selectors) == 0 && err == nil {
			err = fmt.Errorf("%w: memorial.%s has no selector", ErrInvalidSchema, field)
		}
		rule.compiled = rule.compiled[:0]
		for _, sel := range rule.Selectors {
			rule.compiled = append(rule.compiled, compile("memorial."+field, sel))
		}
		s.Memorial[field] = rule
	}

	s.Family.labels = make(map[model.RelationKind]cascadia.Selector, len(s.Family.Labels))
	for _, kind := range model.FamilyKinds() {
		id, ok := s.Family.Labels[kind.String()]
		if !ok || id == "" {
			if err == nil {
				err = fmt.Errorf("%w: family.labels.%s is missing", ErrInvalidSchema, kind)
			}
			continue
		}
		s.Family.labels[kind] = compile("family.labels."+kind.String(), "#"+id)
	}
	s.Family.member = compile("family.member", s.Family.Member)
	s.Family.name = compile("family.name", s.Family.Name)
	s.Family.birth = compile("family.birth", s.Family.Birth)
	s.Family.death = compile("family.death", s.Family.Death)

	return err
}

// field returns the rule of a memorial field.
func (s *Schema) field(name string) FieldRule {
	return s.Memorial[name]
}

// Lookup evaluates a memorial field against doc. It returns
// ErrMissingMarkup when no selector matches.
func (s *Schema) Lookup(doc *goquery.Document, name string) (string, error) {
	rule := s.field(name)
	for _, sel := range rule.compiled {
		match := doc.FindMatcher(sel).First()
		if match.Length() == 0 {
			continue
		}
		switch rule.Mode {
		case ModeExists:
			return "Yes", nil
		case ModeAttr:
			if v, ok := match.Attr(rule.Attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), nil
			}
			continue
		case ModeMultiline:
			return MultilineText(match.Nodes[0]), nil
		default:
			return Text(match.Nodes[0]), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingMarkup, name)
}

// FamilyRegion returns the element holding the members of kind: the parent
// of the kind's label. The selection is empty when the page has no such
// section.
func (s *Schema) FamilyRegion(doc *goquery.Document, kind model.RelationKind) *goquery.Selection {
	sel, ok := s.Family.labels[kind]
	if !ok {
		return doc.FindNodes()
	}
	return doc.FindMatcher(sel).First().Parent()
}

// ListingItems returns the search result elements of a listing page.
func (s *Schema) ListingItems(doc *goquery.Document) *goquery.Selection {
	return doc.FindMatcher(s.Listing.item)
}

// ListingLink returns the first memorial link inside a search result.
func (s *Schema) ListingLink(item *goquery.Selection) *goquery.Selection {
	return item.FindMatcher(s.Listing.link).First()
}

// ListingExhausted reports whether a listing page carries the end marker.
func (s *Schema) ListingExhausted(doc *goquery.Document) bool {
	marker := strings.ToLower(s.Listing.EndMarker)
	exhausted := false
	doc.FindMatcher(s.Listing.warning).EachWithBreak(func(_ int, w *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(w.Parent().Text()), marker) {
			exhausted = true
			return false
		}
		return true
	})
	return exhausted
}

// CemeteryName returns the display name on a cemetery landing page.
func (s *Schema) CemeteryName(doc *goquery.Document) (string, error) {
	match := doc.FindMatcher(s.Cemetery.name).First()
	if match.Length() == 0 {
		return "", fmt.Errorf("%w: cemetery name", ErrMissingMarkup)
	}
	name := Text(match.Nodes[0])
	if name == "" {
		return "", fmt.Errorf("%w: cemetery name", ErrMissingMarkup)
	}
	return name, nil
}
