package crawler

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gravestash/internal/extract"
	"github.com/nao1215/gravestash/internal/model"
)

// LinkExtractor finds memorial links in listing and memorial pages using
// the selectors of a page schema.
type LinkExtractor struct {
	schema *extract.Schema
	base   string
}

// NewLinkExtractor returns a LinkExtractor that makes links absolute
// against base.
func NewLinkExtractor(schema *extract.Schema, base string) *LinkExtractor {
	if base == "" {
		base = model.DefaultBaseURL
	}
	return &LinkExtractor{schema: schema, base: base}
}

// ExtractIndexLinks returns the memorial link of every search result on a
// cemetery listing page, in page order. more is false once the page
// carries the "no matches" marker, meaning there is nothing past it.
func (l *LinkExtractor) ExtractIndexLinks(body []byte) (links []string, more bool, err error) {
	results, more, err := l.ExtractListing(body)
	if err != nil {
		return nil, false, err
	}
	for _, r := range results {
		links = append(links, r.Ref.URL(l.base))
	}
	return links, more, nil
}

// ExtractListing returns every search result of a listing page with the
// name, dates, plot and photo note printed for it. more has the same
// meaning as for ExtractIndexLinks.
func (l *LinkExtractor) ExtractListing(body []byte) (results []extract.ListingResult, more bool, err error) {
	doc, err := parse(body)
	if err != nil {
		return nil, false, err
	}
	return l.schema.ListingResults(doc), !l.schema.ListingExhausted(doc), nil
}

// Photographer returns who is credited for the profile photo of a memorial
// page, or "" when there is none.
func (l *LinkExtractor) Photographer(body []byte) (string, error) {
	doc, err := parse(body)
	if err != nil {
		return "", err
	}
	return l.schema.Photographer(doc), nil
}

// ExtractRelationLinks returns the memorial links listed in the kind
// section of a memorial page, in source order and without duplicates. A
// page without the section has none.
func (l *LinkExtractor) ExtractRelationLinks(body []byte, kind model.RelationKind) ([]string, error) {
	if !kind.IsFamily() {
		return nil, fmt.Errorf("%w: %s has no family section", model.ErrUnknownRelationKind, kind)
	}
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	return extract.RelationLinks(doc, l.schema, kind, l.base), nil
}

// CemeteryName returns the name shown on a cemetery landing page.
func (l *LinkExtractor) CemeteryName(body []byte) (string, error) {
	doc, err := parse(body)
	if err != nil {
		return "", err
	}
	name, err := l.schema.CemeteryName(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCemeteryUnnamed, err)
	}
	return name, nil
}

func parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}
