package extract

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/gravestash/internal/model"
)

// Page is a parsed memorial page.
type Page struct {
	// Ref identifies the memorial the page shows.
	Ref model.MemorialRef

	// Doc is the parsed markup.
	Doc *goquery.Document
}

// ParsePage parses body as the page of ref.
func ParsePage(ref model.MemorialRef, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse memorial %s: %w", ref.ID, err)
	}
	return &Page{Ref: ref, Doc: doc}, nil
}
