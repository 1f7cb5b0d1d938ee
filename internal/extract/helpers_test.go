package extract

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nao1215/gravestash/internal/model"
)

// albrecht is the memorial the fixture testdata/memorial.html shows.
var albrecht = model.MemorialRef{ID: "84600372", Slug: "albert-mike-albrecht"}

func mustSchema(t *testing.T) *Schema {
	t.Helper()

	s, err := DefaultSchema()
	if err != nil {
		t.Fatalf("DefaultSchema() error = %v", err)
	}
	return s
}

func loadPage(t *testing.T, name string, ref model.MemorialRef) *Page {
	t.Helper()

	body, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	p, err := ParsePage(ref, body)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	return p
}

// fakeStash serves cached pages by memorial id.
type fakeStash struct {
	pages map[string]string

	mu    sync.Mutex
	reads map[string]int
}

func (f *fakeStash) Lookup(id string) (string, bool) {
	if _, ok := f.pages[id]; !ok {
		return "", false
	}
	return id + ".html", true
}

func (f *fakeStash) ReadRel(rel string) ([]byte, error) {
	f.mu.Lock()
	if f.reads != nil {
		f.reads[rel]++
	}
	f.mu.Unlock()
	id := rel[:len(rel)-len(".html")]
	body, ok := f.pages[id]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(body), nil
}

func cachedMemorial(cemeteryID string) string {
	return `<html><body><h1 id="bio-name">X</h1>` +
		`<div itemprop="location"><a href="/cemetery/` + cemeteryID + `/c">` +
		`<span id="cemeteryNameLabel">C</span></a></div></body></html>`
}
