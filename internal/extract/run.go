package extract

import (
	"log/slog"
	"sync"

	"github.com/nao1215/gravestash/internal/model"
)

// IndexLookup resolves a memorial id to a cached page. *store.MasterIndex
// implements it.
type IndexLookup interface {
	Lookup(memorialID string) (string, bool)
}

// PageReader reads a cached page by its index entry. *store.Store
// implements it.
type PageReader interface {
	ReadRel(rel string) ([]byte, error)
}

// Options controls rendering.
type Options struct {
	// BaseURL is the site origin used to build absolute links.
	BaseURL string

	// BoldNames renders names as rich text with the surname in bold.
	BoldNames bool
}

// Run is the state shared by every row extracted in one report run: the
// schema, the master index used for reverse lookups and a cache of family
// member home cemeteries. It is safe for concurrent use.
type Run struct {
	schema *Schema
	index  IndexLookup
	reader PageReader
	opts   Options
	logger *slog.Logger

	mu         sync.Mutex
	cemeteries map[string]string
}

// NewRun creates a Run. index and reader may be nil, in which case every
// family member's cemetery renders as missing.
func NewRun(schema *Schema, index IndexLookup, reader PageReader, opts Options, logger *slog.Logger) *Run {
	if opts.BaseURL == "" {
		opts.BaseURL = model.DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Run{
		schema:     schema,
		index:      index,
		reader:     reader,
		opts:       opts,
		logger:     logger,
		cemeteries: make(map[string]string),
	}
}

// Schema returns the run's page schema.
func (r *Run) Schema() *Schema {
	return r.schema
}

// MemberCemetery returns the cemetery id found on the cached page of
// memorial id, or false when no cached page shows a cemetery. Results,
// including misses, are cached for the rest of the run.
func (r *Run) MemberCemetery(memorialID string) (string, bool) {
	r.mu.Lock()
	cem, seen := r.cemeteries[memorialID]
	r.mu.Unlock()
	if seen {
		return cem, cem != ""
	}

	cem = r.resolveCemetery(memorialID)

	r.mu.Lock()
	r.cemeteries[memorialID] = cem
	r.mu.Unlock()
	return cem, cem != ""
}

func (r *Run) resolveCemetery(memorialID string) string {
	if r.index == nil || r.reader == nil {
		return ""
	}
	rel, ok := r.index.Lookup(memorialID)
	if !ok {
		return ""
	}
	body, err := r.reader.ReadRel(rel)
	if err != nil {
		r.logger.Debug("cached family page unreadable", "memorial", memorialID, "path", rel, "error", err)
		return ""
	}
	page, err := ParsePage(model.MemorialRef{ID: memorialID}, body)
	if err != nil {
		r.logger.Debug("cached family page unparsable", "memorial", memorialID, "error", err)
		return ""
	}
	href, err := r.schema.Lookup(page.Doc, FieldCemetery)
	if err != nil {
		return ""
	}
	return model.ParseCemeteryID(href)
}
