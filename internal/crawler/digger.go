package crawler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/nao1215/gravestash/internal/config"
	"github.com/nao1215/gravestash/internal/extract"
	"github.com/nao1215/gravestash/internal/fetch"
	"github.com/nao1215/gravestash/internal/model"
	"github.com/nao1215/gravestash/internal/pipeline"
	"github.com/nao1215/gravestash/internal/store"
)

// PageFetcher retrieves one page. *fetch.Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Recorder receives every page stored and every family link found during a
// crawl. *database.CrawlDB implements it.
type Recorder interface {
	RecordPage(ctx context.Context, page *model.CachedPage) error
	RecordRelation(ctx context.Context, edge model.RelationEdge) error
}

// Options holds the crawl policy.
type Options struct {
	// BaseURL is the site origin.
	BaseURL string

	// MaxListingPages caps the listing pages fetched per cemetery. Pages
	// 1 through MaxListingPages are read; a listing still reporting more
	// results after the last of them fails with ErrRunawayPagination.
	MaxListingPages int

	ListingPauseMin time.Duration
	ListingPauseMax time.Duration
	PagePauseMin    time.Duration
	PagePauseMax    time.Duration
	GroupPauseMin   time.Duration
	GroupPauseMax   time.Duration
}

// OptionsFromConfig copies the crawl policy out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:         cfg.BaseURL,
		MaxListingPages: cfg.MaxListingPages,
		ListingPauseMin: cfg.ListingPauseMin,
		ListingPauseMax: cfg.ListingPauseMax,
		PagePauseMin:    cfg.PagePauseMin,
		PagePauseMax:    cfg.PagePauseMax,
		GroupPauseMin:   cfg.GroupPauseMin,
		GroupPauseMax:   cfg.GroupPauseMax,
	}
}

// Option configures optional Digger behaviour.
type Option func(*Digger)

// WithLogger sets the logger for crawl progress.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Digger) {
		d.logger = logger
	}
}

// WithPacer replaces the pause source.
func WithPacer(p fetch.Pacer) Option {
	return func(d *Digger) {
		d.pacer = p
	}
}

// WithRecorder sends stored pages and found relations to r.
func WithRecorder(r Recorder) Option {
	return func(d *Digger) {
		d.recorder = r
	}
}

// Digger crawls cemeteries into the stash.
type Digger struct {
	fetcher  PageFetcher
	store    *store.Store
	links    *LinkExtractor
	pacer    fetch.Pacer
	recorder Recorder
	logger   *slog.Logger
	opts     Options
}

// NewDigger returns a Digger storing into st.
func NewDigger(fetcher PageFetcher, st *store.Store, schema *extract.Schema, opts Options, options ...Option) *Digger {
	if opts.BaseURL == "" {
		opts.BaseURL = model.DefaultBaseURL
	}
	if opts.MaxListingPages <= 0 {
		opts.MaxListingPages = config.DefaultMaxListingPages
	}
	d := &Digger{
		fetcher: fetcher,
		store:   st,
		links:   NewLinkExtractor(schema, opts.BaseURL),
		opts:    opts,
	}
	for _, o := range options {
		o(d)
	}
	if d.pacer == nil {
		d.pacer = fetch.NewPacer()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Dig crawls every unit in order. It stops at the first failure and
// returns the summary of the work done so far together with the error.
func (d *Digger) Dig(ctx context.Context, units []model.CemeteryUnit) (*Summary, error) {
	summary := &Summary{Started: time.Now()}
	defer func() { summary.Finished = time.Now() }()

	for _, unit := range units {
		cs, err := d.digCemetery(ctx, unit)
		if cs != nil {
			summary.Cemeteries = append(summary.Cemeteries, *cs)
		}
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// cemeteryRun is the state of crawling one cemetery.
type cemeteryRun struct {
	d       *Digger
	unit    model.CemeteryUnit
	cem     store.CemeteryDir
	logger  *slog.Logger
	master  *store.MasterList
	burials []string
	summary *CemeterySummary
}

func (d *Digger) digCemetery(ctx context.Context, unit model.CemeteryUnit) (*CemeterySummary, error) {
	logger := d.logger.With("cemetery", unit.ID)

	cem, name, err := d.validateCemetery(ctx, unit)
	if err != nil {
		return nil, err
	}
	logger.Info("cemetery validated", "name", name, "folder", cem.Name())

	run := &cemeteryRun{
		d:      d,
		unit:   unit,
		cem:    cem,
		logger: logger,
		summary: &CemeterySummary{
			ID:     unit.ID,
			Name:   name,
			Folder: cem.Name(),
		},
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithInterlude(func(ctx context.Context) error {
			logger.Info("pausing between groups")
			return d.pacer.Pause(ctx, d.opts.GroupPauseMin, d.opts.GroupPauseMax)
		}),
	)
	for _, kind := range d.groupOrder(cem, unit.Groups) {
		p.AddStep(pipeline.NewStep(kind.String(), func(ctx context.Context) error {
			if err := run.group(ctx, kind); err != nil {
				return &GroupError{CemeteryID: unit.ID, Kind: kind, Err: err}
			}
			return nil
		}))
	}

	err = p.Execute(ctx)
	return run.summary, err
}

// validateCemetery fetches the cemetery landing page, which fails for an
// unknown id, and prepares the cemetery folder.
func (d *Digger) validateCemetery(ctx context.Context, unit model.CemeteryUnit) (store.CemeteryDir, string, error) {
	body, err := d.fetcher.Fetch(ctx, unit.URL(d.opts.BaseURL))
	if err != nil {
		return store.CemeteryDir{}, "", fmt.Errorf("failed to validate cemetery %s: %w", unit.ID, err)
	}
	name, err := d.links.CemeteryName(body)
	if err != nil {
		return store.CemeteryDir{}, "", fmt.Errorf("cemetery %s: %w", unit.ID, err)
	}

	cem, err := d.store.FindCemetery(unit.ID)
	switch {
	case errors.Is(err, store.ErrCemeteryNotFound):
		cem = store.CemeteryDir{ID: unit.ID, Slug: store.CemeterySlug(name)}
		if err := d.store.EnsureCemetery(cem); err != nil {
			return store.CemeteryDir{}, "", err
		}
	case err != nil:
		return store.CemeteryDir{}, "", err
	}

	if err := d.store.WriteCemeteryPage(cem, body); err != nil {
		return store.CemeteryDir{}, "", err
	}
	return cem, name, nil
}

// groupOrder returns the groups to run: deduplicated, burial first, and
// with burial added when the cemetery has no burial list yet.
func (d *Digger) groupOrder(cem store.CemeteryDir, groups []model.RelationKind) []model.RelationKind {
	if len(groups) == 0 {
		groups = model.AllRelationKinds()
	}
	order := model.NormalizeGroups(groups)
	if order[0] != model.Burial && !d.store.HasList(cem, model.Burial) {
		order = append([]model.RelationKind{model.Burial}, order...)
	}
	return order
}

// group runs one group from a clean folder.
func (r *cemeteryRun) group(ctx context.Context, kind model.RelationKind) error {
	st := r.d.store
	if err := st.ResetGroup(r.cem, kind); err != nil {
		return err
	}
	if err := r.refreshMaster(); err != nil {
		return err
	}

	list, err := store.CreateList(st.ListPath(r.cem, kind))
	if err != nil {
		return err
	}
	defer list.Close()

	gs := GroupSummary{Kind: kind}
	if kind == model.Burial {
		err = r.burialGroup(ctx, list, &gs)
	} else {
		err = r.relationGroup(ctx, kind, list, &gs)
	}
	gs.Listed = list.Len()
	r.summary.Groups = append(r.summary.Groups, gs)
	if err != nil {
		return err
	}

	if err := list.Finalize(); err != nil {
		return err
	}
	if err := st.SaveMasterList(r.master); err != nil {
		return err
	}
	if err := r.saveIndex(); err != nil {
		return err
	}
	r.logger.Info("group finished",
		"group", kind.String(),
		"listed", gs.Listed,
		"fetched", gs.Fetched,
		"duplicates", gs.Duplicates,
	)
	return nil
}

// refreshMaster rebuilds the master list and index from the stash and
// saves both.
func (r *cemeteryRun) refreshMaster() error {
	st := r.d.store
	master, err := st.BuildMasterList()
	if err != nil {
		return err
	}
	if err := st.SaveMasterList(master); err != nil {
		return err
	}
	if err := r.saveIndex(); err != nil {
		return err
	}
	r.master = master
	return nil
}

// saveIndex rescans the stash into the master index.
func (r *cemeteryRun) saveIndex() error {
	index, err := r.d.store.BuildMasterIndex()
	if err != nil {
		return err
	}
	return r.d.store.SaveMasterIndex(index)
}

// burialGroup pages through the cemetery's memorial search, lists every
// result and stores its page.
func (r *cemeteryRun) burialGroup(ctx context.Context, list *store.ListFile, gs *GroupSummary) error {
	urls, err := r.listBurials(ctx, list, gs)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("%w: %s", ErrNoBurials, r.unit.ID)
	}
	r.burials = urls

	for i, u := range urls {
		ref, err := model.ParseMemorialURL(u)
		if err != nil {
			return err
		}
		r.logger.Info("saving burial page", "n", i+1, "of", len(urls), "url", u)
		if err := r.persist(ctx, store.BurialKey(r.cem, ref), u, gs); err != nil {
			return err
		}
	}
	return nil
}

// listBurials collects the result links of every listing page, appending
// each new one to list as soon as its page is read.
func (r *cemeteryRun) listBurials(ctx context.Context, list *store.ListFile, gs *GroupSummary) ([]string, error) {
	var urls []string
	seen := make(map[string]bool)

	for page := 1; ; page++ {
		if page > r.d.opts.MaxListingPages {
			return nil, fmt.Errorf("%w: %d pages", ErrRunawayPagination, r.d.opts.MaxListingPages)
		}

		u := r.unit.SearchURL(r.d.opts.BaseURL, page)
		body, err := r.d.fetcher.Fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		gs.ListingPages++

		links, more, err := r.d.links.ExtractIndexLinks(body)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			if seen[l] {
				continue
			}
			seen[l] = true
			if err := list.Append(l); err != nil {
				return nil, err
			}
			urls = append(urls, l)
		}
		r.logger.Debug("listing page read", "page", page, "links", len(links), "more", more)

		if !more {
			return urls, nil
		}
		if err := r.d.pacer.Pause(ctx, r.d.opts.ListingPauseMin, r.d.opts.ListingPauseMax); err != nil {
			return nil, err
		}
	}
}

// relationGroup follows the kind section of every burial page.
func (r *cemeteryRun) relationGroup(ctx context.Context, kind model.RelationKind, list *store.ListFile, gs *GroupSummary) error {
	burials, err := r.burialURLs()
	if err != nil {
		return err
	}
	r.logger.Info("searching burials", "group", kind.String(), "burials", len(burials))

	for i, u := range burials {
		owner, err := model.ParseMemorialURL(u)
		if err != nil {
			r.logger.Warn("skipping burial list entry", "url", u, "error", err)
			continue
		}
		r.logger.Debug("reading burial page", "n", i+1, "of", len(burials), "url", u)

		body, err := r.burialPage(ctx, owner, u, gs)
		if err != nil {
			return err
		}
		links, err := r.d.links.ExtractRelationLinks(body, kind)
		if err != nil {
			return err
		}

		for _, link := range links {
			target, err := model.ParseMemorialURL(link)
			if err != nil {
				continue
			}
			r.record(ctx, func(ctx context.Context, rec Recorder) error {
				return rec.RecordRelation(ctx, model.RelationEdge{
					CemeteryID: r.unit.ID,
					Kind:       kind,
					From:       owner,
					To:         target,
				})
			})

			if r.master.Contains(link) {
				gs.Duplicates++
				continue
			}
			r.logger.Info("saving family page", "group", kind.String(), "url", link)
			if err := r.persist(ctx, store.FamilyKey(r.cem, kind, target, owner), link, gs); err != nil {
				return err
			}
			if err := list.Append(link); err != nil {
				return err
			}
		}
	}
	return nil
}

// burialURLs returns the burial list, read once per cemetery.
func (r *cemeteryRun) burialURLs() ([]string, error) {
	if r.burials != nil {
		return r.burials, nil
	}
	urls, err := store.ReadList(r.d.store.ListPath(r.cem, model.Burial))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: cemetery %s", ErrMissingBurialList, r.unit.ID)
	}
	if err != nil {
		return nil, err
	}
	r.burials = urls
	return urls, nil
}

// burialPage returns the cached burial page, fetching it when the stash
// lost it.
func (r *cemeteryRun) burialPage(ctx context.Context, owner model.MemorialRef, u string, gs *GroupSummary) ([]byte, error) {
	key := store.BurialKey(r.cem, owner)
	body, err := r.d.store.Read(key)
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, store.ErrPageNotFound) {
		return nil, err
	}
	r.logger.Warn("burial page missing from stash, fetching", "url", u)
	if err := r.persist(ctx, key, u, gs); err != nil {
		return nil, err
	}
	return r.d.store.Read(key)
}

// persist stores the page at u under key unless it is already cached, and
// adds u to the running master list.
func (r *cemeteryRun) persist(ctx context.Context, key store.Key, u string, gs *GroupSummary) error {
	r.master.Add(u)
	if r.d.store.Exists(key) {
		gs.Cached++
		return nil
	}

	body, err := r.d.fetcher.Fetch(ctx, u)
	if err != nil {
		return err
	}
	path, err := r.d.store.Write(key, body)
	if err != nil {
		return err
	}
	gs.Fetched++

	page := &model.CachedPage{
		URL:        u,
		Kind:       key.Kind,
		CemeteryID: r.unit.ID,
		Target:     key.Target,
		Owner:      key.Owner,
		Path:       r.d.store.Rel(path),
		Body:       body,
		Fetched:    true,
	}
	page.ComputeDigest()
	r.record(ctx, func(ctx context.Context, rec Recorder) error {
		return rec.RecordPage(ctx, page)
	})

	return r.d.pacer.Pause(ctx, r.d.opts.PagePauseMin, r.d.opts.PagePauseMax)
}

// record passes one entry to the recorder. Ledger failures are logged and
// never stop the crawl.
func (r *cemeteryRun) record(ctx context.Context, fn func(context.Context, Recorder) error) {
	if r.d.recorder == nil {
		return
	}
	if err := fn(ctx, r.d.recorder); err != nil {
		r.logger.Warn("failed to record crawl entry", "error", err)
	}
}
