package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/gravestash/internal/config"
	"github.com/nao1215/gravestash/internal/extract"
	"github.com/nao1215/gravestash/internal/fetch"
	"github.com/nao1215/gravestash/internal/model"
)

// Search labels that change the instruction of a work item. They are
// matched case-insensitively anywhere in the label.
const (
	hasGPSLabel = "has gps"
	noGPSLabel  = "no gps"
)

// SearchOptions holds the worklist search policy.
type SearchOptions struct {
	// BaseURL is the site origin memorial links are resolved against.
	BaseURL string

	// MaxPages caps the result pages read per search. Pages 1 through
	// MaxPages are read; a search still reporting more results after the
	// last of them fails with ErrRunawayPagination.
	MaxPages int

	// PlotLabel is removed from every plot, ignoring case.
	PlotLabel string

	// Photographer is the volunteer whose photos mark a grave as needing a
	// GPS update.
	Photographer string

	ListingPauseMin time.Duration
	ListingPauseMax time.Duration
	PagePauseMin    time.Duration
	PagePauseMax    time.Duration
}

// SearchOptionsFromConfig copies the search policy out of cfg.
func SearchOptionsFromConfig(cfg *config.Config) SearchOptions {
	return SearchOptions{
		BaseURL:         cfg.BaseURL,
		MaxPages:        cfg.MaxSearchPages,
		PlotLabel:       cfg.PlotLabel,
		Photographer:    cfg.Photographer,
		ListingPauseMin: cfg.ListingPauseMin,
		ListingPauseMax: cfg.ListingPauseMax,
		PagePauseMin:    cfg.PagePauseMin,
		PagePauseMax:    cfg.PagePauseMax,
	}
}

// SearchOption configures optional Searcher behaviour.
type SearchOption func(*Searcher)

// WithSearchLogger sets the logger for search progress.
func WithSearchLogger(logger *slog.Logger) SearchOption {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithSearchPacer replaces the pause source.
func WithSearchPacer(p fetch.Pacer) SearchOption {
	return func(s *Searcher) {
		s.pacer = p
	}
}

// Searcher builds a worklist from memorial-search result pages. It does
// not touch the stash.
type Searcher struct {
	fetcher   PageFetcher
	links     *LinkExtractor
	pacer     fetch.Pacer
	logger    *slog.Logger
	opts      SearchOptions
	plotLabel *regexp.Regexp
}

// NewSearcher returns a Searcher reading pages through fetcher.
func NewSearcher(fetcher PageFetcher, schema *extract.Schema, opts SearchOptions, options ...SearchOption) *Searcher {
	if opts.BaseURL == "" {
		opts.BaseURL = model.DefaultBaseURL
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = config.DefaultMaxSearchPages
	}
	s := &Searcher{
		fetcher: fetcher,
		links:   NewLinkExtractor(schema, opts.BaseURL),
		opts:    opts,
	}
	if label := strings.TrimSpace(opts.PlotLabel); label != "" {
		s.plotLabel = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label))
	}
	for _, o := range options {
		o(s)
	}
	if s.pacer == nil {
		s.pacer = fetch.NewPacer()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Search runs every search in order and returns the work items in result
// order. It stops at the first failure and returns the items found so far
// together with the error.
func (s *Searcher) Search(ctx context.Context, searches []model.Search) ([]model.WorkItem, error) {
	var items []model.WorkItem
	for _, q := range searches {
		found, err := s.search(ctx, q)
		items = append(items, found...)
		if err != nil {
			return items, fmt.Errorf("search %q: %w", q.Label, err)
		}
		s.logger.Info("search finished", "search", q.Label, "memorials", len(found))
	}
	return items, nil
}

// search pages through one search. A memorial listed on several pages is
// reported once.
func (s *Searcher) search(ctx context.Context, q model.Search) ([]model.WorkItem, error) {
	var items []model.WorkItem
	seen := make(map[string]bool)

	for page := 1; ; page++ {
		if page > s.opts.MaxPages {
			return items, fmt.Errorf("%w: %d pages", ErrRunawayPagination, s.opts.MaxPages)
		}

		u, err := searchPageURL(q.URL, page)
		if err != nil {
			return items, err
		}
		body, err := s.fetcher.Fetch(ctx, u)
		if err != nil {
			return items, err
		}

		results, more, err := s.links.ExtractListing(body)
		if err != nil {
			return items, err
		}
		s.logger.Info("search page read", "search", q.Label, "page", page, "memorials", len(results))

		for _, r := range results {
			if seen[r.Ref.ID] {
				continue
			}
			seen[r.Ref.ID] = true
			item, err := s.workItem(ctx, q, r)
			if err != nil {
				return items, err
			}
			s.logger.Debug("memorial listed", "name", item.SortName, "instruction", item.Instruction)
			items = append(items, item)
		}

		if !more {
			return items, nil
		}
		if err := s.pacer.Pause(ctx, s.opts.ListingPauseMin, s.opts.ListingPauseMax); err != nil {
			return items, err
		}
	}
}

// workItem turns a search result into a work item. For a result of a
// "Has GPS" search that already has a photo, the memorial page is fetched
// to find the photographer.
func (s *Searcher) workItem(ctx context.Context, q model.Search, r extract.ListingResult) (model.WorkItem, error) {
	item := model.WorkItem{
		Ref:      r.Ref,
		URL:      r.Ref.URL(s.opts.BaseURL),
		Search:   q.Label,
		SortName: extract.SortName(r.Ref.Slug),
		FullName: r.Name,
		Dates:    extract.ShortDates(r.Dates),
		RawDates: r.Dates,
		Plot:     s.cleanPlot(r.Plot),
		NoPhoto:  r.NoPhoto,
	}

	if !r.NoPhoto && labelHas(q.Label, hasGPSLabel) {
		body, err := s.fetcher.Fetch(ctx, item.URL)
		if err != nil {
			return item, err
		}
		if item.Photographer, err = s.links.Photographer(body); err != nil {
			return item, err
		}
		if err := s.pacer.Pause(ctx, s.opts.PagePauseMin, s.opts.PagePauseMax); err != nil {
			return item, err
		}
	}

	item.Instruction = instruction(item, q.Label, s.opts.Photographer)
	return item, nil
}

// cleanPlot removes the plot label and tidies the spacing left behind.
func (s *Searcher) cleanPlot(plot string) string {
	if s.plotLabel != nil {
		plot = s.plotLabel.ReplaceAllString(plot, "")
	}
	return strings.Join(strings.Fields(plot), " ")
}

// instruction picks the task for a grave. A photo by the volunteer means
// the grave was visited and only its GPS needs refreshing; otherwise a
// missing photo comes before a missing GPS position.
func instruction(item model.WorkItem, label, volunteer string) string {
	switch {
	case volunteer != "" && strings.EqualFold(item.Photographer, volunteer):
		return model.InstructionUpdateGPS
	case item.NoPhoto:
		return model.InstructionTakePhoto
	case labelHas(label, noGPSLabel):
		return model.InstructionAddGPS
	default:
		return model.InstructionNone
	}
}

func labelHas(label, part string) bool {
	return strings.Contains(strings.ToLower(label), part)
}

// searchPageURL sets the page parameter of a search URL.
func searchPageURL(raw string, page int) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid search URL %q: %w", raw, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
