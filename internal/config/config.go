package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/gravestash/internal/model"
)

// Default configuration values.
// The politeness values are the ones the crawl was tuned with against the
// live site; changing them changes how the crawl looks to the site.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "gravestash"

	// DefaultBaseURL is the origin of every fetched page.
	DefaultBaseURL = model.DefaultBaseURL

	// DefaultUserAgent is a fixed desktop browser descriptor.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.5112.79 Safari/537.36"

	// DefaultConsentCookie pre-accepts the site's consent banner so pages
	// render their full markup.
	DefaultConsentCookie = "notice_preferences=2:"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 60 * time.Second

	// DefaultFetchAttempts is the total number of attempts per page.
	DefaultFetchAttempts = 3

	// DefaultRetryPauseMin and DefaultRetryPauseMax bound the random pause
	// between two attempts at the same page.
	DefaultRetryPauseMin = 3 * time.Second
	DefaultRetryPauseMax = 5 * time.Second

	// DefaultListingPauseMin and DefaultListingPauseMax bound the pause
	// between two memorial-search listing pages.
	DefaultListingPauseMin = 500 * time.Millisecond
	DefaultListingPauseMax = 2 * time.Second

	// DefaultPagePauseMin and DefaultPagePauseMax bound the pause after each
	// memorial page written to the stash.
	DefaultPagePauseMin = 500 * time.Millisecond
	DefaultPagePauseMax = 1 * time.Second

	// DefaultGroupPauseMin and DefaultGroupPauseMax bound the pause between
	// two relation groups of the same cemetery.
	DefaultGroupPauseMin = 10 * time.Second
	DefaultGroupPauseMax = 15 * time.Second

	// DefaultMaxListingPages is the pagination safety cap. A cemetery that
	// needs more listing pages than this aborts the run.
	DefaultMaxListingPages = 200

	// DefaultMaxSearchPages is the pagination safety cap of one worklist
	// search. Searches span whole site regions, so it is higher than the
	// cemetery cap.
	DefaultMaxSearchPages = 500

	// DefaultRequestsPerSecond is a hard ceiling on request rate, applied
	// on top of the random pauses.
	DefaultRequestsPerSecond = 1.0

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = model.MaxPageSize

	// DefaultReportWorkers is the number of pages parsed concurrently when
	// building a report. Reporting reads the stash only.
	DefaultReportWorkers = 4

	// DefaultInstructionsFile is read when no instruction file is given.
	DefaultInstructionsFile = "instructions.txt"

	// DefaultSearchesFile is read when the search command is given no file.
	DefaultSearchesFile = "searches.txt"
)

// Config holds all configuration options for gravestash.
// It is populated from CLI flags and the optional .gravestash file and
// passed down explicitly; nothing reads it from global state.
type Config struct {
	// StashDir is the root of the page cache.
	StashDir string

	// InstructionsFile is the path of the instruction file.
	InstructionsFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .gravestash is searched in the current directory, the
	// home directory and the XDG config directory.
	ConfigFilePath string

	// SchemaFile optionally replaces the embedded page schema.
	SchemaFile string

	// BaseURL is the origin all pages are fetched from.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// ConsentCookie is a "name=value" cookie sent with every request.
	ConsentCookie string

	// ProxyAddress routes requests through a SOCKS5 proxy when set.
	ProxyAddress string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// FetchAttempts is the total number of attempts per page.
	FetchAttempts int

	// RetryPauseMin and RetryPauseMax bound the pause between attempts.
	RetryPauseMin time.Duration
	RetryPauseMax time.Duration

	// ListingPauseMin and ListingPauseMax bound the pause between listing pages.
	ListingPauseMin time.Duration
	ListingPauseMax time.Duration

	// PagePauseMin and PagePauseMax bound the pause after each stored page.
	PagePauseMin time.Duration
	PagePauseMax time.Duration

	// GroupPauseMin and GroupPauseMax bound the pause between groups.
	GroupPauseMin time.Duration
	GroupPauseMax time.Duration

	// MaxListingPages is the pagination safety cap.
	MaxListingPages int

	// RequestsPerSecond is the request rate ceiling.
	RequestsPerSecond float64

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// RunLog writes a copy of the log to a timestamped file under LogDir.
	// The instruction file's "log" directive turns it on.
	RunLog bool

	// LogDir holds run log files.
	LogDir string

	// DBDir holds the crawl ledger database.
	DBDir string

	// SaveToDB records fetched pages and relation edges in the ledger.
	SaveToDB bool

	// ReportFile is the workbook path written by the report command.
	ReportFile string

	// CSVDir, when set, receives one CSV file per worksheet.
	CSVDir string

	// MarkdownFile, when set, receives a markdown summary of the report.
	MarkdownFile string

	// ReportWorkers is the number of concurrent page parsers.
	ReportWorkers int

	// BoldNames renders last names in bold in name and relation cells.
	BoldNames bool

	// SearchesFile is the search list read by the search command.
	SearchesFile string

	// WorklistFile is the workbook path written by the search command.
	WorklistFile string

	// MaxSearchPages is the pagination safety cap of one search.
	MaxSearchPages int

	// PlotLabel is removed from every worklist plot.
	PlotLabel string

	// Photographer is the volunteer whose photos turn a worklist
	// instruction into "Update GPS".
	Photographer string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		StashDir:          XDGStashDir(),
		InstructionsFile:  DefaultInstructionsFile,
		BaseURL:           DefaultBaseURL,
		UserAgent:         DefaultUserAgent,
		ConsentCookie:     DefaultConsentCookie,
		Timeout:           DefaultTimeout,
		FetchAttempts:     DefaultFetchAttempts,
		RetryPauseMin:     DefaultRetryPauseMin,
		RetryPauseMax:     DefaultRetryPauseMax,
		ListingPauseMin:   DefaultListingPauseMin,
		ListingPauseMax:   DefaultListingPauseMax,
		PagePauseMin:      DefaultPagePauseMin,
		PagePauseMax:      DefaultPagePauseMax,
		GroupPauseMin:     DefaultGroupPauseMin,
		GroupPauseMax:     DefaultGroupPauseMax,
		MaxListingPages:   DefaultMaxListingPages,
		RequestsPerSecond: DefaultRequestsPerSecond,
		MaxBodySize:       DefaultMaxBodySize,
		LogDir:            XDGLogDir(),
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		ReportWorkers:     DefaultReportWorkers,
		BoldNames:         true,
		SearchesFile:      DefaultSearchesFile,
		MaxSearchPages:    DefaultMaxSearchPages,
	}
}

// XDGDataDir returns the XDG data directory for gravestash.
// On Linux: ~/.local/share/gravestash
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGStashDir returns the default stash root.
func XDGStashDir() string {
	return filepath.Join(XDGDataDir(), "stash")
}

// XDGConfigDir returns the XDG config directory for gravestash.
// On Linux: ~/.config/gravestash
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGLogDir returns the default run log directory.
// On Linux: ~/.local/state/gravestash/logs
func XDGLogDir() string {
	return filepath.Join(xdg.StateHome, AppName, "logs")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.StashDir == "" {
		return ErrNoStashDir
	}

	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.FetchAttempts <= 0 {
		return ErrInvalidFetchAttempts
	}

	pauses := [][2]time.Duration{
		{c.RetryPauseMin, c.RetryPauseMax},
		{c.ListingPauseMin, c.ListingPauseMax},
		{c.PagePauseMin, c.PagePauseMax},
		{c.GroupPauseMin, c.GroupPauseMax},
	}
	for _, p := range pauses {
		if p[0] < 0 || p[1] < p[0] {
			return ErrInvalidPause
		}
	}

	if c.MaxListingPages <= 0 {
		return ErrInvalidMaxListingPages
	}

	if c.MaxSearchPages <= 0 {
		return ErrInvalidMaxSearchPages
	}

	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRequestRate
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.ReportWorkers <= 0 {
		return ErrInvalidReportWorkers
	}

	return nil
}
