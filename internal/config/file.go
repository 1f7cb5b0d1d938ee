package config

import "time"

// PauseRange is a min/max pair in the configuration file, e.g.
//
//	listing: {min: 500ms, max: 2s}
type PauseRange struct {
	Min time.Duration `yaml:"min,omitempty"`
	Max time.Duration `yaml:"max,omitempty"`
}

// Politeness groups the request pacing settings of the configuration file.
type Politeness struct {
	// Attempts is the total number of attempts per page.
	Attempts int `yaml:"attempts,omitempty"`

	// Retry is the pause between two attempts at the same page.
	Retry PauseRange `yaml:"retry,omitempty"`

	// Listing is the pause between two listing pages.
	Listing PauseRange `yaml:"listing,omitempty"`

	// Page is the pause after each stored memorial page.
	Page PauseRange `yaml:"page,omitempty"`

	// Group is the pause between two relation groups.
	Group PauseRange `yaml:"group,omitempty"`

	// MaxListingPages is the pagination safety cap.
	MaxListingPages int `yaml:"maxListingPages,omitempty"`

	// RequestsPerSecond is the request rate ceiling.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`
}

// Worklist groups the settings of the search command.
type Worklist struct {
	// PlotLabel is removed from every plot.
	PlotLabel string `yaml:"plotLabel,omitempty"`

	// Photographer is the volunteer whose photos mean "Update GPS".
	Photographer string `yaml:"photographer,omitempty"`

	// MaxPages is the pagination safety cap of one search.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// File represents the structure of the .gravestash configuration file.
// Every field is optional; zero values leave the built-in defaults alone.
type File struct {
	// StashDir overrides the stash root.
	StashDir string `yaml:"stashDir,omitempty"`

	// LogDir overrides the run log directory.
	LogDir string `yaml:"logDir,omitempty"`

	// DBDir overrides the directory of the crawl ledger.
	DBDir string `yaml:"dbDir,omitempty"`

	// SchemaFile points at a page schema that replaces the embedded one.
	SchemaFile string `yaml:"schemaFile,omitempty"`

	// BaseURL overrides the site origin.
	BaseURL string `yaml:"baseURL,omitempty"`

	// UserAgent overrides the browser descriptor.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie overrides the consent cookie ("name=value").
	Cookie string `yaml:"cookie,omitempty"`

	// Proxy is a SOCKS5 proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// Timeout bounds a single request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Politeness holds request pacing.
	Politeness Politeness `yaml:"politeness,omitempty"`

	// Worklist holds the search command settings.
	Worklist Worklist `yaml:"worklist,omitempty"`
}

// Apply copies every non-zero setting of the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}

	setString(&cfg.StashDir, f.StashDir)
	setString(&cfg.LogDir, f.LogDir)
	setString(&cfg.DBDir, f.DBDir)
	setString(&cfg.SchemaFile, f.SchemaFile)
	setString(&cfg.BaseURL, f.BaseURL)
	setString(&cfg.UserAgent, f.UserAgent)
	setString(&cfg.ConsentCookie, f.Cookie)
	setString(&cfg.ProxyAddress, f.Proxy)

	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
	}

	p := f.Politeness
	if p.Attempts > 0 {
		cfg.FetchAttempts = p.Attempts
	}
	setRange(&cfg.RetryPauseMin, &cfg.RetryPauseMax, p.Retry)
	setRange(&cfg.ListingPauseMin, &cfg.ListingPauseMax, p.Listing)
	setRange(&cfg.PagePauseMin, &cfg.PagePauseMax, p.Page)
	setRange(&cfg.GroupPauseMin, &cfg.GroupPauseMax, p.Group)
	if p.MaxListingPages > 0 {
		cfg.MaxListingPages = p.MaxListingPages
	}
	if p.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = p.RequestsPerSecond
	}

	setString(&cfg.PlotLabel, f.Worklist.PlotLabel)
	setString(&cfg.Photographer, f.Worklist.Photographer)
	if f.Worklist.MaxPages > 0 {
		cfg.MaxSearchPages = f.Worklist.MaxPages
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// setRange only applies a range whose max is set, so "{min: 0s, max: 1s}"
// can lower a minimum to zero.
func setRange(minDst, maxDst *time.Duration, r PauseRange) {
	if r.Max <= 0 {
		return
	}
	*minDst = r.Min
	*maxDst = r.Max
}
