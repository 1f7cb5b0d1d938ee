package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies the defaults. The politeness values are part of
// the crawl's observable behaviour, so a change here must be deliberate.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default fetch attempts is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.FetchAttempts != 3 {
			t.Errorf("expected FetchAttempts to be 3, got %d", cfg.FetchAttempts)
		}
	})

	t.Run("default retry pause is 3s to 5s", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryPauseMin != 3*time.Second || cfg.RetryPauseMax != 5*time.Second {
			t.Errorf("unexpected retry pause: %v to %v", cfg.RetryPauseMin, cfg.RetryPauseMax)
		}
	})

	t.Run("default listing pause is 0.5s to 2s", func(t *testing.T) {
		t.Parallel()
		if cfg.ListingPauseMin != 500*time.Millisecond || cfg.ListingPauseMax != 2*time.Second {
			t.Errorf("unexpected listing pause: %v to %v", cfg.ListingPauseMin, cfg.ListingPauseMax)
		}
	})

	t.Run("default page pause is 0.5s to 1s", func(t *testing.T) {
		t.Parallel()
		if cfg.PagePauseMin != 500*time.Millisecond || cfg.PagePauseMax != time.Second {
			t.Errorf("unexpected page pause: %v to %v", cfg.PagePauseMin, cfg.PagePauseMax)
		}
	})

	t.Run("default group pause is 10s to 15s", func(t *testing.T) {
		t.Parallel()
		if cfg.GroupPauseMin != 10*time.Second || cfg.GroupPauseMax != 15*time.Second {
			t.Errorf("unexpected group pause: %v to %v", cfg.GroupPauseMin, cfg.GroupPauseMax)
		}
	})

	t.Run("default page cap is 200", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxListingPages != 200 {
			t.Errorf("expected MaxListingPages to be 200, got %d", cfg.MaxListingPages)
		}
	})

	t.Run("default consent cookie", func(t *testing.T) {
		t.Parallel()
		if cfg.ConsentCookie != "notice_preferences=2:" {
			t.Errorf("unexpected cookie %q", cfg.ConsentCookie)
		}
	})

	t.Run("default user agent is a desktop browser", func(t *testing.T) {
		t.Parallel()
		if cfg.UserAgent != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", cfg.UserAgent)
		}
	})

	t.Run("default stash lives under the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.StashDir != filepath.Join(XDGDataDir(), "stash") {
			t.Errorf("unexpected stash dir %q", cfg.StashDir)
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{"empty stash dir", func(c *Config) { c.StashDir = "" }, ErrNoStashDir},
		{"empty base URL", func(c *Config) { c.BaseURL = "" }, ErrNoBaseURL},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero attempts", func(c *Config) { c.FetchAttempts = 0 }, ErrInvalidFetchAttempts},
		{"negative pause", func(c *Config) { c.PagePauseMin = -time.Second }, ErrInvalidPause},
		{"inverted pause", func(c *Config) { c.GroupPauseMin = 20 * time.Second }, ErrInvalidPause},
		{"zero page cap", func(c *Config) { c.MaxListingPages = 0 }, ErrInvalidMaxListingPages},
		{"zero search page cap", func(c *Config) { c.MaxSearchPages = 0 }, ErrInvalidMaxSearchPages},
		{"zero request rate", func(c *Config) { c.RequestsPerSecond = 0 }, ErrInvalidRequestRate},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"zero workers", func(c *Config) { c.ReportWorkers = 0 }, ErrInvalidReportWorkers},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}

	t.Run("zero pauses are valid", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.RetryPauseMin, cfg.RetryPauseMax = 0, 0
		cfg.GroupPauseMin, cfg.GroupPauseMax = 0, 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".gravestash")
		if err := os.WriteFile(path, []byte("politeness: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("applies politeness overrides", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, ".gravestash")
		content := `stashDir: stash
dbDir: ledger
schemaFile: /etc/gravestash/schema.yaml
cookie: "notice_preferences=1:"
timeout: 10s
politeness:
  attempts: 5
  retry: {min: 1s, max: 2s}
  group: {min: 0s, max: 1s}
  maxListingPages: 50
  requestsPerSecond: 0.5
worklist:
  plotLabel: Last Supper
  photographer: Priscilla
  maxPages: 40
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		f.Apply(cfg)

		if cfg.StashDir != filepath.Join(dir, "stash") {
			t.Errorf("expected stash dir relative to config file, got %q", cfg.StashDir)
		}
		if cfg.DBDir != filepath.Join(dir, "ledger") {
			t.Errorf("expected ledger dir relative to config file, got %q", cfg.DBDir)
		}
		if cfg.SchemaFile != "/etc/gravestash/schema.yaml" {
			t.Errorf("unexpected schema file %q", cfg.SchemaFile)
		}
		if cfg.ConsentCookie != "notice_preferences=1:" {
			t.Errorf("unexpected cookie %q", cfg.ConsentCookie)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("unexpected timeout %v", cfg.Timeout)
		}
		if cfg.FetchAttempts != 5 {
			t.Errorf("unexpected attempts %d", cfg.FetchAttempts)
		}
		if cfg.RetryPauseMin != time.Second || cfg.RetryPauseMax != 2*time.Second {
			t.Errorf("unexpected retry pause %v-%v", cfg.RetryPauseMin, cfg.RetryPauseMax)
		}
		if cfg.GroupPauseMin != 0 || cfg.GroupPauseMax != time.Second {
			t.Errorf("unexpected group pause %v-%v", cfg.GroupPauseMin, cfg.GroupPauseMax)
		}
		if cfg.ListingPauseMax != DefaultListingPauseMax {
			t.Errorf("listing pause should keep its default, got %v", cfg.ListingPauseMax)
		}
		if cfg.MaxListingPages != 50 {
			t.Errorf("unexpected page cap %d", cfg.MaxListingPages)
		}
		if cfg.RequestsPerSecond != 0.5 {
			t.Errorf("unexpected request rate %v", cfg.RequestsPerSecond)
		}
		if cfg.PlotLabel != "Last Supper" || cfg.Photographer != "Priscilla" {
			t.Errorf("unexpected worklist settings %q %q", cfg.PlotLabel, cfg.Photographer)
		}
		if cfg.MaxSearchPages != 40 {
			t.Errorf("unexpected search page cap %d", cfg.MaxSearchPages)
		}
	})

	t.Run("nil file applies nothing", func(t *testing.T) {
		t.Parallel()
		var f *File
		cfg := NewConfig()
		f.Apply(cfg)
		if cfg.FetchAttempts != DefaultFetchAttempts {
			t.Errorf("unexpected attempts %d", cfg.FetchAttempts)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}
