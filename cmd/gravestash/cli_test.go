package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/gravestash/internal/config"
	"github.com/nao1215/gravestash/internal/database"
	"github.com/nao1215/gravestash/internal/model"
)

// fakeSite serves a two-burial cemetery. Anna's page lists her husband
// Carl, who is buried in another cemetery.
type fakeSite struct {
	mu    sync.Mutex
	calls map[string]int
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.URL.RequestURI()]++
	s.mu.Unlock()

	var body string
	switch r.URL.RequestURI() {
	case "/cemetery/100":
		body = `<h1 class="bio-name">Oak Hill</h1>`
	case "/cemetery/100/memorial-search?page=1":
		body = `<div class="memorial-item"><a href="/memorial/1/anna-smith">Anna</a></div>` +
			`<div class="memorial-item"><a href="/memorial/2/bert-jones">Bert</a></div>`
	case "/cemetery/100/memorial-search?page=2":
		body = `<p><span class="icon-warning"></span> No matches found.</p>`
	case "/memorial/1/anna-smith":
		body = memorialPage("Anna Smith", "100", "1 Jan 1900",
			`<div><b id="spouseLabel">Spouse</b><ul><li><a href="/memorial/3/carl-smith"><span itemprop="name">Carl Smith</span></a></li></ul></div>`)
	case "/memorial/2/bert-jones":
		body = memorialPage("Bert Jones", "100", "", "")
	case "/memorial/3/carl-smith":
		body = memorialPage("Carl Smith", "200", "", "")
	case "/cemetery/100/memorial-search?gps=no&page=1":
		body = `<div class="memorial-item"><a href="/memorial/1/anna-smith"><i class="pe-2">Anna Smith</i></a>` +
			`<b class="birthDeathDates">1 Jan 1900 – unknown</b><strong>Last Supper Row 3</strong></div>` +
			`<div class="memorial-item"><a href="/memorial/2/bert-jones"><i class="pe-2">Bert Jones</i></a>` +
			`<b class="birthDeathDates">Birth and death dates unknown.</b><small>No grave photo</small></div>`
	case "/cemetery/100/memorial-search?gps=yes&page=1":
		body = `<div class="memorial-item"><a href="/memorial/4/dora-smith"><i class="pe-2">Dora Smith</i></a>` +
			`<b class="birthDeathDates">unknown – 1993</b></div>`
	case "/cemetery/100/memorial-search?gps=no&page=2", "/cemetery/100/memorial-search?gps=yes&page=2":
		body = `<p><span class="icon-warning"></span> No matches found.</p>`
	case "/memorial/4/dora-smith":
		body = `<figure id="profile-photo"><img src="d.jpg"><p>Added by <a href="/user/7">Priscilla</a></p></figure>`
	default:
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "<html><body>%s</body></html>", body)
}

func (s *fakeSite) count(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[uri]
}

func memorialPage(name, cemeteryID, birth, family string) string {
	page := fmt.Sprintf(`<h1 id="bio-name">%s</h1>`, name)
	page += fmt.Sprintf(`<a href="/cemetery/%s/x"><span id="cemeteryNameLabel">Cemetery</span></a>`, cemeteryID)
	if birth != "" {
		page += fmt.Sprintf(`<time id="birthDateLabel">%s</time>`, birth)
	}
	return page + family
}

// testEnv is a working directory with a configuration file pointing every
// location into it and at the fake site.
type testEnv struct {
	dir          string
	configPath   string
	stashDir     string
	dbDir        string
	instructions string
}

func newTestEnv(t *testing.T, baseURL string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:          dir,
		configPath:   filepath.Join(dir, ".gravestash"),
		stashDir:     filepath.Join(dir, "stash"),
		dbDir:        filepath.Join(dir, "ledger"),
		instructions: filepath.Join(dir, "instructions.txt"),
	}

	cfg := fmt.Sprintf(`stashDir: stash
dbDir: ledger
baseURL: %s
politeness:
  attempts: 1
  retry: {min: 0s, max: 1ms}
  listing: {min: 0s, max: 1ms}
  page: {min: 0s, max: 1ms}
  group: {min: 0s, max: 1ms}
  requestsPerSecond: 1000
`, baseURL)
	if err := os.WriteFile(env.configPath, []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := os.WriteFile(env.instructions, []byte("# test\n100-OH: burial, spouse\n"), 0600); err != nil {
		t.Fatalf("failed to write instructions: %v", err)
	}
	return env
}

// run executes the root command with args after the config flag.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

func TestStashReportStatus(t *testing.T) {
	t.Parallel()

	site := &fakeSite{calls: make(map[string]int)}
	server := httptest.NewServer(site)
	t.Cleanup(server.Close)

	env := newTestEnv(t, server.URL)

	t.Run("stash", func(t *testing.T) {
		out, err := env.run(t, "stash", env.instructions)
		if err != nil {
			t.Fatalf("stash error = %v", err)
		}

		cem := filepath.Join(env.stashDir, "100_oak-hill")
		for _, rel := range []string{
			"100_page.html",
			"100_burials_list.txt",
			"100_burials/1_anna-smith.html",
			"100_burials/2_bert-jones.html",
			"100_spouses_list.txt",
			"100_spouses/3_carl-smith_spouse-of_1_anna-smith.html",
		} {
			if _, err := os.Stat(filepath.Join(cem, filepath.FromSlash(rel))); err != nil {
				t.Errorf("expected %s in the stash: %v", rel, err)
			}
		}
		for _, name := range []string{"master_list.txt", "master_index.txt"} {
			if _, err := os.Stat(filepath.Join(env.stashDir, name)); err != nil {
				t.Errorf("expected %s in the stash: %v", name, err)
			}
		}

		if got := site.count("/memorial/3/carl-smith"); got != 1 {
			t.Errorf("Carl's page fetched %d times, want 1", got)
		}
		for _, want := range []string{"Crawl Summary", "Oak Hill", "burial", "spouse", "TOTAL"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected summary to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("stash a single group reads cached burials", func(t *testing.T) {
		spouseOnly := filepath.Join(env.dir, "spouses.txt")
		if err := os.WriteFile(spouseOnly, []byte("100-OH: spouse\n"), 0600); err != nil {
			t.Fatalf("failed to write instructions: %v", err)
		}
		if _, err := env.run(t, "stash", spouseOnly); err != nil {
			t.Fatalf("stash error = %v", err)
		}
		if got := site.count("/memorial/1/anna-smith"); got != 1 {
			t.Errorf("Anna's page fetched %d times, want 1", got)
		}
		// The spouse folder is rebuilt.
		if got := site.count("/memorial/3/carl-smith"); got != 2 {
			t.Errorf("Carl's page fetched %d times, want 2", got)
		}
	})

	t.Run("report", func(t *testing.T) {
		xlsxPath := filepath.Join(env.dir, "out", "report.xlsx")
		csvDir := filepath.Join(env.dir, "csv")
		mdPath := filepath.Join(env.dir, "summary.md")

		out, err := env.run(t, "report", "-o", xlsxPath, "--csv", csvDir, "--markdown", mdPath, env.instructions)
		if err != nil {
			t.Fatalf("report error = %v", err)
		}
		for _, want := range []string{"Memorials: 2", "[OH]", xlsxPath} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}

		f, err := excelize.OpenFile(xlsxPath)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer f.Close()
		if got := f.GetSheetList(); len(got) != 1 || got[0] != "OH" {
			t.Errorf("sheets = %v, want [OH]", got)
		}
		rows, err := f.GetRows("OH")
		if err != nil {
			t.Fatalf("GetRows() error = %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("got %d rows, want header and 2 memorials", len(rows))
		}
		if rows[0][0] != model.ColumnCemetery.Header() {
			t.Errorf("first header = %q", rows[0][0])
		}

		csvFile, err := os.Open(filepath.Join(csvDir, "OH.csv"))
		if err != nil {
			t.Fatalf("failed to open csv: %v", err)
		}
		defer csvFile.Close()
		records, err := gocsv.CSVToMaps(csvFile)
		if err != nil {
			t.Fatalf("CSVToMaps() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d csv records, want 2", len(records))
		}
		anna := records[0]
		if anna["Name"] != "Anna Smith" {
			t.Errorf("Name = %q, want Anna Smith", anna["Name"])
		}
		if anna["Memorial ID"] != server.URL+"/memorial/1/anna-smith" {
			t.Errorf("Memorial ID = %q", anna["Memorial ID"])
		}
		if anna["Birth Date"] != "1 Jan 1900" {
			t.Errorf("Birth Date = %q", anna["Birth Date"])
		}
		if want := "Carl Smith, unknown - unknown, #200"; anna["Spouses"] != want {
			t.Errorf("Spouses = %q, want %q", anna["Spouses"], want)
		}
		if records[1]["Surname"] != "Jones" {
			t.Errorf("second row Surname = %q, want Jones", records[1]["Surname"])
		}

		md, err := os.ReadFile(mdPath)
		if err != nil {
			t.Fatalf("failed to read markdown: %v", err)
		}
		for _, want := range []string{"# Gravestash Report", "Crawl Ledger"} {
			if !strings.Contains(string(md), want) {
				t.Errorf("expected markdown to contain %q", want)
			}
		}
	})

	t.Run("status", func(t *testing.T) {
		out, err := env.run(t, "status")
		if err != nil {
			t.Fatalf("status error = %v", err)
		}
		for _, want := range []string{"Crawl Ledger", "100", "TOTAL"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected status to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("status of a memorial", func(t *testing.T) {
		out, err := env.run(t, "status", "--memorial", "3", "--kind", "spouse")
		if err != nil {
			t.Fatalf("status error = %v", err)
		}
		for _, want := range []string{"Family Links of 3", "1_anna-smith", "3_carl-smith", "spouse"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected status to contain %q, got:\n%s", want, out)
			}
		}
	})
}

func TestSearch(t *testing.T) {
	t.Parallel()

	site := &fakeSite{calls: make(map[string]int)}
	server := httptest.NewServer(site)
	t.Cleanup(server.Close)

	env := newTestEnv(t, server.URL)
	searches := filepath.Join(env.dir, "searches.txt")
	content := fmt.Sprintf("# worklist\n%[1]s/cemetery/100/memorial-search?gps=no;Oak Hill No GPS\n%[1]s/cemetery/100/memorial-search?gps=yes;Oak Hill Has GPS\n", server.URL)
	if err := os.WriteFile(searches, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write searches: %v", err)
	}
	xlsxPath := filepath.Join(env.dir, "visit", "worklist.xlsx")

	out, err := env.run(t, "search", "-o", xlsxPath, "--plot-label", "last supper", "--photographer", "Priscilla", searches)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	for _, want := range []string{"Worklist", "Oak Hill No GPS", "Oak Hill Has GPS", "TOTAL", xlsxPath} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, out)
		}
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatalf("failed to open worklist: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Worklist")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header and 3 memorials", len(rows))
	}

	// Memorial Name, Dates, Plot, Instructions
	want := [][]string{
		{"Smith, Anna", "1900-?", "Row 3", "Add GPS"},
		{"Jones, Bert", "unknown", "", "Take Photo"},
		{"Smith, Dora", "?-1993", "", "Update GPS"},
	}
	for i, w := range want {
		if diff := cmp.Diff(w, rows[i+1][:4]); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", i+1, diff)
		}
	}

	if got := site.count("/memorial/4/dora-smith"); got != 1 {
		t.Errorf("Dora's page fetched %d times, want 1", got)
	}
	if got := site.count("/memorial/1/anna-smith"); got != 0 {
		t.Errorf("Anna's page fetched %d times, want 0", got)
	}
	if _, err := os.Stat(env.stashDir); !os.IsNotExist(err) {
		t.Errorf("search must not create the stash, stat error = %v", err)
	}
}

func TestSearchBadFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "http://127.0.0.1:1")
	searches := filepath.Join(env.dir, "searches.txt")
	if err := os.WriteFile(searches, []byte("not a search line\n"), 0600); err != nil {
		t.Fatalf("failed to write searches: %v", err)
	}
	_, err := env.run(t, "search", "-o", filepath.Join(env.dir, "w.xlsx"), searches)
	if !errors.Is(err, config.ErrInvalidSearch) {
		t.Errorf("expected ErrInvalidSearch, got %v", err)
	}
}

func TestStashNoLedger(t *testing.T) {
	t.Parallel()

	site := &fakeSite{calls: make(map[string]int)}
	server := httptest.NewServer(site)
	t.Cleanup(server.Close)

	env := newTestEnv(t, server.URL)
	if _, err := env.run(t, "stash", "--no-ledger", env.instructions); err != nil {
		t.Fatalf("stash error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dbDir, database.FileName)); !os.IsNotExist(err) {
		t.Errorf("expected no ledger, stat error = %v", err)
	}
}

func TestStashUnknownCemetery(t *testing.T) {
	t.Parallel()

	site := &fakeSite{calls: make(map[string]int)}
	server := httptest.NewServer(site)
	t.Cleanup(server.Close)

	env := newTestEnv(t, server.URL)
	if err := os.WriteFile(env.instructions, []byte("999\n"), 0600); err != nil {
		t.Fatalf("failed to write instructions: %v", err)
	}

	_, err := env.run(t, "stash", env.instructions)
	if err == nil {
		t.Fatal("expected error for an unknown cemetery")
	}
	if !strings.Contains(err.Error(), "crawl stopped") {
		t.Errorf("expected 'crawl stopped' error, got %v", err)
	}
}

func TestStatusWithoutLedger(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "http://127.0.0.1:1")
	out, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "No crawl ledger") {
		t.Errorf("expected missing ledger message, got %q", out)
	}
	if _, err := os.Stat(env.dbDir); !os.IsNotExist(err) {
		t.Errorf("status must not create the ledger directory, stat error = %v", err)
	}
}

func TestReportWithoutStash(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "http://127.0.0.1:1")
	_, err := env.run(t, "report", "-o", filepath.Join(env.dir, "r.xlsx"), env.instructions)
	if err == nil {
		t.Fatal("expected error without a stash")
	}
	if !strings.Contains(err.Error(), "stash not found") {
		t.Errorf("expected 'stash not found' error, got %v", err)
	}
}

func TestMissingConfigFile(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "status"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for a missing config file")
	}
	if !strings.Contains(err.Error(), "configuration file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}
