package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/gravestash/internal/extract"
	"github.com/nao1215/gravestash/internal/model"
	"github.com/nao1215/gravestash/internal/store"
)

const testBase = "https://example.test"

var (
	oakHill = store.CemeteryDir{ID: "100", Slug: "oak-hill"}
	anna    = model.MemorialRef{ID: "1", Slug: "anna-smith"}
	bert    = model.MemorialRef{ID: "2", Slug: "bert-smith"}
	carl    = model.MemorialRef{ID: "3", Slug: "carl-jones"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const oakHillLink = `<a href="/cemetery/100/oak-hill"><span id="cemeteryNameLabel">Oak Hill</span></a>`

// testPages are the cached burial pages of Oak Hill.
var testPages = map[model.MemorialRef]string{
	anna: `<html><body><h1 id="bio-name">Anna Smith</h1>` +
		`<span id="birthDateLabel">1 Jan 1900</span>` + oakHillLink +
		`<div><b id="spouseLabel">Spouse</b><ul><li><a href="/memorial/2/bert-smith">` +
		`<span itemprop="name">Bert Smith</span></a></li></ul></div></body></html>`,
	bert: `<html><body><h1 id="bio-name">Bert Smith</h1>` + oakHillLink + `</body></html>`,
	carl: `<html><body><h1 id="bio-name">Carl Jones</h1></body></html>`,
}

// newTestStash caches the burial pages of refs under Oak Hill and writes
// the burial list in the given order.
func newTestStash(t *testing.T, refs ...model.MemorialRef) *store.Store {
	t.Helper()

	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	if err := st.EnsureCemetery(oakHill); err != nil {
		t.Fatalf("EnsureCemetery() error = %v", err)
	}

	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, err := st.Write(store.BurialKey(oakHill, ref), []byte(testPages[ref])); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		urls = append(urls, ref.URL(testBase))
	}
	if err := store.WriteList(st.ListPath(oakHill, model.Burial), urls); err != nil {
		t.Fatalf("WriteList() error = %v", err)
	}
	return st
}

func newTestBuilder(t *testing.T, st *store.Store, opts ...BuilderOption) *Builder {
	t.Helper()

	schema, err := extract.DefaultSchema()
	if err != nil {
		t.Fatalf("DefaultSchema() error = %v", err)
	}
	index, err := st.BuildMasterIndex()
	if err != nil {
		t.Fatalf("BuildMasterIndex() error = %v", err)
	}
	run := extract.NewRun(schema, index, st, extract.Options{BaseURL: testBase, BoldNames: true}, discardLogger())

	opts = append([]BuilderOption{WithBuilderLogger(discardLogger())}, opts...)
	return NewBuilder(st, run, opts...)
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	st := newTestStash(t, carl, anna, bert)
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBuilder(t, st, WithWorkers(2), WithClock(func() time.Time { return created }))

	units := []model.CemeteryUnit{{ID: "100", Abbreviation: "OH"}}
	wb, err := b.Build(context.Background(), units)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !wb.Created.Equal(created) {
		t.Errorf("Created = %v, want %v", wb.Created, created)
	}
	if len(wb.Sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(wb.Sheets))
	}
	sheet := wb.Sheets[0]
	if sheet.Name != "OH" || sheet.CemeteryID != "100" {
		t.Errorf("sheet = %q/%q, want OH/100", sheet.Name, sheet.CemeteryID)
	}
	if diff := cmp.Diff(model.Header(), sheet.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for _, r := range sheet.Rows {
		order = append(order, r.Memorial.ID)
	}
	if diff := cmp.Diff([]string{"3", "1", "2"}, order); diff != "" {
		t.Errorf("rows are not in list order (-want +got):\n%s", diff)
	}

	row := sheet.Rows[1]
	want := map[model.Column]string{
		model.ColumnCemetery:  "100",
		model.ColumnSurname:   "Smith",
		model.ColumnName:      "Anna Smith",
		model.ColumnMemorial:  "1",
		model.ColumnBirthDate: "1 Jan 1900",
		model.ColumnSpouses:   "Bert Smith, unknown - unknown, #100",
		model.ColumnFather:    "",
	}
	for c, w := range want {
		if got := row.Cells[c].String(); got != w {
			t.Errorf("%s = %q, want %q", c, got, w)
		}
	}
	if got := row.Cells[model.ColumnMemorial].URL; got != testBase+"/memorial/1/anna-smith" {
		t.Errorf("memorial link = %q", got)
	}
	if row.Cells[model.ColumnName].Kind != model.CellRich {
		t.Error("name cell should be rich text")
	}
}

func TestBuilder_Build_sheetPerUnit(t *testing.T) {
	t.Parallel()

	st := newTestStash(t, anna)
	b := newTestBuilder(t, st)

	units := []model.CemeteryUnit{{ID: "100"}, {ID: "100", Abbreviation: "100"}}
	wb, err := b.Build(context.Background(), units)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var names []string
	for _, s := range wb.Sheets {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"100", "100 (2)"}, names); diff != "" {
		t.Errorf("sheet names mismatch (-want +got):\n%s", diff)
	}
	if wb.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", wb.RowCount())
	}
}

func TestBuilder_Build_errors(t *testing.T) {
	t.Parallel()

	t.Run("missing burial page", func(t *testing.T) {
		t.Parallel()

		st := newTestStash(t, anna)
		urls := []string{anna.URL(testBase), carl.URL(testBase)}
		if err := store.WriteList(st.ListPath(oakHill, model.Burial), urls); err != nil {
			t.Fatalf("WriteList() error = %v", err)
		}

		_, err := newTestBuilder(t, st).Build(context.Background(), []model.CemeteryUnit{{ID: "100"}})
		if !errors.Is(err, ErrMissingBurialPage) {
			t.Fatalf("expected ErrMissingBurialPage, got %v", err)
		}
		if !strings.Contains(err.Error(), "carl-jones") {
			t.Errorf("error should name the missing page: %v", err)
		}
	})

	t.Run("missing burial list", func(t *testing.T) {
		t.Parallel()

		st, err := store.Open(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if err := st.EnsureCemetery(oakHill); err != nil {
			t.Fatal(err)
		}

		_, err = newTestBuilder(t, st).Build(context.Background(), []model.CemeteryUnit{{ID: "100"}})
		if !errors.Is(err, ErrMissingBurialList) {
			t.Fatalf("expected ErrMissingBurialList, got %v", err)
		}
	})

	t.Run("unknown cemetery", func(t *testing.T) {
		t.Parallel()

		st := newTestStash(t, anna)
		_, err := newTestBuilder(t, st).Build(context.Background(), []model.CemeteryUnit{{ID: "999"}})
		if !errors.Is(err, store.ErrCemeteryNotFound) {
			t.Fatalf("expected ErrCemeteryNotFound, got %v", err)
		}
	})

	t.Run("bad list entry", func(t *testing.T) {
		t.Parallel()

		st := newTestStash(t, anna)
		if err := store.WriteList(st.ListPath(oakHill, model.Burial), []string{"not a memorial"}); err != nil {
			t.Fatal(err)
		}
		_, err := newTestBuilder(t, st).Build(context.Background(), []model.CemeteryUnit{{ID: "100"}})
		if !errors.Is(err, model.ErrNotMemorialURL) {
			t.Fatalf("expected ErrNotMemorialURL, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		st := newTestStash(t, anna)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestBuilder(t, st).Build(ctx, []model.CemeteryUnit{{ID: "100"}})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}
