package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/gravestash/internal/model"
)

func TestMasterList(t *testing.T) {
	t.Parallel()

	m := NewMasterList([]string{"a", "b", "a", ""})
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if !m.Contains("a") || m.Contains("c") {
		t.Error("unexpected membership")
	}
	if !m.Add("c") {
		t.Error("adding a new URL should report true")
	}
	if m.Add("c") {
		t.Error("adding a known URL should report false")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, m.URLs()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_MasterListPersistence(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	cem := CemeteryDir{ID: "1", Slug: "oak-hill"}
	if err := WriteList(s.ListPath(cem, model.Burial), []string{"b1", "b2"}); err != nil {
		t.Fatal(err)
	}
	if err := WriteList(s.ListPath(cem, model.Parent), []string{"p1"}); err != nil {
		t.Fatal(err)
	}

	empty, err := s.LoadMasterList()
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != 0 {
		t.Errorf("expected empty master list, got %d", empty.Len())
	}

	built, err := s.BuildMasterList()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b1", "b2", "p1"}, built.URLs()); diff != "" {
		t.Errorf("build mismatch (-want +got):\n%s", diff)
	}

	if err := s.SaveMasterList(built); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMasterList(built); err != nil {
		t.Fatalf("saving twice should replace the file: %v", err)
	}
	loaded, err := s.LoadMasterList()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(built.URLs(), loaded.URLs()); diff != "" {
		t.Errorf("load mismatch (-want +got):\n%s", diff)
	}
}

func TestMasterIndex_Lookup(t *testing.T) {
	t.Parallel()

	idx := NewMasterIndex([]string{
		"1_oak/1_page.html",
		"1_oak/1_parents/10_ann-lee_parent-of_30_cy-lee.html",
		"2_elm/2_burials/10_ann-lee.html",
		"2_elm/2_spouses/40_dee-lee_spouse-of_10_ann-lee.html",
	})

	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"10", "2_elm/2_burials/10_ann-lee.html", true},
		{"40", "2_elm/2_spouses/40_dee-lee_spouse-of_10_ann-lee.html", true},
		{"30", "", false},
		{"1", "", false},
	}

	for _, tt := range tests {
		got, ok := idx.Lookup(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
	if idx.Len() != 4 {
		t.Errorf("Len() = %d, want 4", idx.Len())
	}
}

func TestStore_MasterIndexPersistence(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	cem := CemeteryDir{ID: "1", Slug: "oak-hill"}
	if _, err := s.Write(BurialKey(cem, model.MemorialRef{ID: "10", Slug: "ann-lee"}), []byte("x")); err != nil {
		t.Fatal(err)
	}

	scanned, err := s.LoadMasterIndex()
	if err != nil {
		t.Fatal(err)
	}
	if scanned.Len() != 1 {
		t.Fatalf("expected 1 page from scan, got %d", scanned.Len())
	}
	if err := s.SaveMasterIndex(scanned); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadMasterIndex()
	if err != nil {
		t.Fatal(err)
	}
	rel, ok := loaded.Lookup("10")
	if !ok {
		t.Fatal("expected memorial 10 in the index")
	}
	body, err := s.ReadRel(rel)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "x" {
		t.Errorf("unexpected body %q", body)
	}
}
