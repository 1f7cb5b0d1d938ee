package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColumns(t *testing.T) {
	t.Parallel()

	cols := Columns()
	if len(cols) != 25 {
		t.Fatalf("expected 25 columns, got %d", len(cols))
	}

	seen := make(map[string]bool)
	for _, c := range cols {
		h := c.Header()
		if h == "" {
			t.Errorf("column %d has no header", int(c))
		}
		if seen[h] {
			t.Errorf("duplicate header %q", h)
		}
		seen[h] = true
	}

	if Column(99).Valid() {
		t.Error("expected Column(99) to be invalid")
	}
	if len(Header()) != ColumnCount {
		t.Errorf("Header() length = %d", len(Header()))
	}
}

func TestCell(t *testing.T) {
	t.Parallel()

	t.Run("zero value is empty text", func(t *testing.T) {
		t.Parallel()
		var c Cell
		if !c.IsEmpty() || c.Kind != CellText {
			t.Errorf("unexpected zero cell: %+v", c)
		}
	})

	t.Run("link without target collapses to empty", func(t *testing.T) {
		t.Parallel()
		if c := LinkCell("", "text"); !c.IsEmpty() {
			t.Errorf("expected empty cell, got %+v", c)
		}
	})

	t.Run("link without text shows target", func(t *testing.T) {
		t.Parallel()
		c := LinkCell("https://example.com", "")
		if c.Kind != CellLink || c.String() != "https://example.com" {
			t.Errorf("unexpected link cell: %+v", c)
		}
	})

	t.Run("rich cell keeps bold runs", func(t *testing.T) {
		t.Parallel()
		c := RichCell(Run{Text: "Mary "}, Run{Text: "Jones", Bold: true}, Run{Text: ""})
		expected := []Run{{Text: "Mary "}, {Text: "Jones", Bold: true}}
		if diff := cmp.Diff(expected, c.Runs); diff != "" {
			t.Errorf("runs mismatch (-want +got):\n%s", diff)
		}
		if c.String() != "Mary Jones" {
			t.Errorf("String() = %q", c.String())
		}
	})

	t.Run("rich cell without bold collapses to text", func(t *testing.T) {
		t.Parallel()
		c := RichCell(Run{Text: "a"}, Run{Text: "b"})
		if c.Kind != CellText || c.Text != "ab" {
			t.Errorf("unexpected cell: %+v", c)
		}
	})
}

func TestRowStrings(t *testing.T) {
	t.Parallel()

	var r Row
	r.Cells[ColumnName] = RichCell(Run{Text: "John "}, Run{Text: "Smith", Bold: true})
	r.Cells[ColumnMemorial] = LinkCell("https://www.findagrave.com/memorial/1/john-smith", "1")

	got := r.Strings()
	if got[ColumnName] != "John Smith" || got[ColumnMemorial] != "1" {
		t.Errorf("unexpected strings: %v", got)
	}
}
