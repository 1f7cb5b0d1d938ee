package report

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/gravestash/internal/model"
)

func TestWorklistWriter(t *testing.T) {
	t.Parallel()

	items := []model.WorkItem{
		{
			Ref:         model.MemorialRef{ID: "1", Slug: "anna-smith"},
			URL:         "https://example.test/memorial/1/anna-smith",
			Search:      "Oak Hill No GPS",
			SortName:    "Smith, Anna",
			FullName:    "Anna Marie Smith",
			Dates:       "1900-?",
			RawDates:    "1 Jan 1900 – unknown",
			Plot:        "Row 3",
			Instruction: model.InstructionAddGPS,
		},
		{
			Ref:         model.MemorialRef{ID: "2", Slug: "bert-jones"},
			URL:         "https://example.test/memorial/2/bert-jones",
			Search:      "Oak Hill No GPS",
			SortName:    "Jones, Bert",
			Dates:       "unknown",
			NoPhoto:     true,
			Instruction: model.InstructionTakePhoto,
		},
	}

	var buf bytes.Buffer
	n, err := NewWorklistWriter(&buf).Write(items)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() = %d bytes, buffer holds %d", n, buf.Len())
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{WorklistSheet}, f.GetSheetList()); diff != "" {
		t.Errorf("worksheets mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows(WorklistSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		worklistHeader,
		{"Smith, Anna", "1900-?", "Row 3", "Add GPS", "1", "Oak Hill No GPS", "Anna Marie Smith", "1 Jan 1900 – unknown", "", "", "https://example.test/memorial/1/anna-smith"},
		{"Jones, Bert", "unknown", "", "Take Photo", "2", "Oak Hill No GPS", "", "", "Yes", "", "https://example.test/memorial/2/bert-jones"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	ok, target, err := f.GetCellHyperLink(WorklistSheet, "E3")
	if err != nil {
		t.Fatalf("GetCellHyperLink() error = %v", err)
	}
	if !ok || target != "https://example.test/memorial/2/bert-jones" {
		t.Errorf("E3 link = %v %q", ok, target)
	}

	panes, err := f.GetPanes(WorklistSheet)
	if err != nil {
		t.Fatalf("GetPanes() error = %v", err)
	}
	if !panes.Freeze || panes.YSplit != 1 {
		t.Errorf("panes = %+v, want header row frozen", panes)
	}
}

func TestWorklistWriter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewWorklistWriter(&buf).Write(nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(WorklistSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want the header only", len(rows))
	}
}
